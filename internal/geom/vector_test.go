package geom

import (
	"math"
	"testing"
)

func TestVectorReflect(t *testing.T) {
	v := Vector{X: 1, Y: -1}
	n := Vector{X: 0, Y: 1} // floor normal

	r := v.Reflect(n)
	if math.Abs(r.X-1) > 1e-9 || math.Abs(r.Y-1) > 1e-9 {
		t.Errorf("expected (1,1), got (%v,%v)", r.X, r.Y)
	}
}

func TestVectorNormalizeZero(t *testing.T) {
	v := Vector{}
	n := v.Normalize()
	if n.X != 0 || n.Y != 0 {
		t.Errorf("expected zero vector to normalize to zero, got %v", n)
	}
}

func TestVectorNormalizeUnitLength(t *testing.T) {
	v := Vector{X: 3, Y: 4}
	n := v.Normalize()
	if math.Abs(n.Length()-1) > 1e-9 {
		t.Errorf("expected unit length, got %v", n.Length())
	}
}

func TestFromAngleRoundTrip(t *testing.T) {
	for _, angle := range []float64{0, math.Pi / 4, math.Pi / 2, math.Pi, -math.Pi / 3} {
		v := FromAngle(angle)
		got := v.Angle()
		// Angle() wraps to (-pi, pi], normalize both sides before compare.
		diff := math.Abs(got - angle)
		if diff > math.Pi {
			diff = 2*math.Pi - diff
		}
		if diff > 1e-9 {
			t.Errorf("angle %v: round-tripped to %v", angle, got)
		}
	}
}
