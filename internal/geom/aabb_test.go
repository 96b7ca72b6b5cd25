package geom

import (
	"math"
	"testing"
)

func TestResolveCircleNoCollision(t *testing.T) {
	box := AABB{Left: 0, Top: 0, Right: 100, Bottom: 100}

	x, y, collided := box.ResolveCircle(200, 200, 10)
	if collided {
		t.Errorf("expected no collision, got corrected (%v,%v)", x, y)
	}
	if x != 200 || y != 200 {
		t.Errorf("uncollided center should be unchanged, got (%v,%v)", x, y)
	}
}

func TestResolveCircleOutsidePushesAlongNormal(t *testing.T) {
	box := AABB{Left: 0, Top: 0, Right: 100, Bottom: 100}

	// Circle center just past the right edge, overlapping by 5 units.
	x, y, collided := box.ResolveCircle(103, 50, 8)
	if !collided {
		t.Fatal("expected collision")
	}
	if x <= 100 {
		t.Errorf("expected corrected x pushed clear of box right edge, got %v", x)
	}
	if y != 50 {
		t.Errorf("expected y unchanged for a pure horizontal push, got %v", y)
	}

	// distance from corrected center to box should equal the radius exactly.
	clampedX, clampedY := box.ClampPoint(x, y)
	dist := math.Hypot(x-clampedX, y-clampedY)
	if math.Abs(dist-8) > 1e-9 {
		t.Errorf("expected corrected center exactly radius away from box, got dist %v", dist)
	}
}

func TestResolveCircleInsidePushesLeastPenetrationAxis(t *testing.T) {
	box := AABB{Left: 0, Top: 0, Right: 100, Bottom: 10}

	// Center is inside the box, much closer to the bottom edge than any other.
	x, y, collided := box.ResolveCircle(50, 8, 3)
	if !collided {
		t.Fatal("expected collision for center inside box")
	}
	if y <= 10 {
		t.Errorf("expected push out through nearest (bottom) edge, got y=%v", y)
	}
	if x != 50 {
		t.Errorf("expected x unchanged when bottom is nearest edge, got %v", x)
	}
}

func TestContainsIsClosedOpen(t *testing.T) {
	box := AABB{Left: 0, Top: 0, Right: 10, Bottom: 10}

	if !box.Contains(0, 0) {
		t.Error("left/top edge should be inside (closed)")
	}
	if box.Contains(10, 5) {
		t.Error("right edge should be outside (open)")
	}
	if box.Contains(5, 10) {
		t.Error("bottom edge should be outside (open)")
	}
}

func TestIntersects(t *testing.T) {
	a := AABB{Left: 0, Top: 0, Right: 10, Bottom: 10}
	b := AABB{Left: 5, Top: 5, Right: 15, Bottom: 15}
	c := AABB{Left: 20, Top: 20, Right: 30, Bottom: 30}

	if !a.Intersects(b) {
		t.Error("expected overlapping boxes to intersect")
	}
	if a.Intersects(c) {
		t.Error("expected disjoint boxes to not intersect")
	}
}
