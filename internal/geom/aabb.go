package geom

import "math"

// AABB is an axis-aligned bounding box, left/top inclusive and
// right/bottom exclusive per the closed-open rectangle convention used
// throughout the map model.
type AABB struct {
	Left, Top, Right, Bottom float64
}

// Width returns the box width.
func (b AABB) Width() float64 { return b.Right - b.Left }

// Height returns the box height.
func (b AABB) Height() float64 { return b.Bottom - b.Top }

// Contains reports whether (x,y) lies within the closed-open box.
func (b AABB) Contains(x, y float64) bool {
	return x >= b.Left && x < b.Right && y >= b.Top && y < b.Bottom
}

// Intersects reports whether two boxes overlap.
func (b AABB) Intersects(o AABB) bool {
	return b.Left < o.Right && b.Right > o.Left && b.Top < o.Bottom && b.Bottom > o.Top
}

// ClampPoint clamps (x,y) to the closed box, returning the closest point
// on or inside the box.
func (b AABB) ClampPoint(x, y float64) (float64, float64) {
	if x < b.Left {
		x = b.Left
	} else if x > b.Right {
		x = b.Right
	}
	if y < b.Top {
		y = b.Top
	} else if y > b.Bottom {
		y = b.Bottom
	}
	return x, y
}

// ResolveCircle tests a circle (cx,cy,r) against the box and, on
// penetration, returns a corrected center pushed out of the box along
// the shortest escape vector.
//
// Algorithm (spec §4.1): clamp the circle center to the box to find the
// closest point on the box boundary. If the squared distance from the
// center to that point exceeds r², there is no collision. Otherwise:
//   - if the center lies strictly outside the box, push the center out
//     along the normal from the clamped point, with magnitude r;
//   - if the center lies inside the box (the clamped point equals the
//     center itself), push along whichever axis has the smallest
//     penetration depth (left/right/top/bottom distance).
//
// Returns the corrected center and whether a collision occurred.
func (b AABB) ResolveCircle(cx, cy, r float64) (correctedX, correctedY float64, collided bool) {
	clampedX, clampedY := b.ClampPoint(cx, cy)

	dx := cx - clampedX
	dy := cy - clampedY
	distSq := dx*dx + dy*dy

	if distSq > r*r {
		return cx, cy, false
	}

	if clampedX != cx || clampedY != cy {
		// Center is outside the box: push out along the normal from the
		// clamped point toward the center, with magnitude r.
		dist := math.Sqrt(distSq)
		if dist == 0 {
			// Degenerate: center sits exactly on the boundary. Push along
			// the smallest-penetration axis as a fallback.
			return b.pushFromInside(cx, cy, r)
		}
		nx, ny := dx/dist, dy/dist
		return clampedX + nx*r, clampedY + ny*r, true
	}

	// Center is inside the box: push along the axis of least penetration.
	return b.pushFromInside(cx, cy, r)
}

func (b AABB) pushFromInside(cx, cy, r float64) (float64, float64, bool) {
	leftDist := (cx - b.Left) + r
	rightDist := (b.Right - cx) + r
	topDist := (cy - b.Top) + r
	bottomDist := (b.Bottom - cy) + r

	min := leftDist
	axis := 0 // 0=left,1=right,2=top,3=bottom
	if rightDist < min {
		min = rightDist
		axis = 1
	}
	if topDist < min {
		min = topDist
		axis = 2
	}
	if bottomDist < min {
		min = bottomDist
		axis = 3
	}

	switch axis {
	case 0:
		return b.Left - r, cy, true
	case 1:
		return b.Right + r, cy, true
	case 2:
		return cx, b.Top - r, true
	default:
		return cx, b.Bottom + r, true
	}
}
