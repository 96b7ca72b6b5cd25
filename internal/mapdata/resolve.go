package mapdata

import "github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/geom"

// boundsMargin pads a blocking zone's rectangle so a circle pushed out
// of it ends strictly clear of the zone boundary rather than exactly on
// it, so a subsequent Contains() check on the same tick doesn't flicker
// between "in" and "out" from floating point error.
const boundsMargin = 0.1

// Resolve adjusts a circle of radius r centered at (x,y) so that it
// respects area bounds and the zone kinds that block its mover type,
// returning the corrected center and whether any correction was
// applied.
//
// The algorithm (see DESIGN.md for the Open Question this settles):
//  1. Locate the area containing (x,y). If none contains it — the
//     entity has been pushed or teleported out of the playable world —
//     fall back to the nearest area by bounding-box distance and snap
//     to that area's first Safe zone center, or its first non-Blocked
//     zone center if it has no Safe zone. This recovery path is the
//     only one that may move the entity an unbounded distance.
//  2. Clamp the (possibly already-adjusted) point to stay within the
//     containing area's bounds, inset by the entity's own radius r so
//     the circle itself never protrudes past the area edge.
//  3. Players collide with Blocked zones; enemies collide with Safe
//     and Exit zones (they are repelled out of safe/exit ground).
//     Either way, push the circle out of the offending zone's
//     rectangle using the closed-form circle/AABB correction
//     (geom.AABB.ResolveCircle), grown by boundsMargin to prevent
//     immediate re-intersection next tick.
func (m *Map) Resolve(x, y, r float64, isEnemy bool) (rx, ry float64, adjusted bool) {
	if len(m.Areas) == 0 {
		return x, y, false
	}

	areaIdx := m.AreaAt(x, y)
	if areaIdx < 0 {
		areaIdx = m.NearestArea(x, y)
		nx, ny, ok := m.FirstSafeZoneCenterInArea(areaIdx)
		if !ok {
			nx, ny, ok = m.FirstNonBlockedZoneCenter(areaIdx)
		}
		if ok {
			x, y = nx, ny
		} else {
			x, y = m.Areas[areaIdx].AABB().ClampPoint(x, y)
		}
		adjusted = true
	}
	area := m.Areas[areaIdx]

	bounds := area.AABB()
	inset := geom.AABB{
		Left:   bounds.Left + r,
		Top:    bounds.Top + r,
		Right:  bounds.Right - r,
		Bottom: bounds.Bottom - r,
	}
	if cx, cy := inset.ClampPoint(x, y); cx != x || cy != y {
		x, y = cx, cy
		adjusted = true
	}

	zoneIdx := area.ZoneAt(x, y)
	if zoneIdx < 0 {
		return x, y, adjusted
	}
	zone := area.Zones[zoneIdx]

	blocks := (!isEnemy && zone.Type == Blocked) ||
		(isEnemy && (zone.Type == Safe || zone.Type == Exit))
	if !blocks {
		return x, y, adjusted
	}

	zoneBox := zone.WorldAABB(area.X, area.Y)
	// Grow the blocking rectangle so a resolved center sits strictly
	// clear of the boundary rather than grazing it.
	inset = geom.AABB{
		Left:   zoneBox.Left - boundsMargin,
		Top:    zoneBox.Top - boundsMargin,
		Right:  zoneBox.Right + boundsMargin,
		Bottom: zoneBox.Bottom + boundsMargin,
	}
	nx, ny, collided := inset.ResolveCircle(x, y, r)
	if collided {
		return nx, ny, true
	}
	return x, y, adjusted
}
