// Package mapdata loads and queries the Eluding world map: areas, their
// zones, and the spawners a zone may host. The map is parsed once at
// startup and treated as immutable and shared by reference for the life
// of the process — nothing here is safe to mutate after Load returns.
package mapdata

import "github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/geom"

// ZoneType tags the walkability and gameplay effect of a Zone.
type ZoneType int

const (
	Safe ZoneType = iota
	Active
	Exit
	Teleport
	Blocked
)

func (t ZoneType) String() string {
	switch t {
	case Safe:
		return "safe"
	case Active:
		return "active"
	case Exit:
		return "exit"
	case Teleport:
		return "teleport"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Spawner describes a population of enemies an Active zone maintains
// while occupied.
type Spawner struct {
	Radius        float64
	Speed         float64 // nominal speed; zero if MinSpeed/MaxSpeed are used instead
	HasFixedSpeed bool    // true when Speed is authoritative, false when MinSpeed/MaxSpeed range applies
	MinSpeed      float64
	MaxSpeed      float64
	Count         int
	Types         []string // enemy variant names, chosen uniformly per spawned enemy
	Clockwise     bool
}

// Zone is a sub-rectangle of an Area with a walkability/effect tag.
// X, Y, Width, Height are local to the owning Area's origin.
type Zone struct {
	Type ZoneType
	X, Y, Width, Height float64

	HasMinimumSpeed bool // Safe zones may force a minimum player speed
	MinimumSpeed    float64

	HasTranslate bool // Exit/Teleport zones carry a translation vector
	Translate    geom.Vector

	Spawners []Spawner // only meaningful on Active zones
}

// WorldAABB returns the zone's bounding box in world coordinates given
// its owning area's origin.
func (z Zone) WorldAABB(areaX, areaY float64) geom.AABB {
	return geom.AABB{
		Left:   areaX + z.X,
		Top:    areaY + z.Y,
		Right:  areaX + z.X + z.Width,
		Bottom: areaY + z.Y + z.Height,
	}
}

// Contains reports whether the local point (lx,ly) (relative to the
// area origin) lies within this zone's closed-open rectangle.
func (z Zone) Contains(lx, ly float64) bool {
	return lx >= z.X && lx < z.X+z.Width && ly >= z.Y && ly < z.Y+z.Height
}

// Area is a rectangular region of the map containing zones. Width and
// Height are derived at load time as the max (x+width, y+height) across
// the area's zones.
type Area struct {
	X, Y, Width, Height float64
	Zones               []Zone
}

// AABB returns the area's bounding box in world coordinates.
func (a Area) AABB() geom.AABB {
	return geom.AABB{
		Left:   a.X,
		Top:    a.Y,
		Right:  a.X + a.Width,
		Bottom: a.Y + a.Height,
	}
}

// ZoneAt returns the index of the first zone (linear scan, in
// declaration order) containing the world point (x,y), or -1 if none
// contains it.
func (a Area) ZoneAt(x, y float64) int {
	lx, ly := x-a.X, y-a.Y
	for i, z := range a.Zones {
		if z.Contains(lx, ly) {
			return i
		}
	}
	return -1
}

// Map is the immutable, shared world description: background
// properties and an ordered list of Areas.
type Map struct {
	Name            string
	BackgroundColor [4]float64
	Friction        float64
	Areas           []Area
}

// AreaAt returns the index of the area whose bounding box contains
// (x,y), or -1 if none does.
func (m *Map) AreaAt(x, y float64) int {
	for i, a := range m.Areas {
		if a.AABB().Contains(x, y) {
			return i
		}
	}
	return -1
}

// NearestArea returns the index of the area whose bounding box is
// closest to (x,y), used as the map resolver's out-of-bounds recovery
// path. Returns 0, which is not a valid index, if the map has no
// areas — callers must check len(Areas) first.
func (m *Map) NearestArea(x, y float64) int {
	best := 0
	bestDist := -1.0
	for i, a := range m.Areas {
		cx, cy := a.AABB().ClampPoint(x, y)
		dx, dy := x-cx, y-cy
		d := dx*dx + dy*dy
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// FirstSafeZoneCenter searches all areas in declaration order for the
// first Safe zone and returns its world-space center. This is the map's
// spawn point; the map resolver's recovery path uses the per-area
// FirstSafeZoneCenterInArea instead.
//
// See DESIGN.md for why this searches rather than indexing a fixed
// area: the reference implementation this spec was distilled from
// indexed a specific area number, which is not robust to maps with
// fewer areas.
func (m *Map) FirstSafeZoneCenter() (x, y float64, ok bool) {
	for _, a := range m.Areas {
		for _, z := range a.Zones {
			if z.Type == Safe {
				return a.X + z.X + z.Width/2, a.Y + z.Y + z.Height/2, true
			}
		}
	}
	return 0, 0, false
}

// FirstNonBlockedZoneCenter is the resolver's fallback when an area has
// no Safe zone at all.
func (m *Map) FirstNonBlockedZoneCenter(areaIdx int) (x, y float64, ok bool) {
	a := m.Areas[areaIdx]
	for _, z := range a.Zones {
		if z.Type != Blocked {
			return a.X + z.X + z.Width/2, a.Y + z.Y + z.Height/2, true
		}
	}
	return 0, 0, false
}

// FirstSafeZoneCenterInArea is the resolver's primary recovery target
// for an entity found outside every area: the first Safe zone within
// one specific area, rather than the first Safe zone on the whole map.
func (m *Map) FirstSafeZoneCenterInArea(areaIdx int) (x, y float64, ok bool) {
	a := m.Areas[areaIdx]
	for _, z := range a.Zones {
		if z.Type == Safe {
			return a.X + z.X + z.Width/2, a.Y + z.Y + z.Height/2, true
		}
	}
	return 0, 0, false
}
