package mapdata

import "testing"

func testMap() *Map {
	return &Map{
		Name: "resolve-test",
		Areas: []Area{
			{
				X: 0, Y: 0, Width: 300, Height: 100,
				Zones: []Zone{
					{Type: Safe, X: 0, Y: 0, Width: 100, Height: 100},
					{Type: Blocked, X: 100, Y: 0, Width: 50, Height: 100},
					{Type: Active, X: 150, Y: 0, Width: 150, Height: 100},
				},
			},
		},
	}
}

func TestResolveInsideSafeZoneUnchanged(t *testing.T) {
	m := testMap()
	x, y, adjusted := m.Resolve(50, 50, 5, false)
	if adjusted {
		t.Errorf("expected no adjustment for point safely inside a zone, got (%v,%v)", x, y)
	}
	if x != 50 || y != 50 {
		t.Errorf("expected position unchanged, got (%v,%v)", x, y)
	}
}

func TestResolvePushesOutOfBlockedZone(t *testing.T) {
	m := testMap()
	// Center sits just inside the blocked strip, close to its left edge.
	x, _, adjusted := m.Resolve(105, 50, 5, false)
	if !adjusted {
		t.Fatal("expected adjustment when center is inside a blocked zone")
	}
	if x >= 100 {
		t.Errorf("expected push back out through nearest (left) edge, got x=%v", x)
	}
}

func TestResolveOutOfBoundsSnapsToNearestAreaSafeZoneCenter(t *testing.T) {
	m := testMap()
	x, y, adjusted := m.Resolve(400, 50, 5, false)
	if !adjusted {
		t.Fatal("expected adjustment for an out-of-bounds point")
	}
	// The only area's Safe zone spans (0,0)-(100,100); its center is (50,50).
	if x != 50 || y != 50 {
		t.Errorf("expected snap to the area's Safe zone center (50,50), got (%v,%v)", x, y)
	}
}

func TestResolveOutOfBoundsWithNoSafeZoneSnapsToFirstNonBlockedZone(t *testing.T) {
	m := &Map{
		Areas: []Area{
			{
				X: 0, Y: 0, Width: 200, Height: 100,
				Zones: []Zone{
					{Type: Blocked, X: 0, Y: 0, Width: 100, Height: 100},
					{Type: Active, X: 100, Y: 0, Width: 100, Height: 100},
				},
			},
		},
	}
	x, y, adjusted := m.Resolve(500, 50, 5, false)
	if !adjusted {
		t.Fatal("expected adjustment for an out-of-bounds point")
	}
	// No Safe zone in this area; falls back to the first non-Blocked
	// zone, the Active strip at (100,0)-(200,100), center (150,50).
	if x != 150 || y != 50 {
		t.Errorf("expected snap to the first non-Blocked zone center (150,50), got (%v,%v)", x, y)
	}
}

func TestResolveAreaBoundsInsetUsesEntityRadius(t *testing.T) {
	m := &Map{
		Areas: []Area{
			{
				X: 0, Y: 0, Width: 300, Height: 100,
				Zones: []Zone{
					{Type: Active, X: 0, Y: 0, Width: 300, Height: 100},
				},
			},
		},
	}
	// Center sits inside the area, 5 units from its right edge; a
	// radius-20 circle must be pulled in by its own radius, not the
	// small zone margin.
	x, _, adjusted := m.Resolve(295, 50, 20, false)
	if !adjusted {
		t.Fatal("expected adjustment for a circle overhanging the area edge")
	}
	if x != 280 {
		t.Errorf("expected x clamped to bounds.Right-r (280), got %v", x)
	}
}

func TestResolveNoAreasIsNoop(t *testing.T) {
	m := &Map{}
	x, y, adjusted := m.Resolve(10, 10, 1, false)
	if adjusted || x != 10 || y != 10 {
		t.Errorf("expected no-op on empty map, got (%v,%v,%v)", x, y, adjusted)
	}
}
