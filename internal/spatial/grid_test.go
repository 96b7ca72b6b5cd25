package spatial

import "testing"

func TestInsertAndQueryRadiusFindsNearbyEntity(t *testing.T) {
	g := NewSpatialGrid(1000, 1000, 150, 16)

	g.Insert(0, 500, 500)
	g.Insert(1, 900, 900)

	got := g.QueryRadius(520, 500, 150)
	found := false
	for _, id := range got {
		if id == 0 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected entity 0 to be a candidate within radius")
	}
}

func TestQueryRadiusExcludesFarCell(t *testing.T) {
	g := NewSpatialGrid(1000, 1000, 150, 16)

	g.Insert(0, 10, 10)

	got := g.QueryRadius(900, 900, 150)
	for _, id := range got {
		if id == 0 {
			t.Fatal("entity in the opposite corner should not be a candidate")
		}
	}
}

func TestClearRemovesPreviousEntities(t *testing.T) {
	g := NewSpatialGrid(1000, 1000, 150, 16)

	g.Insert(0, 500, 500)
	g.Clear()
	g.Insert(1, 500, 500)

	got := g.QueryRadius(500, 500, 150)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only entity 1 after Clear, got %v", got)
	}
}

func TestInsertClampsOutOfBoundsPosition(t *testing.T) {
	g := NewSpatialGrid(1000, 1000, 150, 16)

	// A position beyond the world bounds (enemy pushed past an edge by
	// knockback, say) must still land in a valid cell rather than
	// panic on an out-of-range index.
	g.Insert(0, -50, 5000)

	got := g.QueryRadius(0, 1000, 150)
	found := false
	for _, id := range got {
		if id == 0 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected clamped entity to be queryable near the clamped corner")
	}
}

func TestQueryRadiusScratchBufferIsReusedNotLeaked(t *testing.T) {
	g := NewSpatialGrid(1000, 1000, 150, 16)
	g.Insert(0, 500, 500)
	g.Insert(1, 520, 500)

	first := g.QueryRadius(500, 500, 150)
	if len(first) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(first))
	}

	g.Clear()
	g.Insert(2, 10, 10)
	second := g.QueryRadius(10, 10, 150)
	if len(second) != 1 || second[0] != 2 {
		t.Fatalf("expected scratch buffer reset to just entity 2, got %v", second)
	}
}

func TestDimensionsMatchWorldBoundsAndCellSize(t *testing.T) {
	g := NewSpatialGrid(300, 150, 150, 16)
	cols, rows, cellSize := g.Dimensions()
	if cols != 2 {
		t.Errorf("expected 2 columns, got %d", cols)
	}
	if rows != 1 {
		t.Errorf("expected 1 row, got %d", rows)
	}
	if cellSize != 150 {
		t.Errorf("expected cell size 150, got %v", cellSize)
	}
}
