package sim

import (
	"math"
	"testing"

	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/config"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/mapdata"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/wire"
)

func testWorld() *mapdata.Map {
	return &mapdata.Map{
		Name:     "sim-test",
		Friction: 1,
		Areas: []mapdata.Area{
			{
				X: 0, Y: 0, Width: 1000, Height: 1000,
				Zones: []mapdata.Zone{
					{Type: mapdata.Safe, X: 0, Y: 0, Width: 200, Height: 200},
					{Type: mapdata.Active, X: 200, Y: 0, Width: 800, Height: 1000},
				},
			},
		},
	}
}

func newTestSim() *Simulation {
	return New(testWorld(), config.DefaultLimits(), 1)
}

func TestStatusExclusivityDownImpliesNotCursed(t *testing.T) {
	s := newTestSim()
	c := &Client{ID: 1, Radius: DefaultPlayerRadius}
	s.clients[1] = c

	s.curseClient(c)
	if !c.IsCursed {
		t.Fatal("expected curse to apply to an active client")
	}
	s.downClient(c)
	if c.IsCursed {
		t.Error("expected downing to clear cursed status")
	}
	if !c.IsDowned {
		t.Error("expected client to be downed")
	}

	// Cursing an already-downed client must be a no-op.
	s.curseClient(c)
	if c.IsCursed {
		t.Error("expected curse on a downed client to be a no-op")
	}
}

func TestReviveIdempotence(t *testing.T) {
	s := newTestSim()
	c := &Client{ID: 2, Radius: DefaultPlayerRadius}
	s.clients[2] = c

	// Reviving an active (not downed) client is a no-op.
	before := len(s.pendingDowned)
	s.reviveClient(c)
	if len(s.pendingDowned) != before {
		t.Error("expected revive of an active client to queue no notification")
	}
}

func TestHarmlessMonotonicity(t *testing.T) {
	e := &Enemy{}
	e.MakeHarmless(1.0)

	last := e.HarmlessProgress()
	if last != 1.0 {
		t.Fatalf("expected initial progress 1.0, got %v", last)
	}
	for i := 0; i < 20; i++ {
		e.UpdateHarmless(0.05)
		cur := e.HarmlessProgress()
		if cur > last {
			t.Fatalf("harmlessProgress increased: %v -> %v", last, cur)
		}
		last = cur
	}
	if e.IsHarmless {
		t.Error("expected harmless flag cleared after duration elapses")
	}
	if e.HarmlessProgress() != 0 {
		t.Errorf("expected progress 0 once cleared, got %v", e.HarmlessProgress())
	}
}

func TestWaveringSpeedStaysInBounds(t *testing.T) {
	s := newTestSim()
	e := &Enemy{Variant: Wavering, MinSpeed: 3, MaxSpeed: 15, Speed: 3}

	for i := 0; i < 2400; i++ { // 10s at 240Hz
		s.updateBehavior(e, 1.0/240.0)
		if e.Speed < e.MinSpeed || e.Speed > e.MaxSpeed {
			t.Fatalf("speed %v out of bounds [%v,%v] at step %d", e.Speed, e.MinSpeed, e.MaxSpeed, i)
		}
	}
}

func TestBulletRemovedAfterLifetime(t *testing.T) {
	s := newTestSim()
	bullet := &Enemy{
		ID: 1, Variant: SniperBullet, AreaIndex: 0,
		X: 500, Y: 500, Radius: 5, Speed: 100,
	}
	s.enemies[bullet.ID] = bullet

	bullet.TimeLived = SniperBulletLifetime + 0.01
	s.removeDeadEnemies()
	if _, exists := s.enemies[bullet.ID]; exists {
		t.Error("expected bullet past lifetime to be removed")
	}
}

func TestBulletRemovedInSafeZone(t *testing.T) {
	s := newTestSim()
	// Place a bullet inside the Safe zone, which is a removal
	// condition for bullets (spec: "bullets entering a Safe zone").
	bullet := &Enemy{
		ID: 2, Variant: SniperBullet, AreaIndex: 0,
		X: 50, Y: 50, Radius: 5, Speed: 100,
	}
	s.enemies[bullet.ID] = bullet

	s.removeDeadEnemies()
	if _, exists := s.enemies[bullet.ID]; exists {
		t.Error("expected bullet in a Safe zone to be removed")
	}
}

func TestExpanderStackDownsOnFifthHit(t *testing.T) {
	s := newTestSim()
	c := &Client{ID: 3, Radius: DefaultPlayerRadius}
	s.clients[3] = c
	e := &Enemy{Variant: Expander}

	for i := 0; i < 4; i++ {
		s.onEnemyContact(e, c)
		if c.IsDowned {
			t.Fatalf("expected no down before the 5th hit, got one at hit %d", i+1)
		}
	}
	wantRadius := DefaultPlayerRadius + 4*5
	if c.Radius != wantRadius {
		t.Errorf("expected radius %v after 4 hits, got %v", wantRadius, c.Radius)
	}

	s.onEnemyContact(e, c)
	if !c.IsDowned {
		t.Error("expected 5th contact to down the player")
	}
	if c.ExpanderHits != 0 {
		t.Errorf("expected hit counter reset on down, got %d", c.ExpanderHits)
	}
}

func TestSlowingContactDownsPlayer(t *testing.T) {
	// Pins the deliberate divergence documented in DESIGN.md: Slowing
	// contact downs the player like Normal, in addition to its aura
	// slow effect, rather than being a pure slow-only enemy.
	s := newTestSim()
	c := &Client{ID: 4, Radius: DefaultPlayerRadius}
	s.clients[4] = c
	e := &Enemy{Variant: Slowing}

	s.onEnemyContact(e, c)
	if !c.IsDowned {
		t.Error("expected Slowing contact to down the player")
	}
}

func TestKeyboardDiagonalAppliesSqrt2Boost(t *testing.T) {
	// Pins the deliberate divergence documented in DESIGN.md: diagonal
	// keyboard movement is faster than cardinal, not normalized to it.
	s := newTestSim()
	diagonal := &Client{Input: wire.PlayerInput{Flags: wire.InputMoveUp | wire.InputMoveRight}}
	cardinal := &Client{Input: wire.PlayerInput{Flags: wire.InputMoveRight}}

	dx, dy := s.movementDelta(diagonal, 100, 1.0, 1.0)
	cardinalDx, cardinalDy := s.movementDelta(cardinal, 100, 1.0, 1.0)

	if dx <= cardinalDx {
		t.Errorf("expected diagonal dx (%v) to exceed cardinal dx (%v)", dx, cardinalDx)
	}
	if cardinalDy != 0 {
		t.Errorf("expected cardinal right-only dy to be 0, got %v", cardinalDy)
	}
	if dy >= 0 {
		t.Errorf("expected negative dy for up+right, got %v", dy)
	}
}

func TestDasherHeadingPersistsAcrossCycle(t *testing.T) {
	// The reference implementation only changes a Dasher's heading via
	// wall reflection, never by re-picking a random direction between
	// idle/prepare/dash phases.
	s := newTestSim()
	e := &Enemy{Variant: Dasher, DashFullSpeed: 300, Phase: DasherIdle, PhaseTimer: dasherIdleSeconds}
	e.VX, e.VY = 300*dasherIdleSpeedFactor, 0 // heading: due east

	startAngle := math.Atan2(e.VY, e.VX)

	// Drive through idle -> prepare -> dash -> back to idle.
	totalSeconds := dasherIdleSeconds + dasherPrepareSeconds + dasherDashSeconds + 0.1
	steps := int(totalSeconds * 240)
	for i := 0; i < steps; i++ {
		s.updateBehavior(e, 1.0/240.0)
	}

	if e.Phase != DasherIdle {
		t.Fatalf("expected a full cycle to return to DasherIdle, got phase %v", e.Phase)
	}
	if e.VX == 0 && e.VY == 0 {
		t.Fatal("expected idle velocity to resume, not stay zeroed")
	}
	endAngle := math.Atan2(e.VY, e.VX)
	if math.Abs(endAngle-startAngle) > 0.01 {
		t.Errorf("expected heading to persist across a full cycle, started at %v, ended at %v", startAngle, endAngle)
	}
}
