package sim

import (
	"fmt"
	"math"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/config"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/mapdata"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/spatial"
	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/wire"
)

// auraQueryRadius bounds every per-tick broad-phase query run against
// the per-area enemy grids: it must cover the largest radius any of
// Slowing's aura, Silence's aura, or a player-enemy contact check can
// reach, so the narrow-phase distance check never misses a candidate
// the grid dropped. SlowingAuraRadius and SilenceBaselineAura both sit
// at 150; player/enemy contact radii are an order of magnitude smaller.
const auraQueryRadius = 150.0

// housekeepingInterval is how often the client-timeout sweep and area
// occupancy reconciliation run, independent of tick rate.
const housekeepingInterval = 5 * time.Second

// Simulation is the single aggregate owning every client and enemy. It
// has unique mutable access to both tables during a tick; the UDP
// broadcaster only ever reads the immutable Snapshot produced after a
// tick completes (see Snapshot, and DESIGN.md on why this mirrors the
// teacher's SnapshotPool/ProduceSnapshot split rather than letting a
// reader touch the locked tables directly).
type Simulation struct {
	mu sync.Mutex

	worldMap *mapdata.Map
	limits   config.ResourceLimits
	rng      *rand.Rand
	eventLog *EventLog
	mapJSON  []byte

	clients      map[uint32]*Client
	enemies      map[uint32]*Enemy
	nextClientID uint32
	nextEnemyID  uint32

	areasWithEnemies map[int]bool

	// grids holds one broad-phase spatial grid per map area, rebuilt
	// from the live enemy table twice every tick (see Tick).
	// gridEnemies[a][i] is the enemy the grid's entity index i refers
	// to for area a (see rebuildGrids).
	grids         []*spatial.SpatialGrid
	gridEnemies   [][]*Enemy
	nearbyScratch []*Enemy

	spawnX, spawnY float64

	tick              uint64
	housekeepingAccum time.Duration

	pendingDowned    []wire.PlayerDowned
	pendingCursed    []wire.PlayerCursed
	pendingTeleports []wire.PlayerTeleport
}

// Snapshot is an immutable, fully-copied view of one tick's outcome,
// safe to read concurrently with the next tick's mutation of the
// simulation's live tables.
type Snapshot struct {
	Tick      uint64
	Players   []wire.PlayerState
	Enemies   []wire.EnemyState
	Downed    []wire.PlayerDowned
	Cursed    []wire.PlayerCursed
	Teleports []wire.PlayerTeleport
}

// New creates a Simulation over worldMap, seeded deterministically so
// a fixed seed reproduces a fixed tick sequence (see SPEC_FULL.md's RNG
// policy note).
func New(worldMap *mapdata.Map, limits config.ResourceLimits, seed int64) *Simulation {
	s := &Simulation{
		worldMap:         worldMap,
		limits:           limits,
		rng:              rand.New(rand.NewSource(seed)),
		eventLog:         NewEventLog(),
		clients:          make(map[uint32]*Client),
		enemies:          make(map[uint32]*Enemy),
		areasWithEnemies: make(map[int]bool),
	}
	if worldMap != nil {
		if x, y, ok := worldMap.FirstSafeZoneCenter(); ok {
			s.spawnX, s.spawnY = x, y
		}
		s.grids = make([]*spatial.SpatialGrid, len(worldMap.Areas))
		s.gridEnemies = make([][]*Enemy, len(worldMap.Areas))
		maxPerArea := limits.MaxEnemiesPerArea + limits.MaxClients
		for i, a := range worldMap.Areas {
			s.grids[i] = spatial.NewSpatialGrid(a.Width, a.Height, auraQueryRadius, maxPerArea)
		}
	}
	return s
}

// rebuildGrids repopulates every area's broad-phase grid from the
// current enemy table. Called once at the start of each tick so every
// step within the tick (aura checks, contact resolution) queries a
// consistent snapshot of enemy positions.
func (s *Simulation) rebuildGrids() {
	for i := range s.grids {
		s.grids[i].Clear()
		s.gridEnemies[i] = s.gridEnemies[i][:0]
	}
	for _, e := range s.enemies {
		if e.AreaIndex < 0 || e.AreaIndex >= len(s.grids) {
			continue
		}
		area := s.worldMap.Areas[e.AreaIndex]
		idx := uint32(len(s.gridEnemies[e.AreaIndex]))
		s.gridEnemies[e.AreaIndex] = append(s.gridEnemies[e.AreaIndex], e)
		s.grids[e.AreaIndex].Insert(idx, e.X-area.X, e.Y-area.Y)
	}
}

// nearbyEnemies returns every enemy the broad-phase grid places within
// auraQueryRadius of (x,y) in the given area. The caller still must
// run its own precise distance/radius check (narrow phase).
func (s *Simulation) nearbyEnemies(areaIndex int, x, y float64) []*Enemy {
	if areaIndex < 0 || areaIndex >= len(s.grids) {
		return nil
	}
	area := s.worldMap.Areas[areaIndex]
	candidates := s.grids[areaIndex].QueryRadius(x-area.X, y-area.Y, auraQueryRadius)
	out := s.nearbyScratch[:0]
	for _, idx := range candidates {
		out = append(out, s.gridEnemies[areaIndex][idx])
	}
	s.nearbyScratch = out
	return out
}

// EventLog exposes the simulation's event log for startup/shutdown
// wiring by the caller (cmd/server).
func (s *Simulation) EventLog() *EventLog { return s.eventLog }

// ClientAddrs returns a snapshot of every connected client's UDP
// address keyed by ID, for the transport's broadcast step (step 8).
func (s *Simulation) ClientAddrs() map[uint32]*net.UDPAddr {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint32]*net.UDPAddr, len(s.clients))
	for id, c := range s.clients {
		out[id] = c.Addr
	}
	return out
}

// MapJSON returns the raw map bytes a newly connected client should
// receive before its first GameState, or nil if none was set.
func (s *Simulation) MapJSON() []byte { return s.mapJSON }

// SetMapJSON records the raw map bytes served by the MapData message.
func (s *Simulation) SetMapJSON(data []byte) { s.mapJSON = data }

// PlayerCount, EnemyCount and TickNumber satisfy internal/api's
// SimStats interface for the debug server's /stats endpoint and
// Prometheus gauges.

func (s *Simulation) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Simulation) EnemyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.enemies)
}

func (s *Simulation) TickNumber() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// --- Session management (driven by the transport's UDP drain step) ---

// Connect admits a new client at the map's spawn point. Returns an
// error (and admits nobody) if the server is already at MaxClients.
func (s *Simulation) Connect(addr *net.UDPAddr, now time.Time) (*Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clients) >= s.limits.MaxClients {
		return nil, fmt.Errorf("sim: at capacity (%d clients)", s.limits.MaxClients)
	}

	s.nextClientID++
	id := s.nextClientID
	c := NewClient(id, addr, s.spawnX, s.spawnY, now)
	c.AreaIndex = s.areaAtLocked(c.X, c.Y)
	s.clients[id] = c

	s.eventLog.EmitSimple(EventPlayerConnect, s.tick, clientKey(id), nil)
	return c, nil
}

// Disconnect removes a client immediately.
func (s *Simulation) Disconnect(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[id]; !ok {
		return
	}
	delete(s.clients, id)
	s.eventLog.EmitSimple(EventPlayerDisconnect, s.tick, clientKey(id), nil)
}

// HandleInput overwrites a client's latest-wins input slot.
func (s *Simulation) HandleInput(id uint32, in wire.PlayerInput, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return
	}
	c.Input = in
	c.HasInput = true
	c.LastSeen = now
}

// ResetPosition snaps a player back to the spawn point and clears all
// status, per the ResetPosition message.
func (s *Simulation) ResetPosition(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return
	}
	c.Reset(s.spawnX, s.spawnY)
	c.AreaIndex = s.areaAtLocked(c.X, c.Y)
}

// Touch records a liveness probe (Ping) from id without altering input.
func (s *Simulation) Touch(id uint32, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		c.LastSeen = now
	}
}

func (s *Simulation) areaAtLocked(x, y float64) int {
	if s.worldMap == nil {
		return -1
	}
	idx := s.worldMap.AreaAt(x, y)
	if idx < 0 {
		idx = s.worldMap.NearestArea(x, y)
	}
	return idx
}

func clientKey(id uint32) string { return fmt.Sprintf("%d", id) }

// --- Tick ---

// Tick runs one simulation step of wall-clock duration dt seconds and
// returns the immutable snapshot to broadcast. The caller is
// responsible for step 1 (draining UDP into Connect/Disconnect/
// HandleInput/ResetPosition calls) before calling Tick; steps 2-8 of
// spec.md §4.4 are implemented here in order.
func (s *Simulation) Tick(dt float64) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	s.pendingDowned = s.pendingDowned[:0]
	s.pendingCursed = s.pendingCursed[:0]
	s.pendingTeleports = s.pendingTeleports[:0]

	s.rebuildGrids()
	s.integratePlayers(dt)
	s.updateEnemies(dt)
	s.removeDeadEnemies()
	s.rebuildGrids() // enemy positions moved since the first build
	s.resolvePlayerEnemyCollisions()
	s.fireSnipers(dt)
	s.advanceStatusTimers(dt)

	s.housekeepingAccum += time.Duration(dt * float64(time.Second))
	if s.housekeepingAccum >= housekeepingInterval {
		s.housekeepingAccum = 0
		s.sweepTimeouts(time.Now())
		s.reconcileOccupancy()
	}

	return s.publishSnapshot()
}

func (s *Simulation) publishSnapshot() Snapshot {
	snap := Snapshot{
		Tick:      s.tick,
		Players:   make([]wire.PlayerState, 0, len(s.clients)),
		Enemies:   make([]wire.EnemyState, 0, len(s.enemies)),
		Downed:    append([]wire.PlayerDowned(nil), s.pendingDowned...),
		Cursed:    append([]wire.PlayerCursed(nil), s.pendingCursed...),
		Teleports: append([]wire.PlayerTeleport(nil), s.pendingTeleports...),
	}
	for _, c := range s.clients {
		snap.Players = append(snap.Players, c.ToWire())
	}
	for _, e := range s.enemies {
		snap.Enemies = append(snap.Enemies, e.ToWire())
	}
	return snap
}

func (s *Simulation) sweepTimeouts(now time.Time) {
	for id, c := range s.clients {
		if now.Sub(c.LastSeen) > ClientTimeout {
			delete(s.clients, id)
			s.eventLog.EmitSimple(EventPlayerDisconnect, s.tick, clientKey(id), "timeout")
		}
	}
}

// --- Player integration (step 2) ---

func (s *Simulation) integratePlayers(dt float64) {
	for _, c := range s.clients {
		if c.IsDowned {
			continue
		}

		c.Silenced = false
		c.Slowed = false
		for _, e := range s.nearbyEnemies(c.AreaIndex, c.X, c.Y) {
			switch e.Variant {
			case Slowing:
				if withinRadius(c.X, c.Y, e.X, e.Y, SlowingAuraRadius) {
					c.Slowed = true
				}
			case Silence:
				if withinRadius(c.X, c.Y, e.X, e.Y, e.AuraSize) {
					c.Silenced = true
					e.playerInside = true
				}
			}
		}

		speed := DefaultPlayerSpeed
		if c.Slowed {
			speed *= 0.7
		}
		if c.Input.Shift() {
			speed *= 0.5
		}

		zone, zoneOK := s.zoneAt(c.AreaIndex, c.X, c.Y)
		if zoneOK && zone.Type == mapdata.Safe {
			if zone.HasMinimumSpeed && speed < zone.MinimumSpeed {
				speed = zone.MinimumSpeed
			}
			s.clearCurseInSafeZone(c)
			if c.ExpanderHits > 0 {
				c.Radius = DefaultPlayerRadius
				c.ExpanderHits = 0
			}
		}

		friction := 1.0
		if s.worldMap != nil {
			friction = s.worldMap.Friction
		}
		if friction == 0 {
			friction = 1
		}

		dx, dy := s.movementDelta(c, speed, dt, friction)

		dx += c.SlideX * 0.25
		dy += c.SlideY * 0.25
		if math.Abs(dx) < 1e-6 {
			dx = 0
		}
		if math.Abs(dy) < 1e-6 {
			dy = 0
		}
		c.SlideX, c.SlideY = dx, dy

		newX, newY := c.X+dx, c.Y+dy
		rx, ry, _ := s.worldMap.Resolve(newX, newY, c.Radius, false)
		c.X, c.Y = rx, ry

		s.applySafeBoundaryStickiness(c)
		s.checkZoneTransition(c)
		s.checkRevives(c)
	}
}

func withinRadius(x1, y1, x2, y2, r float64) bool {
	dx, dy := x1-x2, y1-y2
	return dx*dx+dy*dy <= r*r
}

// movementDelta computes the per-tick position delta from whichever
// input mode the client's most recent PlayerInput selects.
func (s *Simulation) movementDelta(c *Client, speed, dt, friction float64) (float64, float64) {
	base := speed * dt * friction
	in := c.Input

	if in.MouseCtrl() || in.JoyCtrl() {
		dist := float64(in.Distance)
		if dist > 1 {
			dist = 1
		}
		if dist < 0 {
			dist = 0
		}
		return float64(in.DirX) * base * dist, float64(in.DirY) * base * dist
	}

	var dx, dy float64
	if in.MoveLeft() {
		dx -= 1
	}
	if in.MoveRight() {
		dx += 1
	}
	if in.MoveUp() {
		dy -= 1
	}
	if in.MoveDown() {
		dy += 1
	}
	if dx != 0 && dy != 0 {
		// Deliberate divergence from unit-vector normalization: a
		// diagonal keyboard input moves at sqrt(2) times the cardinal
		// speed, not the same speed. See DESIGN.md.
		const diagonalBoost = 1.4142135623730951
		dx *= diagonalBoost
		dy *= diagonalBoost
	}
	return dx * base, dy * base
}

// applySafeBoundaryStickiness implements step 4's "sticky safe-zone
// boundary": while standing in a Safe/Exit/Teleport zone, a player
// still overlapping an Active zone in the same area is pushed back out
// of it, with velocity reflected off the Active zone's edge.
func (s *Simulation) applySafeBoundaryStickiness(c *Client) {
	zone, ok := s.zoneAt(c.AreaIndex, c.X, c.Y)
	if !ok {
		return
	}
	if zone.Type != mapdata.Safe && zone.Type != mapdata.Exit && zone.Type != mapdata.Teleport {
		return
	}
	if c.AreaIndex < 0 || c.AreaIndex >= len(s.worldMap.Areas) {
		return
	}
	area := s.worldMap.Areas[c.AreaIndex]
	for _, z := range area.Zones {
		if z.Type != mapdata.Active {
			continue
		}
		box := z.WorldAABB(area.X, area.Y)
		cx, cy := box.ClampPoint(c.X, c.Y)
		dx, dy := c.X-cx, c.Y-cy
		distSq := dx*dx + dy*dy
		if distSq >= c.Radius*c.Radius {
			continue
		}
		dist := math.Sqrt(distSq)
		var nx, ny float64
		if dist > 0 {
			nx, ny = dx/dist, dy/dist
		} else {
			nx, ny = 0, -1
		}
		pushOut := c.Radius * 1.1
		c.X = cx + nx*pushOut
		c.Y = cy + ny*pushOut
		c.SlideX, c.SlideY = reflectVelocity(c.SlideX, c.SlideY, nx, ny)
	}
}

// checkZoneTransition handles Exit/Teleport zone entry: apply the
// zone's translate vector, push the player clear by 1.1*r along each
// non-zero axis of the translate (+x if both are zero), clear momentum,
// and queue a Teleport notice.
func (s *Simulation) checkZoneTransition(c *Client) {
	zone, ok := s.zoneAt(c.AreaIndex, c.X, c.Y)
	if !ok {
		return
	}
	isWarp := zone.Type == mapdata.Exit || zone.Type == mapdata.Teleport
	wasWarp := c.HasPrevZone && c.PrevZoneWasWarp
	c.HasPrevZone = true
	c.PrevZoneWasWarp = isWarp

	if !isWarp || wasWarp || !zone.HasTranslate {
		return
	}

	c.X += zone.Translate.X
	c.Y += zone.Translate.Y

	offset := c.Radius * 1.1
	if zone.Translate.X != 0 {
		c.X += math.Copysign(offset, zone.Translate.X)
	}
	if zone.Translate.Y != 0 {
		c.Y += math.Copysign(offset, zone.Translate.Y)
	}
	if zone.Translate.X == 0 && zone.Translate.Y == 0 {
		c.X += offset
	}

	c.SlideX, c.SlideY = 0, 0
	c.HasInput = false
	c.Input = wire.PlayerInput{}

	newArea := s.areaAtLocked(c.X, c.Y)
	if newArea != c.AreaIndex {
		c.AreaIndex = newArea
		s.reconcileOccupancy()
	}

	s.pendingTeleports = append(s.pendingTeleports, wire.PlayerTeleport{
		PlayerID: c.ID,
		X:        float32(c.X),
		Y:        float32(c.Y),
	})
	s.eventLog.EmitSimple(EventPlayerTeleported, s.tick, clientKey(c.ID), nil)
}

// checkRevives scans every other downed client and revives each one
// c's circle overlaps, if eligible.
func (s *Simulation) checkRevives(c *Client) {
	for _, other := range s.clients {
		if other.ID == c.ID || !other.IsDowned {
			continue
		}
		if !s.canRevive(c, other) {
			continue
		}
		if withinRadius(c.X, c.Y, other.X, other.Y, c.Radius+other.Radius) {
			s.reviveClient(other)
		}
	}
}

func (s *Simulation) zoneAt(areaIdx int, x, y float64) (mapdata.Zone, bool) {
	if s.worldMap == nil || areaIdx < 0 || areaIdx >= len(s.worldMap.Areas) {
		return mapdata.Zone{}, false
	}
	area := s.worldMap.Areas[areaIdx]
	zi := area.ZoneAt(x, y)
	if zi < 0 {
		return mapdata.Zone{}, false
	}
	return area.Zones[zi], true
}

// --- Enemy update (step 3) ---

func (s *Simulation) updateEnemies(dt float64) {
	for _, e := range s.enemies {
		s.updateBehavior(e, dt)

		e.X += e.VX * dt
		e.Y += e.VY * dt

		rx, ry, adjusted := s.worldMap.Resolve(e.X, e.Y, e.Radius, true)
		if adjusted {
			nx, ny := 0.0, 0.0
			if rx != e.X || ry != e.Y {
				dx, dy := rx-e.X, ry-e.Y
				if d := math.Hypot(dx, dy); d > 0 {
					nx, ny = dx/d, dy/d
				}
			}
			e.X, e.Y = rx, ry
			if nx != 0 || ny != 0 {
				e.onMapReflect(nx, ny)
			}
			if e.Variant == SniperBullet {
				// Map contact ends a bullet's flight; removeDeadEnemies
				// removes it as expired.
				e.TimeLived = SniperBulletLifetime
			}
		}

		e.UpdateHarmless(dt)
		e.AreaIndex = s.areaAtLocked(e.X, e.Y)
	}
}

// --- Enemy removal (step 4) ---

func (s *Simulation) removeDeadEnemies() {
	for id, e := range s.enemies {
		if s.shouldRemoveEnemy(e) {
			delete(s.enemies, id)
		}
	}
}

func (s *Simulation) shouldRemoveEnemy(e *Enemy) bool {
	if e.Variant == SniperBullet && e.TimeLived >= SniperBulletLifetime {
		return true
	}

	zone, ok := s.zoneAt(e.AreaIndex, e.X, e.Y)
	if !ok {
		return true
	}
	if zone.Type == mapdata.Blocked {
		return true
	}
	if e.Variant == SniperBullet && zone.Type == mapdata.Safe {
		return true
	}
	return false
}

// --- Player-enemy collision (step 5) ---

func (s *Simulation) resolvePlayerEnemyCollisions() {
	for _, c := range s.clients {
		if c.IsDowned {
			continue
		}
		for _, e := range s.nearbyEnemies(c.AreaIndex, c.X, c.Y) {
			if e.IsHarmless {
				continue
			}
			if !withinRadius(c.X, c.Y, e.X, e.Y, c.Radius+e.Radius) {
				continue
			}
			s.onEnemyContact(e, c)
			break
		}
	}
}

// --- Sniper firing (step 6) ---

func (s *Simulation) fireSnipers(dt float64) {
	for _, e := range s.enemies {
		if e.Variant != Sniper {
			continue
		}
		if e.ShotCooldown > 0 {
			continue
		}
		target := s.findSniperTarget(e)
		if target == nil {
			e.ShotCooldown = SniperShotCooldown
			continue
		}
		s.spawnSniperBullet(e, target.X, target.Y)
		e.ShotCooldown = SniperShotCooldown
	}
}

func (s *Simulation) findSniperTarget(sniper *Enemy) *Client {
	zone, ok := s.zoneAt(sniper.AreaIndex, sniper.X, sniper.Y)
	if !ok || zone.Type != mapdata.Active {
		return nil
	}

	var best *Client
	bestDistSq := math.Inf(1)
	for _, c := range s.clients {
		if c.AreaIndex != sniper.AreaIndex || c.IsDowned {
			continue
		}
		cZone, ok := s.zoneAt(c.AreaIndex, c.X, c.Y)
		if ok && cZone.Type == mapdata.Safe {
			continue
		}
		dx, dy := c.X-sniper.X, c.Y-sniper.Y
		distSq := dx*dx + dy*dy
		if distSq > SniperRange*SniperRange {
			continue
		}
		if distSq < bestDistSq {
			bestDistSq = distSq
			best = c
		}
	}
	return best
}

// --- Status timers (step 7) ---

func (s *Simulation) advanceStatusTimers(dt float64) {
	for _, c := range s.clients {
		s.updateStatusTimers(c, dt)
	}
}
