// Package sim implements Eluding's authoritative simulation: clients,
// enemies, the fixed-tick update loop, the zone-scoped spawner, and the
// per-player status state machine. Everything here executes inside one
// cooperative event-loop thread per Simulation; see Simulation.Tick.
package sim

import (
	"net"
	"time"

	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/wire"
)

// DefaultPlayerSpeed is the nominal player movement speed in world
// units per second before slow/shift/zone modifiers are applied.
const DefaultPlayerSpeed = 660.0

// DefaultPlayerRadius is the player's hitbox radius when not expanded.
const DefaultPlayerRadius = 15.0

// ClientTimeout is the silent-input duration after which a client is
// removed from the session table.
const ClientTimeout = 10 * time.Second

// Client is one connected player: network identity plus the
// server-authoritative PlayerState the protocol broadcasts.
type Client struct {
	ID       uint32
	Addr     *net.UDPAddr
	LastSeen time.Time

	AreaIndex int

	// slide carries the previous frame's movement delta forward at
	// reduced magnitude, producing momentum on stop.
	SlideX, SlideY float64

	ExpanderHits int

	// per-tick transient flags, recomputed every tick — not part of the
	// status state machine.
	Silenced bool
	Slowed   bool

	// HasPrevZone/PrevZoneWasWarp record whether the client's previous
	// position was already inside an Exit/Teleport zone, so a teleport
	// only fires on the tick it first enters one.
	HasPrevZone     bool
	PrevZoneWasWarp bool

	Input      wire.PlayerInput
	HasInput   bool

	X, Y   float64
	Radius float64

	IsDowned    bool
	DownedTimer float64 // seconds remaining, broadcast as u8

	IsCursed    bool
	CursedTimer float64 // seconds remaining, broadcast as f32
}

// NewClient creates a client at the given spawn position.
func NewClient(id uint32, addr *net.UDPAddr, spawnX, spawnY float64, now time.Time) *Client {
	return &Client{
		ID:       id,
		Addr:     addr,
		LastSeen: now,
		X:        spawnX,
		Y:        spawnY,
		Radius:   DefaultPlayerRadius,
	}
}

// ToWire converts the client's broadcast-relevant state into the
// wire-format PlayerState.
func (c *Client) ToWire() wire.PlayerState {
	downedSeconds := uint8(0)
	if c.DownedTimer > 0 {
		downedSeconds = uint8(c.DownedTimer + 0.999) // round up to whole seconds
		if downedSeconds > 60 {
			downedSeconds = 60
		}
	}
	return wire.PlayerState{
		ID:          c.ID,
		X:           float32(c.X),
		Y:           float32(c.Y),
		Radius:      float32(c.Radius),
		IsDowned:    c.IsDowned,
		DownedTimer: downedSeconds,
		IsCursed:    c.IsCursed,
		CursedTimer: float32(c.CursedTimer),
	}
}

// Reset clears all status (downed/cursed/expander) and returns the
// client to the spawn point, matching the respawn/ResetPosition path.
func (c *Client) Reset(spawnX, spawnY float64) {
	c.X, c.Y = spawnX, spawnY
	c.Radius = DefaultPlayerRadius
	c.IsDowned = false
	c.DownedTimer = 0
	c.IsCursed = false
	c.CursedTimer = 0
	c.ExpanderHits = 0
	c.SlideX, c.SlideY = 0, 0
	c.HasInput = false
}
