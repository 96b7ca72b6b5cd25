package sim

import "github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/wire"

const (
	downedDuration = 60.0
	cursedDuration = 1.5
)

// downClient transitions a client to Downed, clearing any curse. It is
// a no-op on an already-downed client (the downed timer is not
// refreshed), and curseClient is a no-op on a downed client, so a
// downed client is never also cursed.
func (s *Simulation) downClient(c *Client) {
	if c.IsDowned {
		return
	}
	c.IsCursed = false
	c.CursedTimer = 0
	c.IsDowned = true
	c.DownedTimer = downedDuration
	s.queueDowned(c, true)
}

// curseClient transitions a client to Cursed. No-op if already downed
// or already cursed (re-curse would otherwise reset the timer, which
// the state machine doesn't call for).
func (s *Simulation) curseClient(c *Client) {
	if c.IsDowned || c.IsCursed {
		return
	}
	c.IsCursed = true
	c.CursedTimer = cursedDuration
	s.queueCursed(c)
}

// reviveClient transitions a downed client back to Active. Reviving an
// already-active player is a no-op.
func (s *Simulation) reviveClient(c *Client) {
	if !c.IsDowned {
		return
	}
	c.IsDowned = false
	c.DownedTimer = 0
	c.Radius = DefaultPlayerRadius
	c.ExpanderHits = 0
	s.queueDowned(c, false)
}

// respawnClient is the timer-expiry revive path: returns the client to
// the map's spawn point in addition to clearing status.
func (s *Simulation) respawnClient(c *Client) {
	x, y := s.spawnX, s.spawnY
	c.Reset(x, y)
	s.queueDowned(c, false)
}

// updateStatusTimers counts down a client's downed/cursed timers by dt
// seconds of wall-clock delta and runs the transitions their expiry
// triggers.
func (s *Simulation) updateStatusTimers(c *Client, dt float64) {
	if c.IsDowned {
		prevSeconds := int(c.DownedTimer + 0.999)
		c.DownedTimer -= dt
		if c.DownedTimer <= 0 {
			c.DownedTimer = 0
			s.respawnClient(c)
		} else {
			newSeconds := int(c.DownedTimer + 0.999)
			if newSeconds != prevSeconds {
				s.queueDowned(c, true)
			}
		}
	}

	if c.IsCursed {
		c.CursedTimer -= dt
		if c.CursedTimer <= 0 {
			c.CursedTimer = 0
			c.IsCursed = false
			s.downClient(c)
		} else {
			s.queueCursed(c)
		}
	}
}

// clearCurseInSafeZone implements "Cursed -> Active on entering a Safe
// zone", called from the player integrator once per tick when the
// client's new position resolves into a Safe zone.
func (s *Simulation) clearCurseInSafeZone(c *Client) {
	if !c.IsCursed {
		return
	}
	c.IsCursed = false
	c.CursedTimer = 0
	s.queueCursed(c)
}

func (s *Simulation) queueDowned(c *Client, isDown bool) {
	seconds := uint8(0)
	if isDown {
		seconds = uint8(c.DownedTimer + 0.999)
	}
	s.pendingDowned = append(s.pendingDowned, wire.PlayerDowned{
		PlayerID:         c.ID,
		IsDown:           isDown,
		SecondsRemaining: seconds,
	})
}

func (s *Simulation) queueCursed(c *Client) {
	s.pendingCursed = append(s.pendingCursed, wire.PlayerCursed{
		PlayerID:         c.ID,
		IsCursed:         c.IsCursed,
		SecondsRemaining: float32(c.CursedTimer),
	})
}

// canRevive reports whether rescuer may revive target this tick: the
// rescuer must not be downed or silenced; the target must be downed
// and not silenced, checked both against its per-tick flag and (in
// case the per-tick aura scan hasn't reached it yet this tick) against
// every live Silence enemy's aura directly.
func (s *Simulation) canRevive(rescuer, target *Client) bool {
	if rescuer.IsDowned || rescuer.Silenced {
		return false
	}
	if !target.IsDowned || target.Silenced {
		return false
	}
	for _, e := range s.enemies {
		if e.Variant != Silence {
			continue
		}
		dx, dy := target.X-e.X, target.Y-e.Y
		r := e.AuraSize
		if dx*dx+dy*dy <= r*r {
			return false
		}
	}
	return true
}
