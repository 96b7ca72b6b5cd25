package sim

import "math"

// randDirection returns a unit vector at a uniform random angle
// [0, 2*pi).
func (s *Simulation) randDirection() (float64, float64) {
	angle := s.rng.Float64() * 2 * math.Pi
	return math.Cos(angle), math.Sin(angle)
}

// updateBehavior advances one enemy's variant-specific state for dt
// seconds. Position integration (pos += vel*dt) and map resolution
// happen afterward in the caller (Simulation.updateEnemies), uniformly
// across all variants.
func (s *Simulation) updateBehavior(e *Enemy, dt float64) {
	switch e.Variant {
	case Normal, CursedVariant, Wall, Slowing, Immune, Silence, Sniper:
		if e.VX == 0 && e.VY == 0 {
			dx, dy := s.randDirection()
			e.VX, e.VY = dx*e.Speed, dy*e.Speed
		}
		if e.Variant == Silence {
			s.updateSilenceAura(e, dt)
		}
		if e.Variant == Sniper {
			e.ShotCooldown -= dt
		}

	case Wavering:
		s.updateWavering(e, dt)

	case Expander:
		if e.VX == 0 && e.VY == 0 {
			dx, dy := s.randDirection()
			e.VX, e.VY = dx*e.Speed, dy*e.Speed
		}

	case SniperBullet:
		e.TimeLived += dt
		e.VX = math.Cos(e.Angle) * e.Speed
		e.VY = math.Sin(e.Angle) * e.Speed

	case Dasher:
		s.updateDasher(e, dt)
	}
}

func (s *Simulation) updateWavering(e *Enemy, dt float64) {
	e.WaveClock += dt * 2.5
	const interval = 0.5
	e.ChangeProgress = math.Mod(e.WaveClock, interval) / interval

	for e.WaveClock >= interval {
		e.WaveClock -= interval
		if e.IsSpeedIncreasing {
			e.Speed += 2
			if e.Speed >= e.MaxSpeed {
				e.Speed = e.MaxSpeed
				e.IsSpeedIncreasing = false
			}
		} else {
			e.Speed -= 2
			if e.Speed <= e.MinSpeed {
				e.Speed = e.MinSpeed
				e.IsSpeedIncreasing = true
			}
		}
	}

	if e.Speed < e.MinSpeed {
		e.Speed = e.MinSpeed
	}
	if e.Speed > e.MaxSpeed {
		e.Speed = e.MaxSpeed
	}

	if e.VX == 0 && e.VY == 0 {
		dx, dy := s.randDirection()
		e.VX, e.VY = dx, dy
	}
	length := math.Hypot(e.VX, e.VY)
	if length > 0 {
		e.VX = e.VX / length * e.Speed
		e.VY = e.VY / length * e.Speed
	}
}

// updateSilenceAura grows/shrinks a Silence enemy's aura toward its
// target with exponential smoothing, gated by a hysteresis timer that
// delays the grow transition after the last player exits.
func (s *Simulation) updateSilenceAura(e *Enemy, dt float64) {
	if e.MaxAuraSize == 0 {
		e.MaxAuraSize = SilenceBaselineAura
	}

	var target float64
	if e.playerInside {
		target = 0
		e.HysteresisTimer = 0.3
	} else {
		if e.HysteresisTimer > 0 {
			e.HysteresisTimer -= dt
			target = 0
		} else {
			target = e.MaxAuraSize
		}
	}

	rate := 0.85
	if e.playerInside {
		rate = 1.1
	}
	step := rate * dt * 280
	const smoothing = 0.1
	diff := target - e.AuraSize
	if math.Abs(diff) < step {
		e.AuraSize = target
	} else {
		e.AuraSize += diff * smoothing
	}
	if e.AuraSize < 0 {
		e.AuraSize = 0
	}

	// playerInside is recomputed each tick by the caller before behavior
	// runs; reset here so a tick with no players nearby defaults closed
	// until the caller marks it again.
	e.playerInside = false
}

// dasherIdleSpeedFactor scales DashFullSpeed down to the Dasher's
// idle-wander speed, matching the reference implementation's
// BASE_SPEED_FACTOR.
const dasherIdleSpeedFactor = 0.2

// updateDasher advances the idle/prepare/dash cycle. Heading persists
// across the whole cycle: a Dasher only changes direction via wall
// reflection (onMapReflect), never by re-picking a random direction
// mid-cycle. DashAngle is re-derived from the idle-phase velocity
// before each prepare/dash, so a reflection during Idle still carries
// through to the next dash.
func (s *Simulation) updateDasher(e *Enemy, dt float64) {
	e.PhaseTimer -= dt

	switch e.Phase {
	case DasherIdle:
		if e.PhaseTimer <= 0 {
			e.Phase = DasherPrepare
			e.PhaseTimer = dasherPrepareSeconds
			e.DashAngle = math.Atan2(e.VY, e.VX)
		}

	case DasherPrepare:
		progress := 1 - e.PhaseTimer/dasherPrepareSeconds
		e.Speed = e.DashFullSpeed * dasherIdleSpeedFactor * (1 - progress)
		e.VX = math.Cos(e.DashAngle) * e.Speed
		e.VY = math.Sin(e.DashAngle) * e.Speed
		if e.PhaseTimer <= 0 {
			e.Phase = DasherDash
			e.PhaseTimer = dasherDashSeconds
		}

	case DasherDash:
		progress := 1 - e.PhaseTimer/dasherDashSeconds
		e.Speed = e.DashFullSpeed * (1 - 0.5*progress)
		e.VX = math.Cos(e.DashAngle) * e.Speed
		e.VY = math.Sin(e.DashAngle) * e.Speed
		if e.PhaseTimer <= 0 {
			e.Phase = DasherIdle
			e.PhaseTimer = dasherIdleSeconds
			// Resume idle wander along the same heading rather than
			// zeroing velocity, which would force a fresh random pick.
			e.Speed = e.DashFullSpeed * dasherIdleSpeedFactor
			e.VX = math.Cos(e.DashAngle) * e.Speed
			e.VY = math.Sin(e.DashAngle) * e.Speed
		}
	}
}

// reflectVelocity reflects a velocity about a collision normal
// (v - 2(v.n)n). onMapReflect applies it to an enemy and also updates
// the heading state a variant persists across ticks (Dasher's
// DashAngle).
func reflectVelocity(vx, vy, nx, ny float64) (float64, float64) {
	dot := vx*nx + vy*ny
	return vx - 2*dot*nx, vy - 2*dot*ny
}

func (e *Enemy) onMapReflect(nx, ny float64) {
	e.VX, e.VY = reflectVelocity(e.VX, e.VY, nx, ny)
	if e.Variant == Dasher {
		e.DashAngle = math.Atan2(e.VY, e.VX)
	}
}
