package sim

import (
	"math"

	"github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/mapdata"
)

// maxWallPlacementIterations bounds the wall-enemy initial-position
// walk so a degenerate (zero-perimeter) zone can never spin forever.
const maxWallPlacementIterations = 1000

// reconcileOccupancy compares the current set of occupied areas
// against the previous tick's and spawns/despawns enemies for any area
// whose occupancy changed. Called from Simulation housekeeping every 5
// seconds (spec §4.4), and directly after any teleport that might move
// a client into a previously-empty area.
func (s *Simulation) reconcileOccupancy() {
	occupied := make(map[int]bool)
	for _, c := range s.clients {
		occupied[c.AreaIndex] = true
	}

	for areaIdx := range occupied {
		if !s.areasWithEnemies[areaIdx] {
			s.spawnEnemiesForArea(areaIdx)
			s.areasWithEnemies[areaIdx] = true
		}
	}
	for areaIdx := range s.areasWithEnemies {
		if !occupied[areaIdx] {
			s.despawnEnemiesInArea(areaIdx)
			delete(s.areasWithEnemies, areaIdx)
		}
	}
}

// spawnEnemiesForArea iterates an area's Active zones and spawns every
// configured Spawner's population.
func (s *Simulation) spawnEnemiesForArea(areaIdx int) {
	if areaIdx < 0 || areaIdx >= len(s.worldMap.Areas) {
		return
	}
	area := s.worldMap.Areas[areaIdx]

	for zi, zone := range area.Zones {
		if zone.Type != mapdata.Active {
			continue
		}
		for _, spawner := range zone.Spawners {
			s.spawnFromSpawner(areaIdx, zi, zone, spawner)
		}
	}
}

func (s *Simulation) spawnFromSpawner(areaIdx, zoneIdx int, zone mapdata.Zone, spawner mapdata.Spawner) {
	if len(spawner.Types) == 0 || spawner.Count <= 0 {
		return
	}

	area := s.worldMap.Areas[areaIdx]
	wallSide := s.rng.Intn(4)

	for i := 0; i < spawner.Count; i++ {
		if s.totalEnemyCount() >= s.limits.MaxTotalEnemies {
			return
		}
		if s.enemiesInArea(areaIdx) >= s.limits.MaxEnemiesPerArea {
			return
		}

		typeName := spawner.Types[s.rng.Intn(len(spawner.Types))]
		variant, ok := VariantFromName(typeName)
		if !ok {
			continue
		}

		speed := spawner.Speed
		if !spawner.HasFixedSpeed {
			speed = spawner.MinSpeed + s.rng.Float64()*(spawner.MaxSpeed-spawner.MinSpeed)
		}

		e := &Enemy{
			ID:        s.nextID(),
			Variant:   variant,
			AreaIndex: areaIdx,
			ZoneIndex: zoneIdx,
			Radius:    spawner.Radius,
			Speed:     speed,
		}

		switch variant {
		case Wall:
			e.Clockwise = spawner.Clockwise
			e.WallIndex = i
			x, y, ok := s.placeOnWall(area, zone, wallSide, i, spawner.Count)
			if !ok {
				x, y = area.X+zone.X+zone.Width/2, area.Y+zone.Y+zone.Height/2
			}
			e.X, e.Y = x, y

		case Wavering:
			e.MinSpeed = spawner.MinSpeed
			e.MaxSpeed = spawner.MaxSpeed
			if e.MinSpeed == 0 && e.MaxSpeed == 0 {
				e.MinSpeed = speed / 2
				e.MaxSpeed = speed * 2
			}
			e.X, e.Y = s.randomPointInZone(area, zone)

		case Silence:
			e.MaxAuraSize = SilenceBaselineAura
			e.AuraSize = SilenceBaselineAura
			e.X, e.Y = s.randomPointInZone(area, zone)

		case Sniper:
			e.ShotCooldown = s.rng.Float64() * (0.75 * SniperShotCooldown)
			e.X, e.Y = s.randomPointInZone(area, zone)

		case Dasher:
			e.DashFullSpeed = speed
			e.Phase = DasherIdle
			e.PhaseTimer = dasherIdleSeconds
			e.X, e.Y = s.randomPointInZone(area, zone)
			dx, dy := s.randDirection()
			e.Speed = speed * dasherIdleSpeedFactor
			e.VX, e.VY = dx*e.Speed, dy*e.Speed

		default:
			e.X, e.Y = s.randomPointInZone(area, zone)
		}

		s.enemies[e.ID] = e
	}
}

func (s *Simulation) randomPointInZone(area mapdata.Area, zone mapdata.Zone) (float64, float64) {
	x := area.X + zone.X + s.rng.Float64()*zone.Width
	y := area.Y + zone.Y + s.rng.Float64()*zone.Height
	return x, y
}

// placeOnWall walks wallIndex*perimeter/count around the zone
// rectangle's perimeter starting from the given side (0=top, 1=right,
// 2=bottom, 3=left), returning the point at that arc length. Bails out
// (ok=false) if it can't converge within maxWallPlacementIterations —
// only possible for a degenerate (zero-size) zone.
func (s *Simulation) placeOnWall(area mapdata.Area, zone mapdata.Zone, side, wallIndex, count int) (x, y float64, ok bool) {
	perimeter := 2 * (zone.Width + zone.Height)
	if perimeter <= 0 || count <= 0 {
		return 0, 0, false
	}

	arc := float64(wallIndex) * perimeter / float64(count)
	left, top := area.X+zone.X, area.Y+zone.Y
	right, bottom := left+zone.Width, top+zone.Height

	sides := [4]struct {
		length              float64
		startX, startY      float64
		dx, dy              float64
	}{
		{zone.Width, left, top, 1, 0},
		{zone.Height, right, top, 0, 1},
		{zone.Width, right, bottom, -1, 0},
		{zone.Height, left, bottom, 0, -1},
	}

	remaining := arc
	for i := 0; i < maxWallPlacementIterations; i++ {
		seg := sides[(side+i)%4]
		if remaining <= seg.length {
			return seg.startX + seg.dx*remaining, seg.startY + seg.dy*remaining, true
		}
		remaining -= seg.length
		if seg.length == 0 {
			continue
		}
	}
	return 0, 0, false
}

// despawnEnemiesInArea removes every enemy whose current position lies
// in the given area.
func (s *Simulation) despawnEnemiesInArea(areaIdx int) {
	for id, e := range s.enemies {
		if e.AreaIndex == areaIdx {
			delete(s.enemies, id)
		}
	}
}

func (s *Simulation) totalEnemyCount() int { return len(s.enemies) }

func (s *Simulation) enemiesInArea(areaIdx int) int {
	n := 0
	for _, e := range s.enemies {
		if e.AreaIndex == areaIdx {
			n++
		}
	}
	return n
}

func (s *Simulation) nextID() uint32 {
	s.nextEnemyID++
	return s.nextEnemyID
}

// spawnSniperBullet fires a bullet from a Sniper toward target,
// travelling at the sniper's speed times SniperBulletSpeedMultiplier.
func (s *Simulation) spawnSniperBullet(sniper *Enemy, targetX, targetY float64) {
	if s.totalEnemyCount() >= s.limits.MaxTotalEnemies {
		return
	}
	dx, dy := targetX-sniper.X, targetY-sniper.Y
	angle := 0.0
	if dx != 0 || dy != 0 {
		angle = math.Atan2(dy, dx)
	}
	bullet := &Enemy{
		ID:        s.nextID(),
		Variant:   SniperBullet,
		AreaIndex: sniper.AreaIndex,
		X:         sniper.X,
		Y:         sniper.Y,
		Radius:    sniper.Radius / 2,
		Speed:     sniper.Speed * SniperBulletSpeedMultiplier,
		Angle:     angle,
	}
	bullet.VX = math.Cos(angle) * bullet.Speed
	bullet.VY = math.Sin(angle) * bullet.Speed
	s.enemies[bullet.ID] = bullet
}
