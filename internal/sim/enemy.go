package sim

import "github.com/e3zYyr7QdaQMi0bvZLhTw/Eluding/internal/wire"

// Variant tags an Enemy's behavior and contact effect. Dispatch is
// always by switch over this tag — never by downcast.
type Variant uint8

const (
	Normal Variant = iota
	CursedVariant
	Wall
	Slowing
	Immune
	Wavering
	Expander
	Silence
	Sniper
	SniperBullet
	Dasher
)

func (v Variant) String() string {
	switch v {
	case Normal:
		return "normal"
	case CursedVariant:
		return "cursed"
	case Wall:
		return "wall"
	case Slowing:
		return "slowing"
	case Immune:
		return "immune"
	case Wavering:
		return "wavering"
	case Expander:
		return "expander"
	case Silence:
		return "silence"
	case Sniper:
		return "sniper"
	case SniperBullet:
		return "sniper_bullet"
	case Dasher:
		return "dasher"
	default:
		return "unknown"
	}
}

// VariantFromName parses a spawner's variant-name string.
func VariantFromName(name string) (Variant, bool) {
	switch name {
	case "normal":
		return Normal, true
	case "cursed":
		return CursedVariant, true
	case "wall":
		return Wall, true
	case "slowing":
		return Slowing, true
	case "immune":
		return Immune, true
	case "wavering":
		return Wavering, true
	case "expander":
		return Expander, true
	case "silence":
		return Silence, true
	case "sniper":
		return Sniper, true
	case "sniper_bullet":
		return SniperBullet, true
	case "dasher":
		return Dasher, true
	default:
		return 0, false
	}
}

// SlowingAuraRadius is the world-unit radius of a Slowing enemy's slow
// field.
const SlowingAuraRadius = 150.0

// SilenceBaselineAura is a Silence enemy's resting aura size before any
// shrink/grow dynamics are applied.
const SilenceBaselineAura = 150.0

// SniperBulletLifetime is the maximum seconds a SniperBullet may exist.
const SniperBulletLifetime = 3.0

// SniperShotCooldown is the base interval between a Sniper's shots.
const SniperShotCooldown = 3.0

// SniperRange is the maximum world-unit distance a Sniper will
// acquire a target at.
const SniperRange = 600.0

// SniperBulletSpeedMultiplier is applied to the firing Sniper's speed
// to get the bullet's travel speed. See DESIGN.md for why this is
// 2.5, not the unused 2.0 that appears in the enemy's constructor
// path in the reference implementation.
const SniperBulletSpeedMultiplier = 2.5

const (
	dasherIdleSeconds    = 0.75
	dasherPrepareSeconds = 0.75
	dasherDashSeconds    = 3.0
)

// DasherPhase is the current stage of a Dasher's idle/prepare/dash
// cycle.
type DasherPhase uint8

const (
	DasherIdle DasherPhase = iota
	DasherPrepare
	DasherDash
)

// Enemy is a tagged struct: one shared base plus per-variant optional
// fields, dispatched by switch in behavior.go — never downcast.
type Enemy struct {
	ID        uint32
	Variant   Variant
	AreaIndex int
	ZoneIndex int

	X, Y   float64
	VX, VY float64
	Radius float64
	Speed  float64

	IsHarmless        bool
	HarmlessRemaining float64
	HarmlessDuration  float64

	// Wall
	WallIndex int
	Clockwise bool

	// Wavering
	MinSpeed          float64
	MaxSpeed          float64
	WaveClock         float64
	ChangeProgress    float64
	IsSpeedIncreasing bool

	// Silence
	AuraSize        float64
	MaxAuraSize     float64
	HysteresisTimer float64
	playerInside    bool

	// Sniper
	ShotCooldown float64

	// SniperBullet
	TimeLived float64
	Angle     float64

	// Dasher
	Phase        DasherPhase
	PhaseTimer   float64
	DashAngle    float64
	DashFullSpeed float64
}

// MakeHarmless marks the enemy harmless for duration seconds.
func (e *Enemy) MakeHarmless(duration float64) {
	e.IsHarmless = true
	e.HarmlessDuration = duration
	e.HarmlessRemaining = duration
}

// UpdateHarmless counts down the harmless timer; harmlessProgress is
// non-increasing while the flag holds and is exactly 0 once cleared.
func (e *Enemy) UpdateHarmless(dt float64) {
	if !e.IsHarmless {
		return
	}
	e.HarmlessRemaining -= dt
	if e.HarmlessRemaining <= 0 {
		e.HarmlessRemaining = 0
		e.IsHarmless = false
	}
}

// HarmlessProgress returns remaining/duration in [0,1], used by the
// wire encoder's harmlessProgress field.
func (e *Enemy) HarmlessProgress() float64 {
	if !e.IsHarmless || e.HarmlessDuration <= 0 {
		return 0
	}
	return e.HarmlessRemaining / e.HarmlessDuration
}

// ToWire converts the enemy's broadcast-relevant state into the
// wire-format EnemyState, including the optional tail fields each
// variant uses plus any earlier tail fields the positional layout needs
// in front of them.
func (e *Enemy) ToWire() wire.EnemyState {
	s := wire.EnemyState{
		ID:      e.ID,
		X:       float32(e.X),
		Y:       float32(e.Y),
		Radius:  float32(e.Radius),
		Variant: uint8(e.Variant),
	}

	switch e.Variant {
	case Wavering:
		s.HasSpeed = true
		s.Speed = float32(e.Speed)
		s.MinSpeed = float32(e.MinSpeed)
		s.MaxSpeed = float32(e.MaxSpeed)
		s.HasChangeProgress = true
		s.ChangeProgress = float32(e.ChangeProgress)
		s.IsSpeedIncreasing = e.IsSpeedIncreasing
	case Silence:
		s.HasAuraSize = true
		s.AuraSize = float32(e.AuraSize)
	case Slowing:
		s.HasAuraSize = true
		s.AuraSize = float32(SlowingAuraRadius)
	}

	if e.IsHarmless || e.HarmlessDuration > 0 || s.HasAuraSize {
		s.HasHarmless = true
		s.IsHarmless = e.IsHarmless
		s.HarmlessProgress = float32(e.HarmlessProgress())
	}

	// The optional tail is positional: a later group only decodes
	// correctly if every earlier group is sent in front of it.
	if s.HasHarmless && !s.HasSpeed {
		s.HasSpeed = true
		s.Speed = float32(e.Speed)
		s.MinSpeed = float32(e.MinSpeed)
		s.MaxSpeed = float32(e.MaxSpeed)
		s.HasChangeProgress = true
		s.ChangeProgress = float32(e.ChangeProgress)
		s.IsSpeedIncreasing = e.IsSpeedIncreasing
	}

	return s
}
