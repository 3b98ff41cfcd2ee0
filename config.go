package vfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxAttractors is fixed so the device uniform layout stays static.
const MaxAttractors = 4

// DeadSentinelY is where dead particles are parked so no consumer can
// mistake them for live ones.
const DeadSentinelY float32 = -1000.0

type EasingKind uint32

const (
	EasingLinear EasingKind = iota
	EasingIn
	EasingOut
	EasingInOut
)

type AttractorKind uint32

const (
	AttractorPoint AttractorKind = iota
	AttractorVortex
)

// Attractor pulls (point) or swirls (vortex) particles within range.
// Strength magnitudes at or below 0.001 disable the attractor.
type Attractor struct {
	Position mgl32.Vec3    `yaml:"position"`
	Strength float32       `yaml:"strength"`
	Radius   float32       `yaml:"radius"` // <= 0.001 switches to inverse-square falloff
	Kind     AttractorKind `yaml:"kind"`
	Axis     mgl32.Vec3    `yaml:"axis"` // vortex spin axis
}

type TurbulenceConfig struct {
	Intensity float32 `yaml:"intensity"` // <= 0.001 disables
	Frequency float32 `yaml:"frequency"`
	TimePhase float32 `yaml:"time_phase"` // advanced by the owner, not the core
}

type CollisionConfig struct {
	Enabled  bool    `yaml:"enabled"`
	PlaneY   float32 `yaml:"plane_y"`
	Bounce   float32 `yaml:"bounce"`
	Friction float32 `yaml:"friction"`
	Die      bool    `yaml:"die"`
}

// SimulationConfig is the full per-tick parameter set. It is a value: both
// backends read a snapshot taken at the start of Update, so mutating it
// between ticks is always safe.
type SimulationConfig struct {
	Capacity int `yaml:"capacity"`

	Gravity          mgl32.Vec3 `yaml:"gravity"`
	SizeGravityScale float32    `yaml:"size_gravity_scale"`

	// Friction easing is used when no velocity curve is active.
	FrictionEasing EasingKind `yaml:"friction_easing"`
	FrictionStart  float32    `yaml:"friction_start"`
	FrictionEnd    float32    `yaml:"friction_end"`

	VelocityCurveEnabled      bool `yaml:"velocity_curve_enabled"`
	RotationSpeedCurveEnabled bool `yaml:"rotation_speed_curve_enabled"`

	Turbulence TurbulenceConfig          `yaml:"turbulence"`
	Attractors [MaxAttractors]Attractor  `yaml:"attractors"`
	Collision  CollisionConfig           `yaml:"collision"`

	NeedsRotation    bool       `yaml:"needs_rotation"`
	RotationSpeedMin mgl32.Vec3 `yaml:"rotation_speed_min"`
	RotationSpeedMax mgl32.Vec3 `yaml:"rotation_speed_max"`

	// ColorVariation allocates per-particle start/end color planes.
	ColorVariation bool `yaml:"color_variation"`

	// Seed feeds every per-particle hash; fixed seeds give reproducible runs.
	Seed float32 `yaml:"seed"`
}

func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Capacity:         10000,
		Gravity:          mgl32.Vec3{0, -9.81, 0},
		SizeGravityScale: 0,
		FrictionEasing:   EasingLinear,
		FrictionStart:    0,
		FrictionEnd:      0,
		Turbulence: TurbulenceConfig{
			Intensity: 0,
			Frequency: 1,
		},
		Collision: CollisionConfig{
			Enabled:  false,
			PlaneY:   0,
			Bounce:   0.5,
			Friction: 0.9,
		},
		RotationSpeedMin: mgl32.Vec3{},
		RotationSpeedMax: mgl32.Vec3{},
		Seed:             1,
	}
}

// FieldClass splits config fields into those that apply in place and those
// that force engine re-creation. The engine consults this table; the core
// integrator never looks at it.
type FieldClass int

const (
	FieldLive FieldClass = iota
	FieldStructural
)

var configFieldClasses = map[string]FieldClass{
	"Capacity":                  FieldStructural,
	"NeedsRotation":             FieldStructural,
	"ColorVariation":            FieldStructural,
	"Gravity":                   FieldLive,
	"SizeGravityScale":          FieldLive,
	"FrictionEasing":            FieldLive,
	"FrictionStart":             FieldLive,
	"FrictionEnd":               FieldLive,
	"VelocityCurveEnabled":      FieldLive,
	"RotationSpeedCurveEnabled": FieldLive,
	"Turbulence":                FieldLive,
	"Attractors":                FieldLive,
	"Collision":                 FieldLive,
	"RotationSpeedMin":          FieldLive,
	"RotationSpeedMax":          FieldLive,
	"Seed":                      FieldLive,
}

// ConfigFieldClass reports how a config field by name applies; unknown names
// are treated as structural so callers fail safe.
func ConfigFieldClass(field string) FieldClass {
	if c, ok := configFieldClasses[field]; ok {
		return c
	}
	return FieldStructural
}

// structuralChange reports whether switching from a to b requires rebuilding
// the store and backend resources.
func structuralChange(a, b *SimulationConfig) bool {
	return a.Capacity != b.Capacity ||
		a.NeedsRotation != b.NeedsRotation ||
		a.ColorVariation != b.ColorVariation
}
