package vfx

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type EmitterShape uint32

const (
	ShapePoint EmitterShape = iota
	ShapeBox
	ShapeSphere
	ShapeCone
	ShapeDisk
)

type Range struct {
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// SpawnSettings are the sampled ranges applied to every claimed particle.
// Shape sampling only produces a local offset; the integrator never sees it.
type SpawnSettings struct {
	Shape   EmitterShape `yaml:"shape"`
	Extents mgl32.Vec3   `yaml:"extents"` // box half extents; sphere/disk radius in X
	Spread  float32      `yaml:"spread"`  // cone half-angle, degrees, around the emit direction

	Speed    Range `yaml:"speed"`
	Lifetime Range `yaml:"lifetime"` // seconds
	Size     Range `yaml:"size"`

	ColorStartMin mgl32.Vec3 `yaml:"color_start_min"`
	ColorStartMax mgl32.Vec3 `yaml:"color_start_max"`
	ColorEndMin   mgl32.Vec3 `yaml:"color_end_min"`
	ColorEndMax   mgl32.Vec3 `yaml:"color_end_max"`
}

func DefaultSpawnSettings() SpawnSettings {
	return SpawnSettings{
		Shape:         ShapePoint,
		Spread:        15,
		Speed:         Range{Min: 1, Max: 2},
		Lifetime:      Range{Min: 1, Max: 2},
		Size:          Range{Min: 0.1, Max: 0.2},
		ColorStartMin: mgl32.Vec3{1, 1, 1},
		ColorStartMax: mgl32.Vec3{1, 1, 1},
		ColorEndMin:   mgl32.Vec3{1, 1, 1},
		ColorEndMax:   mgl32.Vec3{1, 1, 1},
	}
}

// SpawnOverrides substitutes specific ranges for a single spawn call.
// Nil fields keep the configured value.
type SpawnOverrides struct {
	Speed    *Range
	Lifetime *Range
	Size     *Range

	ColorStartMin *mgl32.Vec3
	ColorStartMax *mgl32.Vec3
	ColorEndMin   *mgl32.Vec3
	ColorEndMax   *mgl32.Vec3
}

// applyOverrides mutates s in place and returns a restore function. Callers
// defer the restore so the prior values come back even if the spawn write
// fails mid-way.
func applyOverrides(s *SpawnSettings, ov *SpawnOverrides) func() {
	saved := *s
	if ov != nil {
		if ov.Speed != nil {
			s.Speed = *ov.Speed
		}
		if ov.Lifetime != nil {
			s.Lifetime = *ov.Lifetime
		}
		if ov.Size != nil {
			s.Size = *ov.Size
		}
		if ov.ColorStartMin != nil {
			s.ColorStartMin = *ov.ColorStartMin
		}
		if ov.ColorStartMax != nil {
			s.ColorStartMax = *ov.ColorStartMax
		}
		if ov.ColorEndMin != nil {
			s.ColorEndMin = *ov.ColorEndMin
		}
		if ov.ColorEndMax != nil {
			s.ColorEndMax = *ov.ColorEndMax
		}
	}
	return func() { *s = saved }
}

// spawnRequest is one resolved batch: a claimed index range plus a snapshot
// of the settings in effect for exactly this call.
type spawnRequest struct {
	origin   mgl32.Vec3
	dir      mgl32.Vec3 // normalized world-space emit axis
	seed     float32
	start    int
	count    int
	settings SpawnSettings
}

// Per-attribute hash salts. Each sampled attribute draws from its own salt so
// attributes of one particle are uncorrelated. Mirrored in shaders/sim.wgsl.
const (
	saltOffsetA = 0.731
	saltOffsetB = 1.873
	saltOffsetC = 2.917
	saltDirA    = 3.417
	saltDirB    = 4.731
	saltSpeed   = 5.137
	saltLife    = 6.241
	saltSize    = 7.317
	saltRotX    = 8.125
	saltRotY    = 9.341
	saltRotZ    = 10.463
	saltColor   = 11.579
)

// spawnHash derives the per-particle unit random for one attribute.
func spawnHash(index int, seed, salt float32) float32 {
	return hash11(float32(index)*0.1031 + seed*7.13 + salt)
}

func sampleRange(r Range, h float32) float32 {
	return lerp32(r.Min, r.Max, h)
}

// orthoBasis builds a tangent/bitangent frame around axis. The reference
// vector flips near the pole to avoid a degenerate cross product.
func orthoBasis(axis mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	ref := mgl32.Vec3{0, 1, 0}
	if axis.Y() > 0.99 || axis.Y() < -0.99 {
		ref = mgl32.Vec3{1, 0, 0}
	}
	t := ref.Cross(axis).Normalize()
	b := axis.Cross(t)
	return t, b
}

// sampleConeDir picks a direction uniformly inside the cone of halfAngleDeg
// around axis.
func sampleConeDir(axis mgl32.Vec3, halfAngleDeg, h1, h2 float32) mgl32.Vec3 {
	if halfAngleDeg <= 0 {
		return axis
	}
	thetaMax := float64(halfAngleDeg) * math.Pi / 180.0
	cosTheta := lerp32(float32(math.Cos(thetaMax)), 1, h1)
	sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))
	phi := 2 * math.Pi * float64(h2)

	t, b := orthoBasis(axis)
	d := axis.Mul(cosTheta).
		Add(t.Mul(sinTheta * float32(math.Cos(phi)))).
		Add(b.Mul(sinTheta * float32(math.Sin(phi))))
	return d.Normalize()
}

// shapeOffset samples a local position offset for the emitter shape.
func shapeOffset(s *SpawnSettings, index int, seed float32) mgl32.Vec3 {
	h1 := spawnHash(index, seed, saltOffsetA)
	h2 := spawnHash(index, seed, saltOffsetB)
	h3 := spawnHash(index, seed, saltOffsetC)

	switch s.Shape {
	case ShapeBox:
		return mgl32.Vec3{
			s.Extents.X() * (h1*2 - 1),
			s.Extents.Y() * (h2*2 - 1),
			s.Extents.Z() * (h3*2 - 1),
		}
	case ShapeSphere:
		cosTheta := h1*2 - 1
		sinTheta := float32(math.Sqrt(float64(1 - cosTheta*cosTheta)))
		phi := 2 * math.Pi * float64(h2)
		r := s.Extents.X() * float32(math.Cbrt(float64(h3)))
		return mgl32.Vec3{
			r * sinTheta * float32(math.Cos(phi)),
			r * cosTheta,
			r * sinTheta * float32(math.Sin(phi)),
		}
	case ShapeDisk:
		phi := 2 * math.Pi * float64(h1)
		r := s.Extents.X() * float32(math.Sqrt(float64(h2)))
		return mgl32.Vec3{
			r * float32(math.Cos(phi)),
			0,
			r * float32(math.Sin(phi)),
		}
	default: // point and cone emit from the origin
		return mgl32.Vec3{}
	}
}

// initParticle writes the freshly spawned state for one claimed index.
// Mirrored by spawn_particles in shaders/sim.wgsl.
func initParticle(store *ParticleStore, idx int, req *spawnRequest) {
	s := &req.settings

	store.Pos[idx] = req.origin.Add(shapeOffset(s, idx, req.seed))

	dir := sampleConeDir(req.dir, s.Spread,
		spawnHash(idx, req.seed, saltDirA),
		spawnHash(idx, req.seed, saltDirB))
	speed := sampleRange(s.Speed, spawnHash(idx, req.seed, saltSpeed))
	store.Vel[idx] = dir.Mul(speed)

	store.Life[idx] = 1
	lifeSeconds := sampleRange(s.Lifetime, spawnHash(idx, req.seed, saltLife))
	if lifeSeconds < 0.001 {
		lifeSeconds = 0.001
	}
	store.Fade[idx] = 1 / lifeSeconds
	store.Size[idx] = sampleRange(s.Size, spawnHash(idx, req.seed, saltSize))

	if store.Rot != nil {
		twoPi := float32(2 * math.Pi)
		store.Rot[idx] = mgl32.Vec3{
			spawnHash(idx, req.seed, saltRotX) * twoPi,
			spawnHash(idx, req.seed, saltRotY) * twoPi,
			spawnHash(idx, req.seed, saltRotZ) * twoPi,
		}
	}
	if store.ColStart != nil {
		h := spawnHash(idx, req.seed, saltColor)
		store.ColStart[idx] = mgl32.Vec3{
			lerp32(s.ColorStartMin.X(), s.ColorStartMax.X(), h),
			lerp32(s.ColorStartMin.Y(), s.ColorStartMax.Y(), h),
			lerp32(s.ColorStartMin.Z(), s.ColorStartMax.Z(), h),
		}
		store.ColEnd[idx] = mgl32.Vec3{
			lerp32(s.ColorEndMin.X(), s.ColorEndMax.X(), h),
			lerp32(s.ColorEndMin.Y(), s.ColorEndMax.Y(), h),
			lerp32(s.ColorEndMin.Z(), s.ColorEndMax.Z(), h),
		}
	}
}
