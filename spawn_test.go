package vfx

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func spawnBatch(t *testing.T, settings SpawnSettings, count int) *ParticleStore {
	t.Helper()
	store := NewParticleStore(count, true, true)
	req := &spawnRequest{
		origin:   mgl32.Vec3{},
		dir:      mgl32.Vec3{0, 1, 0},
		seed:     3.7,
		start:    0,
		count:    count,
		settings: settings,
	}
	b := newCpuBackend()
	b.Spawn(store, req)
	return store
}

func TestSpawnSamplesInsideRanges(t *testing.T) {
	s := DefaultSpawnSettings()
	s.Speed = Range{Min: 2, Max: 5}
	s.Lifetime = Range{Min: 1, Max: 3}
	s.Size = Range{Min: 0.1, Max: 0.4}

	store := spawnBatch(t, s, 500)
	for i := 0; i < 500; i++ {
		speed := store.Vel[i].Len()
		assert.GreaterOrEqual(t, speed, float32(2-1e-4))
		assert.LessOrEqual(t, speed, float32(5+1e-4))

		life := 1 / store.Fade[i]
		assert.GreaterOrEqual(t, life, float32(1-1e-3))
		assert.LessOrEqual(t, life, float32(3+1e-3))

		assert.GreaterOrEqual(t, store.Size[i], float32(0.1-1e-4))
		assert.LessOrEqual(t, store.Size[i], float32(0.4+1e-4))

		assert.Equal(t, float32(1), store.Life[i])
	}
}

func TestSpawnSizeDistributionCentered(t *testing.T) {
	s := DefaultSpawnSettings()
	s.Size = Range{Min: 0, Max: 1}

	store := spawnBatch(t, s, 2000)
	sizes := make([]float64, 2000)
	for i := range sizes {
		sizes[i] = float64(store.Size[i])
	}
	// Uniform samples over [0,1] should average near 0.5.
	mean := stat.Mean(sizes, nil)
	assert.InDelta(t, 0.5, mean, 0.05)
}

func TestSpawnConeRespectsSpread(t *testing.T) {
	s := DefaultSpawnSettings()
	s.Spread = 30
	s.Speed = Range{Min: 1, Max: 1}

	store := spawnBatch(t, s, 300)
	minCos := float32(math.Cos(30 * math.Pi / 180))
	axis := mgl32.Vec3{0, 1, 0}
	for i := 0; i < 300; i++ {
		cos := store.Vel[i].Normalize().Dot(axis)
		assert.GreaterOrEqual(t, cos, minCos-1e-4, "direction %d outside cone", i)
	}
}

func TestSpawnZeroSpreadIsAxial(t *testing.T) {
	s := DefaultSpawnSettings()
	s.Spread = 0
	s.Speed = Range{Min: 2, Max: 2}

	store := spawnBatch(t, s, 10)
	for i := 0; i < 10; i++ {
		assert.InDelta(t, 0.0, float64(store.Vel[i].X()), 1e-5)
		assert.InDelta(t, 2.0, float64(store.Vel[i].Y()), 1e-5)
	}
}

func TestSpawnBoxOffsetsWithinExtents(t *testing.T) {
	s := DefaultSpawnSettings()
	s.Shape = ShapeBox
	s.Extents = mgl32.Vec3{1, 2, 3}

	store := spawnBatch(t, s, 300)
	for i := 0; i < 300; i++ {
		p := store.Pos[i]
		assert.LessOrEqual(t, float64(math.Abs(float64(p.X()))), 1.0+1e-4)
		assert.LessOrEqual(t, float64(math.Abs(float64(p.Y()))), 2.0+1e-4)
		assert.LessOrEqual(t, float64(math.Abs(float64(p.Z()))), 3.0+1e-4)
	}
}

func TestSpawnSphereOffsetsWithinRadius(t *testing.T) {
	s := DefaultSpawnSettings()
	s.Shape = ShapeSphere
	s.Extents = mgl32.Vec3{1.5, 0, 0}

	store := spawnBatch(t, s, 300)
	for i := 0; i < 300; i++ {
		assert.LessOrEqual(t, store.Pos[i].Len(), float32(1.5+1e-3))
	}
}

func TestSpawnDiskOffsetsFlatWithinRadius(t *testing.T) {
	s := DefaultSpawnSettings()
	s.Shape = ShapeDisk
	s.Extents = mgl32.Vec3{2, 0, 0}

	store := spawnBatch(t, s, 300)
	for i := 0; i < 300; i++ {
		p := store.Pos[i]
		assert.Equal(t, float32(0), p.Y())
		r := float32(math.Hypot(float64(p.X()), float64(p.Z())))
		assert.LessOrEqual(t, r, float32(2+1e-3))
	}
}

func TestSpawnLifetimeClampedAboveZero(t *testing.T) {
	s := DefaultSpawnSettings()
	s.Lifetime = Range{Min: 0, Max: 0}

	store := spawnBatch(t, s, 8)
	for i := 0; i < 8; i++ {
		// Zero lifetime would make fade infinite; the floor keeps it finite.
		assert.InDelta(t, 1000.0, float64(store.Fade[i]), 1.0)
	}
}

func TestSpawnColorsSharedHashPerParticle(t *testing.T) {
	s := DefaultSpawnSettings()
	s.ColorStartMin = mgl32.Vec3{0, 0, 0}
	s.ColorStartMax = mgl32.Vec3{1, 1, 1}
	s.ColorEndMin = mgl32.Vec3{0, 0, 0}
	s.ColorEndMax = mgl32.Vec3{1, 1, 1}

	store := spawnBatch(t, s, 100)
	for i := 0; i < 100; i++ {
		cs := store.ColStart[i]
		ce := store.ColEnd[i]
		// One hash drives both gradients, so components agree within a
		// particle even though particles differ.
		assert.InDelta(t, float64(cs.X()), float64(cs.Y()), 1e-6)
		assert.InDelta(t, float64(cs.X()), float64(cs.Z()), 1e-6)
		assert.InDelta(t, float64(cs.X()), float64(ce.X()), 1e-6)
	}
}

func TestSpawnDeterministicPerSlot(t *testing.T) {
	s := DefaultSpawnSettings()
	a := spawnBatch(t, s, 50)
	b := spawnBatch(t, s, 50)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Pos[i], b.Pos[i])
		assert.Equal(t, a.Vel[i], b.Vel[i])
		assert.Equal(t, a.Size[i], b.Size[i])
	}
}

// Randomness keys on the slot index, so when a single call wraps the ring and
// writes a slot twice the second write is identical to the first.
func TestSpawnWrapIdempotentPerSlot(t *testing.T) {
	s := DefaultSpawnSettings()
	store := NewParticleStore(4, false, false)
	req := &spawnRequest{
		dir:      mgl32.Vec3{0, 1, 0},
		seed:     2.2,
		start:    0,
		count:    10,
		settings: s,
	}
	newCpuBackend().Spawn(store, req)

	single := NewParticleStore(4, false, false)
	req2 := *req
	req2.count = 4
	newCpuBackend().Spawn(single, &req2)

	for i := 0; i < 4; i++ {
		assert.Equal(t, single.Pos[i], store.Pos[i])
		assert.Equal(t, single.Vel[i], store.Vel[i])
	}
}

func TestApplyOverridesSubstitutesAndRestores(t *testing.T) {
	s := DefaultSpawnSettings()
	orig := s

	speed := Range{Min: 9, Max: 9}
	col := mgl32.Vec3{0.2, 0.3, 0.4}
	restore := applyOverrides(&s, &SpawnOverrides{
		Speed:         &speed,
		ColorStartMin: &col,
	})

	assert.Equal(t, speed, s.Speed)
	assert.Equal(t, col, s.ColorStartMin)
	// Untouched fields keep their values.
	assert.Equal(t, orig.Lifetime, s.Lifetime)

	restore()
	assert.Equal(t, orig, s)
}

func TestApplyOverridesRestoresOnPanic(t *testing.T) {
	s := DefaultSpawnSettings()
	orig := s
	size := Range{Min: 5, Max: 5}

	func() {
		defer func() { _ = recover() }()
		restore := applyOverrides(&s, &SpawnOverrides{Size: &size})
		defer restore()
		panic("spawn write failed")
	}()

	require.Equal(t, orig, s)
}

func TestApplyOverridesNilIsNoop(t *testing.T) {
	s := DefaultSpawnSettings()
	orig := s
	restore := applyOverrides(&s, nil)
	assert.Equal(t, orig, s)
	restore()
	assert.Equal(t, orig, s)
}
