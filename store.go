package vfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleStore holds per-particle state as parallel arrays indexed
// 0..capacity-1 (SoA, same layout the renderer consumes). The engine is the
// only writer; external readers must treat it as read-only and never read
// mid-tick.
type ParticleStore struct {
	Pos  []mgl32.Vec3
	Vel  []mgl32.Vec3
	Life []float32 // normalized remaining life, 0 = dead
	Fade []float32 // per-second lifetime decay
	Size []float32

	// Optional planes, allocated only when the config needs them.
	Rot      []mgl32.Vec3
	ColStart []mgl32.Vec3
	ColEnd   []mgl32.Vec3

	capacity int
}

func NewParticleStore(capacity int, withRotation, withColor bool) *ParticleStore {
	if capacity <= 0 {
		capacity = 1
	}
	s := &ParticleStore{
		Pos:      make([]mgl32.Vec3, capacity),
		Vel:      make([]mgl32.Vec3, capacity),
		Life:     make([]float32, capacity),
		Fade:     make([]float32, capacity),
		Size:     make([]float32, capacity),
		capacity: capacity,
	}
	if withRotation {
		s.Rot = make([]mgl32.Vec3, capacity)
	}
	if withColor {
		s.ColStart = make([]mgl32.Vec3, capacity)
		s.ColEnd = make([]mgl32.Vec3, capacity)
	}
	s.Reset()
	return s
}

func (s *ParticleStore) Capacity() int { return s.capacity }

func (s *ParticleStore) HasRotation() bool { return s.Rot != nil }

func (s *ParticleStore) HasColor() bool { return s.ColStart != nil }

// Reset writes the dead state to every slot: sentinel position, zero
// velocity, zero lifetime. Always touches the entire capacity.
func (s *ParticleStore) Reset() {
	for i := 0; i < s.capacity; i++ {
		s.Pos[i] = mgl32.Vec3{0, DeadSentinelY, 0}
		s.Vel[i] = mgl32.Vec3{}
		s.Life[i] = 0
		s.Fade[i] = 0
		s.Size[i] = 0
	}
	if s.Rot != nil {
		for i := range s.Rot {
			s.Rot[i] = mgl32.Vec3{}
		}
	}
	if s.ColStart != nil {
		for i := range s.ColStart {
			s.ColStart[i] = mgl32.Vec3{1, 1, 1}
			s.ColEnd[i] = mgl32.Vec3{1, 1, 1}
		}
	}
}

// Dispose drops the backing storage. The store is unusable afterwards.
func (s *ParticleStore) Dispose() {
	s.Pos = nil
	s.Vel = nil
	s.Life = nil
	s.Fade = nil
	s.Size = nil
	s.Rot = nil
	s.ColStart = nil
	s.ColEnd = nil
	s.capacity = 0
}

// AliveCount walks the store; meant for debugging and tests, not the hot path.
func (s *ParticleStore) AliveCount() int {
	n := 0
	for _, l := range s.Life {
		if l > 0 {
			n++
		}
	}
	return n
}
