package vfx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestStoreResetWritesDeadState(t *testing.T) {
	s := NewParticleStore(16, true, true)
	s.Pos[3] = mgl32.Vec3{1, 2, 3}
	s.Life[3] = 0.5
	s.ColStart[3] = mgl32.Vec3{0.1, 0.2, 0.3}

	s.Reset()
	for i := 0; i < 16; i++ {
		assert.Equal(t, DeadSentinelY, s.Pos[i].Y())
		assert.Equal(t, float32(0), s.Life[i])
		assert.Equal(t, mgl32.Vec3{1, 1, 1}, s.ColStart[i])
	}
	assert.Equal(t, 0, s.AliveCount())
}

func TestStoreOptionalPlanes(t *testing.T) {
	bare := NewParticleStore(4, false, false)
	assert.False(t, bare.HasRotation())
	assert.False(t, bare.HasColor())
	assert.Nil(t, bare.Rot)
	assert.Nil(t, bare.ColStart)

	full := NewParticleStore(4, true, true)
	assert.True(t, full.HasRotation())
	assert.True(t, full.HasColor())
	assert.Len(t, full.Rot, 4)
}

func TestStoreAliveCount(t *testing.T) {
	s := NewParticleStore(8, false, false)
	s.Life[1] = 0.4
	s.Life[5] = 1
	assert.Equal(t, 2, s.AliveCount())
}

func TestStoreCapacityClamp(t *testing.T) {
	s := NewParticleStore(0, false, false)
	assert.Equal(t, 1, s.Capacity())
}
