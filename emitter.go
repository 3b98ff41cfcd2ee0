package vfx

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EmitCallback is invoked after a manual emission with the resolved
// world-space origin, count and direction.
type EmitCallback func(origin mgl32.Vec3, count int, dir mgl32.Vec3)

// EmitterSchedule decides when and how many particles to request. Automatic
// emission is accumulator-driven; manual bursts bypass the accumulator and
// resolve their origin from the world transform at call time.
type EmitterSchedule struct {
	accumulator float32
	Delay       float32 // <= 0 emits every tick
	EmitCount   int
	Loop        bool
	emitting    bool

	Position    mgl32.Vec3
	Orientation mgl32.Quat

	Callback EmitCallback

	// spawn is wired by the owning engine.
	spawn func(origin, dir mgl32.Vec3, count int)
}

func NewEmitterSchedule() *EmitterSchedule {
	return &EmitterSchedule{
		EmitCount:   10,
		Loop:        true,
		Orientation: mgl32.QuatIdent(),
	}
}

func (e *EmitterSchedule) IsEmitting() bool { return e.emitting }

// Accumulator is exposed for tests and debug panels.
func (e *EmitterSchedule) Accumulator() float32 { return e.accumulator }

// Start resets the accumulator, even mid-cycle, and begins emitting.
func (e *EmitterSchedule) Start() {
	e.accumulator = 0
	e.emitting = true
}

// Stop only clears the emitting flag; the accumulator keeps its value.
func (e *EmitterSchedule) Stop() {
	e.emitting = false
}

// direction returns the emitter's world-space emit axis (local +Y rotated by
// the orientation).
func (e *EmitterSchedule) direction() mgl32.Vec3 {
	return e.Orientation.Rotate(mgl32.Vec3{0, 1, 0}).Normalize()
}

// AutoEmit advances the schedule by dt and requests spawns as due. Without a
// positive delay it emits every tick; otherwise overshoot is preserved by
// subtracting the delay rather than resetting, so a long frame can trigger
// several emissions.
func (e *EmitterSchedule) AutoEmit(dt float32) {
	if !e.emitting || e.spawn == nil {
		return
	}
	if e.Delay <= 0 {
		e.spawn(e.Position, e.direction(), e.EmitCount)
		return
	}
	e.accumulator += dt
	for e.accumulator >= e.Delay {
		e.accumulator -= e.Delay
		e.spawn(e.Position, e.direction(), e.EmitCount)
	}
}

// Emit triggers one manual burst of count particles from the current world
// transform, independent of the accumulator. With Loop disabled the emitter
// stops after one successful emission.
func (e *EmitterSchedule) Emit(count int) {
	if e.spawn == nil || count <= 0 {
		return
	}
	dir := e.direction()
	e.spawn(e.Position, dir, count)
	if e.Callback != nil {
		e.Callback(e.Position, count, dir)
	}
	if !e.Loop {
		e.emitting = false
	}
}
