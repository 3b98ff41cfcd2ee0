package vfx

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// Engine owns one particle system: the store, the spawn cursor, the emitter
// schedule and the execution backend. The backend is decided once at
// construction and never changes for the engine's lifetime. Exactly one path
// mutates simulation state per tick; external readers treat the store as
// read-only and must not read mid-tick.
type Engine struct {
	logger   Logger
	cfg      SimulationConfig
	settings SpawnSettings

	store   *ParticleStore
	alloc   *SpawnAllocator
	backend backend
	curve   *CurveTexture
	emitter *EmitterSchedule

	// Curve assets load asynchronously; the result lands here and is
	// swapped in at the top of the next Update.
	pendingCurve atomic.Pointer[CurveTexture]

	spawnCalls uint32
	disposed   bool
}

type Option func(*Engine)

func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHostBackend skips the device probe and forces the sequential backend.
func WithHostBackend() Option {
	return func(e *Engine) { e.backend = newCpuBackend() }
}

func WithSpawnSettings(s SpawnSettings) Option {
	return func(e *Engine) { e.settings = s }
}

// NewEngine builds an engine for cfg. Backend selection is a capability
// probe: device-parallel when a compute adapter exists, host-sequential
// otherwise. The fallback is silent; construction never fails.
func NewEngine(cfg SimulationConfig, opts ...Option) *Engine {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	e := &Engine{
		logger:   NewNopLogger(),
		cfg:      cfg,
		settings: DefaultSpawnSettings(),
		curve:    DefaultCurveTexture(),
		emitter:  NewEmitterSchedule(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.backend == nil {
		e.backend = detectBackend(&e.cfg, e.logger)
	}
	e.store = NewParticleStore(cfg.Capacity, cfg.NeedsRotation, cfg.ColorVariation)
	e.alloc = NewSpawnAllocator(cfg.Capacity)
	e.emitter.spawn = func(origin, dir mgl32.Vec3, count int) {
		e.spawnAt(origin, dir, count, nil)
	}
	return e
}

func (e *Engine) Backend() BackendName { return e.backend.Name() }

// Store gives read-only access to the particle state for rendering.
func (e *Engine) Store() *ParticleStore { return e.store }

func (e *Engine) Emitter() *EmitterSchedule { return e.emitter }

func (e *Engine) Config() SimulationConfig { return e.cfg }

// Init resets every slot to the dead state and rewinds the spawn cursor.
func (e *Engine) Init() {
	e.backend.Init(e.store)
	e.alloc.Reset()
}

// Clear is Init under its public name: re-runs the full reset.
func (e *Engine) Clear() {
	e.Init()
}

// Spawn claims count slots and initializes them from (x,y,z) using the
// current settings, with overrides substituted for exactly this call.
func (e *Engine) Spawn(x, y, z float32, count int, overrides *SpawnOverrides) {
	e.spawnAt(mgl32.Vec3{x, y, z}, e.emitter.direction(), count, overrides)
}

func (e *Engine) spawnAt(origin, dir mgl32.Vec3, count int, overrides *SpawnOverrides) {
	if count <= 0 || e.disposed {
		return
	}
	restore := applyOverrides(&e.settings, overrides)
	defer restore()

	start := e.alloc.Claim(count)
	e.spawnCalls++
	req := &spawnRequest{
		origin: origin,
		dir:    dir,
		// Golden-ratio stride keeps per-call seeds well spread while
		// staying reproducible for a fixed config seed.
		seed:     e.cfg.Seed + float32(e.spawnCalls)*0.618034,
		start:    start,
		count:    count,
		settings: e.settings,
	}
	e.backend.Spawn(e.store, req)
}

// Update advances the simulation by dt seconds: swaps in any finished curve
// asset, runs due automatic emissions, then one physics pass over the store.
func (e *Engine) Update(dt float32) {
	if e.disposed || dt <= 0 {
		return
	}
	if c := e.pendingCurve.Swap(nil); c != nil {
		e.curve = c
	}
	e.emitter.AutoEmit(dt)
	e.cfg.Turbulence.TimePhase += dt
	e.backend.Update(e.store, &e.cfg, e.curve, dt)
}

func (e *Engine) Start() { e.emitter.Start() }

func (e *Engine) Stop() { e.emitter.Stop() }

// Emit triggers a manual burst from the emitter's world transform.
func (e *Engine) Emit(count int) { e.emitter.Emit(count) }

func (e *Engine) SetPosition(p mgl32.Vec3) { e.emitter.Position = p }

func (e *Engine) SetRotation(q mgl32.Quat) { e.emitter.Orientation = q }

func (e *Engine) SetSpawnSettings(s SpawnSettings) { e.settings = s }

func (e *Engine) SpawnSettings() SpawnSettings { return e.settings }

// SetCurveTexture replaces the lifetime-curve LUT immediately.
func (e *Engine) SetCurveTexture(t *CurveTexture) {
	if t != nil {
		e.curve = t
	}
}

func (e *Engine) CurveTexture() *CurveTexture { return e.curve }

// ApplyConfig applies live fields in place and reports whether the change is
// structural. Structural changes (capacity, rotation or color planes) are
// not applied; the caller owns engine lifetime and re-creates it.
func (e *Engine) ApplyConfig(cfg SimulationConfig) (structural bool) {
	if structuralChange(&e.cfg, &cfg) {
		return true
	}
	e.cfg = cfg
	return false
}

// Dispose tears the engine down. In-flight device passes may complete but
// their results become unobservable.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.backend.Dispose()
	e.store.Dispose()
}
