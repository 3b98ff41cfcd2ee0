package vfx

type BackendName string

const (
	BackendDeviceParallel BackendName = "device-parallel"
	BackendHostSequential BackendName = "host-sequential"
)

// backend executes Init/Spawn/Update against the particle store. The two
// implementations must produce numerically equivalent results for identical
// inputs; the device one runs one lane per index, the host one a plain loop.
type backend interface {
	Name() BackendName

	// Init resets every slot to the dead state.
	Init(store *ParticleStore)

	// Spawn initializes the claimed index range of req.
	Spawn(store *ParticleStore, req *spawnRequest)

	// Update advances every live particle by dt and leaves the result
	// visible in store once it returns.
	Update(store *ParticleStore, cfg *SimulationConfig, curve *CurveTexture, dt float32)

	Dispose()
}

// detectBackend probes for a usable compute device and falls back to the
// host-sequential backend. Probe failure is never an error; the fallback is
// silent apart from the info log.
func detectBackend(cfg *SimulationConfig, logger Logger) backend {
	if gb := newGpuBackend(cfg, logger); gb != nil {
		logger.Infof("Backend selected: %s", gb.Name())
		return gb
	}
	logger.Infof("Backend selected: %s (no usable compute adapter)", BackendHostSequential)
	return newCpuBackend()
}
