package vfx

// cpuBackend runs the simulation as a plain loop on the calling goroutine.
// Single writer, no suspension points, safe by construction.
type cpuBackend struct{}

func newCpuBackend() *cpuBackend { return &cpuBackend{} }

func (b *cpuBackend) Name() BackendName { return BackendHostSequential }

func (b *cpuBackend) Init(store *ParticleStore) {
	store.Reset()
}

func (b *cpuBackend) Spawn(store *ParticleStore, req *spawnRequest) {
	capacity := store.Capacity()
	for i := 0; i < req.count; i++ {
		initParticle(store, (req.start+i)%capacity, req)
	}
}

func (b *cpuBackend) Update(store *ParticleStore, cfg *SimulationConfig, curve *CurveTexture, dt float32) {
	hasRot := store.Rot != nil
	for i := 0; i < store.Capacity(); i++ {
		// Dead particles are skipped entirely, not even a zero pass.
		if store.Life[i] <= 0 {
			continue
		}
		st := particleState{
			Pos:  store.Pos[i],
			Vel:  store.Vel[i],
			Life: store.Life[i],
			Fade: store.Fade[i],
			Size: store.Size[i],
		}
		if hasRot {
			st.Rot = store.Rot[i]
		}

		st = stepParticle(st, cfg, curve, i, dt)

		store.Pos[i] = st.Pos
		store.Vel[i] = st.Vel
		store.Life[i] = st.Life
		if hasRot {
			store.Rot[i] = st.Rot
		}
	}
}

func (b *cpuBackend) Dispose() {}
