package vfx

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/mustache-dev/Three-VFX/shaders"
)

const (
	particleStride  = 80 // bytes per particle row, see Particle in sim.wgsl
	simParamsSize   = 320
	spawnParamsSize = 160
	workgroupSize   = 64
)

// gpuBackend runs the simulation as compute dispatches, one lane per
// particle index. Lanes never communicate; each reads and writes only its
// own row, so no synchronization is needed inside a pass. Cross-pass
// ordering comes from issuing passes in program order and waiting on the
// queue before returning to the caller.
type gpuBackend struct {
	logger Logger

	adapter *wgpu.Adapter
	device  *wgpu.Device
	queue   *wgpu.Queue

	particleBuf *wgpu.Buffer
	paramsBuf   *wgpu.Buffer
	spawnBuf    *wgpu.Buffer
	curveBuf    *wgpu.Buffer
	stagingBuf  *wgpu.Buffer

	initPipeline   *wgpu.ComputePipeline
	spawnPipeline  *wgpu.ComputePipeline
	updatePipeline *wgpu.ComputePipeline

	initBindGroup   *wgpu.BindGroup
	spawnBindGroup  *wgpu.BindGroup
	updateBindGroup *wgpu.BindGroup

	capacity int
	cfg      SimulationConfig // last uploaded config snapshot
}

// newGpuBackend probes for a compute-capable adapter and builds the device
// resources. Returns nil on any failure; the caller falls back to the host
// backend, never an error (missing GPU support is not exceptional).
func newGpuBackend(cfg *SimulationConfig, logger Logger) (b *gpuBackend) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf("device backend unavailable: %v", r)
			b = nil
		}
	}()

	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		logger.Debugf("no compute adapter: %v", err)
		return nil
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "VFX Simulation Device",
	})
	if err != nil {
		logger.Debugf("device request failed: %v", err)
		adapter.Release()
		return nil
	}

	b = &gpuBackend{
		logger:   logger,
		adapter:  adapter,
		device:   device,
		queue:    device.GetQueue(),
		capacity: cfg.Capacity,
		cfg:      *cfg,
	}

	if err := b.createResources(); err != nil {
		logger.Debugf("device resource setup failed: %v", err)
		b.Dispose()
		return nil
	}
	return b
}

func (b *gpuBackend) Name() BackendName { return BackendDeviceParallel }

func (b *gpuBackend) createResources() error {
	var err error
	bufSize := uint64(b.capacity) * particleStride

	b.particleBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParticleStore",
		Size:  bufSize,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return err
	}
	b.paramsBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "SimParams",
		Size:  simParamsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.spawnBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "SpawnParams",
		Size:  spawnParamsSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.curveBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "CurveLUT",
		Size:  CurveTextureWidth * 16,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.stagingBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParticleReadback",
		Size:  bufSize,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}

	shader, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "SimShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.SimWGSL},
	})
	if err != nil {
		return err
	}
	defer shader.Release()

	makePipeline := func(entry string) (*wgpu.ComputePipeline, error) {
		return b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
			Label: entry,
			Compute: wgpu.ProgrammableStageDescriptor{
				Module:     shader,
				EntryPoint: entry,
			},
		})
	}
	if b.initPipeline, err = makePipeline("init_particles"); err != nil {
		return err
	}
	if b.spawnPipeline, err = makePipeline("spawn_particles"); err != nil {
		return err
	}
	if b.updatePipeline, err = makePipeline("update_particles"); err != nil {
		return err
	}

	return b.createBindGroups()
}

// createBindGroups (re)binds the current buffers to all three pipelines. Run
// again whenever a buffer is replaced.
func (b *gpuBackend) createBindGroups() error {
	for _, g := range []*wgpu.BindGroup{b.initBindGroup, b.spawnBindGroup, b.updateBindGroup} {
		if g != nil {
			g.Release()
		}
	}

	makeBindGroup := func(p *wgpu.ComputePipeline) (*wgpu.BindGroup, error) {
		layout := p.GetBindGroupLayout(0)
		defer layout.Release()
		return b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Layout: layout,
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, Buffer: b.particleBuf, Size: wgpu.WholeSize},
				{Binding: 1, Buffer: b.paramsBuf, Size: wgpu.WholeSize},
				{Binding: 2, Buffer: b.spawnBuf, Size: wgpu.WholeSize},
				{Binding: 3, Buffer: b.curveBuf, Size: wgpu.WholeSize},
			},
		})
	}

	var err error
	if b.initBindGroup, err = makeBindGroup(b.initPipeline); err != nil {
		return err
	}
	if b.spawnBindGroup, err = makeBindGroup(b.spawnPipeline); err != nil {
		return err
	}
	if b.updateBindGroup, err = makeBindGroup(b.updatePipeline); err != nil {
		return err
	}
	return nil
}

func putF32(buf []byte, off int, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}

func putU32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

func boolU32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

// packSimParams serializes the config into the SimParams uniform layout.
// Offsets follow sim.wgsl field by field.
func (b *gpuBackend) packSimParams(cfg *SimulationConfig, curveWidth int, dt float32) []byte {
	buf := make([]byte, simParamsSize)

	putF32(buf, 0, cfg.Gravity.X())
	putF32(buf, 4, cfg.Gravity.Y())
	putF32(buf, 8, cfg.Gravity.Z())
	putF32(buf, 12, dt)

	putF32(buf, 16, cfg.SizeGravityScale)
	putF32(buf, 20, cfg.FrictionStart)
	putF32(buf, 24, cfg.FrictionEnd)
	putF32(buf, 28, cfg.Seed)

	putU32(buf, 32, uint32(cfg.FrictionEasing))
	putU32(buf, 36, boolU32(cfg.VelocityCurveEnabled))
	putU32(buf, 40, boolU32(cfg.RotationSpeedCurveEnabled))
	putU32(buf, 44, boolU32(cfg.NeedsRotation))

	collFlags := boolU32(cfg.Collision.Enabled) | boolU32(cfg.Collision.Die)<<1
	putU32(buf, 48, uint32(curveWidth))
	putU32(buf, 52, uint32(b.capacity))
	putU32(buf, 56, collFlags)

	putF32(buf, 64, cfg.Turbulence.Intensity)
	putF32(buf, 68, cfg.Turbulence.Frequency)
	putF32(buf, 72, cfg.Turbulence.TimePhase)

	putF32(buf, 80, cfg.Collision.PlaneY)
	putF32(buf, 84, cfg.Collision.Bounce)
	putF32(buf, 88, cfg.Collision.Friction)

	putF32(buf, 96, cfg.RotationSpeedMin.X())
	putF32(buf, 100, cfg.RotationSpeedMin.Y())
	putF32(buf, 104, cfg.RotationSpeedMin.Z())
	putF32(buf, 112, cfg.RotationSpeedMax.X())
	putF32(buf, 116, cfg.RotationSpeedMax.Y())
	putF32(buf, 120, cfg.RotationSpeedMax.Z())

	for i := range cfg.Attractors {
		a := &cfg.Attractors[i]
		off := 128 + i*48
		putF32(buf, off+0, a.Position.X())
		putF32(buf, off+4, a.Position.Y())
		putF32(buf, off+8, a.Position.Z())
		putF32(buf, off+12, a.Strength)
		putF32(buf, off+16, a.Axis.X())
		putF32(buf, off+20, a.Axis.Y())
		putF32(buf, off+24, a.Axis.Z())
		putF32(buf, off+28, a.Radius)
		putF32(buf, off+32, float32(a.Kind))
	}
	return buf
}

func packSpawnParams(req *spawnRequest, capacity int) []byte {
	buf := make([]byte, spawnParamsSize)
	s := &req.settings

	putF32(buf, 0, req.origin.X())
	putF32(buf, 4, req.origin.Y())
	putF32(buf, 8, req.origin.Z())
	putF32(buf, 12, req.seed)

	putF32(buf, 16, req.dir.X())
	putF32(buf, 20, req.dir.Y())
	putF32(buf, 24, req.dir.Z())
	putF32(buf, 28, s.Spread)

	putF32(buf, 32, s.Speed.Min)
	putF32(buf, 36, s.Speed.Max)
	putF32(buf, 40, s.Lifetime.Min)
	putF32(buf, 44, s.Lifetime.Max)

	putF32(buf, 48, s.Size.Min)
	putF32(buf, 52, s.Size.Max)
	putF32(buf, 56, float32(s.Shape))

	putF32(buf, 64, s.Extents.X())
	putF32(buf, 68, s.Extents.Y())
	putF32(buf, 72, s.Extents.Z())

	// A request wrapping the ring more than once collapses to one lane per
	// slot: only the last capacity writes of the sequential loop survive.
	lanes := req.count
	skipped := 0
	if lanes > capacity {
		skipped = lanes - capacity
		lanes = capacity
	}
	putU32(buf, 80, uint32(req.start))
	putU32(buf, 84, uint32(lanes))
	putU32(buf, 88, uint32(capacity))
	putU32(buf, 92, uint32(skipped))

	writeVec3 := func(off int, v [3]float32) {
		putF32(buf, off, v[0])
		putF32(buf, off+4, v[1])
		putF32(buf, off+8, v[2])
	}
	writeVec3(96, s.ColorStartMin)
	writeVec3(112, s.ColorStartMax)
	writeVec3(128, s.ColorEndMin)
	writeVec3(144, s.ColorEndMax)
	return buf
}

// dispatch submits one compute pass over lanes indices, copies the particle
// buffer into the staging buffer, and blocks until the device has finished.
func (b *gpuBackend) dispatch(pipeline *wgpu.ComputePipeline, bindGroup *wgpu.BindGroup, lanes int) {
	if lanes <= 0 {
		return
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups((uint32(lanes)+workgroupSize-1)/workgroupSize, 1, 1)
	pass.End()

	encoder.CopyBufferToBuffer(b.particleBuf, 0, b.stagingBuf, 0, uint64(b.capacity)*particleStride)

	cmdBuf, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	b.queue.Submit(cmdBuf)
	b.device.Poll(true, nil)
}

// readBack maps the staging buffer and decodes the rows into the host store.
func (b *gpuBackend) readBack(store *ParticleStore) {
	size := b.stagingBuf.GetSize()

	done := false
	b.stagingBuf.MapAsync(wgpu.MapModeRead, 0, size, func(status wgpu.BufferMapAsyncStatus) {
		done = status == wgpu.BufferMapAsyncStatusSuccess
	})
	b.device.Poll(true, nil)
	if !done {
		b.logger.Warnf("particle readback mapping failed; store keeps previous tick")
		return
	}

	data := b.stagingBuf.GetMappedRange(0, uint(size))
	f32at := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}

	n := store.Capacity()
	if n > b.capacity {
		n = b.capacity
	}
	for i := 0; i < n; i++ {
		base := i * particleStride
		store.Pos[i][0] = f32at(base + 0)
		store.Pos[i][1] = f32at(base + 4)
		store.Pos[i][2] = f32at(base + 8)
		store.Life[i] = f32at(base + 12)
		store.Vel[i][0] = f32at(base + 16)
		store.Vel[i][1] = f32at(base + 20)
		store.Vel[i][2] = f32at(base + 24)
		store.Fade[i] = f32at(base + 28)
		if store.Rot != nil {
			store.Rot[i][0] = f32at(base + 32)
			store.Rot[i][1] = f32at(base + 36)
			store.Rot[i][2] = f32at(base + 40)
		}
		store.Size[i] = f32at(base + 44)
		if store.ColStart != nil {
			store.ColStart[i][0] = f32at(base + 48)
			store.ColStart[i][1] = f32at(base + 52)
			store.ColStart[i][2] = f32at(base + 56)
			store.ColEnd[i][0] = f32at(base + 64)
			store.ColEnd[i][1] = f32at(base + 68)
			store.ColEnd[i][2] = f32at(base + 72)
		}
	}
	b.stagingBuf.Unmap()
}

// uploadCurve writes the full LUT to the device. A curve wider than the
// current buffer grows it and rebinds; truncating instead would leave device
// lanes sampling past the bound storage while the host reads the whole LUT.
func (b *gpuBackend) uploadCurve(curve *CurveTexture) {
	texels := curve.Texels()
	needed := uint64(len(texels)) * 4
	if needed > b.curveBuf.GetSize() {
		b.curveBuf.Release()
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "CurveLUT",
			Size:  needed,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			panic(err)
		}
		b.curveBuf = buf
		if err := b.createBindGroups(); err != nil {
			panic(err)
		}
	}
	b.queue.WriteBuffer(b.curveBuf, 0, wgpu.ToBytes(texels))
}

func (b *gpuBackend) Init(store *ParticleStore) {
	b.queue.WriteBuffer(b.paramsBuf, 0, b.packSimParams(&b.cfg, CurveTextureWidth, 0))
	b.dispatch(b.initPipeline, b.initBindGroup, b.capacity)
	b.readBack(store)
}

func (b *gpuBackend) Spawn(store *ParticleStore, req *spawnRequest) {
	b.queue.WriteBuffer(b.spawnBuf, 0, packSpawnParams(req, b.capacity))
	lanes := req.count
	if lanes > b.capacity {
		lanes = b.capacity
	}
	b.dispatch(b.spawnPipeline, b.spawnBindGroup, lanes)
	b.readBack(store)
}

func (b *gpuBackend) Update(store *ParticleStore, cfg *SimulationConfig, curve *CurveTexture, dt float32) {
	b.cfg = *cfg
	b.uploadCurve(curve)
	b.queue.WriteBuffer(b.paramsBuf, 0, b.packSimParams(cfg, curve.Width(), dt))
	b.dispatch(b.updatePipeline, b.updateBindGroup, b.capacity)
	b.readBack(store)
}

// Dispose releases device resources. In-flight work is allowed to finish;
// its results become unobservable once the buffers are gone.
func (b *gpuBackend) Dispose() {
	if b.device != nil {
		b.device.Poll(true, nil)
	}
	if b.initBindGroup != nil {
		b.initBindGroup.Release()
	}
	if b.spawnBindGroup != nil {
		b.spawnBindGroup.Release()
	}
	if b.updateBindGroup != nil {
		b.updateBindGroup.Release()
	}
	if b.initPipeline != nil {
		b.initPipeline.Release()
	}
	if b.spawnPipeline != nil {
		b.spawnPipeline.Release()
	}
	if b.updatePipeline != nil {
		b.updatePipeline.Release()
	}
	if b.particleBuf != nil {
		b.particleBuf.Release()
	}
	if b.paramsBuf != nil {
		b.paramsBuf.Release()
	}
	if b.spawnBuf != nil {
		b.spawnBuf.Release()
	}
	if b.curveBuf != nil {
		b.curveBuf.Release()
	}
	if b.stagingBuf != nil {
		b.stagingBuf.Release()
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
}
