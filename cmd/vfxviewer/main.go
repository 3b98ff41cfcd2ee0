// vfxviewer is a minimal windowed harness for the particle engine: it runs
// the simulation every frame and draws the store as camera-facing quads.
package main

import (
	"flag"
	"runtime"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	vfx "github.com/mustache-dev/Three-VFX"
	"github.com/mustache-dev/Three-VFX/shaders"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	vertexStride = 32 // pos vec3 + size f32 + color vec4
)

type gpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

func createWindow(title string) *glfw.Window {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, title, nil, nil)
	if err != nil {
		panic(err)
	}
	return win
}

func createGpuState(win *glfw.Window) *gpuState {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Viewer Device",
	})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       windowWidth,
		Height:      windowHeight,
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	return &gpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
	}
}

func createPointsPipeline(gpu *gpuState) *wgpu.RenderPipeline {
	shader, err := gpu.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "PointsShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PointsWGSL},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	vertexLayout := wgpu.VertexBufferLayout{
		ArrayStride: vertexStride,
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{ShaderLocation: 0, Offset: 0, Format: wgpu.VertexFormatFloat32x3},
			{ShaderLocation: 1, Offset: 12, Format: wgpu.VertexFormatFloat32},
			{ShaderLocation: 2, Offset: 16, Format: wgpu.VertexFormatFloat32x4},
		},
	}

	pipeline, err := gpu.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    gpu.surfaceConfig.Format,
					Blend:     nil,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleStrip,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		panic(err)
	}
	return pipeline
}

func packCamera() []float32 {
	eye := mgl32.Vec3{0, 3, 8}
	center := mgl32.Vec3{0, 1.5, 0}
	worldUp := mgl32.Vec3{0, 1, 0}

	view := mgl32.LookAtV(eye, center, worldUp)
	proj := mgl32.Perspective(mgl32.DegToRad(55), float32(windowWidth)/float32(windowHeight), 0.1, 100)
	vp := proj.Mul4(view)

	forward := center.Sub(eye).Normalize()
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward)

	buf := make([]float32, 24)
	copy(buf[0:16], vp[:])
	copy(buf[16:19], right[:])
	copy(buf[20:23], up[:])
	return buf
}

// packInstances flattens live particles into the instance vertex layout.
func packInstances(store *vfx.ParticleStore, out []float32) int {
	n := 0
	for i := 0; i < store.Capacity(); i++ {
		if store.Life[i] <= 0 {
			continue
		}
		base := n * 8
		out[base+0] = store.Pos[i].X()
		out[base+1] = store.Pos[i].Y()
		out[base+2] = store.Pos[i].Z()
		out[base+3] = store.Size[i]

		col := mgl32.Vec3{1, 1, 1}
		if store.ColStart != nil {
			// Blend start to end over the particle's life.
			t := 1 - store.Life[i]
			s := store.ColStart[i]
			e := store.ColEnd[i]
			col = s.Add(e.Sub(s).Mul(t))
		}
		out[base+4] = col.X()
		out[base+5] = col.Y()
		out[base+6] = col.Z()
		out[base+7] = store.Life[i]
		n++
	}
	return n
}

func buildEngine(presetPath string, logger vfx.Logger) *vfx.Engine {
	if presetPath != "" {
		preset, err := vfx.LoadEmitterPreset(presetPath)
		if err != nil {
			logger.Warnf("preset load failed, using defaults: %v", err)
		} else {
			return vfx.NewEngineFromPreset(preset, vfx.WithLogger(logger))
		}
	}

	cfg := vfx.DefaultSimulationConfig()
	cfg.Capacity = 20000
	cfg.Gravity = mgl32.Vec3{0, -3, 0}
	cfg.Turbulence.Intensity = 2
	cfg.Turbulence.Frequency = 0.6
	cfg.Collision = vfx.CollisionConfig{Enabled: true, PlaneY: 0, Bounce: 0.4, Friction: 0.85}
	cfg.Attractors[0] = vfx.Attractor{
		Position: mgl32.Vec3{0, 2, 0},
		Strength: 3,
		Radius:   6,
		Kind:     vfx.AttractorVortex,
		Axis:     mgl32.Vec3{0, 1, 0},
	}
	cfg.ColorVariation = true

	settings := vfx.DefaultSpawnSettings()
	settings.Shape = vfx.ShapeDisk
	settings.Extents = mgl32.Vec3{0.5, 0, 0}
	settings.Spread = 25
	settings.Speed = vfx.Range{Min: 2, Max: 4}
	settings.Lifetime = vfx.Range{Min: 2, Max: 4}
	settings.Size = vfx.Range{Min: 0.04, Max: 0.1}
	settings.ColorStartMin = mgl32.Vec3{1, 0.8, 0.3}
	settings.ColorStartMax = mgl32.Vec3{1, 0.4, 0.1}
	settings.ColorEndMin = mgl32.Vec3{0.2, 0.2, 0.4}
	settings.ColorEndMax = mgl32.Vec3{0.4, 0.2, 0.6}

	return vfx.NewEngine(cfg, vfx.WithLogger(logger), vfx.WithSpawnSettings(settings))
}

func main() {
	presetPath := flag.String("preset", "", "emitter preset YAML")
	curvePath := flag.String("curve", "", "curve texture PNG")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	logger := vfx.NewDefaultLogger("vfxviewer", *debug)

	win := createWindow("VFX Viewer")
	gpu := createGpuState(win)
	pipeline := createPointsPipeline(gpu)

	engine := buildEngine(*presetPath, logger)
	defer engine.Dispose()
	if *curvePath != "" {
		engine.LoadCurveTexture(*curvePath)
	}

	engine.Init()
	engine.Emitter().Delay = 0.02
	engine.Emitter().EmitCount = 60
	engine.SetPosition(mgl32.Vec3{0, 0.2, 0})
	engine.Start()

	capacity := engine.Store().Capacity()
	vertexBuf, err := gpu.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParticleInstances",
		Size:  uint64(capacity) * vertexStride,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}

	cameraBuf, err := gpu.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Camera",
		Contents: wgpu.ToBytes(packCamera()),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}

	layout := pipeline.GetBindGroupLayout(0)
	bindGroup, err := gpu.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: cameraBuf, Size: wgpu.WholeSize},
		},
	})
	layout.Release()
	if err != nil {
		panic(err)
	}

	instances := make([]float32, capacity*8)
	last := time.Now()

	for !win.ShouldClose() {
		glfw.PollEvents()

		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now
		if dt > 0.1 {
			dt = 0.1
		}

		engine.Update(dt)

		count := packInstances(engine.Store(), instances)
		if count > 0 {
			gpu.queue.WriteBuffer(vertexBuf, 0, wgpu.ToBytes(instances[:count*8]))
		}

		nextTexture, err := gpu.surface.GetCurrentTexture()
		if err != nil {
			panic(err)
		}
		view, err := nextTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}

		encoder, err := gpu.device.CreateCommandEncoder(nil)
		if err != nil {
			panic(err)
		}

		renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{
				{
					View:       view,
					LoadOp:     wgpu.LoadOpClear,
					StoreOp:    wgpu.StoreOpStore,
					ClearValue: wgpu.Color{R: 0.02, G: 0.02, B: 0.04, A: 1.0},
				},
			},
		})
		renderPass.SetPipeline(pipeline)
		renderPass.SetBindGroup(0, bindGroup, nil)
		renderPass.SetVertexBuffer(0, vertexBuf, 0, wgpu.WholeSize)
		if count > 0 {
			renderPass.Draw(4, uint32(count), 0, 0)
		}
		renderPass.End()

		cmdBuffer, err := encoder.Finish(nil)
		if err != nil {
			panic(err)
		}
		gpu.queue.Submit(cmdBuffer)
		gpu.surface.Present()

		view.Release()
	}
}
