package blur

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/blur/internal/cache"
	"github.com/gogpu/blur/internal/filter"
	"github.com/gogpu/blur/internal/gpu"
	"github.com/gogpu/blur/internal/parallel"
)

// Engine owns the shared blur resources: the stripe worker pool, the async
// task pool and the GPU backend with its texture and render target pools.
//
// Engines are independent of each other. Close releases everything the
// engine created.
//
// Thread safety: Engine is safe for concurrent use.
type Engine struct {
	opts engineOptions

	stripes *parallel.WorkerPool
	tasks   *parallel.TaskManager

	nativeOnce sync.Once
	native     bool

	gpuOnce sync.Once
	device  gpu.Device
	backend atomic.Pointer[gpu.Backend]

	closed atomic.Bool
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	texturePoolSize int
	targetPoolSize  int
	stripeWorkers   int
	taskWorkers     int
	softwareGPU     bool
	provider        gpucontext.DeviceProvider
	nativeProbe     func() bool
}

// WithTexturePoolSize bounds the number of idle GPU textures kept for reuse.
func WithTexturePoolSize(n int) EngineOption {
	return func(o *engineOptions) { o.texturePoolSize = n }
}

// WithTargetPoolSize bounds the number of idle GPU render targets kept for
// reuse.
func WithTargetPoolSize(n int) EngineOption {
	return func(o *engineOptions) { o.targetPoolSize = n }
}

// WithStripeWorkers sets the size of the stripe pool and the default number
// of stripes per pass. The default is runtime.NumCPU().
func WithStripeWorkers(n int) EngineOption {
	return func(o *engineOptions) { o.stripeWorkers = n }
}

// WithTaskWorkers sets the size of the async task pool. The default is 1 on
// hosts with 3 or fewer CPUs and half the CPUs otherwise.
func WithTaskWorkers(n int) EngineOption {
	return func(o *engineOptions) { o.taskWorkers = n }
}

// WithSoftwareGPU makes the GPU scheme run its shader program on the CPU
// instead of opening a GPU adapter.
func WithSoftwareGPU() EngineOption {
	return func(o *engineOptions) { o.softwareGPU = true }
}

// WithDeviceProvider shares the wgpu device of a host application with the
// GPU scheme. The engine does not release a provided device.
func WithDeviceProvider(p gpucontext.DeviceProvider) EngineOption {
	return func(o *engineOptions) { o.provider = p }
}

// WithNativeProbe replaces the capability probe of the Native scheme.
// When probe returns false, Native blurs are logged no-ops.
func WithNativeProbe(probe func() bool) EngineOption {
	return func(o *engineOptions) { o.nativeProbe = probe }
}

// NewEngine creates an engine.
func NewEngine(opts ...EngineOption) *Engine {
	o := engineOptions{
		texturePoolSize: gpu.DefaultTexturePoolSize,
		targetPoolSize:  gpu.DefaultTargetPoolSize,
		stripeWorkers:   runtime.NumCPU(),
		taskWorkers:     parallel.DefaultTaskWorkers(runtime.NumCPU()),
		nativeProbe:     nativeSupported,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.stripeWorkers < 1 {
		o.stripeWorkers = 1
	}
	if o.taskWorkers < 1 {
		o.taskWorkers = 1
	}

	return &Engine{
		opts:    o,
		stripes: parallel.NewWorkerPool(o.stripeWorkers),
		tasks:   parallel.NewTaskManager(o.taskWorkers),
	}
}

var (
	defaultEngineOnce sync.Once
	defaultEngine     *Engine
)

// DefaultEngine returns a process-wide engine created on first use.
// It is never closed.
func DefaultEngine() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine
}

// StripeWorkers returns the default number of stripes per pass.
func (e *Engine) StripeWorkers() int { return e.opts.stripeWorkers }

// nativeAvailable runs the Native capability probe once.
func (e *Engine) nativeAvailable() bool {
	e.nativeOnce.Do(func() {
		e.native = e.opts.nativeProbe()
		if !e.native {
			Logger().Warn("blur: native acceleration unavailable, native blurs are no-ops")
		}
	})
	return e.native
}

// gpuBackend opens the GPU device and backend on first use. It returns nil
// once the engine is closed.
func (e *Engine) gpuBackend() *gpu.Backend {
	e.gpuOnce.Do(func() {
		if e.closed.Load() {
			return
		}
		var dev gpu.Device
		if e.opts.softwareGPU {
			dev = gpu.NewSoftwareDevice()
		} else {
			dev = gpu.OpenDevice(e.opts.provider)
		}
		Logger().Info("blur: GPU device selected", "device", dev.Name())
		e.device = dev
		e.backend.Store(gpu.NewBackend(dev, e.opts.texturePoolSize, e.opts.targetPoolSize))
	})
	if e.closed.Load() {
		return nil
	}
	return e.backend.Load()
}

// EngineStats reports engine resource usage.
type EngineStats struct {
	// StripeWorkers is the size of the stripe pool.
	StripeWorkers int
	// TaskWorkers is the size of the async task pool.
	TaskWorkers int
	// PendingTasks counts async blurs that have not finished.
	PendingTasks int
	// StripeQueued approximates the stripes waiting for a worker.
	StripeQueued int
	// TaskHandoffs counts async submissions that found the task queues full.
	TaskHandoffs int64

	// GaussianKernels and BoxTables are the CPU kernel cache statistics.
	GaussianKernels cache.Stats
	BoxTables       cache.Stats

	// GPUOpen reports whether the GPU backend was initialized.
	GPUOpen bool
	// GPUDevice names the GPU device, if open.
	GPUDevice string
	// Textures and Targets are the GPU pool statistics.
	Textures cache.Stats
	Targets  cache.Stats
	// LiveTextures, LiveTargets and LivePrograms count device resources.
	LiveTextures int
	LiveTargets  int
	LivePrograms int
	// GPUBlurs counts completed GPU blurs; GPUPassthroughs counts GPU blurs
	// skipped because the program failed to link.
	GPUBlurs        uint64
	GPUPassthroughs uint64
	// GPULinks counts shader program links.
	GPULinks uint64
}

// Stats returns a snapshot of engine resource usage.
func (e *Engine) Stats() EngineStats {
	s := EngineStats{
		StripeWorkers: e.stripes.Workers(),
		TaskWorkers:   e.tasks.Workers(),
		PendingTasks:  e.tasks.Pending(),
		StripeQueued:  e.stripes.QueuedWork(),
		TaskHandoffs:  e.tasks.Handoffs(),
	}
	s.GaussianKernels, s.BoxTables = filter.CacheStats()
	if b := e.backend.Load(); b != nil {
		gs := b.Stats()
		s.GPUOpen = true
		s.GPUDevice = b.Device().Name()
		s.Textures = gs.Textures
		s.Targets = gs.Targets
		s.LiveTextures = gs.Device.Textures
		s.LiveTargets = gs.Device.Targets
		s.LivePrograms = gs.Device.Programs
		s.GPUBlurs = gs.Blurs
		s.GPUPassthroughs = gs.Passthroughs
		s.GPULinks = gs.Links
	}
	return s
}

// Close cancels pending async blurs, stops the worker pools and releases GPU
// resources. Close is safe to call multiple times.
func (e *Engine) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	e.tasks.Close()
	e.stripes.Close()
	// Wait out a concurrent first use so the device is not leaked.
	e.gpuOnce.Do(func() {})
	if b := e.backend.Load(); b != nil {
		b.Close()
		e.device.Release()
	}
}
