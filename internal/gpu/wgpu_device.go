package gpu

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/blur/internal/filter"
)

// readbackTimeout bounds how long Readback waits for the GPU.
const readbackTimeout = 5 * time.Second

// WGPUDevice runs blur programs on a WebGPU device.
type WGPUDevice struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	name     string
	external bool

	// submitMu serializes command submission.
	submitMu sync.Mutex

	nextID   atomic.Uint32
	textures atomic.Int64
	targets  atomic.Int64
	programs atomic.Int64
	released atomic.Bool
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

type wgpuProgram struct {
	module         *wgpu.ShaderModule
	bindLayout     *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipeline       *wgpu.RenderPipeline
}

// NewWGPUDevice opens the default adapter on any available backend.
func NewWGPUDevice() (*WGPUDevice, error) {
	instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{Backends: wgpu.BackendsAll})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoAdapter, err)
	}
	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: request device: %w", ErrNoAdapter, err)
	}

	d := &WGPUDevice{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    device.Queue(),
		name:     adapter.Info().Name,
	}
	slogger().Info("gpu: device opened", "adapter", d.name)
	return d, nil
}

// NewWGPUDeviceFromProvider shares the device of a host application.
// The provider keeps ownership; Release does not destroy the device.
func NewWGPUDeviceFromProvider(provider gpucontext.DeviceProvider) (*WGPUDevice, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: nil device provider", ErrNoAdapter)
	}
	device, ok := provider.Device().(*wgpu.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider device is %T, not *wgpu.Device", ErrNoAdapter, provider.Device())
	}
	info := provider.AdapterInfo()
	d := &WGPUDevice{
		device:   device,
		queue:    device.Queue(),
		name:     info.Name,
		external: true,
	}
	slogger().Info("gpu: using shared device", "adapter", d.name)
	return d, nil
}

// Name implements Device.
func (d *WGPUDevice) Name() string { return d.name }

// CreateTexture implements Device.
func (d *WGPUDevice) CreateTexture(width, height int) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: texture %dx%d", ErrInvalidDimensions, width, height)
	}
	if d.released.Load() {
		return nil, ErrReleased
	}
	id := d.nextID.Add(1)
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         fmt.Sprintf("blur-texture-%d", id),
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage: gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create texture: %w", err)
	}
	view, err := d.device.CreateTextureView(tex, nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("gpu: create texture view: %w", err)
	}
	d.textures.Add(1)
	return &Texture{ID: id, Width: width, Height: height, native: &wgpuTexture{texture: tex, view: view}}, nil
}

// DeleteTexture implements Device.
func (d *WGPUDevice) DeleteTexture(t *Texture) {
	wt, ok := t.nativeWGPU()
	if !ok {
		return
	}
	wt.view.Release()
	wt.texture.Release()
	t.native = nil
	d.textures.Add(-1)
}

func (t *Texture) nativeWGPU() (*wgpuTexture, bool) {
	if t == nil {
		return nil, false
	}
	wt, ok := t.native.(*wgpuTexture)
	return wt, ok && wt != nil
}

// CreateRenderTarget implements Device. WebGPU has no frame buffer object;
// the target only names the attachment used by Draw.
func (d *WGPUDevice) CreateRenderTarget() (*RenderTarget, error) {
	if d.released.Load() {
		return nil, ErrReleased
	}
	d.targets.Add(1)
	return &RenderTarget{ID: d.nextID.Add(1)}, nil
}

// DeleteRenderTarget implements Device.
func (d *WGPUDevice) DeleteRenderTarget(rt *RenderTarget) {
	if rt == nil {
		return
	}
	rt.texture = nil
	d.targets.Add(-1)
}

// Upload implements Device.
func (d *WGPUDevice) Upload(t *Texture, pix []uint32) error {
	wt, ok := t.nativeWGPU()
	if !ok {
		return ErrNoTexture
	}
	if len(pix) != t.Width*t.Height {
		return fmt.Errorf("%w: %d pixels for %v", ErrInvalidDimensions, len(pix), t)
	}
	data := make([]byte, len(pix)*4)
	for i, p := range pix {
		data[i*4+0] = byte(p >> 16)
		data[i*4+1] = byte(p >> 8)
		data[i*4+2] = byte(p)
		data[i*4+3] = byte(p >> 24)
	}
	return d.queue.WriteTexture(
		&wgpu.ImageCopyTexture{Texture: wt.texture},
		data,
		&wgpu.ImageDataLayout{BytesPerRow: uint32(t.Width * 4), RowsPerImage: uint32(t.Height)},
		&wgpu.Extent3D{Width: uint32(t.Width), Height: uint32(t.Height), DepthOrArrayLayers: 1},
	)
}

// Readback implements Device.
func (d *WGPUDevice) Readback(t *Texture, pix []uint32) error {
	wt, ok := t.nativeWGPU()
	if !ok {
		return ErrNoTexture
	}
	if len(pix) != t.Width*t.Height {
		return fmt.Errorf("%w: %d pixels for %v", ErrInvalidDimensions, len(pix), t)
	}

	// Copy rows must be 256-byte aligned.
	rowBytes := t.Width * 4
	stride := (rowBytes + 255) &^ 255
	size := uint64(stride * t.Height)

	staging, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "blur-readback",
		Size:  size,
		Usage: wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead,
	})
	if err != nil {
		return fmt.Errorf("gpu: create readback buffer: %w", err)
	}
	defer staging.Release()

	encoder, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "blur-readback"})
	if err != nil {
		return fmt.Errorf("gpu: create encoder: %w", err)
	}
	encoder.CopyTextureToBuffer(wt.texture, staging, []wgpu.BufferTextureCopy{{
		BufferLayout: wgpu.ImageDataLayout{BytesPerRow: uint32(stride), RowsPerImage: uint32(t.Height)},
		TextureBase:  wgpu.ImageCopyTexture{Texture: wt.texture},
		Size:         wgpu.Extent3D{Width: uint32(t.Width), Height: uint32(t.Height), DepthOrArrayLayers: 1},
	}})
	if err := d.submit(encoder); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), readbackTimeout)
	defer cancel()
	if err := staging.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("gpu: map readback buffer: %w", err)
	}
	defer staging.Unmap()

	mapped, err := staging.MappedRange(0, size)
	if err != nil {
		return fmt.Errorf("gpu: mapped range: %w", err)
	}
	defer mapped.Release()
	data := mapped.Bytes()
	if len(data) < stride*(t.Height-1)+rowBytes {
		return fmt.Errorf("gpu: readback returned %d bytes", len(data))
	}
	for y := 0; y < t.Height; y++ {
		row := data[y*stride : y*stride+rowBytes]
		out := pix[y*t.Width : (y+1)*t.Width]
		for x := range out {
			out[x] = uint32(row[x*4+3])<<24 | uint32(row[x*4])<<16 | uint32(row[x*4+1])<<8 | uint32(row[x*4+2])
		}
	}
	return nil
}

// CreateProgram implements Device.
func (d *WGPUDevice) CreateProgram(mode filter.Mode, source string) (*Program, error) {
	if d.released.Load() {
		return nil, ErrReleased
	}
	// naga validates the program before the driver sees it.
	if _, err := CompileSPIRV(source); err != nil {
		return nil, err
	}

	label := "blur-" + mode.String()
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{Label: label, WGSL: source})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module: %w", err)
	}
	prog := &wgpuProgram{module: module}

	prog.bindLayout, err = d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: label,
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		prog.release()
		return nil, fmt.Errorf("gpu: create bind group layout: %w", err)
	}

	prog.pipelineLayout, err = d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{prog.bindLayout},
	})
	if err != nil {
		prog.release()
		return nil, fmt.Errorf("gpu: create pipeline layout: %w", err)
	}

	prog.pipeline, err = d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:       label,
		Layout:      prog.pipelineLayout,
		Vertex:      wgpu.VertexState{Module: module, EntryPoint: vertexEntry},
		Multisample: gputypes.DefaultMultisampleState(),
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fragmentEntry,
			Targets: []gputypes.ColorTargetState{{
				Format:    gputypes.TextureFormatRGBA8Unorm,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		prog.release()
		return nil, fmt.Errorf("gpu: create render pipeline: %w", err)
	}

	d.programs.Add(1)
	return &Program{ID: d.nextID.Add(1), Mode: mode, native: prog}, nil
}

func (p *wgpuProgram) release() {
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
	}
	if p.bindLayout != nil {
		p.bindLayout.Release()
	}
	if p.module != nil {
		p.module.Release()
	}
}

// DeleteProgram implements Device.
func (d *WGPUDevice) DeleteProgram(p *Program) {
	if p == nil {
		return
	}
	prog, ok := p.native.(*wgpuProgram)
	if !ok || prog == nil {
		return
	}
	prog.release()
	p.native = nil
	d.programs.Add(-1)
}

// Draw implements Device.
func (d *WGPUDevice) Draw(p *Program, rt *RenderTarget, src *Texture, pass Pass) error {
	if !p.Valid() {
		return ErrInvalidProgram
	}
	prog, ok := p.native.(*wgpuProgram)
	if !ok || prog == nil {
		return ErrInvalidProgram
	}
	if rt == nil {
		return ErrNoTexture
	}
	dst, ok := rt.texture.nativeWGPU()
	if !ok {
		return ErrNoTexture
	}
	in, ok := src.nativeWGPU()
	if !ok {
		return ErrNoTexture
	}

	params := pass.Params()
	uniform, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "blur-params",
		Size:  uint64(len(params)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpu: create uniform buffer: %w", err)
	}
	defer uniform.Release()
	if err := d.queue.WriteBuffer(uniform, 0, params); err != nil {
		return fmt.Errorf("gpu: write uniform buffer: %w", err)
	}

	group, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "blur-pass",
		Layout: prog.bindLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: in.view},
			{Binding: 1, Buffer: uniform, Size: uint64(len(params))},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group: %w", err)
	}
	defer group.Release()

	encoder, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "blur-pass"})
	if err != nil {
		return fmt.Errorf("gpu: create encoder: %w", err)
	}
	rp, err := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       dst.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{},
		}},
	})
	if err != nil {
		return fmt.Errorf("gpu: begin render pass: %w", err)
	}
	rp.SetPipeline(prog.pipeline)
	rp.SetBindGroup(0, group, nil)
	rp.Draw(3, 1, 0, 0)
	if err := rp.End(); err != nil {
		return fmt.Errorf("gpu: end render pass: %w", err)
	}
	if err := d.submit(encoder); err != nil {
		return err
	}
	// The uniform buffer and bind group are released on return.
	return d.device.WaitIdle()
}

func (d *WGPUDevice) submit(encoder *wgpu.CommandEncoder) error {
	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("gpu: finish encoder: %w", err)
	}
	d.submitMu.Lock()
	defer d.submitMu.Unlock()
	if _, err := d.queue.Submit(cmd); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	return nil
}

// Stats implements Device.
func (d *WGPUDevice) Stats() DeviceStats {
	return DeviceStats{
		Textures: int(d.textures.Load()),
		Targets:  int(d.targets.Load()),
		Programs: int(d.programs.Load()),
	}
}

// Release implements Device.
func (d *WGPUDevice) Release() {
	if !d.released.CompareAndSwap(false, true) {
		return
	}
	if d.external {
		return
	}
	d.device.Release()
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
}

// OpenDevice returns a device for the blur backend: the provider's device
// when one is given, otherwise a standalone wgpu device, otherwise the
// software device.
func OpenDevice(provider gpucontext.DeviceProvider) Device {
	if provider != nil {
		d, err := NewWGPUDeviceFromProvider(provider)
		if err == nil {
			return d
		}
		slogger().Warn("gpu: device provider unusable", "error", err)
	}
	d, err := NewWGPUDevice()
	if err == nil {
		return d
	}
	if errors.Is(err, ErrNoAdapter) {
		slogger().Warn("gpu: no adapter, using software device", "error", err)
	} else {
		slogger().Warn("gpu: device init failed, using software device", "error", err)
	}
	return NewSoftwareDevice()
}

var _ Device = (*WGPUDevice)(nil)
