package gpu

import (
	"errors"
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Byte layout of the Uniforms struct shared by every mesh shader.
const (
	uniformSize = 320

	offsetMVP              = 0
	offsetModel            = 64
	offsetView             = 128
	offsetProjection       = 192
	offsetLightDirection   = 256
	offsetLightColour      = 272
	offsetLightPosition    = 288
	offsetLightAttenuation = 304

	// Sampler slots are fixed by the bind group layout; negative locations mark them.
	locDiffuseSampler = -1
	locNormalSampler  = -2
)

var uniformOffsets = map[string]int32{
	core.UniformMVP:              offsetMVP,
	core.UniformModel:            offsetModel,
	core.UniformView:             offsetView,
	core.UniformProjection:       offsetProjection,
	core.UniformLightDirection:   offsetLightDirection,
	core.UniformLightColour:      offsetLightColour,
	core.UniformLightPosition:    offsetLightPosition,
	core.UniformLightAttenuation: offsetLightAttenuation,
	core.UniformDiffuseTexture:   locDiffuseSampler,
	core.UniformNormalMapTexture: locNormalSampler,
}

var ErrNoFrame = errors.New("no frame in progress")

type program struct {
	profile core.Profile
	module  *wgpu.ShaderModule
	staging [uniformSize]byte
}

type mesh struct {
	vertices   *wgpu.Buffer
	indices    *wgpu.Buffer
	indexCount uint32
}

type texture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

type pipelineKey struct {
	program core.ProgramID
	blend   render.BlendMode
	depth   render.DepthState
}

type uniformSlot struct {
	buffer *wgpu.Buffer
	group  *wgpu.BindGroup
}

// Device renders through WebGPU. Every draw snapshots the current program's uniforms
// into its own buffer, so GL-style uniform writes between draws behave as expected.
type Device struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	ClearColor wgpu.Color

	log *zap.SugaredLogger

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	uniformLayout  *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	sampler        *wgpu.Sampler

	programs  []*program
	meshes    []*mesh
	textures  []*texture
	white     *texture
	flat      *texture
	pipelines map[pipelineKey]*wgpu.RenderPipeline
	texGroups map[[2]core.TextureID]*wgpu.BindGroup
	slots     []*uniformSlot
	nextSlot  int
	markers   *markerPass

	// per-frame state
	surfaceTex *wgpu.Texture
	frameView  *wgpu.TextureView
	encoder    *wgpu.CommandEncoder
	pass       *wgpu.RenderPassEncoder
	blend      render.BlendMode
	depth      render.DepthState
	current    core.ProgramID
	bound      [2]core.TextureID
}

func NewDevice(window *glfw.Window, log *zap.SugaredLogger) (*Device, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	d := &Device{
		Window:     window,
		ClearColor: wgpu.Color{A: 1},
		log:        log,
		pipelines:  make(map[pipelineKey]*wgpu.RenderPipeline),
		texGroups:  make(map[[2]core.TextureID]*wgpu.BindGroup),
		depth:      render.DepthOpaque,
	}

	d.Instance = wgpu.CreateInstance(nil)
	d.Surface = d.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := d.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: d.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	d.Adapter = adapter

	d.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	d.Queue = d.Device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := d.Surface.GetCapabilities(adapter)
	d.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	d.Surface.Configure(adapter, d.Device, d.Config)

	if err := d.createDepth(); err != nil {
		return nil, err
	}
	if err := d.createLayouts(); err != nil {
		return nil, err
	}

	d.sampler, err = d.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	// 1x1 stand-ins for missing maps: white albedo and an unperturbed tangent-space normal.
	if d.white, err = d.uploadTexture(render.FallbackDiffuse()); err != nil {
		return nil, err
	}
	if d.flat, err = d.uploadTexture(render.FallbackNormalMap()); err != nil {
		return nil, err
	}

	d.markers, err = newMarkerPass(d.Device, d.Config.Format)
	if err != nil {
		return nil, fmt.Errorf("marker pass: %w", err)
	}

	d.log.Infof("wgpu device ready (%dx%d, %v)", d.Config.Width, d.Config.Height, d.Config.Format)
	return d, nil
}

func (d *Device) createDepth() error {
	if d.depthView != nil {
		d.depthView.Release()
		d.depthTexture.Release()
	}
	var err error
	d.depthTexture, err = d.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              d.Config.Width,
			Height:             d.Config.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create depth texture: %w", err)
	}
	d.depthView, err = d.depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create depth view: %w", err)
	}
	return nil
}

func (d *Device) createLayouts() error {
	var err error
	d.uniformLayout, err = d.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "UniformsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uniformSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("uniform layout: %w", err)
	}

	textureEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		}
	}
	d.textureLayout, err = d.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "TexturesBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			textureEntry(0),
			textureEntry(1),
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("texture layout: %w", err)
	}

	d.pipelineLayout, err = d.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "MeshPipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{d.uniformLayout, d.textureLayout},
	})
	if err != nil {
		return fmt.Errorf("pipeline layout: %w", err)
	}
	return nil
}

func (d *Device) CreateProgram(profile core.Profile, src render.ShaderSource) (core.ProgramID, error) {
	module, err := d.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          profile.Name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src.Vertex},
	})
	if err != nil {
		return core.InvalidProgram, err
	}
	d.programs = append(d.programs, &program{profile: profile, module: module})
	id := core.ProgramID(len(d.programs))

	// Build the opaque variant now so pipeline errors surface at setup.
	if _, err := d.pipeline(pipelineKey{program: id, depth: render.DepthOpaque}); err != nil {
		return core.InvalidProgram, err
	}
	return id, nil
}

func (d *Device) CreateMesh(data *core.MeshData) (core.MeshID, error) {
	if data.Empty() {
		return core.InvalidMesh, fmt.Errorf("mesh %q has no geometry", data.Name)
	}
	vb, err := d.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    data.Name + " VB",
		Contents: wgpu.ToBytes(data.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return core.InvalidMesh, err
	}
	ib, err := d.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    data.Name + " IB",
		Contents: wgpu.ToBytes(data.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vb.Release()
		return core.InvalidMesh, err
	}
	d.meshes = append(d.meshes, &mesh{vertices: vb, indices: ib, indexCount: uint32(len(data.Indices))})
	return core.MeshID(len(d.meshes)), nil
}

func (d *Device) CreateTexture(img *image.RGBA) (core.TextureID, error) {
	if img == nil {
		return core.InvalidTexture, errors.New("nil image")
	}
	t, err := d.uploadTexture(img)
	if err != nil {
		return core.InvalidTexture, err
	}
	d.textures = append(d.textures, t)
	return core.TextureID(len(d.textures)), nil
}

func (d *Device) uploadTexture(img *image.RGBA) (*texture, error) {
	size := img.Bounds().Size()
	extent := wgpu.Extent3D{
		Width:              uint32(size.X),
		Height:             uint32(size.Y),
		DepthOrArrayLayers: 1,
	}
	tex, err := d.Device.CreateTexture(&wgpu.TextureDescriptor{
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create texture view: %w", err)
	}
	err = d.Queue.WriteTexture(
		tex.AsImageCopy(),
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: uint32(size.Y),
		},
		&extent,
	)
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("write texture: %w", err)
	}
	return &texture{tex: tex, view: view}, nil
}

func (d *Device) UniformLocation(id core.ProgramID, name string) (int32, bool) {
	p := d.program(id)
	if p == nil || !p.profile.HasUniform(name) {
		return 0, false
	}
	loc, ok := uniformOffsets[name]
	return loc, ok
}

func (d *Device) program(id core.ProgramID) *program {
	if !id.Valid() || int(id) > len(d.programs) {
		return nil
	}
	return d.programs[id-1]
}

func (d *Device) BeginFrame() error {
	if d.surfaceTex != nil {
		return errors.New("previous frame not yet presented")
	}
	surfaceTex, err := d.Surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTex.CreateView(nil)
	if err != nil {
		surfaceTex.Release()
		return err
	}
	encoder, err := d.Device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTex.Release()
		return err
	}
	d.surfaceTex = surfaceTex
	d.frameView = view
	d.encoder = encoder
	d.nextSlot = 0
	return nil
}

// SetClearColour sets the colour the Clear pass fills the frame with.
func (d *Device) SetClearColour(c mgl32.Vec4) {
	d.ClearColor = wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

// Clear opens the frame's render pass with cleared colour and depth.
func (d *Device) Clear() {
	d.beginPass(wgpu.LoadOpClear)
}

func (d *Device) beginPass(load wgpu.LoadOp) {
	if d.pass != nil || d.encoder == nil {
		return
	}
	d.pass = d.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       d.frameView,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: d.ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            d.depthView,
			DepthLoadOp:     load,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
}

func (d *Device) SetBlend(mode render.BlendMode)   { d.blend = mode }
func (d *Device) SetDepth(state render.DepthState) { d.depth = state }

func (d *Device) UseProgram(id core.ProgramID) { d.current = id }

func (d *Device) write(loc int32, data []byte) {
	p := d.program(d.current)
	if p == nil || loc < 0 || int(loc)+len(data) > uniformSize {
		return
	}
	copy(p.staging[loc:], data)
}

func (d *Device) SetUniformMat4(loc int32, m mgl32.Mat4) {
	d.write(loc, wgpu.ToBytes(m[:]))
}

func (d *Device) SetUniformVec3(loc int32, v mgl32.Vec3) {
	d.write(loc, wgpu.ToBytes(v[:]))
}

// SetUniformInt only carries sampler units here, which the bind group layout fixes.
func (d *Device) SetUniformInt(loc int32, v int32) {}

func (d *Device) BindTexture(unit uint32, tex core.TextureID) {
	if unit < uint32(len(d.bound)) {
		d.bound[unit] = tex
	}
}

func (d *Device) DrawMesh(id core.MeshID) {
	if !id.Valid() || int(id) > len(d.meshes) {
		return
	}
	d.beginPass(wgpu.LoadOpLoad)
	p := d.program(d.current)
	if d.pass == nil || p == nil {
		return
	}

	pipeline, err := d.pipeline(pipelineKey{program: d.current, blend: d.blend, depth: d.depth})
	if err != nil {
		d.log.Errorf("pipeline for %s: %v", p.profile.Name, err)
		return
	}
	slot, err := d.uniformSlot()
	if err != nil {
		d.log.Errorf("uniform slot: %v", err)
		return
	}
	textures, err := d.textureGroup(d.bound)
	if err != nil {
		d.log.Errorf("texture bind group: %v", err)
		return
	}
	if err := d.Queue.WriteBuffer(slot.buffer, 0, p.staging[:]); err != nil {
		d.log.Errorf("write uniforms: %v", err)
		return
	}

	m := d.meshes[id-1]
	d.pass.SetPipeline(pipeline)
	d.pass.SetBindGroup(0, slot.group, nil)
	d.pass.SetBindGroup(1, textures, nil)
	d.pass.SetVertexBuffer(0, m.vertices, 0, wgpu.WholeSize)
	d.pass.SetIndexBuffer(m.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	d.pass.DrawIndexed(m.indexCount, 1, 0, 0, 0)
}

func (d *Device) DrawMarkers(viewProj mgl32.Mat4, markers []core.Marker, size float32) {
	if len(markers) == 0 {
		return
	}
	d.beginPass(wgpu.LoadOpLoad)
	if d.pass == nil {
		return
	}
	if err := d.markers.update(d.Queue, viewProj, markers, size, d.Config.Width, d.Config.Height); err != nil {
		d.log.Errorf("marker upload: %v", err)
		return
	}
	d.markers.draw(d.pass)
}

func (d *Device) EndFrame() error {
	if d.encoder == nil {
		return ErrNoFrame
	}
	d.beginPass(wgpu.LoadOpClear)

	var endErr error
	if err := d.pass.End(); err != nil {
		endErr = fmt.Errorf("end render pass: %w", err)
	}
	d.pass = nil

	cmd, err := d.encoder.Finish(nil)
	d.encoder.Release()
	d.encoder = nil
	if err != nil {
		d.releaseFrame()
		return fmt.Errorf("finish encoder: %w", err)
	}
	d.Queue.Submit(cmd)
	cmd.Release()
	return endErr
}

// Present shows the submitted frame and releases the swapchain image.
func (d *Device) Present() {
	if d.surfaceTex == nil {
		return
	}
	d.Surface.Present()
	d.releaseFrame()
}

func (d *Device) releaseFrame() {
	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	if d.surfaceTex != nil {
		d.surfaceTex.Release()
		d.surfaceTex = nil
	}
}

func (d *Device) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	d.Config.Width = uint32(width)
	d.Config.Height = uint32(height)
	d.Surface.Configure(d.Adapter, d.Device, d.Config)
	if err := d.createDepth(); err != nil {
		d.log.Errorf("resize depth buffer: %v", err)
	}
}

func (d *Device) Release() {
	d.releaseFrame()
	d.markers.release()
	for _, p := range d.pipelines {
		p.Release()
	}
	for _, g := range d.texGroups {
		g.Release()
	}
	for _, s := range d.slots {
		s.group.Release()
		s.buffer.Release()
	}
	for _, m := range d.meshes {
		m.vertices.Release()
		m.indices.Release()
	}
	for _, t := range append(d.textures, d.white, d.flat) {
		if t != nil {
			t.view.Release()
			t.tex.Release()
		}
	}
	for _, p := range d.programs {
		p.module.Release()
	}
	if d.depthView != nil {
		d.depthView.Release()
		d.depthTexture.Release()
	}
	d.sampler.Release()
	d.pipelineLayout.Release()
	d.textureLayout.Release()
	d.uniformLayout.Release()
	d.Device.Release()
	d.Adapter.Release()
	d.Surface.Release()
	d.Instance.Release()
}

var _ render.Device = (*Device)(nil)
