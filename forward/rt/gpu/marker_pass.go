package gpu

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"github.com/gekko3d/lightpass/forward/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

const markerUniformSize = 80

// markerUniforms matches MarkerUniforms in marker.wgsl.
type markerUniforms struct {
	ViewProj mgl32.Mat4
	Params   [4]float32
}

// markerPass draws light markers as camera-facing discs, one instanced quad per light.
type markerPass struct {
	pipeline       *wgpu.RenderPipeline
	layout         *wgpu.BindGroupLayout
	bindGroup      *wgpu.BindGroup
	uniforms       *wgpu.Buffer
	quad           *wgpu.Buffer
	instances      *wgpu.Buffer
	instanceCap    uint32
	instanceCount  uint32
	device         *wgpu.Device
	shaderModule   *wgpu.ShaderModule
	pipelineLayout *wgpu.PipelineLayout
}

var markerCorners = [][2]float32{
	{-1, -1}, {1, -1}, {1, 1},
	{-1, -1}, {1, 1}, {-1, 1},
}

func newMarkerPass(device *wgpu.Device, format wgpu.TextureFormat) (*markerPass, error) {
	src, err := shaders.NewLibrary(shaders.WGSL, "").Program(shaders.MarkerProgram)
	if err != nil {
		return nil, err
	}
	p := &markerPass{device: device}

	p.shaderModule, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "MarkerShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src.Vertex},
	})
	if err != nil {
		return nil, err
	}

	p.layout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "MarkerBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: markerUniformSize,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	p.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.layout},
	})
	if err != nil {
		return nil, err
	}

	p.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "MarkerPipeline",
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof([2]float32{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					},
				},
				{
					ArrayStride: uint64(unsafe.Sizeof(core.Marker{})),
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 2},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: depthStencilState(render.DepthOpaque),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	p.quad, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "MarkerQuad",
		Contents: wgpu.ToBytes(markerCorners),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, err
	}

	p.uniforms, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "MarkerUniforms",
		Size:  markerUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	p.bindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: p.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.uniforms, Size: markerUniformSize},
		},
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *markerPass) update(queue *wgpu.Queue, viewProj mgl32.Mat4, markers []core.Marker, size float32, width, height uint32) error {
	u := markerUniforms{
		ViewProj: viewProj,
		Params:   [4]float32{size, float32(width), float32(height), 0},
	}
	if err := queue.WriteBuffer(p.uniforms, 0, wgpu.ToBytes([]markerUniforms{u})); err != nil {
		return err
	}

	n := uint32(len(markers))
	if n > p.instanceCap {
		if p.instances != nil {
			p.instances.Release()
		}
		newCap := max(n, 8)
		buf, err := p.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "MarkerInstances",
			Size:  uint64(newCap) * uint64(unsafe.Sizeof(core.Marker{})),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			p.instances, p.instanceCap = nil, 0
			return err
		}
		p.instances, p.instanceCap = buf, newCap
	}
	p.instanceCount = n
	return queue.WriteBuffer(p.instances, 0, wgpu.ToBytes(markers))
}

func (p *markerPass) draw(pass *wgpu.RenderPassEncoder) {
	if p.instanceCount == 0 || p.instances == nil {
		return
	}
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.SetVertexBuffer(0, p.quad, 0, wgpu.WholeSize)
	pass.SetVertexBuffer(1, p.instances, 0, wgpu.WholeSize)
	pass.Draw(uint32(len(markerCorners)), p.instanceCount, 0, 0)
}

func (p *markerPass) release() {
	if p == nil {
		return
	}
	for _, b := range []*wgpu.Buffer{p.instances, p.quad, p.uniforms} {
		if b != nil {
			b.Release()
		}
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
	if p.shaderModule != nil {
		p.shaderModule.Release()
	}
}
