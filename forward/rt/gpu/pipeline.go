package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
)

var meshVertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: core.VertexStride,
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: core.VertexOffsetPosition, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: core.VertexOffsetNormal, ShaderLocation: 1},
		{Format: wgpu.VertexFormatFloat32x2, Offset: core.VertexOffsetUV, ShaderLocation: 2},
		{Format: wgpu.VertexFormatFloat32x4, Offset: core.VertexOffsetTangent, ShaderLocation: 3},
		{Format: wgpu.VertexFormatFloat32x4, Offset: core.VertexOffsetColor, ShaderLocation: 4},
	},
}

func blendState(mode render.BlendMode) *wgpu.BlendState {
	switch mode {
	case render.BlendAdditive:
		add := wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
		}
		return &wgpu.BlendState{Color: add, Alpha: add}
	case render.BlendAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	}
	return nil
}

func depthStencilState(state render.DepthState) *wgpu.DepthStencilState {
	compare := wgpu.CompareFunctionAlways
	if state.Test {
		compare = wgpu.CompareFunctionLessEqual
	}
	return &wgpu.DepthStencilState{
		Format:            wgpu.TextureFormatDepth24Plus,
		DepthWriteEnabled: state.Write,
		DepthCompare:      compare,
		StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
	}
}

// pipeline returns the cached pipeline for a program under a blend/depth combination.
// WebGPU bakes both into the pipeline, so each pass variant is a separate object.
func (d *Device) pipeline(key pipelineKey) (*wgpu.RenderPipeline, error) {
	if p, ok := d.pipelines[key]; ok {
		return p, nil
	}
	prog := d.program(key.program)
	if prog == nil {
		return nil, render.ErrInvalidProgram
	}

	p, err := d.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("%s/%s", prog.profile.Name, key.blend),
		Layout: d.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     prog.module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{meshVertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     prog.module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    d.Config.Format,
				Blend:     blendState(key.blend),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		DepthStencil: depthStencilState(key.depth),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	d.pipelines[key] = p
	return p, nil
}

// uniformSlot hands out the next per-draw uniform buffer, growing the pool on demand.
// The pool is rewound every BeginFrame.
func (d *Device) uniformSlot() (*uniformSlot, error) {
	if d.nextSlot < len(d.slots) {
		s := d.slots[d.nextSlot]
		d.nextSlot++
		return s, nil
	}
	buf, err := d.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("Uniforms %d", len(d.slots)),
		Size:  uniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	group, err := d.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: d.uniformLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Size: uniformSize},
		},
	})
	if err != nil {
		buf.Release()
		return nil, err
	}
	s := &uniformSlot{buffer: buf, group: group}
	d.slots = append(d.slots, s)
	d.nextSlot++
	return s, nil
}

func (d *Device) texture(id core.TextureID, fallback *texture) *texture {
	if !id.Valid() || int(id) > len(d.textures) {
		return fallback
	}
	return d.textures[id-1]
}

func (d *Device) textureGroup(bound [2]core.TextureID) (*wgpu.BindGroup, error) {
	if g, ok := d.texGroups[bound]; ok {
		return g, nil
	}
	diffuse := d.texture(bound[core.DiffuseUnit], d.white)
	normal := d.texture(bound[core.NormalMapUnit], d.flat)
	g, err := d.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: d.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: diffuse.view},
			{Binding: 1, TextureView: normal.view},
			{Binding: 2, Sampler: d.sampler},
		},
	})
	if err != nil {
		return nil, err
	}
	d.texGroups[bound] = g
	return g, nil
}
