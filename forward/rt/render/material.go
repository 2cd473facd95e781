package render

import (
	"errors"
	"fmt"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrShaderSetup    = errors.New("shader setup failed")
	ErrInvalidProgram = errors.New("invalid shader program")
)

// Material is a compiled shader program plus the uniform slots its profile exposes.
type Material struct {
	Profile core.Profile

	program core.ProgramID
	slots   map[string]int32

	// camera state of the current pass, needed to build the combined matrix for basic programs
	view mgl32.Mat4
	proj mgl32.Mat4
}

// NewMaterial compiles the program and resolves its uniform slots.
func NewMaterial(dev Device, profile core.Profile, src ShaderSource) (*Material, error) {
	program, err := dev.CreateProgram(profile, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderSetup, profile.Name, err)
	}
	if !program.Valid() {
		return nil, fmt.Errorf("%w: %s: device returned no program", ErrShaderSetup, profile.Name)
	}

	m := &Material{
		Profile: profile,
		program: program,
		slots:   make(map[string]int32),
		view:    mgl32.Ident4(),
		proj:    mgl32.Ident4(),
	}
	for _, name := range profile.Uniforms() {
		if loc, ok := dev.UniformLocation(program, name); ok {
			m.slots[name] = loc
		}
	}
	return m, nil
}

func (m *Material) Program() core.ProgramID {
	return m.program
}

// Bind makes this material's program current.
func (m *Material) Bind(dev Device) error {
	if m == nil || !m.program.Valid() {
		return ErrInvalidProgram
	}
	dev.UseProgram(m.program)
	return nil
}

func (m *Material) HasSlot(name string) bool {
	_, ok := m.slots[name]
	return ok
}

// SetMat4 writes a matrix uniform. Unknown slots are skipped.
func (m *Material) SetMat4(dev Device, name string, v mgl32.Mat4) {
	if loc, ok := m.slots[name]; ok {
		dev.SetUniformMat4(loc, v)
	}
}

func (m *Material) SetVec3(dev Device, name string, v mgl32.Vec3) {
	if loc, ok := m.slots[name]; ok {
		dev.SetUniformVec3(loc, v)
	}
}

func (m *Material) SetInt(dev Device, name string, v int32) {
	if loc, ok := m.slots[name]; ok {
		dev.SetUniformInt(loc, v)
	}
}

// SetCamera records the pass camera and writes view/projection where the profile has them.
func (m *Material) SetCamera(dev Device, view, proj mgl32.Mat4) {
	m.view = view
	m.proj = proj
	if m.Profile.Caps.HasModelMatrix {
		m.SetMat4(dev, core.UniformView, view)
		m.SetMat4(dev, core.UniformProjection, proj)
	}
}

// SetLight writes the light parameters the profile understands. A light of another kind is ignored.
func (m *Material) SetLight(dev Device, light core.Light) {
	if light == nil || m.Profile.Caps.Light != light.Kind() {
		return
	}
	switch l := light.(type) {
	case *core.DirectionalLight:
		m.SetVec3(dev, core.UniformLightDirection, l.Direction)
		m.SetVec3(dev, core.UniformLightColour, l.Colour)
	case *core.PointLight:
		m.SetVec3(dev, core.UniformLightPosition, l.Position)
		m.SetVec3(dev, core.UniformLightColour, l.Colour)
		m.SetVec3(dev, core.UniformLightAttenuation, l.Attenuation)
	}
}

// SetTextureUnits points the sampler uniforms at their fixed units.
func (m *Material) SetTextureUnits(dev Device) {
	m.SetInt(dev, core.UniformDiffuseTexture, int32(core.DiffuseUnit))
	m.SetInt(dev, core.UniformNormalMapTexture, int32(core.NormalMapUnit))
}

// SetModelTransform writes the model matrix, or proj*view*model for programs without one.
func (m *Material) SetModelTransform(dev Device, model mgl32.Mat4) {
	if m.Profile.Caps.HasModelMatrix {
		m.SetMat4(dev, core.UniformModel, model)
		return
	}
	m.SetMat4(dev, core.UniformMVP, m.proj.Mul4(m.view).Mul4(model))
}

func (m *Material) TextureUnits() []uint32 {
	return m.Profile.TextureUnits()
}
