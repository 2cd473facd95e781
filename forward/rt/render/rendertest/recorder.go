// Package rendertest provides a recording render.Device for tests.
package rendertest

import (
	"errors"
	"fmt"
	"image"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"github.com/go-gl/mathgl/mgl32"
)

type Op int

const (
	OpBeginFrame Op = iota
	OpClear
	OpSetBlend
	OpSetDepth
	OpUseProgram
	OpUniform
	OpBindTexture
	OpDrawMesh
	OpDrawMarkers
	OpEndFrame
)

// Call is one recorded device call.
type Call struct {
	Op      Op
	Blend   render.BlendMode
	Depth   render.DepthState
	Program core.ProgramID
	Uniform string
	Value   string
	Unit    uint32
	Texture core.TextureID
	Mesh    core.MeshID
	Markers []core.Marker
}

var ErrInjected = errors.New("injected failure")

// Recorder implements render.Device. Uniform locations are assigned per program from the
// profile's uniform list; FailPrograms and Hide let tests simulate compile failures and
// optimised-out uniforms.
type Recorder struct {
	Calls []Call

	FailPrograms map[string]bool
	Hide         map[string]bool
	FailBegin    bool

	programs    []core.Profile
	meshes      int
	textures    int
	current     core.ProgramID
	locations   map[core.ProgramID]map[string]int32
	names       map[core.ProgramID]map[int32]string
	Width       int
	Height      int
	Released    bool
	FrameCount  int
	TextureSize map[core.TextureID]image.Point
}

func NewRecorder() *Recorder {
	return &Recorder{
		FailPrograms: make(map[string]bool),
		Hide:         make(map[string]bool),
		locations:    make(map[core.ProgramID]map[string]int32),
		names:        make(map[core.ProgramID]map[int32]string),
		TextureSize:  make(map[core.TextureID]image.Point),
	}
}

func (r *Recorder) CreateProgram(profile core.Profile, src render.ShaderSource) (core.ProgramID, error) {
	if r.FailPrograms[profile.Name] {
		return core.InvalidProgram, fmt.Errorf("compile %s: %w", profile.Name, ErrInjected)
	}
	r.programs = append(r.programs, profile)
	id := core.ProgramID(len(r.programs))

	locs := make(map[string]int32)
	names := make(map[int32]string)
	for i, name := range profile.Uniforms() {
		if r.Hide[name] {
			continue
		}
		locs[name] = int32(i)
		names[int32(i)] = name
	}
	r.locations[id] = locs
	r.names[id] = names
	return id, nil
}

func (r *Recorder) CreateMesh(mesh *core.MeshData) (core.MeshID, error) {
	if mesh.Empty() {
		return core.InvalidMesh, errors.New("empty mesh")
	}
	r.meshes++
	return core.MeshID(r.meshes), nil
}

func (r *Recorder) CreateTexture(img *image.RGBA) (core.TextureID, error) {
	if img == nil {
		return core.InvalidTexture, errors.New("nil image")
	}
	r.textures++
	id := core.TextureID(r.textures)
	r.TextureSize[id] = img.Bounds().Size()
	return id, nil
}

func (r *Recorder) UniformLocation(program core.ProgramID, name string) (int32, bool) {
	loc, ok := r.locations[program][name]
	return loc, ok
}

func (r *Recorder) BeginFrame() error {
	if r.FailBegin {
		return ErrInjected
	}
	r.FrameCount++
	r.Calls = append(r.Calls, Call{Op: OpBeginFrame})
	return nil
}

func (r *Recorder) Clear() {
	r.Calls = append(r.Calls, Call{Op: OpClear})
}

func (r *Recorder) SetBlend(mode render.BlendMode) {
	r.Calls = append(r.Calls, Call{Op: OpSetBlend, Blend: mode})
}

func (r *Recorder) SetDepth(state render.DepthState) {
	r.Calls = append(r.Calls, Call{Op: OpSetDepth, Depth: state})
}

func (r *Recorder) UseProgram(program core.ProgramID) {
	r.current = program
	r.Calls = append(r.Calls, Call{Op: OpUseProgram, Program: program})
}

func (r *Recorder) uniform(loc int32, value string) {
	r.Calls = append(r.Calls, Call{
		Op:      OpUniform,
		Program: r.current,
		Uniform: r.names[r.current][loc],
		Value:   value,
	})
}

func (r *Recorder) SetUniformMat4(loc int32, m mgl32.Mat4) { r.uniform(loc, fmt.Sprint(m)) }
func (r *Recorder) SetUniformVec3(loc int32, v mgl32.Vec3) { r.uniform(loc, fmt.Sprint(v)) }
func (r *Recorder) SetUniformInt(loc int32, v int32)       { r.uniform(loc, fmt.Sprint(v)) }

func (r *Recorder) BindTexture(unit uint32, tex core.TextureID) {
	r.Calls = append(r.Calls, Call{Op: OpBindTexture, Unit: unit, Texture: tex})
}

func (r *Recorder) DrawMesh(mesh core.MeshID) {
	r.Calls = append(r.Calls, Call{Op: OpDrawMesh, Program: r.current, Mesh: mesh})
}

func (r *Recorder) DrawMarkers(viewProj mgl32.Mat4, markers []core.Marker, size float32) {
	r.Calls = append(r.Calls, Call{Op: OpDrawMarkers, Markers: append([]core.Marker(nil), markers...)})
}

func (r *Recorder) EndFrame() error {
	r.Calls = append(r.Calls, Call{Op: OpEndFrame})
	return nil
}

func (r *Recorder) Resize(width, height int) {
	r.Width, r.Height = width, height
}

func (r *Recorder) Release() {
	r.Released = true
}

// Reset forgets recorded calls but keeps created resources.
func (r *Recorder) Reset() {
	r.Calls = nil
}

// Profile returns the profile a program was created from.
func (r *Recorder) Profile(id core.ProgramID) core.Profile {
	return r.programs[int(id)-1]
}

// Filter returns the recorded calls of the given kinds, in order.
func (r *Recorder) Filter(ops ...Op) []Call {
	var out []Call
	for _, c := range r.Calls {
		for _, op := range ops {
			if c.Op == op {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Uniforms returns "program/name=value" strings for every uniform write.
func (r *Recorder) Uniforms() []string {
	var out []string
	for _, c := range r.Filter(OpUniform) {
		out = append(out, fmt.Sprintf("%d/%s=%s", c.Program, c.Uniform, c.Value))
	}
	return out
}

// StubSources returns empty sources for every profile.
func StubSources(core.Profile) (render.ShaderSource, error) {
	return render.ShaderSource{Vertex: "stub", Fragment: "stub"}, nil
}

var _ render.Device = (*Recorder)(nil)
