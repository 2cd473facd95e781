// Package opengl implements render.Device on an OpenGL 4.1 core context.
package opengl

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"github.com/gekko3d/lightpass/forward/rt/shaders"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

type mesh struct {
	vao, vbo, ebo uint32
	count         int32
}

type markerProgram struct {
	program     uint32
	vao, vbo    uint32
	viewProjLoc int32
	sizeLoc     int32
}

// Device issues GL calls directly; uniform locations are real GL locations.
// All methods must run on the thread that owns the window's context.
type Device struct {
	Window     *glfw.Window
	ClearColor [4]float32

	log      *zap.SugaredLogger
	programs []uint32
	meshes   []mesh
	textures []uint32
	fallback [2]uint32
	marker   markerProgram
	current  core.ProgramID
}

func NewDevice(window *glfw.Window, log *zap.SugaredLogger) (*Device, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	d := &Device{
		Window:     window,
		ClearColor: [4]float32{0, 0, 0, 1},
		log:        log,
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	width, height := window.GetFramebufferSize()
	d.Resize(width, height)

	d.fallback[core.DiffuseUnit] = upload(render.FallbackDiffuse())
	d.fallback[core.NormalMapUnit] = upload(render.FallbackNormalMap())

	if err := d.initMarkers(); err != nil {
		return nil, fmt.Errorf("marker program: %w", err)
	}
	d.log.Infof("OpenGL %s on %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))
	return d, nil
}

func (d *Device) initMarkers() error {
	src, err := shaders.NewLibrary(shaders.GLSL, "").Program(shaders.MarkerProgram)
	if err != nil {
		return err
	}
	prog, err := linkProgram(src.Vertex, src.Fragment)
	if err != nil {
		return err
	}
	m := markerProgram{program: prog}
	m.viewProjLoc = gl.GetUniformLocation(prog, gl.Str("viewProjMatrix\x00"))
	m.sizeLoc = gl.GetUniformLocation(prog, gl.Str("pointSize\x00"))

	stride := int32(unsafe.Sizeof(core.Marker{}))
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)

	d.marker = m
	return nil
}

func (d *Device) CreateProgram(profile core.Profile, src render.ShaderSource) (core.ProgramID, error) {
	prog, err := linkProgram(src.Vertex, src.Fragment)
	if err != nil {
		return core.InvalidProgram, err
	}
	d.programs = append(d.programs, prog)
	return core.ProgramID(len(d.programs)), nil
}

func (d *Device) glProgram(id core.ProgramID) (uint32, bool) {
	if !id.Valid() || int(id) > len(d.programs) {
		return 0, false
	}
	return d.programs[id-1], true
}

func (d *Device) CreateMesh(data *core.MeshData) (core.MeshID, error) {
	if data.Empty() {
		return core.InvalidMesh, fmt.Errorf("mesh %q has no geometry", data.Name)
	}
	var m mesh
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*core.VertexStride, gl.Ptr(data.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)

	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, core.VertexOffsetPosition},
		{3, core.VertexOffsetNormal},
		{2, core.VertexOffsetUV},
		{4, core.VertexOffsetTangent},
		{4, core.VertexOffsetColor},
	}
	for i, a := range attribs {
		gl.VertexAttribPointerWithOffset(uint32(i), a.size, gl.FLOAT, false, core.VertexStride, a.offset)
		gl.EnableVertexAttribArray(uint32(i))
	}
	gl.BindVertexArray(0)

	m.count = int32(len(data.Indices))
	d.meshes = append(d.meshes, m)
	return core.MeshID(len(d.meshes)), nil
}

func (d *Device) CreateTexture(img *image.RGBA) (core.TextureID, error) {
	if img == nil {
		return core.InvalidTexture, errors.New("nil image")
	}
	size := img.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return core.InvalidTexture, errors.New("empty image")
	}
	d.textures = append(d.textures, upload(img))
	return core.TextureID(len(d.textures)), nil
}

func upload(img *image.RGBA) uint32 {
	size := img.Bounds().Size()
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(size.X), int32(size.Y), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func (d *Device) UniformLocation(id core.ProgramID, name string) (int32, bool) {
	prog, ok := d.glProgram(id)
	if !ok {
		return -1, false
	}
	loc := gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	return loc, loc >= 0
}

func (d *Device) BeginFrame() error {
	if d.Window != nil && d.Window.ShouldClose() {
		return errors.New("window closing")
	}
	return nil
}

func (d *Device) SetClearColour(c mgl32.Vec4) {
	d.ClearColor = c
}

func (d *Device) Clear() {
	gl.ClearColor(d.ClearColor[0], d.ClearColor[1], d.ClearColor[2], d.ClearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) SetBlend(mode render.BlendMode) {
	switch mode {
	case render.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE)
	case render.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}
}

func (d *Device) SetDepth(state render.DepthState) {
	if state.Test {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(state.Write)
}

func (d *Device) UseProgram(id core.ProgramID) {
	prog, ok := d.glProgram(id)
	if !ok {
		return
	}
	gl.UseProgram(prog)
	d.current = id
}

func (d *Device) SetUniformMat4(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *Device) SetUniformVec3(loc int32, v mgl32.Vec3) {
	gl.Uniform3fv(loc, 1, &v[0])
}

func (d *Device) SetUniformInt(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *Device) BindTexture(unit uint32, tex core.TextureID) {
	var name uint32
	switch {
	case tex.Valid() && int(tex) <= len(d.textures):
		name = d.textures[tex-1]
	case unit < uint32(len(d.fallback)):
		name = d.fallback[unit]
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, name)
}

func (d *Device) DrawMesh(id core.MeshID) {
	if !id.Valid() || int(id) > len(d.meshes) {
		return
	}
	m := d.meshes[id-1]
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (d *Device) DrawMarkers(viewProj mgl32.Mat4, markers []core.Marker, size float32) {
	if len(markers) == 0 {
		return
	}
	m := d.marker
	gl.UseProgram(m.program)
	gl.UniformMatrix4fv(m.viewProjLoc, 1, false, &viewProj[0])
	gl.Uniform1f(m.sizeLoc, size)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(markers)*int(unsafe.Sizeof(core.Marker{})), gl.Ptr(markers), gl.STREAM_DRAW)
	gl.DrawArrays(gl.POINTS, 0, int32(len(markers)))
	gl.BindVertexArray(0)

	// The marker program replaced whatever the last material bound.
	if prog, ok := d.glProgram(d.current); ok {
		gl.UseProgram(prog)
	}
}

func (d *Device) EndFrame() error {
	gl.Flush()
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	return nil
}

// Present swaps the window's buffers.
func (d *Device) Present() {
	if d.Window != nil {
		d.Window.SwapBuffers()
	}
}

func (d *Device) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (d *Device) Release() {
	for _, m := range d.meshes {
		gl.DeleteBuffers(1, &m.vbo)
		gl.DeleteBuffers(1, &m.ebo)
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if len(d.textures) > 0 {
		gl.DeleteTextures(int32(len(d.textures)), &d.textures[0])
	}
	if d.fallback[0] != 0 {
		gl.DeleteTextures(int32(len(d.fallback)), &d.fallback[0])
		d.fallback = [2]uint32{}
	}
	for _, p := range d.programs {
		gl.DeleteProgram(p)
	}
	if d.marker.program != 0 {
		gl.DeleteBuffers(1, &d.marker.vbo)
		gl.DeleteVertexArrays(1, &d.marker.vao)
		gl.DeleteProgram(d.marker.program)
	}
	d.meshes, d.textures, d.programs = nil, nil, nil
}

var _ render.Device = (*Device)(nil)
