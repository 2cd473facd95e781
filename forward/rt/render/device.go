package render

import (
	"image"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type BlendMode int

const (
	BlendNone BlendMode = iota
	// BlendAdditive is (ONE, ONE).
	BlendAdditive
	// BlendAlpha is (SRC_ALPHA, ONE_MINUS_SRC_ALPHA).
	BlendAlpha
)

func (b BlendMode) String() string {
	switch b {
	case BlendAdditive:
		return "additive"
	case BlendAlpha:
		return "alpha"
	default:
		return "none"
	}
}

// DepthState always tests with LESS_EQUAL when Test is set, so additive passes hit the base pass depth.
type DepthState struct {
	Test  bool
	Write bool
}

var (
	DepthOpaque   = DepthState{Test: true, Write: true}
	DepthReadOnly = DepthState{Test: true, Write: false}
)

// ShaderSource holds the program text for one profile. WGSL keeps both stages in Vertex.
type ShaderSource struct {
	Vertex   string
	Fragment string
}

// FallbackDiffuse is the 1x1 white image sampled when no diffuse map is bound.
func FallbackDiffuse() *image.RGBA { return solidImage(255, 255, 255, 255) }

// FallbackNormalMap is the 1x1 unperturbed tangent-space normal.
func FallbackNormalMap() *image.RGBA { return solidImage(128, 128, 255, 255) }

func solidImage(r, g, b, a uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []uint8{r, g, b, a})
	return img
}

// Device is the contract a graphics backend implements for the pass sequencer.
// Uniform values persist per program until overwritten.
type Device interface {
	CreateProgram(profile core.Profile, src ShaderSource) (core.ProgramID, error)
	CreateMesh(mesh *core.MeshData) (core.MeshID, error)
	CreateTexture(img *image.RGBA) (core.TextureID, error)

	// UniformLocation reports false for names the program does not expose.
	UniformLocation(program core.ProgramID, name string) (int32, bool)

	BeginFrame() error
	Clear()
	SetBlend(mode BlendMode)
	SetDepth(state DepthState)
	UseProgram(program core.ProgramID)
	SetUniformMat4(loc int32, m mgl32.Mat4)
	SetUniformVec3(loc int32, v mgl32.Vec3)
	SetUniformInt(loc int32, v int32)
	// BindTexture with InvalidTexture binds the unit's fallback: white for the
	// diffuse unit, a flat normal for the normal map unit.
	BindTexture(unit uint32, tex core.TextureID)
	DrawMesh(mesh core.MeshID)
	DrawMarkers(viewProj mgl32.Mat4, markers []core.Marker, size float32)
	EndFrame() error

	Resize(width, height int)
	Release()
}
