package render

import (
	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type PassKind int

const (
	PassClear PassKind = iota
	PassOpaqueBase
	PassOpaqueAdditive
	PassTransparent
	PassDebugOverlay
)

func (k PassKind) String() string {
	switch k {
	case PassClear:
		return "Clear"
	case PassOpaqueBase:
		return "OpaqueBase"
	case PassOpaqueAdditive:
		return "OpaqueAdditive"
	case PassTransparent:
		return "Transparent"
	case PassDebugOverlay:
		return "DebugOverlay"
	default:
		return "Unknown"
	}
}

// DrawItem renders one group with one material.
type DrawItem struct {
	Material *Material
	Group    *ModelGroup
	Model    mgl32.Mat4
}

// RenderPass is one step of a frame with its fixed-function state.
type RenderPass struct {
	Kind    PassKind
	Blend   BlendMode
	Depth   DepthState
	Light   core.Light
	Draws   []DrawItem
	Markers []core.Marker
}

// Frame is everything the sequencer reads for one frame. Groups keep registration order.
type Frame struct {
	View             mgl32.Mat4
	Projection       mgl32.Mat4
	Lights           core.LightSet
	Groups           []*ModelGroup
	ShowLightMarkers bool
	MarkerSize       float32
}

func (f *Frame) ViewProjection() mgl32.Mat4 {
	return f.Projection.Mul4(f.View)
}

// LightMarkers returns one marker per light, coloured with the light's colour.
func LightMarkers(lights core.LightSet) []core.Marker {
	markers := make([]core.Marker, 0, len(lights))
	for _, l := range lights {
		p := l.MarkerPosition()
		c := l.LightColour()
		markers = append(markers, core.Marker{
			Position: [3]float32{p.X(), p.Y(), p.Z()},
			Color:    [4]float32{c.X(), c.Y(), c.Z(), 1},
		})
	}
	return markers
}
