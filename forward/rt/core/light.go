package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type LightKind uint32

const (
	LightNone LightKind = iota
	LightDirectional
	LightPoint
)

func (k LightKind) String() string {
	switch k {
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	default:
		return "none"
	}
}

// Distance from the origin at which a directional light's debug marker is drawn.
const DirectionalMarkerDistance = 10.0

// Light is the view of a light the pass sequencer works with.
type Light interface {
	Kind() LightKind
	LightColour() mgl32.Vec3
	// MarkerPosition is where the light is drawn by the debug overlay.
	MarkerPosition() mgl32.Vec3
}

// DirectionalLight points towards the light source. Direction is used as given and never renormalised.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Colour    mgl32.Vec3
}

func NewDirectionalLight() *DirectionalLight {
	return &DirectionalLight{
		Direction: mgl32.Vec3{0, 1, 0},
		Colour:    mgl32.Vec3{1, 1, 1},
	}
}

func (l *DirectionalLight) Kind() LightKind         { return LightDirectional }
func (l *DirectionalLight) LightColour() mgl32.Vec3 { return l.Colour }

func (l *DirectionalLight) MarkerPosition() mgl32.Vec3 {
	return l.Direction.Mul(DirectionalMarkerDistance)
}

// PointLight attenuates with (constant, linear, quadratic) coefficients stored in Attenuation.
type PointLight struct {
	Position    mgl32.Vec3
	Colour      mgl32.Vec3
	Attenuation mgl32.Vec3
}

func NewPointLight() *PointLight {
	return &PointLight{
		Colour:      mgl32.Vec3{1, 1, 1},
		Attenuation: mgl32.Vec3{1, 1, 1},
	}
}

func (l *PointLight) Kind() LightKind            { return LightPoint }
func (l *PointLight) LightColour() mgl32.Vec3    { return l.Colour }
func (l *PointLight) MarkerPosition() mgl32.Vec3 { return l.Position }

// LightSet is ordered: the first light lights the base pass, every later light gets an additive pass.
type LightSet []Light

// Base returns the light of the base pass, or nil for an empty set.
func (s LightSet) Base() Light {
	if len(s) == 0 {
		return nil
	}
	return s[0]
}

func (s LightSet) Additional() []Light {
	if len(s) < 2 {
		return nil
	}
	return s[1:]
}

// Unlit is bound in place of a base light when the scene has none, so the base pass renders black.
var Unlit Light = &DirectionalLight{Direction: mgl32.Vec3{0, 1, 0}}

// LightRotator sweeps a directional light around the Z axis in the XY plane.
type LightRotator struct {
	Theta   float32 // degrees
	Rate    float32 // degrees per second
	Enabled bool
}

func NewLightRotator() *LightRotator {
	return &LightRotator{
		Theta:   70,
		Rate:    30,
		Enabled: true,
	}
}

// Advance moves theta by rate*dt when enabled and writes (cos θ, sin θ, 0) into the light.
// The direction is written even for dt == 0, which keeps repeated frames identical.
func (r *LightRotator) Advance(light *DirectionalLight, dt float32) {
	if r == nil || light == nil || !r.Enabled {
		return
	}
	r.Theta += r.Rate * dt
	r.Theta = float32(math.Mod(float64(r.Theta), 360))
	light.Direction = DirectionFromAngle(r.Theta)
}

func DirectionFromAngle(thetaDeg float32) mgl32.Vec3 {
	rad := float64(mgl32.DegToRad(thetaDeg))
	return mgl32.Vec3{float32(math.Cos(rad)), float32(math.Sin(rad)), 0}
}
