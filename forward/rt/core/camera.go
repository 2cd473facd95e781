package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ArcballCamera orbits the origin. Theta is the elevation and Phi the azimuth, both in degrees.
type ArcballCamera struct {
	Theta  float32
	Phi    float32
	Radius float32
	FovY   float32 // degrees
	Aspect float32
	Near   float32
	Far    float32
}

const (
	minRadius = 0.01
	maxTheta  = 89.0
)

func NewArcballCamera(theta, phi, radius, fovY, aspect, near, far float32) *ArcballCamera {
	c := &ArcballCamera{
		Theta:  theta,
		Phi:    phi,
		Radius: radius,
		FovY:   fovY,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	c.clamp()
	return c
}

func NewDefaultArcballCamera(aspect float32) *ArcballCamera {
	return NewArcballCamera(-33, 45, 40, 55, aspect, 0.1, 5000)
}

func (c *ArcballCamera) ProjectionTransform() mgl32.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// ViewTransform places the eye Radius units from the origin, tilted by Theta and turned by Phi.
func (c *ArcballCamera) ViewTransform() mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, -c.Radius).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(-c.Theta))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(-c.Phi)))
}

func (c *ArcballCamera) SetAspect(aspect float32) {
	if aspect > 0 {
		c.Aspect = aspect
	}
}

func (c *ArcballCamera) RotateCamera(dTheta, dPhi float32) {
	c.Theta += dTheta
	c.Phi += dPhi
	c.clamp()
}

// ScaleRadius multiplies the orbit radius. Non-positive factors are ignored.
func (c *ArcballCamera) ScaleRadius(s float32) {
	if s <= 0 {
		return
	}
	c.Radius *= s
	if c.Radius < minRadius {
		c.Radius = minRadius
	}
}

func (c *ArcballCamera) clamp() {
	c.Theta = mgl32.Clamp(c.Theta, -maxTheta, maxTheta)
	if c.Radius < minRadius {
		c.Radius = minRadius
	}
}

// ZoomFactor maps a scroll offset to a radius multiplier: scrolling down zooms out.
func ZoomFactor(yoffset float64) float32 {
	switch {
	case yoffset < 0:
		return 1.1
	case yoffset > 0:
		return 0.9
	default:
		return 1
	}
}
