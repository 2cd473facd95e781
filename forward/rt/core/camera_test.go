package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestZoomFactor(t *testing.T) {
	tests := []struct {
		name    string
		yoffset float64
		want    float32
	}{
		{"scroll down zooms out", -1, 1.1},
		{"scroll up zooms in", 1, 0.9},
		{"no scroll", 0, 1},
		{"small negative", -0.25, 1.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ZoomFactor(tt.yoffset))
		})
	}
}

func TestArcballScaleRadius(t *testing.T) {
	cam := NewDefaultArcballCamera(16.0 / 9.0)
	assert.Equal(t, float32(40), cam.Radius)

	cam.ScaleRadius(ZoomFactor(-1))
	assert.Equal(t, float32(40)*float32(1.1), cam.Radius)

	r := cam.Radius
	cam.ScaleRadius(ZoomFactor(0))
	assert.Equal(t, r, cam.Radius)

	cam.ScaleRadius(-2)
	assert.Equal(t, r, cam.Radius)
}

func TestArcballRotateClampsElevation(t *testing.T) {
	cam := NewDefaultArcballCamera(1)
	cam.RotateCamera(-500, 10)
	assert.Equal(t, float32(-maxTheta), cam.Theta)
	assert.Equal(t, float32(55), cam.Phi)
}

func TestArcballViewDistance(t *testing.T) {
	cam := NewArcballCamera(20, 30, 12, 60, 1, 0.1, 100)
	// The origin sits Radius units in front of the eye.
	origin := cam.ViewTransform().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -12, origin.Z(), 1e-5)
	assert.InDelta(t, 0, origin.X(), 1e-5)
	assert.InDelta(t, 0, origin.Y(), 1e-5)
}

func TestArcballAspect(t *testing.T) {
	cam := NewDefaultArcballCamera(1)
	cam.SetAspect(2)
	assert.Equal(t, float32(2), cam.Aspect)
	cam.SetAspect(0)
	assert.Equal(t, float32(2), cam.Aspect)

	want := mgl32.Perspective(mgl32.DegToRad(55), 2, 0.1, 5000)
	assert.Equal(t, want, cam.ProjectionTransform())
}
