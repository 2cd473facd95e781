package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// NewTransformYaw builds a transform rotated about +Y by yawDeg degrees with a uniform scale.
func NewTransformYaw(position mgl32.Vec3, yawDeg float32, scale float32) *Transform {
	return &Transform{
		Position: position,
		Rotation: mgl32.QuatRotate(mgl32.DegToRad(yawDeg), mgl32.Vec3{0, 1, 0}),
		Scale:    mgl32.Vec3{scale, scale, scale},
	}
}

func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// Offset returns a copy moved by delta.
func (t *Transform) Offset(delta mgl32.Vec3) *Transform {
	out := *t
	out.Position = t.Position.Add(delta)
	return &out
}
