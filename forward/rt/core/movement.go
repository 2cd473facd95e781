package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

const DefaultMoveSpeed float32 = 3.0

// MoveInput holds the held-direction flags sampled from the keyboard.
type MoveInput struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
}

func (m MoveInput) Any() bool {
	return m.Forward || m.Back || m.Left || m.Right
}

// ApplyMovement displaces pos along the scene diagonals. Forward wins over Back and
// Left wins over Right, so opposing keys never cancel out.
func ApplyMovement(pos mgl32.Vec3, in MoveInput, speed, dt float32) mgl32.Vec3 {
	s := speed * dt

	if in.Forward {
		pos = pos.Add(mgl32.Vec3{-s, 0, -s})
	} else if in.Back {
		pos = pos.Add(mgl32.Vec3{s, 0, s})
	}

	if in.Left {
		pos = pos.Add(mgl32.Vec3{-s, 0, s})
	} else if in.Right {
		pos = pos.Add(mgl32.Vec3{s, 0, -s})
	}

	return pos
}
