package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Bobber moves an object up and down between 0 and Amplitude, easing at both ends.
type Bobber struct {
	Amplitude float32
	Period    float32 // seconds for a full up-and-down cycle

	up     *gween.Tween
	down   *gween.Tween
	rising bool
	offset float32
}

func NewBobber(amplitude, period float32) *Bobber {
	b := &Bobber{
		Amplitude: amplitude,
		Period:    period,
		rising:    true,
	}
	half := period / 2
	if half <= 0 {
		half = 1
	}
	b.up = gween.New(0, amplitude, half, ease.InOutSine)
	b.down = gween.New(amplitude, 0, half, ease.InOutSine)
	return b
}

// Update advances the animation and returns the current vertical offset.
func (b *Bobber) Update(dt float32) float32 {
	if b == nil || b.Amplitude == 0 || dt <= 0 {
		return b.Offset()
	}

	active := b.down
	if b.rising {
		active = b.up
	}
	value, done := active.Update(dt)
	b.offset = value
	if done {
		active.Reset()
		b.rising = !b.rising
	}
	return b.offset
}

func (b *Bobber) Offset() float32 {
	if b == nil {
		return 0
	}
	return b.offset
}

func (b *Bobber) Delta() mgl32.Vec3 {
	return mgl32.Vec3{0, b.Offset(), 0}
}
