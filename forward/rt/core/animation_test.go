package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBobberCycles(t *testing.T) {
	b := NewBobber(1, 2)
	assert.Equal(t, float32(0), b.Offset())

	assert.InDelta(t, 0.5, b.Update(0.5), 1e-4)
	assert.InDelta(t, 1.0, b.Update(0.5), 1e-4)
	// Now falling.
	assert.InDelta(t, 0.5, b.Update(0.5), 1e-4)
	assert.InDelta(t, 0.0, b.Update(0.5), 1e-4)
}

func TestBobberIgnoresZeroDt(t *testing.T) {
	b := NewBobber(2, 4)
	b.Update(0.3)
	before := b.Offset()
	assert.Equal(t, before, b.Update(0))
	assert.Equal(t, before, b.Delta().Y())
}

func TestNilBobber(t *testing.T) {
	var b *Bobber
	assert.Equal(t, float32(0), b.Update(1))
	assert.Equal(t, float32(0), b.Delta().Y())
}
