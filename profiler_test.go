package lightpass

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfilerScopesAndCounts(t *testing.T) {
	p := NewProfiler()
	p.BeginScope("update")
	p.EndScope("update")
	p.BeginScope("render")
	p.EndScope("render")
	p.BeginScope("update")
	p.SetCount("draws", 12)
	p.SetCount("passes", 5)

	assert.Equal(t, []string{"update", "render"}, p.Order)

	out := p.GetStatsString()
	assert.Contains(t, out, "update")
	assert.Contains(t, out, "draws          : 12")
	assert.Less(t, strings.Index(out, "draws"), strings.Index(out, "passes"))

	p.Reset()
	assert.Zero(t, p.Scopes["render"])
}

func TestNilProfilerIsSafe(t *testing.T) {
	var p *Profiler
	assert.NotPanics(t, func() {
		p.BeginScope("x")
		p.EndScope("x")
		p.SetCount("y", 1)
	})
}
