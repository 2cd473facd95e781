package shaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryBuiltinProfileHasSources(t *testing.T) {
	for _, lang := range []Language{WGSL, GLSL} {
		lib := NewLibrary(lang, "")
		for _, p := range core.BuiltinProfiles() {
			src, err := lib.Source(p)
			require.NoError(t, err, "%s/%s", lang, p.Name)
			assert.NotEmpty(t, src.Vertex)
			if lang == GLSL {
				assert.NotEmpty(t, src.Fragment)
			}
		}
		_, err := lib.Program(MarkerProgram)
		require.NoError(t, err)
	}
}

func TestGLSLDeclaresProfileUniforms(t *testing.T) {
	lib := NewLibrary(GLSL, "")
	for _, p := range core.BuiltinProfiles() {
		src, err := lib.Source(p)
		require.NoError(t, err)
		all := src.Vertex + src.Fragment
		for _, name := range p.Uniforms() {
			assert.Contains(t, all, " "+name+";", "%s should declare %s", p.Name, name)
		}
	}
}

func TestWGSLComposition(t *testing.T) {
	src, err := NewLibrary(WGSL, "").Source(core.ProfileNormalMappedPoint)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(src.Vertex, "struct Uniforms"))
	assert.Contains(t, src.Vertex, "fn surface_normal")
	assert.Contains(t, src.Vertex, "point_attenuation(dist)")
	assert.Empty(t, src.Fragment)
}

func TestUnknownProgram(t *testing.T) {
	_, err := NewLibrary(GLSL, "").Program("toon")
	assert.ErrorIs(t, err, ErrUnknownProgram)

	_, err = NewLibrary(Language("hlsl"), "").Program("basic")
	assert.Error(t, err)
}

func TestDirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "glsl"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "glsl", "basic.frag"), []byte("custom"), 0o644))

	src, err := NewLibrary(GLSL, dir).Program("basic")
	require.NoError(t, err)
	assert.Equal(t, "custom", src.Fragment)
	// Files missing from the directory come from the embedded set.
	assert.Contains(t, src.Vertex, "mvpMatrix")
}
