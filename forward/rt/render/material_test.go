package render_test

import (
	"fmt"
	"testing"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"github.com/gekko3d/lightpass/forward/rt/render/rendertest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMaterialSetupFailure(t *testing.T) {
	rec := rendertest.NewRecorder()
	rec.FailPrograms["nmap_directional"] = true

	_, err := render.NewMaterial(rec, core.ProfileNormalMappedDirectional, render.ShaderSource{})
	require.Error(t, err)
	assert.ErrorIs(t, err, render.ErrShaderSetup)
	assert.ErrorIs(t, err, rendertest.ErrInjected)

	_, err = render.LoadMaterialLibrary(rec, core.BuiltinProfiles(), rendertest.StubSources)
	assert.ErrorIs(t, err, render.ErrShaderSetup)
}

func TestLoadMaterialLibrarySourceFailure(t *testing.T) {
	rec := rendertest.NewRecorder()
	_, err := render.LoadMaterialLibrary(rec, core.BuiltinProfiles(), func(p core.Profile) (render.ShaderSource, error) {
		return render.ShaderSource{}, fmt.Errorf("missing source for %s", p.Name)
	})
	assert.ErrorIs(t, err, render.ErrShaderSetup)
}

func TestMaterialBindInvalid(t *testing.T) {
	rec := rendertest.NewRecorder()

	var missing *render.Material
	assert.ErrorIs(t, missing.Bind(rec), render.ErrInvalidProgram)
	assert.ErrorIs(t, (&render.Material{}).Bind(rec), render.ErrInvalidProgram)
	assert.Empty(t, rec.Calls)
}

func TestMaterialUnknownSlotIsNoOp(t *testing.T) {
	rec := rendertest.NewRecorder()
	mat, err := render.NewMaterial(rec, core.ProfileBasic, render.ShaderSource{})
	require.NoError(t, err)
	require.NoError(t, mat.Bind(rec))
	rec.Reset()

	mat.SetMat4(rec, core.UniformModel, mgl32.Ident4())
	mat.SetVec3(rec, "doesNotExist", mgl32.Vec3{1, 2, 3})
	mat.SetInt(rec, core.UniformDiffuseTexture, 0)
	assert.Empty(t, rec.Calls)
	assert.False(t, mat.HasSlot(core.UniformModel))
	assert.True(t, mat.HasSlot(core.UniformMVP))
}

func TestMaterialBasicWritesCombinedTransform(t *testing.T) {
	rec := rendertest.NewRecorder()
	mat, err := render.NewMaterial(rec, core.ProfileBasic, render.ShaderSource{})
	require.NoError(t, err)
	require.NoError(t, mat.Bind(rec))

	view := mgl32.Translate3D(0, 0, -5)
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	model := mgl32.Translate3D(1, 2, 3)

	mat.SetCamera(rec, view, proj)
	rec.Reset()
	mat.SetModelTransform(rec, model)

	calls := rec.Filter(rendertest.OpUniform)
	require.Len(t, calls, 1)
	assert.Equal(t, core.UniformMVP, calls[0].Uniform)
	assert.Equal(t, fmt.Sprint(proj.Mul4(view).Mul4(model)), calls[0].Value)
}

func TestMaterialSeparateMatrices(t *testing.T) {
	rec := rendertest.NewRecorder()
	mat, err := render.NewMaterial(rec, core.ProfileTexturedDirectional, render.ShaderSource{})
	require.NoError(t, err)
	require.NoError(t, mat.Bind(rec))
	rec.Reset()

	mat.SetCamera(rec, mgl32.Ident4(), mgl32.Ident4())
	mat.SetModelTransform(rec, mgl32.Ident4())

	var names []string
	for _, c := range rec.Filter(rendertest.OpUniform) {
		names = append(names, c.Uniform)
	}
	assert.Equal(t, []string{core.UniformView, core.UniformProjection, core.UniformModel}, names)
}

func TestMaterialSetLight(t *testing.T) {
	rec := rendertest.NewRecorder()
	mat, err := render.NewMaterial(rec, core.ProfileTexturedPoint, render.ShaderSource{})
	require.NoError(t, err)
	require.NoError(t, mat.Bind(rec))
	rec.Reset()

	mat.SetLight(rec, core.NewDirectionalLight())
	assert.Empty(t, rec.Calls, "directional light on a point program is ignored")

	pt := &core.PointLight{Position: mgl32.Vec3{0, 1, 0}, Colour: mgl32.Vec3{1, 0, 0}, Attenuation: mgl32.Vec3{1, 0.1, 0.001}}
	mat.SetLight(rec, pt)
	assert.Equal(t, []string{
		"1/lightPosition=[0 1 0]",
		"1/lightColour=[1 0 0]",
		"1/lightAttenuation=[1 0.1 0.001]",
	}, rec.Uniforms())
}

func TestDrawableBindTextures(t *testing.T) {
	rec := rendertest.NewRecorder()

	plain := &render.Drawable{Mesh: 1, Diffuse: 7}
	plain.BindTextures(rec, core.ProfileNormalMappedDirectional.TextureUnits())
	binds := rec.Filter(rendertest.OpBindTexture)
	require.Len(t, binds, 2)
	assert.Equal(t, core.DiffuseUnit, binds[0].Unit)
	assert.Equal(t, core.TextureID(7), binds[0].Texture)
	assert.Equal(t, core.NormalMapUnit, binds[1].Unit)
	assert.Equal(t, core.InvalidTexture, binds[1].Texture, "missing map binds the fallback")

	rec.Reset()
	mapped := &render.Drawable{Mesh: 1, Diffuse: 7, NormalMap: 8}
	mapped.BindTextures(rec, core.ProfileNormalMappedDirectional.TextureUnits())
	binds = rec.Filter(rendertest.OpBindTexture)
	require.Len(t, binds, 2)
	assert.Equal(t, core.NormalMapUnit, binds[1].Unit)
	assert.Equal(t, core.TextureID(8), binds[1].Texture)

	rec.Reset()
	mapped.BindTextures(rec, core.ProfileBasic.TextureUnits())
	assert.Empty(t, rec.Calls)

	rec.Reset()
	untextured := &render.Drawable{Mesh: 1}
	untextured.BindTextures(rec, core.ProfileTexturedDirectional.TextureUnits())
	binds = rec.Filter(rendertest.OpBindTexture)
	require.Len(t, binds, 1)
	assert.Equal(t, core.InvalidTexture, binds[0].Texture)
}

func TestDrawableDrawSkipsInvalidMesh(t *testing.T) {
	rec := rendertest.NewRecorder()
	mat, err := render.NewMaterial(rec, core.ProfileTexturedDirectional, render.ShaderSource{})
	require.NoError(t, err)
	rec.Reset()

	(&render.Drawable{}).Draw(rec, mat, mgl32.Ident4())
	assert.Empty(t, rec.Calls)

	(&render.Drawable{Mesh: 3}).Draw(rec, mat, mgl32.Ident4())
	draws := rec.Filter(rendertest.OpDrawMesh)
	require.Len(t, draws, 1)
	assert.Equal(t, core.MeshID(3), draws[0].Mesh)
}

func TestModelGroupNormalMapped(t *testing.T) {
	g := render.NewModelGroup("tower")
	assert.False(t, g.NormalMapped())
	assert.True(t, g.Empty())

	g.Instances = []*render.Drawable{{NormalMap: 1}, {NormalMap: 2}}
	assert.True(t, g.NormalMapped())

	g.Instances = append(g.Instances, &render.Drawable{})
	assert.False(t, g.NormalMapped())
}
