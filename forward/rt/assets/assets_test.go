package assets

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render/rendertest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// writeQuad saves a unit quad in the XZ plane facing +Y. Normals are left out
// when withNormals is false.
func writeQuad(t *testing.T, dir string, withNormals bool) string {
	t.Helper()
	doc := gltf.NewDocument()
	attrs := map[string]int{
		gltf.POSITION:   modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, -1}, {0, 0, -1}}),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}),
	}
	if withNormals {
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0}})
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})),
			Attributes: attrs,
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "Root", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	path := filepath.Join(dir, "quad.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func writeBMP(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 40), uint8(y * 40), 200, 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, bmp.Encode(f, img))
	return path
}

func TestImportSceneQuad(t *testing.T) {
	path := writeQuad(t, t.TempDir(), true)

	meshes, err := ImportScene(path)
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, "quad", m.Name)
	assert.Len(t, m.Vertices, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices)
	for _, v := range m.Vertices {
		assert.Equal(t, [4]float32{1, 1, 1, 1}, v.Color)
		assert.InDelta(t, 1, v.Tangent[0], 1e-5, "u runs along +X")
		assert.InDelta(t, 0, v.Tangent[1], 1e-5)
		assert.Equal(t, float32(1), v.Tangent[3])
	}
}

func TestImportSceneRebuildsNormals(t *testing.T) {
	path := writeQuad(t, t.TempDir(), false)

	meshes, err := ImportScene(path)
	require.NoError(t, err)
	for _, v := range meshes[0].Vertices {
		assert.InDelta(t, 1, v.Normal[1], 1e-5)
	}
}

func TestImportSceneFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := ImportScene(filepath.Join(dir, "missing.glb"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.gltf")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = ImportScene(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.glb")
	require.NoError(t, gltf.SaveBinary(gltf.NewDocument(), empty))
	_, err = ImportScene(empty)
	assert.ErrorIs(t, err, ErrNoMeshes)
}

func TestComputeTangentsDegenerateUV(t *testing.T) {
	m := core.MeshData{
		Vertices: []core.Vertex{
			{Position: [3]float32{0, 0, 0}, Normal: [3]float32{0, 0, 1}},
			{Position: [3]float32{1, 0, 0}, Normal: [3]float32{0, 0, 1}},
			{Position: [3]float32{0, 1, 0}, Normal: [3]float32{0, 0, 1}},
		},
		Indices: []uint32{0, 1, 2, 0, 1, 9},
	}
	ComputeTangents(&m)
	for _, v := range m.Vertices {
		tan := mgl32.Vec3{v.Tangent[0], v.Tangent[1], v.Tangent[2]}
		assert.InDelta(t, 1, tan.Len(), 1e-5)
		assert.InDelta(t, 0, tan.Dot(mgl32.Vec3(v.Normal)), 1e-5)
	}
}

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()
	path := writeBMP(t, dir, "brick.bmp", 4, 3)

	img, err := LoadTexture(path, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(4, 3), img.Bounds().Size())
	assert.Equal(t, 16, img.Stride)
	assert.Equal(t, color.RGBA{40, 80, 200, 255}, img.RGBAAt(1, 2))

	_, err = LoadTexture(path, FormatPNG)
	assert.Error(t, err, "forced decoder must not fall back")

	_, err = LoadTexture(filepath.Join(dir, "brick.tga"), FormatAuto)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = LoadTexture(filepath.Join(dir, "missing.bmp"), FormatAuto)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoaderAndUploader(t *testing.T) {
	dir := t.TempDir()
	quad := writeQuad(t, dir, true)
	tex := writeBMP(t, dir, "diffuse.bmp", 2, 2)

	loader := NewLoader(2, nil)
	models := loader.LoadModels([]ModelRequest{
		{Name: "ground", Path: quad},
		{Name: "beast", Path: filepath.Join(dir, "beast.glb")},
	})
	require.Len(t, models, 2)
	assert.NoError(t, models[0].Err)
	assert.Error(t, models[1].Err)
	assert.NotEqual(t, models[0].ID, models[1].ID)

	textures := loader.LoadTextures([]string{tex, tex, "", filepath.Join(dir, "nope.bmp")})
	require.Len(t, textures, 2)
	assert.NoError(t, textures[tex].Err)

	rec := rendertest.NewRecorder()
	up := NewUploader(rec, nil)
	override := TextureOverride{Diffuse: tex, NormalMap: filepath.Join(dir, "nope.bmp")}

	ground := up.Instances(models[0], textures, override)
	require.Len(t, ground, 1)
	assert.True(t, ground[0].Mesh.Valid())
	assert.True(t, ground[0].Diffuse.Valid())
	assert.False(t, ground[0].NormalMap.Valid())

	assert.Empty(t, up.Instances(models[1], textures, override))

	// Same path uploads once.
	again := up.Instances(models[0], textures, override)
	assert.Equal(t, ground[0].Diffuse, again[0].Diffuse)
	assert.Len(t, rec.TextureSize, 1)
}

func TestLoaderReportsMalformedScene(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "dangling.gltf")
	require.NoError(t, os.WriteFile(bad,
		[]byte(`{"asset":{"version":"2.0"},"meshes":[{"primitives":[{"attributes":{"POSITION":7}}]}]}`), 0o644))

	loader := NewLoader(1, nil)
	defer loader.Close()

	models := loader.LoadModels([]ModelRequest{{Name: "dangling", Path: bad}})
	require.Len(t, models, 1)
	assert.ErrorIs(t, models[0].Err, ErrBadAccessor)
	assert.Empty(t, models[0].Meshes)
}

func TestImportSceneRejectsIndexPastVertices(t *testing.T) {
	doc := gltf.NewDocument()
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 9})),
			Attributes: map[string]int{
				gltf.POSITION: modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
			},
		}},
	}}
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))

	_, err := ImportScene(path)
	assert.ErrorIs(t, err, ErrBadIndex)
}

func TestLoaderRecoversPanickingTask(t *testing.T) {
	loader := NewLoader(1, nil)
	defer loader.Close()

	var wg sync.WaitGroup
	var err error
	loader.submit(&wg, &err, func() { panic("boom") })
	wg.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// The worker survives and keeps serving.
	path := writeQuad(t, t.TempDir(), true)
	models := loader.LoadModels([]ModelRequest{{Name: "quad", Path: path}})
	assert.NoError(t, models[0].Err)
}

func TestLoaderCloseReleasesWorkers(t *testing.T) {
	path := writeQuad(t, t.TempDir(), true)
	before := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		loader := NewLoader(4, nil)
		models := loader.LoadModels([]ModelRequest{{Name: "quad", Path: path}})
		require.NoError(t, models[0].Err)
		loader.Close()
		loader.Close()

		after := loader.LoadModels([]ModelRequest{{Name: "quad", Path: path}})
		assert.ErrorIs(t, after[0].Err, ErrLoaderClosed)
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 3*time.Second, 20*time.Millisecond)
}
