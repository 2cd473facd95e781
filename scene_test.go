package lightpass

import (
	"testing"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// demoScene registers every default model with one drawable each.
func demoScene(t *testing.T) *SceneState {
	t.Helper()
	cfg := DefaultConfig()
	s := NewSceneState(cfg, 4.0/3.0)
	for i, m := range cfg.Models {
		s.AddObject(m, []*render.Drawable{{Name: m.Name, Mesh: core.MeshID(i + 1), Diffuse: 1}})
	}
	return s
}

func translation(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}

func TestNewSceneStateLights(t *testing.T) {
	s := NewSceneState(DefaultConfig(), 1)

	lights := s.Lights()
	require.Len(t, lights, 2)
	assert.Equal(t, core.LightDirectional, lights.Base().Kind())
	assert.Equal(t, core.LightPoint, lights.Additional()[0].Kind())
	assert.True(t, s.RotateLight)
	assert.InDelta(t, 70, s.Rotator.Theta, 1e-6)
	assert.True(t, s.Sun.Direction.ApproxEqualThreshold(core.DirectionFromAngle(70), 1e-6))
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, s.TrackedPosition)
}

func TestNewSceneStateWithoutDirectional(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lights.Directional = nil
	s := NewSceneState(cfg, 1)

	require.Len(t, s.Lights(), 1)
	assert.Equal(t, core.LightPoint, s.Lights().Base().Kind())
	assert.NotPanics(t, func() { s.Advance(1) })
}

func TestSceneGroupsKeepConfigOrder(t *testing.T) {
	s := demoScene(t)

	var names []string
	for _, g := range s.Groups() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"beast", "tier1", "tier2", "tier3", "terrain", "cylinder"}, names)

	cyl, ok := s.Object("cylinder")
	require.True(t, ok)
	assert.True(t, cyl.Group.Transparent)
	assert.Equal(t, "basic", cyl.Group.Material)
}

func TestSceneAddObjectWithoutInstances(t *testing.T) {
	s := NewSceneState(DefaultConfig(), 1)
	obj := s.AddObject(ModelConfig{Name: "broken", Path: "missing.glb", Scale: 1}, nil)

	assert.True(t, obj.Group.Empty())
	assert.Len(t, s.Groups(), 1)
}

func TestSceneTransformsFromConfig(t *testing.T) {
	s := demoScene(t)

	tier3, _ := s.Object("tier3")
	assert.Equal(t, mgl32.Vec3{3.5, 0, 1.5}, translation(tier3.Group.Transform))
	assert.InDelta(t, 0.1, tier3.Group.Transform.Col(0).Vec3().Len(), 1e-6)

	beast, _ := s.Object("beast")
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, translation(beast.Group.Transform))
}

func TestSceneAdvanceBobs(t *testing.T) {
	s := demoScene(t)
	s.Advance(0.5)

	cyl, _ := s.Object("cylinder")
	pos := translation(cyl.Group.Transform)
	assert.InDelta(t, -2, pos.X(), 1e-6)
	assert.InDelta(t, 2.125, pos.Y(), 1e-4)
	assert.Equal(t, mgl32.Vec3{-2, 2, 0}, cyl.Transform.Position, "base position is not moved")
}

func TestSceneViewCentresTrackedPosition(t *testing.T) {
	s := demoScene(t)
	s.TrackedPosition = mgl32.Vec3{1, 2, 3}

	got := s.View().Mul4x1(s.TrackedPosition.Vec4(1))
	want := s.Camera.ViewTransform().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, got.ApproxEqualThreshold(want, 1e-4), "got %v want %v", got, want)
}

func TestSceneFrameSnapshot(t *testing.T) {
	s := demoScene(t)
	f := s.Frame()

	assert.Len(t, f.Groups, 6)
	assert.Len(t, f.Lights, 2)
	assert.True(t, f.ShowLightMarkers)
	assert.Equal(t, float32(10), f.MarkerSize)
	assert.Equal(t, s.Camera.ProjectionTransform(), f.Projection)
}
