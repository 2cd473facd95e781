package lightpass

import (
	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneObject is one placed model: its draw group plus the transform the frame
// controller animates.
type SceneObject struct {
	Name      string
	Group     *render.ModelGroup
	Transform *core.Transform
	Bobber    *core.Bobber
	Tracked   bool
}

// update writes the object's world matrix into its group.
func (o *SceneObject) update(dt float32) {
	o.Bobber.Update(dt)
	o.Group.Transform = o.Transform.Offset(o.Bobber.Delta()).ObjectToWorld()
}

// SceneState is everything the frame controller mutates between frames.
type SceneState struct {
	Camera *core.ArcballCamera

	Sun         *core.DirectionalLight
	Rotator     *core.LightRotator
	RotateLight bool
	Points      []*core.PointLight

	Objects []*SceneObject
	// TrackedPosition follows the movement keys; the view is centred on it.
	TrackedPosition mgl32.Vec3
	Move            core.MoveInput
	MoveSpeed       float32

	ShowLightMarkers bool
	MarkerSize       float32
}

// NewSceneState builds the lights, camera and movement settings from cfg. Objects
// are added once their meshes are uploaded.
func NewSceneState(cfg *Config, aspect float32) *SceneState {
	cam := cfg.Camera
	s := &SceneState{
		Camera:           core.NewArcballCamera(cam.Theta, cam.Phi, cam.Radius, cam.FovY, aspect, cam.Near, cam.Far),
		MoveSpeed:        cfg.Movement.Speed,
		ShowLightMarkers: cfg.Debug.ShowLightMarkers,
		MarkerSize:       cfg.Debug.MarkerSize,
	}

	if d := cfg.Lights.Directional; d != nil {
		s.Rotator = &core.LightRotator{Theta: d.Theta, Rate: d.Rate}
		s.RotateLight = d.Rotate
		s.Sun = &core.DirectionalLight{
			Direction: core.DirectionFromAngle(d.Theta),
			Colour:    d.Colour,
		}
	}
	for _, p := range cfg.Lights.Point {
		s.Points = append(s.Points, &core.PointLight{
			Position:    p.Position,
			Colour:      p.Colour,
			Attenuation: p.Attenuation,
		})
	}

	for _, m := range cfg.Models {
		if m.Tracked {
			s.TrackedPosition = m.Position
		}
	}
	return s
}

// Lights lists the directional light first so it lights the base pass.
func (s *SceneState) Lights() core.LightSet {
	lights := make(core.LightSet, 0, 1+len(s.Points))
	if s.Sun != nil {
		lights = append(lights, s.Sun)
	}
	for _, p := range s.Points {
		lights = append(lights, p)
	}
	return lights
}

// AddObject registers a model. Groups render in the order they were added.
func (s *SceneState) AddObject(m ModelConfig, instances []*render.Drawable) *SceneObject {
	group := render.NewModelGroup(m.Name)
	group.Instances = instances
	group.Transparent = m.Transparent
	group.Material = m.Material

	obj := &SceneObject{
		Name:      m.Name,
		Group:     group,
		Transform: core.NewTransformYaw(m.Position, m.Yaw, m.Scale),
		Tracked:   m.Tracked,
	}
	if m.Bob != nil {
		obj.Bobber = core.NewBobber(m.Bob.Amplitude, m.Bob.Period)
	}
	if obj.Tracked {
		obj.Transform.Position = s.TrackedPosition
	}
	obj.update(0)
	s.Objects = append(s.Objects, obj)
	return obj
}

func (s *SceneState) Object(name string) (*SceneObject, bool) {
	for _, o := range s.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

func (s *SceneState) Groups() []*render.ModelGroup {
	groups := make([]*render.ModelGroup, len(s.Objects))
	for i, o := range s.Objects {
		groups[i] = o.Group
	}
	return groups
}

// Advance applies one frame of simulation: the light sweep, the tracked object's
// movement and any bobbing. dt == 0 leaves every value where it was.
func (s *SceneState) Advance(dt float32) {
	if s.Rotator != nil && s.Sun != nil {
		s.Rotator.Enabled = s.RotateLight
		s.Rotator.Advance(s.Sun, dt)
	}

	s.TrackedPosition = core.ApplyMovement(s.TrackedPosition, s.Move, s.MoveSpeed, dt)

	for _, o := range s.Objects {
		if o.Tracked {
			o.Transform.Position = s.TrackedPosition
		}
		o.update(dt)
	}
}

// View is the orbit camera re-centred on the tracked position.
func (s *SceneState) View() mgl32.Mat4 {
	p := s.TrackedPosition
	return s.Camera.ViewTransform().Mul4(mgl32.Translate3D(-p.X(), -p.Y(), -p.Z()))
}

// Frame snapshots the scene for the sequencer.
func (s *SceneState) Frame() render.Frame {
	return render.Frame{
		View:             s.View(),
		Projection:       s.Camera.ProjectionTransform(),
		Lights:           s.Lights(),
		Groups:           s.Groups(),
		ShowLightMarkers: s.ShowLightMarkers,
		MarkerSize:       s.MarkerSize,
	}
}
