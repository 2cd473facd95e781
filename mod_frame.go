package lightpass

import (
	"fmt"

	"github.com/gekko3d/lightpass/forward/rt/render"
)

// FrameClock supplies the seconds elapsed since the previous frame.
type FrameClock interface {
	Tick() float32
}

// FrameRenderer draws one prepared frame.
type FrameRenderer interface {
	Render(frame *render.Frame) error
}

// FrameController advances the scene and hands one frame to the renderer.
type FrameController struct {
	Clock    FrameClock
	Scene    *SceneState
	Renderer FrameRenderer
	Profiler *Profiler

	last render.Frame
}

// Frame ticks the clock, advances the scene and renders exactly once. A missing
// clock gives dt == 0, so the scene holds still.
func (fc *FrameController) Frame() error {
	var dt float32
	if fc.Clock != nil {
		dt = fc.Clock.Tick()
	}

	fc.Profiler.BeginScope("update")
	fc.Scene.Advance(dt)
	fc.last = fc.Scene.Frame()
	fc.Profiler.EndScope("update")

	fc.Profiler.BeginScope("render")
	err := fc.Renderer.Render(&fc.last)
	fc.Profiler.EndScope("render")

	if st, ok := fc.Renderer.(interface{ Stats() render.Stats }); ok && fc.Profiler != nil {
		stats := st.Stats()
		fc.Profiler.SetCount("passes", stats.Passes)
		fc.Profiler.SetCount("draws", stats.Draws)
		fc.Profiler.SetCount("programs", stats.ProgramUses)
		fc.Profiler.SetCount("markers", stats.Markers)
	}
	return err
}

// LastFrame is the frame most recently passed to the renderer.
func (fc *FrameController) LastFrame() *render.Frame {
	return &fc.last
}

// FrameModule owns the scene state and runs the frame controller once per loop
// while the app is running.
type FrameModule struct{}

func (mod FrameModule) Install(app *App, cmd *Commands) {
	cfg, ok := Resource[Config](app)
	if !ok {
		app.fail(fmt.Errorf("frame: no config"))
		return
	}
	rc, ok := Resource[RenderContext](app)
	if !ok {
		app.fail(fmt.Errorf("frame: no renderer"))
		return
	}
	aspect := float32(cfg.Window.Width) / float32(cfg.Window.Height)
	if ws, ok := Resource[WindowState](app); ok {
		aspect = ws.Aspect()
	}
	clock, _ := Resource[Clock](app)

	scene := NewSceneState(cfg, aspect)
	profiler := NewProfiler()
	fc := &FrameController{
		Scene:    scene,
		Renderer: rc.Sequencer,
		Profiler: profiler,
	}
	if clock != nil {
		fc.Clock = clock
	}
	cmd.AddResources(scene, profiler, fc)

	app.UseSystem(
		System(frameSystem).
			InStage(Render).
			InState(OnExecute(StateRunning)),
	)
	app.UseSystem(
		System(titleSystem).
			InStage(PostRender).
			InState(OnExecute(StateRunning)),
	)
}

func frameSystem(fc *FrameController, cmd *Commands) {
	if err := fc.Frame(); err != nil {
		cmd.Logger().Warnf("frame skipped: %v", err)
	}
}

const titleRefreshFrames = 30

func titleSystem(ws *WindowState, clock *Clock, cfg *Config) {
	if clock.Frames()%titleRefreshFrames != 1 {
		return
	}
	ws.SetTitle(fmt.Sprintf("%s | %.1f fps | %.2f ms", cfg.Window.Title, clock.AverageFPS(), clock.AverageSPF()*1000))
}
