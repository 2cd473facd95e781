package lightpass

import (
	"fmt"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/gpu"
	"github.com/gekko3d/lightpass/forward/rt/opengl"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"github.com/gekko3d/lightpass/forward/rt/shaders"
	"github.com/go-gl/mathgl/mgl32"
)

// RenderContext is the installed backend: the device, its compiled materials and
// the pass sequencer that draws with them.
type RenderContext struct {
	Backend   RendererName
	Device    render.Device
	Materials *render.MaterialLibrary
	Sequencer *render.Sequencer
}

type presenter interface {
	Present()
}

type clearColourSetter interface {
	SetClearColour(c mgl32.Vec4)
}

func newRenderContext(app *App, backend RendererName, dev render.Device, sources render.SourceFunc, clear mgl32.Vec4) (*RenderContext, error) {
	if s, ok := dev.(clearColourSetter); ok {
		s.SetClearColour(clear)
	}
	lib, err := render.LoadMaterialLibrary(dev, core.BuiltinProfiles(), sources)
	if err != nil {
		return nil, fmt.Errorf("%s materials: %w", backend, err)
	}
	app.Logger().Infof("%s: %d materials ready", backend, lib.Len())
	return &RenderContext{
		Backend:   backend,
		Device:    dev,
		Materials: lib,
		Sequencer: render.NewSequencer(dev, lib, app.SugaredLogger()),
	}, nil
}

// Present shows the finished frame. Backends without a swap step ignore it.
func (rc *RenderContext) Present() {
	if p, ok := rc.Device.(presenter); ok {
		p.Present()
	}
}

func (rc *RenderContext) Release() {
	if rc.Device != nil {
		rc.Device.Release()
	}
}

func installRenderContext(app *App, backend RendererName, open func(ws *WindowState) (render.Device, error), sources render.SourceFunc, clear mgl32.Vec4) {
	ensureSingleRenderer(app, backend)
	app.Logger().Infof("Renderer selected: %s", backend)
	app.UseModules(PlatformWindowModule{API: backend})
	if app.Failed() {
		return
	}
	ws, ok := Resource[WindowState](app)
	if !ok {
		app.fail(fmt.Errorf("%s renderer: no window", backend))
		return
	}

	dev, err := open(ws)
	if err != nil {
		app.fail(fmt.Errorf("%s renderer: %w", backend, err))
		return
	}
	rc, err := newRenderContext(app, backend, dev, sources, clear)
	if err != nil {
		dev.Release()
		app.fail(err)
		return
	}
	app.addResources(rc)

	app.UseSystem(
		System(presentSystem).
			InStage(PostRender).
			InState(OnExecute(StateRunning)),
	)
}

func presentSystem(rc *RenderContext) {
	rc.Present()
}

// WGPUModule renders through cogentcore/webgpu.
type WGPUModule struct {
	ShaderDir   string
	ClearColour mgl32.Vec4
}

func (mod WGPUModule) Install(app *App, cmd *Commands) {
	open := func(ws *WindowState) (render.Device, error) {
		dev, err := gpu.NewDevice(ws.Window(), app.SugaredLogger())
		if err != nil {
			return nil, err
		}
		dev.Resize(ws.WindowWidth, ws.WindowHeight)
		return dev, nil
	}
	installRenderContext(app, RendererWGPU, open, shaders.NewLibrary(shaders.WGSL, mod.ShaderDir).Source, mod.ClearColour)
}

// GLModule renders through an OpenGL 4.1 core context.
type GLModule struct {
	ShaderDir   string
	ClearColour mgl32.Vec4
}

func (mod GLModule) Install(app *App, cmd *Commands) {
	open := func(ws *WindowState) (render.Device, error) {
		dev, err := opengl.NewDevice(ws.Window(), app.SugaredLogger())
		if err != nil {
			return nil, err
		}
		dev.Resize(ws.WindowWidth, ws.WindowHeight)
		return dev, nil
	}
	installRenderContext(app, RendererGL, open, shaders.NewLibrary(shaders.GLSL, mod.ShaderDir).Source, mod.ClearColour)
}
