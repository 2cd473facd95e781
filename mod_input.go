package lightpass

import (
	"errors"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyW int = iota
	KeyA
	KeyS
	KeyD
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeySpace
	KeyM
	KeyF1
	KeyEscape
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

type InputModule struct{}

type Input struct {
	Pressed [256]bool

	JustPressed  [256]bool
	JustReleased [256]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	mouseSeen                bool

	// Scroll holds the vertical wheel offsets received since the last frame.
	Scroll []float64

	// Resized is set by the framebuffer callback until the frame consumes it.
	Resized                   bool
	WindowWidth, WindowHeight int
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	ws, ok := Resource[WindowState](app)
	if !ok {
		app.fail(errors.New("input: no window"))
		return
	}
	input := &Input{WindowWidth: ws.WindowWidth, WindowHeight: ws.WindowHeight}
	if win := ws.Window(); win != nil {
		win.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
			input.Scroll = append(input.Scroll, yoff)
		})
		win.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
			input.WindowWidth, input.WindowHeight = width, height
			input.Resized = true
		})
	}
	cmd.AddResources(input)

	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	app.UseSystem(
		System(sceneInputSystem).
			InStage(Update).
			InState(OnExecute(StateRunning)),
	)
}

// setButton updates the held and edge flags for one key or button.
func (input *Input) setButton(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

func (input *Input) setCursor(x, y float64) {
	if input.mouseSeen {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	}
	input.MouseX, input.MouseY = x, y
	input.mouseSeen = true
}

func inputSystem(s *WindowState, input *Input) {
	glfw.PollEvents()
	if s.windowGlfw == nil {
		return
	}

	for key, glfwKey := range keyToGlfw {
		input.setButton(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	for btn, glfwBtn := range buttonToGlfw {
		input.setButton(btn, s.windowGlfw.GetMouseButton(glfwBtn) == glfw.Press)
	}
	input.setCursor(s.windowGlfw.GetCursorPos())
}

// applyInput maps one frame of input onto the scene. Held keys drive movement,
// Space toggles the light sweep, M toggles the markers and a left drag orbits the
// camera. It returns true when Escape asked to quit.
func applyInput(input *Input, scene *SceneState, sensitivity float32) bool {
	scene.Move = core.MoveInput{
		Forward: input.Pressed[KeyW] || input.Pressed[KeyUp],
		Back:    input.Pressed[KeyS] || input.Pressed[KeyDown],
		Left:    input.Pressed[KeyA] || input.Pressed[KeyLeft],
		Right:   input.Pressed[KeyD] || input.Pressed[KeyRight],
	}
	if input.JustPressed[KeySpace] {
		scene.RotateLight = !scene.RotateLight
	}
	if input.JustPressed[KeyM] {
		scene.ShowLightMarkers = !scene.ShowLightMarkers
	}

	if input.Pressed[MouseButtonLeft] && !input.JustPressed[MouseButtonLeft] {
		dx, dy := float32(input.MouseDeltaX), float32(input.MouseDeltaY)
		if dx != 0 || dy != 0 {
			scene.Camera.RotateCamera(-dy*sensitivity, -dx*sensitivity)
		}
	}

	for _, y := range input.Scroll {
		scene.Camera.ScaleRadius(core.ZoomFactor(y))
	}
	input.Scroll = input.Scroll[:0]

	if input.Resized {
		if input.WindowHeight > 0 {
			scene.Camera.SetAspect(float32(input.WindowWidth) / float32(input.WindowHeight))
		}
	}

	return input.JustPressed[KeyEscape]
}

func sceneInputSystem(input *Input, scene *SceneState, cfg *Config, ws *WindowState, rc *RenderContext, log *DefaultLogger) {
	resized := input.Resized
	if applyInput(input, scene, cfg.Camera.Sensitivity) {
		ws.SetShouldClose()
	}
	if input.JustPressed[KeyF1] {
		log.SetDebug(!log.DebugEnabled())
	}
	if resized {
		input.Resized = false
		ws.WindowWidth, ws.WindowHeight = input.WindowWidth, input.WindowHeight
		rc.Device.Resize(input.WindowWidth, input.WindowHeight)
	}
}

var keyToGlfw = map[int]glfw.Key{
	KeyW:      glfw.KeyW,
	KeyA:      glfw.KeyA,
	KeyS:      glfw.KeyS,
	KeyD:      glfw.KeyD,
	KeyUp:     glfw.KeyUp,
	KeyDown:   glfw.KeyDown,
	KeyLeft:   glfw.KeyLeft,
	KeyRight:  glfw.KeyRight,
	KeySpace:  glfw.KeySpace,
	KeyM:      glfw.KeyM,
	KeyF1:     glfw.KeyF1,
	KeyEscape: glfw.KeyEscape,
}

var buttonToGlfw = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}
