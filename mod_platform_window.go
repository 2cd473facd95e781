package lightpass

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState is the single GLFW window shared by the renderer and input modules.
type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	windowTitle  string
	api          RendererName
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string, api RendererName) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}

	switch api {
	case RendererGL:
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	default:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // wgpu owns the surface
	}
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}

	// Framebuffer size can differ from the requested window size on HiDPI displays.
	fbw, fbh := win.GetFramebufferSize()
	if fbw > 0 && fbh > 0 {
		windowWidth, windowHeight = fbw, fbh
	}

	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		windowTitle:  windowTitle,
		api:          api,
	}, nil
}

func (ws *WindowState) Window() *glfw.Window {
	return ws.windowGlfw
}

func (ws *WindowState) Aspect() float32 {
	if ws.WindowHeight <= 0 {
		return 1
	}
	return float32(ws.WindowWidth) / float32(ws.WindowHeight)
}

func (ws *WindowState) ShouldClose() bool {
	return ws.windowGlfw == nil || ws.windowGlfw.ShouldClose()
}

func (ws *WindowState) SetShouldClose() {
	if ws.windowGlfw != nil {
		ws.windowGlfw.SetShouldClose(true)
	}
}

func (ws *WindowState) SetTitle(title string) {
	if ws.windowGlfw != nil && title != ws.windowTitle {
		ws.windowTitle = title
		ws.windowGlfw.SetTitle(title)
	}
}

// Destroy closes the window and shuts GLFW down. Safe to call twice.
func (ws *WindowState) Destroy() {
	if ws.windowGlfw == nil {
		return
	}
	ws.windowGlfw.Destroy()
	ws.windowGlfw = nil
	glfw.Terminate()
}

// PlatformWindowModule creates the shared WindowState with the context hints the
// chosen backend needs. Install is a no-op when a window already exists.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
	API    RendererName
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}
	width, height, title := m.Width, m.Height, m.Title
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 768
	}
	if title == "" {
		title = "lightpass"
	}

	ws, err := createWindowState(width, height, title, m.API)
	if err != nil {
		app.fail(err)
		return
	}
	app.addResources(ws)
	app.Logger().Infof("Created window (%dx%d) '%s' for %s", ws.WindowWidth, ws.WindowHeight, title, m.API)
}
