package lightpass

// NewDemoApp wires the forward lighting demo: load the scene, run frames until the
// window closes, then report timing and release the renderer.
func NewDemoApp(cfg *Config) *App {
	return NewAppBuilder().
		UseStates(StateLoading, StateExiting).
		UseModule(
			LoggingModule{Prefix: "lightpass", Debug: cfg.Debug.Verbose},
			ConfigModule{Config: cfg},
			TimeModule{},
			PlatformWindowModule{
				Width:  cfg.Window.Width,
				Height: cfg.Window.Height,
				Title:  cfg.Window.Title,
				API:    cfg.Renderer,
			},
			RendererModule(cfg),
			InputModule{},
			FrameModule{},
			AssetsModule{},
			LifecycleModule{},
		).
		Build()
}
