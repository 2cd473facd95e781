package lightpass

// RendererName identifies a concrete renderer backend.
type RendererName string

const (
	RendererWGPU RendererName = "wgpu"
	RendererGL   RendererName = "gl"
)

// RendererModule returns the module that installs the configured backend.
func RendererModule(cfg *Config) Module {
	if cfg.Renderer == RendererGL {
		return GLModule{ShaderDir: cfg.ShaderDir, ClearColour: cfg.Window.ClearColour}
	}
	return WGPUModule{ShaderDir: cfg.ShaderDir, ClearColour: cfg.Window.ClearColour}
}
