package lightpass

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Window    WindowConfig   `yaml:"window"`
	Renderer  RendererName   `yaml:"renderer"`
	AssetDir  string         `yaml:"asset_dir"`
	ShaderDir string         `yaml:"shader_dir"`
	Workers   int            `yaml:"workers"`
	Debug     DebugConfig    `yaml:"debug"`
	Camera    CameraConfig   `yaml:"camera"`
	Movement  MovementConfig `yaml:"movement"`
	Lights    LightsConfig   `yaml:"lights"`
	Models    []ModelConfig  `yaml:"models"`
}

type WindowConfig struct {
	Width       int        `yaml:"width"`
	Height      int        `yaml:"height"`
	Title       string     `yaml:"title"`
	ClearColour mgl32.Vec4 `yaml:"clear_colour"`
}

type DebugConfig struct {
	Verbose          bool    `yaml:"verbose"`
	ShowLightMarkers bool    `yaml:"show_light_markers"`
	MarkerSize       float32 `yaml:"marker_size"`
}

type CameraConfig struct {
	Theta       float32 `yaml:"theta"`
	Phi         float32 `yaml:"phi"`
	Radius      float32 `yaml:"radius"`
	FovY        float32 `yaml:"fov_y"`
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	Sensitivity float32 `yaml:"sensitivity"`
}

type MovementConfig struct {
	Speed float32 `yaml:"speed"`
}

type LightsConfig struct {
	Directional *DirectionalConfig `yaml:"directional"`
	Point       []PointConfig      `yaml:"point"`
}

type DirectionalConfig struct {
	Theta  float32    `yaml:"theta"`
	Rate   float32    `yaml:"rate"`
	Rotate bool       `yaml:"rotate"`
	Colour mgl32.Vec3 `yaml:"colour"`
}

type PointConfig struct {
	Position    mgl32.Vec3 `yaml:"position"`
	Colour      mgl32.Vec3 `yaml:"colour"`
	Attenuation mgl32.Vec3 `yaml:"attenuation"`
}

type BobConfig struct {
	Amplitude float32 `yaml:"amplitude"`
	Period    float32 `yaml:"period"`
}

type ModelConfig struct {
	Name      string     `yaml:"name"`
	Path      string     `yaml:"path"`
	Diffuse   string     `yaml:"diffuse"`
	NormalMap string     `yaml:"normal_map"`
	Position  mgl32.Vec3 `yaml:"position"`
	Yaw       float32    `yaml:"yaw"`
	Scale     float32    `yaml:"scale"`
	// Tracked models follow the movement keys and the camera looks at them.
	Tracked     bool        `yaml:"tracked"`
	Transparent bool        `yaml:"transparent"`
	Material    string      `yaml:"material"`
	Tint        *mgl32.Vec4 `yaml:"tint"`
	Bob         *BobConfig  `yaml:"bob"`
}

// DefaultConfig reproduces the demo scene: a tracked creature among three buildings
// on a terrain, a bobbing translucent cylinder, a rotating white sun and a red point light.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:       1024,
			Height:      768,
			Title:       "lightpass",
			ClearColour: mgl32.Vec4{0, 0, 0, 0},
		},
		Renderer: RendererWGPU,
		AssetDir: "assets",
		Workers:  runtime.NumCPU(),
		Debug: DebugConfig{
			ShowLightMarkers: true,
			MarkerSize:       10,
		},
		Camera: CameraConfig{
			Theta:       -33,
			Phi:         45,
			Radius:      40,
			FovY:        55,
			Near:        0.1,
			Far:         5000,
			Sensitivity: 1,
		},
		Movement: MovementConfig{Speed: 3},
		Lights: LightsConfig{
			Directional: &DirectionalConfig{
				Theta:  70,
				Rate:   30,
				Rotate: true,
				Colour: mgl32.Vec3{1, 1, 1},
			},
			Point: []PointConfig{{
				Position:    mgl32.Vec3{0, 1, 0},
				Colour:      mgl32.Vec3{1, 0, 0},
				Attenuation: mgl32.Vec3{1, 0.1, 0.001},
			}},
		},
		Models: []ModelConfig{
			{Name: "beast", Path: "beast/beast.glb", Diffuse: "beast/beast_texture.bmp", Position: mgl32.Vec3{2, 0, 0}, Scale: 1, Tracked: true},
			{Name: "tier1", Path: "buildings/tier1.glb", Diffuse: "buildings/house_c3.bmp", NormalMap: "buildings/house_n3.bmp", Position: mgl32.Vec3{-0.5, 0.6, 1.5}, Scale: 0.1},
			{Name: "tier2", Path: "buildings/tier2.glb", Diffuse: "buildings/house_c3.bmp", NormalMap: "buildings/house_n3.bmp", Position: mgl32.Vec3{0, 0.3, -1}, Scale: 0.1},
			{Name: "tier3", Path: "buildings/tier3.glb", Diffuse: "buildings/house_c3.bmp", NormalMap: "buildings/house_n3.bmp", Position: mgl32.Vec3{3.5, 0, 1.5}, Scale: 0.1},
			{Name: "terrain", Path: "terrain/terrain.glb", Diffuse: "terrain/sand_c.bmp", NormalMap: "terrain/sand_n.bmp", Scale: 0.1},
			{
				Name:        "cylinder",
				Path:        "cylinder/cylinder.glb",
				Position:    mgl32.Vec3{-2, 2, 0},
				Scale:       1,
				Transparent: true,
				Material:    "basic",
				Tint:        &mgl32.Vec4{0.6, 0.8, 1, 0.5},
				Bob:         &BobConfig{Amplitude: 0.25, Period: 2},
			},
		},
	}
}

// LoadConfig overlays a YAML file on DefaultConfig and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillModelDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// fillModelDefaults gives models listed in a file without a scale the unit scale.
func (c *Config) fillModelDefaults() {
	for i := range c.Models {
		if c.Models[i].Scale == 0 {
			c.Models[i].Scale = 1
		}
	}
}

var ErrInvalidConfig = errors.New("invalid config")

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Renderer == RendererWGPU || c.Renderer == RendererGL, "unknown renderer %q", c.Renderer)
	check(c.Workers >= 1, "workers must be at least 1, got %d", c.Workers)
	check(c.Camera.Radius > 0, "camera radius must be positive")
	check(c.Camera.FovY > 0 && c.Camera.FovY < 180, "camera fov_y %v out of range", c.Camera.FovY)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "camera clip planes near=%v far=%v", c.Camera.Near, c.Camera.Far)
	check(c.Movement.Speed >= 0, "movement speed must not be negative")
	check(c.Debug.MarkerSize >= 0, "marker size must not be negative")

	names := make(map[string]bool)
	tracked := 0
	for i, m := range c.Models {
		check(m.Name != "", "model %d has no name", i)
		check(m.Path != "", "model %q has no path", m.Name)
		check(!names[m.Name], "duplicate model name %q", m.Name)
		check(m.Scale > 0, "model %q scale must be positive", m.Name)
		if m.Bob != nil {
			check(m.Bob.Period > 0, "model %q bob period must be positive", m.Name)
		}
		names[m.Name] = true
		if m.Tracked {
			tracked++
		}
	}
	check(tracked <= 1, "at most one model can be tracked, got %d", tracked)

	return errors.Join(errs...)
}

// AssetPath resolves p against AssetDir unless it is absolute or empty.
func (c *Config) AssetPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.AssetDir, filepath.FromSlash(p))
}

// ConfigModule publishes the loaded Config as a resource.
type ConfigModule struct {
	Config *Config
}

func (m ConfigModule) Install(app *App, cmd *Commands) {
	cfg := m.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		app.fail(err)
		return
	}
	cmd.AddResources(cfg)
}
