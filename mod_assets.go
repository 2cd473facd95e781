package lightpass

import (
	"time"

	"github.com/gekko3d/lightpass/forward/rt/assets"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// SceneLoadReport summarises a scene load.
type SceneLoadReport struct {
	Models    int
	Failed    []string
	Drawables int
	Textures  int
	Took      time.Duration
}

// loadScene imports every configured model on the worker pool, uploads the results
// on the calling thread and registers one object per model. A model that fails to
// import is still registered, with no instances, so the rest of the scene renders.
func loadScene(cfg *Config, scene *SceneState, dev render.Device, log *zap.SugaredLogger) SceneLoadReport {
	start := time.Now()
	loader := assets.NewLoader(cfg.Workers, log)
	defer loader.Close()

	reqs := make([]assets.ModelRequest, len(cfg.Models))
	for i, m := range cfg.Models {
		reqs[i] = assets.ModelRequest{Name: m.Name, Path: cfg.AssetPath(m.Path)}
	}
	models := loader.LoadModels(reqs)

	overrides := make([]assets.TextureOverride, len(cfg.Models))
	var paths []string
	for i, m := range cfg.Models {
		overrides[i] = assets.TextureOverride{
			Diffuse:   cfg.AssetPath(m.Diffuse),
			NormalMap: cfg.AssetPath(m.NormalMap),
		}
		for j := range models[i].Meshes {
			d, n := assets.TexturePaths(&models[i].Meshes[j], overrides[i])
			paths = append(paths, d, n)
		}
	}
	textures := loader.LoadTextures(paths)

	report := SceneLoadReport{Models: len(cfg.Models), Textures: len(textures)}
	up := assets.NewUploader(dev, log)
	for i, m := range cfg.Models {
		res := models[i]
		if res.Err != nil {
			log.Errorf("model %s not loaded, continuing without it: %v", m.Name, res.Err)
			report.Failed = append(report.Failed, m.Name)
		} else if m.Tint != nil {
			tintMeshes(res, *m.Tint)
		}
		instances := up.Instances(res, textures, overrides[i])
		report.Drawables += len(instances)
		scene.AddObject(m, instances)
	}
	report.Took = time.Since(start)
	return report
}

func tintMeshes(res assets.ModelResult, tint mgl32.Vec4) {
	for i := range res.Meshes {
		verts := res.Meshes[i].Vertices
		for j := range verts {
			for k := 0; k < 4; k++ {
				verts[j].Color[k] *= tint[k]
			}
		}
	}
}

// AssetsModule loads the scene when the app enters StateLoading and moves on to
// StateRunning when done.
type AssetsModule struct{}

func (mod AssetsModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(loadSceneSystem).
			InStage(Prelude).
			InState(OnEnter(StateLoading)),
	)
}

func loadSceneSystem(cfg *Config, scene *SceneState, rc *RenderContext, cmd *Commands) {
	log := cmd.app.SugaredLogger()
	report := loadScene(cfg, scene, rc.Device, log)
	log.Infof("scene loaded: %d models (%d failed), %d drawables, %d textures in %v",
		report.Models, len(report.Failed), report.Drawables, report.Textures, report.Took)
	cmd.ChangeState(StateRunning)
}
