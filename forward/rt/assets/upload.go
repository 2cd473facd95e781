package assets

import (
	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
	"go.uber.org/zap"
)

// TextureOverride replaces the image paths an imported file references.
type TextureOverride struct {
	Diffuse   string
	NormalMap string
}

// Uploader turns decoded assets into device handles. It must run on the render thread.
type Uploader struct {
	dev      render.Device
	log      *zap.SugaredLogger
	textures map[string]core.TextureID
}

func NewUploader(dev render.Device, log *zap.SugaredLogger) *Uploader {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Uploader{dev: dev, log: log, textures: make(map[string]core.TextureID)}
}

// Texture uploads a decoded image once per path. Failures give InvalidTexture.
func (u *Uploader) Texture(res *TextureResult) core.TextureID {
	if res == nil || res.Err != nil || res.Image == nil {
		return core.InvalidTexture
	}
	if id, ok := u.textures[res.Path]; ok {
		return id
	}
	id, err := u.dev.CreateTexture(res.Image)
	if err != nil {
		u.log.Warnf("upload texture %s: %v", res.Path, err)
		id = core.InvalidTexture
	}
	u.textures[res.Path] = id
	return id
}

// Instances uploads each mesh of a model. A failed model or mesh contributes nothing.
func (u *Uploader) Instances(model ModelResult, textures map[string]*TextureResult, override TextureOverride) []*render.Drawable {
	if model.Err != nil {
		return nil
	}
	var out []*render.Drawable
	for i := range model.Meshes {
		m := &model.Meshes[i]
		id, err := u.dev.CreateMesh(m)
		if err != nil {
			u.log.Warnf("upload mesh %s/%s: %v", model.Name, m.Name, err)
			continue
		}
		diffuse, normal := TexturePaths(m, override)
		out = append(out, &render.Drawable{
			Name:      m.Name,
			Mesh:      id,
			Diffuse:   u.Texture(textures[diffuse]),
			NormalMap: u.Texture(textures[normal]),
		})
	}
	return out
}

// TexturePaths gives the image paths a mesh uses once overrides apply.
func TexturePaths(m *core.MeshData, override TextureOverride) (diffuse, normal string) {
	diffuse, normal = m.DiffusePath, m.NormalMapPath
	if override.Diffuse != "" {
		diffuse = override.Diffuse
	}
	if override.NormalMap != "" {
		normal = override.NormalMap
	}
	return diffuse, normal
}
