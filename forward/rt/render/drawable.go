package render

import (
	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Drawable is one uploaded submesh with its textures.
type Drawable struct {
	Name      string
	Mesh      core.MeshID
	Diffuse   core.TextureID
	NormalMap core.TextureID
}

func (d *Drawable) HasNormalMap() bool {
	return d.NormalMap.Valid()
}

// BindTextures binds the diffuse map to unit 0 and, when the program samples one, the normal map
// to unit 1. Every unit is rebound, so an invalid handle selects the device fallback
// rather than leaving the previous drawable's texture in place.
func (d *Drawable) BindTextures(dev Device, units []uint32) {
	for _, unit := range units {
		var tex core.TextureID
		switch unit {
		case core.DiffuseUnit:
			tex = d.Diffuse
		case core.NormalMapUnit:
			tex = d.NormalMap
		}
		dev.BindTexture(unit, tex)
	}
}

// Draw sets the model transform on the bound material and issues the draw.
func (d *Drawable) Draw(dev Device, mat *Material, model mgl32.Mat4) {
	if !d.Mesh.Valid() {
		return
	}
	mat.SetModelTransform(dev, model)
	dev.DrawMesh(d.Mesh)
}

// ModelGroup is every submesh of one imported model, sharing one transform.
type ModelGroup struct {
	Name      string
	Instances []*Drawable
	Transform mgl32.Mat4

	// Transparent groups render in the blended pass with Material instead of a lit profile.
	Transparent bool
	Material    string

	// warned holds the reasons already logged for this group, at most one per
	// light kind plus one for the transparent material.
	warned map[string]bool
}

func NewModelGroup(name string) *ModelGroup {
	return &ModelGroup{
		Name:      name,
		Transform: mgl32.Ident4(),
	}
}

// NormalMapped reports whether every submesh carries a normal map.
func (g *ModelGroup) NormalMapped() bool {
	if len(g.Instances) == 0 {
		return false
	}
	for _, d := range g.Instances {
		if !d.HasNormalMap() {
			return false
		}
	}
	return true
}

func (g *ModelGroup) Empty() bool {
	return len(g.Instances) == 0
}
