package render

import (
	"fmt"

	"github.com/gekko3d/lightpass/forward/rt/core"
)

// SourceFunc returns the program text for a profile on the active backend.
type SourceFunc func(profile core.Profile) (ShaderSource, error)

// MaterialLibrary owns one material per profile.
type MaterialLibrary struct {
	byName map[string]*Material
	byCaps map[core.Capabilities]*Material
	order  []string
}

func NewMaterialLibrary() *MaterialLibrary {
	return &MaterialLibrary{
		byName: make(map[string]*Material),
		byCaps: make(map[core.Capabilities]*Material),
	}
}

// LoadMaterialLibrary compiles every profile. Any failure aborts setup.
func LoadMaterialLibrary(dev Device, profiles []core.Profile, sources SourceFunc) (*MaterialLibrary, error) {
	lib := NewMaterialLibrary()
	for _, p := range profiles {
		src, err := sources(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrShaderSetup, p.Name, err)
		}
		mat, err := NewMaterial(dev, p, src)
		if err != nil {
			return nil, err
		}
		lib.Add(mat)
	}
	return lib, nil
}

func (l *MaterialLibrary) Add(m *Material) {
	if _, ok := l.byName[m.Profile.Name]; !ok {
		l.order = append(l.order, m.Profile.Name)
	}
	l.byName[m.Profile.Name] = m
	l.byCaps[m.Profile.Caps] = m
}

func (l *MaterialLibrary) Get(name string) (*Material, bool) {
	m, ok := l.byName[name]
	return m, ok
}

func (l *MaterialLibrary) Len() int {
	return len(l.order)
}

// Select picks the lit material for a light kind. Normal-mapped groups fall back to the
// plain textured program when no normal-mapped variant exists for that light.
func (l *MaterialLibrary) Select(kind core.LightKind, normalMapped bool) (*Material, bool) {
	if normalMapped {
		if m, ok := l.byCaps[core.Capabilities{HasModelMatrix: true, HasNormalMap: true, Light: kind}]; ok {
			return m, true
		}
	}
	m, ok := l.byCaps[core.Capabilities{HasModelMatrix: true, Light: kind}]
	return m, ok
}
