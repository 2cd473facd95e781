package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/gekko3d/lightpass/forward/rt/render"
)

//go:embed wgsl/*.wgsl glsl/*.vert glsl/*.frag
var files embed.FS

type Language string

const (
	WGSL Language = "wgsl"
	GLSL Language = "glsl"
)

const MarkerProgram = "marker"

var ErrUnknownProgram = errors.New("no shader source for program")

type composition struct {
	wgsl []string
	vert string
	frag string
}

var programs = map[string]composition{
	core.ProfileBasic.Name: {
		wgsl: []string{"common.wgsl", "basic.wgsl"},
		vert: "basic.vert", frag: "basic.frag",
	},
	core.ProfileTexturedDirectional.Name: {
		wgsl: []string{"common.wgsl", "textured.wgsl", "tex_directional.wgsl"},
		vert: "textured.vert", frag: "tex_directional.frag",
	},
	core.ProfileTexturedPoint.Name: {
		wgsl: []string{"common.wgsl", "textured.wgsl", "tex_point.wgsl"},
		vert: "textured.vert", frag: "tex_point.frag",
	},
	core.ProfileNormalMappedDirectional.Name: {
		wgsl: []string{"common.wgsl", "normal_mapped.wgsl", "nmap_directional.wgsl"},
		vert: "normal_mapped.vert", frag: "nmap_directional.frag",
	},
	core.ProfileNormalMappedPoint.Name: {
		wgsl: []string{"common.wgsl", "normal_mapped.wgsl", "nmap_point.wgsl"},
		vert: "normal_mapped.vert", frag: "nmap_point.frag",
	},
	MarkerProgram: {
		wgsl: []string{"marker.wgsl"},
		vert: "marker.vert", frag: "marker.frag",
	},
}

// Library resolves program sources for one backend language. Files found under Dir
// (laid out as <Dir>/<lang>/<file>) take precedence over the embedded copies.
type Library struct {
	Lang Language
	Dir  string
}

func NewLibrary(lang Language, dir string) *Library {
	return &Library{Lang: lang, Dir: dir}
}

// Source matches render.SourceFunc.
func (l *Library) Source(profile core.Profile) (render.ShaderSource, error) {
	return l.Program(profile.Name)
}

func (l *Library) Program(name string) (render.ShaderSource, error) {
	comp, ok := programs[name]
	if !ok {
		return render.ShaderSource{}, fmt.Errorf("%w: %s", ErrUnknownProgram, name)
	}

	switch l.Lang {
	case WGSL:
		parts := make([]string, 0, len(comp.wgsl))
		for _, f := range comp.wgsl {
			text, err := l.read(f)
			if err != nil {
				return render.ShaderSource{}, err
			}
			parts = append(parts, text)
		}
		return render.ShaderSource{Vertex: strings.Join(parts, "\n")}, nil
	case GLSL:
		vert, err := l.read(comp.vert)
		if err != nil {
			return render.ShaderSource{}, err
		}
		frag, err := l.read(comp.frag)
		if err != nil {
			return render.ShaderSource{}, err
		}
		return render.ShaderSource{Vertex: vert, Fragment: frag}, nil
	default:
		return render.ShaderSource{}, fmt.Errorf("unknown shader language %q", l.Lang)
	}
}

func (l *Library) read(name string) (string, error) {
	if l.Dir != "" {
		data, err := os.ReadFile(filepath.Join(l.Dir, string(l.Lang), name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read shader %s: %w", name, err)
		}
	}
	data, err := files.ReadFile(path.Join(string(l.Lang), name))
	if err != nil {
		return "", fmt.Errorf("read shader %s: %w", name, err)
	}
	return string(data), nil
}
