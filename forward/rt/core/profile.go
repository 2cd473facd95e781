package core

// Uniform slot names shared by every shader program.
const (
	UniformMVP              = "mvpMatrix"
	UniformModel            = "modelMatrix"
	UniformView             = "viewMatrix"
	UniformProjection       = "projMatrix"
	UniformDiffuseTexture   = "diffuseTexture"
	UniformNormalMapTexture = "normalMapTexture"
	UniformLightDirection   = "lightDirection"
	UniformLightColour      = "lightColour"
	UniformLightPosition    = "lightPosition"
	UniformLightAttenuation = "lightAttenuation"
)

// Texture units used by mesh programs.
const (
	DiffuseUnit   uint32 = 0
	NormalMapUnit uint32 = 1
)

// Capabilities describe what a shader program expects to be bound.
type Capabilities struct {
	HasModelMatrix bool
	HasNormalMap   bool
	Light          LightKind
}

type Profile struct {
	Name string
	Caps Capabilities
}

var (
	ProfileBasic = Profile{
		Name: "basic",
	}
	ProfileTexturedDirectional = Profile{
		Name: "tex_directional",
		Caps: Capabilities{HasModelMatrix: true, Light: LightDirectional},
	}
	ProfileTexturedPoint = Profile{
		Name: "tex_point",
		Caps: Capabilities{HasModelMatrix: true, Light: LightPoint},
	}
	ProfileNormalMappedDirectional = Profile{
		Name: "nmap_directional",
		Caps: Capabilities{HasModelMatrix: true, HasNormalMap: true, Light: LightDirectional},
	}
	ProfileNormalMappedPoint = Profile{
		Name: "nmap_point",
		Caps: Capabilities{HasModelMatrix: true, HasNormalMap: true, Light: LightPoint},
	}
)

// BuiltinProfiles lists the profiles shipped with embedded shader sources.
func BuiltinProfiles() []Profile {
	return []Profile{
		ProfileBasic,
		ProfileTexturedDirectional,
		ProfileTexturedPoint,
		ProfileNormalMappedDirectional,
		ProfileNormalMappedPoint,
	}
}

// Uniforms returns the slot names a program of this profile exposes, in a fixed order.
func (p Profile) Uniforms() []string {
	c := p.Caps
	if !c.HasModelMatrix {
		return []string{UniformMVP}
	}

	names := []string{UniformModel, UniformView, UniformProjection, UniformDiffuseTexture}
	if c.HasNormalMap {
		names = append(names, UniformNormalMapTexture)
	}
	switch c.Light {
	case LightDirectional:
		names = append(names, UniformLightDirection, UniformLightColour)
	case LightPoint:
		names = append(names, UniformLightPosition, UniformLightColour, UniformLightAttenuation)
	}
	return names
}

func (p Profile) HasUniform(name string) bool {
	for _, n := range p.Uniforms() {
		if n == name {
			return true
		}
	}
	return false
}

// TextureUnits returns the units a drawable must bind for this profile.
func (p Profile) TextureUnits() []uint32 {
	if !p.Caps.HasModelMatrix {
		return nil
	}
	if p.Caps.HasNormalMap {
		return []uint32{DiffuseUnit, NormalMapUnit}
	}
	return []uint32{DiffuseUnit}
}
