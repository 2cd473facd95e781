package core

// Handles issued by a render device. Zero is never a valid handle.
type (
	ProgramID uint32
	MeshID    uint32
	TextureID uint32
)

const (
	InvalidProgram ProgramID = 0
	InvalidMesh    MeshID    = 0
	InvalidTexture TextureID = 0
)

func (id TextureID) Valid() bool { return id != InvalidTexture }
func (id MeshID) Valid() bool    { return id != InvalidMesh }
func (id ProgramID) Valid() bool { return id != InvalidProgram }

// Vertex is the interleaved layout shared by every mesh program (64 bytes).
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
	Tangent  [4]float32 // w holds the bitangent sign
	Color    [4]float32
}

const (
	VertexStride         = 64
	VertexOffsetPosition = 0
	VertexOffsetNormal   = 12
	VertexOffsetUV       = 24
	VertexOffsetTangent  = 32
	VertexOffsetColor    = 48
)

type MeshData struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	// Material image paths, relative to the imported file.
	DiffusePath   string
	NormalMapPath string
}

func (m *MeshData) Empty() bool {
	return m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Marker is one light drawn by the debug overlay.
type Marker struct {
	Position [3]float32
	Color    [4]float32
}
