package assets

import (
	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// ComputeNormals replaces vertex normals with the area-weighted average of the
// faces that share each vertex.
func ComputeNormals(m *core.MeshData) {
	acc := make([]mgl32.Vec3, len(m.Vertices))
	forEachTriangle(m, func(a, b, c uint32) {
		p0 := mgl32.Vec3(m.Vertices[a].Position)
		e1 := mgl32.Vec3(m.Vertices[b].Position).Sub(p0)
		e2 := mgl32.Vec3(m.Vertices[c].Position).Sub(p0)
		n := e1.Cross(e2)
		acc[a] = acc[a].Add(n)
		acc[b] = acc[b].Add(n)
		acc[c] = acc[c].Add(n)
	})
	for i := range m.Vertices {
		n := acc[i]
		if n.Len() < 1e-12 {
			n = mgl32.Vec3{0, 1, 0}
		}
		m.Vertices[i].Normal = n.Normalize()
	}
}

// ComputeTangents derives per-vertex tangents from positions and UVs. The w
// component stores the handedness used to rebuild the bitangent in shaders.
func ComputeTangents(m *core.MeshData) {
	tan := make([]mgl32.Vec3, len(m.Vertices))
	bitan := make([]mgl32.Vec3, len(m.Vertices))

	forEachTriangle(m, func(a, b, c uint32) {
		v0, v1, v2 := &m.Vertices[a], &m.Vertices[b], &m.Vertices[c]
		e1 := mgl32.Vec3(v1.Position).Sub(mgl32.Vec3(v0.Position))
		e2 := mgl32.Vec3(v2.Position).Sub(mgl32.Vec3(v0.Position))
		du1, dv1 := v1.UV[0]-v0.UV[0], v1.UV[1]-v0.UV[1]
		du2, dv2 := v2.UV[0]-v0.UV[0], v2.UV[1]-v0.UV[1]

		det := du1*dv2 - du2*dv1
		if det > -1e-12 && det < 1e-12 {
			return
		}
		r := 1 / det
		t := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(r)
		bt := e2.Mul(du1).Sub(e1.Mul(du2)).Mul(r)
		for _, i := range [3]uint32{a, b, c} {
			tan[i] = tan[i].Add(t)
			bitan[i] = bitan[i].Add(bt)
		}
	})

	for i := range m.Vertices {
		v := &m.Vertices[i]
		n := mgl32.Vec3(v.Normal)
		// Gram-Schmidt against the normal.
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.Len() < 1e-6 {
			t = fallbackTangent(n)
		}
		t = t.Normalize()
		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		v.Tangent = [4]float32{t[0], t[1], t[2], w}
	}
}

func fallbackTangent(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if n[0] > 0.9 || n[0] < -0.9 {
		axis = mgl32.Vec3{0, 0, 1}
	}
	return axis.Sub(n.Mul(n.Dot(axis)))
}

func forEachTriangle(m *core.MeshData, fn func(a, b, c uint32)) {
	n := uint32(len(m.Vertices))
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		fn(a, b, c)
	}
}
