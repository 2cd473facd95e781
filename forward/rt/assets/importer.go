// Package assets decodes scene geometry and texture images from disk.
package assets

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gekko3d/lightpass/forward/rt/core"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var (
	ErrNoMeshes    = errors.New("scene contains no triangle meshes")
	ErrBadAccessor = errors.New("accessor index out of range")
	ErrBadIndex    = errors.New("vertex index out of range")
)

// ImportScene reads every triangle primitive of a glTF/GLB file into MeshData.
// Missing normals are rebuilt from faces; tangents are always derived from UVs.
// Texture paths are resolved relative to the scene file.
func ImportScene(path string) ([]core.MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	var meshes []core.MeshData
	for mi, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			data, err := readPrimitive(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("%s mesh %d primitive %d: %w", path, mi, pi, err)
			}
			data.Name = m.Name
			if data.Name == "" {
				data.Name = fmt.Sprintf("mesh%d", mi)
			}
			if len(m.Primitives) > 1 {
				data.Name = fmt.Sprintf("%s.%d", data.Name, pi)
			}
			data.DiffusePath, data.NormalMapPath = materialPaths(doc, prim, dir)
			meshes = append(meshes, data)
		}
	}

	if len(meshes) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoMeshes)
	}
	return meshes, nil
}

func accessor(doc *gltf.Document, idx int, name string) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(doc.Accessors) || doc.Accessors[idx] == nil {
		return nil, fmt.Errorf("%s accessor %d: %w", name, idx, ErrBadAccessor)
	}
	return doc.Accessors[idx], nil
}

func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (core.MeshData, error) {
	var data core.MeshData

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return data, errors.New("no POSITION attribute")
	}
	acc, err := accessor(doc, posIdx, gltf.POSITION)
	if err != nil {
		return data, err
	}
	positions, err := modeler.ReadPosition(doc, acc, nil)
	if err != nil {
		return data, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acc, err = accessor(doc, idx, gltf.NORMAL); err != nil {
			return data, err
		}
		if normals, err = modeler.ReadNormal(doc, acc, nil); err != nil {
			return data, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acc, err = accessor(doc, idx, gltf.TEXCOORD_0); err != nil {
			return data, err
		}
		if uvs, err = modeler.ReadTextureCoord(doc, acc, nil); err != nil {
			return data, fmt.Errorf("read texcoords: %w", err)
		}
	}

	var colors [][4]uint8
	if idx, ok := prim.Attributes[gltf.COLOR_0]; ok {
		if acc, err = accessor(doc, idx, gltf.COLOR_0); err != nil {
			return data, err
		}
		if colors, err = modeler.ReadColor(doc, acc, nil); err != nil {
			return data, fmt.Errorf("read colors: %w", err)
		}
	}

	if prim.Indices != nil {
		if acc, err = accessor(doc, *prim.Indices, "indices"); err != nil {
			return data, err
		}
		if data.Indices, err = modeler.ReadIndices(doc, acc, nil); err != nil {
			return data, fmt.Errorf("read indices: %w", err)
		}
		for _, i := range data.Indices {
			if int(i) >= len(positions) {
				return data, fmt.Errorf("index %d with %d vertices: %w", i, len(positions), ErrBadIndex)
			}
		}
	} else {
		data.Indices = make([]uint32, len(positions))
		for i := range data.Indices {
			data.Indices[i] = uint32(i)
		}
	}

	data.Vertices = make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := &data.Vertices[i]
		v.Position = p
		if i < len(normals) {
			v.Normal = normals[i]
		}
		if i < len(uvs) {
			v.UV = uvs[i]
		}
		v.Color = [4]float32{1, 1, 1, 1}
		if i < len(colors) {
			c := colors[i]
			v.Color = [4]float32{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255}
		}
	}

	if len(normals) < len(positions) {
		ComputeNormals(&data)
	}
	ComputeTangents(&data)
	return data, nil
}

func materialPaths(doc *gltf.Document, prim *gltf.Primitive, dir string) (diffuse, normal string) {
	if prim.Material == nil || *prim.Material < 0 || *prim.Material >= len(doc.Materials) {
		return "", ""
	}
	mat := doc.Materials[*prim.Material]
	if mat == nil {
		return "", ""
	}
	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		diffuse = imagePath(doc, pbr.BaseColorTexture.Index, dir)
	}
	if mat.NormalTexture != nil && mat.NormalTexture.Index != nil {
		normal = imagePath(doc, *mat.NormalTexture.Index, dir)
	}
	return diffuse, normal
}

// imagePath resolves an external image URI. Embedded images have no path and are skipped.
func imagePath(doc *gltf.Document, textureIndex int, dir string) string {
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return ""
	}
	tex := doc.Textures[textureIndex]
	if tex == nil || tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return ""
	}
	img := doc.Images[*tex.Source]
	if img == nil || img.URI == "" || img.IsEmbeddedResource() {
		return ""
	}
	return filepath.Join(dir, filepath.FromSlash(img.URI))
}
