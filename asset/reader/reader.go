package reader

import (
	"fmt"
	"strings"

	"github.com/achilleasa/polaris-bvh/asset"
	"github.com/achilleasa/polaris-bvh/scene"
)

// Scene holds the geometry parsed from a scene file.
type Scene struct {
	Meshes  []*scene.Mesh
	Spheres []*scene.Sphere

	// Material names in the order they were first referenced. A
	// primitive's MaterialIndex points into this list.
	Materials []string
}

// Expand all scene geometry into a flat primitive list suitable for building
// an acceleration structure.
func (sc *Scene) Primitives() []scene.Primitive {
	count := len(sc.Spheres)
	for _, mesh := range sc.Meshes {
		count += len(mesh.Indices)
	}

	prims := make([]scene.Primitive, 0, count)
	for _, mesh := range sc.Meshes {
		prims = append(prims, mesh.Triangles()...)
	}
	for _, sphere := range sc.Spheres {
		prims = append(prims, sphere)
	}
	return prims
}

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*Scene, error)
}

// Read scene from file.
func ReadScene(filename string) (*Scene, error) {
	// Select reader based on file extension
	var reader Reader
	if strings.HasSuffix(filename, ".obj") {
		reader = newWavefrontReader()
	} else {
		return nil, fmt.Errorf("readScene: unsupported file format")
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
