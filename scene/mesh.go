package scene

import "github.com/achilleasa/polaris-bvh/types"

// A Mesh stores the shared vertex attributes for a set of triangles. The
// Normals and UVs lists are optional; when present they are indexed in
// parallel with Positions.
type Mesh struct {
	Name string

	Positions []types.Vec3
	Normals   []types.Vec3
	UVs       []types.Vec2

	// Triangle vertex indices into the attribute lists.
	Indices [][3]uint32

	MaterialIndex uint32
}

// Create a new named mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Positions: make([]types.Vec3, 0),
		Indices:   make([][3]uint32, 0),
	}
}

// Get the bounding box of all mesh vertices.
func (m *Mesh) BBox() BBox {
	bbox := EmptyBBox()
	for _, p := range m.Positions {
		bbox = bbox.Expand(p)
	}
	return bbox
}

// Build a triangle primitive for each indexed face.
func (m *Mesh) Triangles() []Primitive {
	prims := make([]Primitive, len(m.Indices))
	for idx, tri := range m.Indices {
		prims[idx] = &Triangle{Mesh: m, V: tri}
	}
	return prims
}

// Generate per-vertex normals from face geometry for meshes that do not
// define any. Vertex normals are the normalized sum of the normals of all
// faces sharing the vertex.
func (m *Mesh) GenerateNormals() {
	if len(m.Normals) == len(m.Positions) {
		return
	}

	m.Normals = make([]types.Vec3, len(m.Positions))
	for _, tri := range m.Indices {
		p0 := m.Positions[tri[0]]
		e1 := m.Positions[tri[1]].Sub(p0)
		e2 := m.Positions[tri[2]].Sub(p0)
		faceNormal := e1.Cross(e2).Normalize()
		for _, v := range tri {
			m.Normals[v] = m.Normals[v].Add(faceNormal)
		}
	}

	for idx, n := range m.Normals {
		m.Normals[idx] = n.Normalize()
	}
}
