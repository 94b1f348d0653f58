package reader

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/achilleasa/polaris-bvh/asset"
	"github.com/achilleasa/polaris-bvh/log"
	"github.com/achilleasa/polaris-bvh/scene"
	"github.com/achilleasa/polaris-bvh/types"
)

type wavefrontSceneReader struct {
	logger log.Logger

	// The parsed scene.
	scene *Scene

	// A map of material names to material indices.
	matNameToIndex map[string]uint32

	// Currently selected material.
	curMaterial uint32

	// Meshes that contain at least one face without uv coordinates.
	missingUVs map[*scene.Mesh]bool

	// Meshes that contain at least one face with explicit normals.
	withNormals map[*scene.Mesh]bool

	// Name of the last defined object/group.
	curMeshName string

	// List of vertices, normals and uv coords.
	vertexList []types.Vec3
	normalList []types.Vec3
	uvList     []types.Vec2

	// An error stack that provides additional error information when
	// scene files include other files.
	errStack []string
}

// Create a new wavefront scene reader.
func newWavefrontReader() *wavefrontSceneReader {
	return &wavefrontSceneReader{
		logger: log.New("wavefront scene reader"),
		scene: &Scene{
			Meshes:    make([]*scene.Mesh, 0),
			Spheres:   make([]*scene.Sphere, 0),
			Materials: make([]string, 0),
		},
		matNameToIndex: make(map[string]uint32),
		missingUVs:     make(map[*scene.Mesh]bool),
		withNormals:    make(map[*scene.Mesh]bool),
		curMeshName:    "default",
		vertexList:     make([]types.Vec3, 0),
		normalList:     make([]types.Vec3, 0),
		uvList:         make([]types.Vec2, 0),
		errStack:       make([]string, 0),
	}
}

// Read scene definition.
func (r *wavefrontSceneReader) Read(sceneRes *asset.Resource) (*Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	err := r.parse(sceneRes)
	if err != nil {
		return nil, err
	}

	// Drop empty meshes and uv lists that do not cover every face. Meshes
	// without any explicit normals get vertex normals generated from their
	// faces.
	meshes := r.scene.Meshes[:0]
	triangles := 0
	for _, mesh := range r.scene.Meshes {
		if len(mesh.Indices) == 0 {
			continue
		}
		if r.missingUVs[mesh] {
			mesh.UVs = nil
		}
		if !r.withNormals[mesh] {
			mesh.Normals = nil
			mesh.GenerateNormals()
		}
		triangles += len(mesh.Indices)
		meshes = append(meshes, mesh)
	}
	r.scene.Meshes = meshes

	r.logger.Noticef(
		"parsed scene in %d ms: %d meshes, %d triangles, %d spheres",
		time.Since(start).Nanoseconds()/1e6, len(r.scene.Meshes), triangles, len(r.scene.Spheres),
	)
	return r.scene, nil
}

// Generate an error message that also includes any data in the error stack.
func (r *wavefrontSceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return errors.New(strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *wavefrontSceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *wavefrontSceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Get the mesh that receives new faces. A new mesh is started when no mesh
// exists yet or when the active material differs from the material of the
// last mesh.
func (r *wavefrontSceneReader) activeMesh() *scene.Mesh {
	if len(r.scene.Meshes) != 0 {
		last := r.scene.Meshes[len(r.scene.Meshes)-1]
		if last.MaterialIndex == r.curMaterial {
			return last
		}
	}

	mesh := scene.NewMesh(r.curMeshName)
	mesh.Normals = make([]types.Vec3, 0)
	mesh.UVs = make([]types.Vec2, 0)
	mesh.MaterialIndex = r.curMaterial
	r.scene.Meshes = append(r.scene.Meshes, mesh)
	return mesh
}

// Select a material by name, registering it if it has not been seen before.
func (r *wavefrontSceneReader) selectMaterial(name string) {
	matIndex, exists := r.matNameToIndex[name]
	if !exists {
		matIndex = uint32(len(r.scene.Materials))
		r.matNameToIndex[name] = matIndex
		r.scene.Materials = append(r.scene.Materials, name)
	}
	r.curMaterial = matIndex
}

// Parse wavefront object scene format.
func (r *wavefrontSceneReader) parse(res *asset.Resource) error {
	var lineNum int = 0

	// The main obj file may include (call) several other object files. Each
	// object file contains 1-based indices (when they are positive). By
	// tracking the current vertex/uv/normal offsets we can apply them
	// while parsing faces to select the correct coordinates.
	relVertexOffset := len(r.vertexList)
	relUvOffset := len(r.uvList)
	relNormalOffset := len(r.normalList)

	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "call":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.pushFrame(fmt.Sprintf("referenced from %s:%d [%s]", res.Path(), lineNum, lineTokens[0]))

			incRes, err := asset.NewResource(lineTokens[1], res)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}

			err = r.parse(incRes)
			incRes.Close()
			if err != nil {
				return err
			}
			r.popFrame()
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for 'usemtl'; expected 1 argument; got %d`, len(lineTokens)-1)
			}
			r.selectMaterial(lineTokens[1])
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.vertexList = append(r.vertexList, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.normalList = append(r.normalList, v.Normalize())
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			r.uvList = append(r.uvList, v)
		case "g", "o":
			if len(lineTokens) < 2 {
				return r.emitError(res.Path(), lineNum, `unsupported syntax for "%s"; expected 1 argument for object name; got %d`, lineTokens[0], len(lineTokens)-1)
			}

			r.curMeshName = lineTokens[1]
			mesh := scene.NewMesh(r.curMeshName)
			mesh.Normals = make([]types.Vec3, 0)
			mesh.UVs = make([]types.Vec2, 0)
			mesh.MaterialIndex = r.curMaterial
			r.scene.Meshes = append(r.scene.Meshes, mesh)
		case "f":
			err := r.parseFace(lineTokens, relVertexOffset, relUvOffset, relNormalOffset)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
		case "sphere":
			sphere, err := parseSphere(lineTokens)
			if err != nil {
				return r.emitError(res.Path(), lineNum, err.Error())
			}
			sphere.MaterialIndex = r.curMaterial
			r.scene.Spheres = append(r.scene.Spheres, sphere)
		default:
			r.logger.Infof("[%s: %d] skipping unsupported statement %q", res.Path(), lineNum, lineTokens[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, err.Error())
	}

	return nil
}

// Parse a triangle or quad face and append its triangles to the active mesh.
func (r *wavefrontSceneReader) parseFace(lineTokens []string, relVertexOffset, relUvOffset, relNormalOffset int) error {
	if len(lineTokens) < 4 || len(lineTokens) > 5 {
		return fmt.Errorf(`unsupported syntax for "f"; expected 3 arguments for triangular face or 4 arguments for a quad face; got %d. Select the triangulation option in your exporter`, len(lineTokens)-1)
	}

	var vertices [4]types.Vec3
	var normals [4]types.Vec3
	var uv [4]types.Vec2
	var vOffset int
	var err error
	var hasNormal [4]bool
	expIndices := 0
	normalCount := 0
	uvCount := 0
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		// Faces must at least define a vertex coord
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err = selectFaceCoordIndex(vTokens[0], len(r.vertexList), relVertexOffset)
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		vertices[arg] = r.vertexList[vOffset]

		// Parse UV coords if specified
		if expIndices > 1 && vTokens[1] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[1], len(r.uvList), relUvOffset)
			if err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err.Error())
			}
			uv[arg] = r.uvList[vOffset]
			uvCount++
		}

		// Parse normal coords if specified
		if expIndices > 2 && vTokens[2] != "" {
			vOffset, err = selectFaceCoordIndex(vTokens[2], len(r.normalList), relNormalOffset)
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			normals[arg] = r.normalList[vOffset]
			hasNormal[arg] = true
			normalCount++
		}
	}

	// Corners without a normal use the face normal
	if normalCount != len(lineTokens)-1 {
		e01 := vertices[1].Sub(vertices[0])
		e02 := vertices[2].Sub(vertices[0])
		faceNormal := e01.Cross(e02).Normalize()
		for arg := range normals {
			if !hasNormal[arg] {
				normals[arg] = faceNormal
			}
		}
	}

	mesh := r.activeMesh()
	if normalCount != 0 {
		r.withNormals[mesh] = true
	}
	if uvCount != len(lineTokens)-1 {
		r.missingUVs[mesh] = true
	}

	// Append face corners as new mesh vertices
	base := uint32(len(mesh.Positions))
	for arg := 0; arg < len(lineTokens)-1; arg++ {
		mesh.Positions = append(mesh.Positions, vertices[arg])
		mesh.Normals = append(mesh.Normals, normals[arg])
		mesh.UVs = append(mesh.UVs, uv[arg])
	}

	// Assemble vertices into one or two triangles depending on whether we
	// are parsing a triangular or a quad face
	mesh.Indices = append(mesh.Indices, [3]uint32{base, base + 1, base + 2})
	if len(lineTokens) == 5 {
		mesh.Indices = append(mesh.Indices, [3]uint32{base, base + 2, base + 3})
	}

	return nil
}

// Convert a 1-based (or negative, relative to the end) face coordinate index
// into an offset into a coordinate list.
func selectFaceCoordIndex(indexToken string, coordListLen int, relOffset int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int = 0
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = relOffset + int(index-1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse the arguments of a "sphere cx cy cz radius" statement.
func parseSphere(lineTokens []string) (*scene.Sphere, error) {
	if len(lineTokens) != 5 {
		return nil, fmt.Errorf(`unsupported syntax for "%s"; expected 4 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	center, err := parseVec3(lineTokens[:4])
	if err != nil {
		return nil, err
	}

	radius, err := parseFloat64(append([]string{lineTokens[0]}, lineTokens[4]))
	if err != nil {
		return nil, err
	}
	if radius <= 0 {
		return nil, fmt.Errorf("sphere radius must be positive; got %v", radius)
	}

	return scene.NewSphere(center, radius), nil
}

func parseFloat64(lineTokens []string) (float64, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf(`unsupported syntax for '%s'; expected 1 argument; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	return strconv.ParseFloat(lineTokens[1], 64)
}

func parseVec2(lineTokens []string) (types.Vec2, error) {
	if len(lineTokens) < 3 {
		return types.Vec2{}, fmt.Errorf(`unsupported syntax for '%s'; expected 2 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec2{}
	for tokIdx := 1; tokIdx <= 2; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 64)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = coord
	}
	return v, nil
}

func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf(`unsupported syntax for '%s'; expected 3 arguments; got %d`, lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 64)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = coord
	}
	return v, nil
}
