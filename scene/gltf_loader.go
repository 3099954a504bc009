package scene

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"render-sandbox/core"
	"render-sandbox/textures"
)

var (
	errNoPosition = errors.New("primitive has no POSITION attribute")
	errIndexRange = errors.New("index out of range")
)

// ModelPart is one triangle primitive of a model with node transforms
// already applied to its vertices.
type ModelPart struct {
	Mesh      *Mesh
	Tint      core.Color
	Specular  core.Color
	Shininess float32
	// BaseColor is the decoded base-colour texture with rows already in
	// upload order, nil when the material has none or it could not be
	// loaded.
	BaseColor *textures.Image
}

// Model is the flattened geometry of a glTF scene.
type Model struct {
	Name  string
	Parts []ModelPart
}

// LoadGLTF opens a .gltf or .glb file. Images referenced by relative URI
// are resolved next to path.
func LoadGLTF(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return FromDocument(filepath.Base(path), doc, filepath.Dir(path))
}

// FromDocument converts the default scene of doc (or every root node when
// doc has no default scene) into a Model. Non-triangle primitives are
// skipped.
func FromDocument(name string, doc *gltf.Document, dir string) (*Model, error) {
	log := core.Logger().With("component", "gltf", "model", name)
	images := loadImages(doc, dir)

	model := &Model{Name: name}
	onPath := make(map[int]bool)
	var visit func(idx int, parent mgl32.Mat4) error
	visit = func(idx int, parent mgl32.Mat4) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("gltf %q: node index %d out of range", name, idx)
		}
		if onPath[idx] {
			return fmt.Errorf("gltf %q: node %d is its own ancestor", name, idx)
		}
		onPath[idx] = true
		defer delete(onPath, idx)
		node := doc.Nodes[idx]
		world := parent.Mul4(localTransform(node))

		if node.Mesh != nil && *node.Mesh >= 0 && *node.Mesh < len(doc.Meshes) {
			gm := doc.Meshes[*node.Mesh]
			for pi, prim := range gm.Primitives {
				if prim.Mode != gltf.PrimitiveTriangles {
					log.Warn("skipping non-triangle primitive", "mesh", gm.Name, "primitive", pi)
					continue
				}
				m, err := readPrimitive(doc, primitiveName(gm.Name, *node.Mesh, pi), prim, world)
				if err != nil {
					return fmt.Errorf("gltf %q: %w", name, err)
				}
				model.Parts = append(model.Parts, partFor(doc, m, prim.Material, images))
			}
		}
		for _, child := range node.Children {
			if err := visit(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range rootNodes(doc) {
		if err := visit(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}
	if len(model.Parts) == 0 {
		return nil, fmt.Errorf("gltf %q: %w", name, errEmptyMesh)
	}
	log.Info("model loaded", "parts", len(model.Parts))
	return model, nil
}

func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func localTransform(n *gltf.Node) mgl32.Mat4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i, v := range m {
			out[i] = float32(v)
		}
		return out
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func primitiveName(meshName string, meshIdx, primIdx int) string {
	if meshName == "" {
		return fmt.Sprintf("mesh%d_p%d", meshIdx, primIdx)
	}
	return fmt.Sprintf("%s_p%d", meshName, primIdx)
}

// readAccessor checks that accessor idx and the buffer view and buffer it
// reads from exist before handing it to read.
func readAccessor[T any](doc *gltf.Document, idx int, read func(*gltf.Document, *gltf.Accessor, T) (T, error)) (T, error) {
	var zero T
	if idx < 0 || idx >= len(doc.Accessors) {
		return zero, fmt.Errorf("accessor %d: %w", idx, errIndexRange)
	}
	acr := doc.Accessors[idx]
	if acr.BufferView != nil {
		if err := checkBufferView(doc, *acr.BufferView); err != nil {
			return zero, fmt.Errorf("accessor %d: %w", idx, err)
		}
	}
	return read(doc, acr, zero)
}

func checkBufferView(doc *gltf.Document, idx int) error {
	if idx < 0 || idx >= len(doc.BufferViews) {
		return fmt.Errorf("buffer view %d: %w", idx, errIndexRange)
	}
	if b := doc.BufferViews[idx].Buffer; b < 0 || b >= len(doc.Buffers) {
		return fmt.Errorf("buffer view %d: buffer %d: %w", idx, b, errIndexRange)
	}
	return nil
}

// readPrimitive interleaves one primitive into LitLayout, transformed by
// world. Missing normals are rebuilt from the faces; missing UVs are zero.
func readPrimitive(doc *gltf.Document, name string, prim *gltf.Primitive, world mgl32.Mat4) (*Mesh, error) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, errNoPosition)
	}
	positions, err := readAccessor(doc, posIdx, modeler.ReadPosition)
	if err != nil {
		return nil, fmt.Errorf("%s: positions: %w", name, err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = readAccessor(doc, idx, modeler.ReadNormal); err != nil {
			return nil, fmt.Errorf("%s: normals: %w", name, err)
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = readAccessor(doc, idx, modeler.ReadTextureCoord); err != nil {
			return nil, fmt.Errorf("%s: texcoords: %w", name, err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = readAccessor(doc, *prim.Indices, modeler.ReadIndices); err != nil {
			return nil, fmt.Errorf("%s: indices: %w", name, err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	worldPos := make([]mgl32.Vec3, len(positions))
	for i, p := range positions {
		worldPos[i] = world.Mul4x1(mgl32.Vec3(p).Vec4(1)).Vec3()
	}

	var worldNormals []mgl32.Vec3
	if len(normals) == len(positions) {
		nm := NormalMatrix(world)
		worldNormals = make([]mgl32.Vec3, len(normals))
		for i, n := range normals {
			worldNormals[i] = safeNormalize(nm.Mul3x1(mgl32.Vec3(n)))
		}
	} else {
		worldNormals = faceNormals(worldPos, indices)
	}

	m := NewMesh(name, LitLayout)
	m.Vertices = make([]float32, 0, len(positions)*8)
	for i, p := range worldPos {
		var uv mgl32.Vec2
		if i < len(uvs) {
			uv = mgl32.Vec2(uvs[i])
		}
		m.AddLitVertex(p, worldNormals[i], uv)
	}
	m.Indices = indices
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// faceNormals averages the area-weighted face normals touching each vertex.
func faceNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			continue
		}
		n := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		out[a] = out[a].Add(n)
		out[b] = out[b].Add(n)
		out[c] = out[c].Add(n)
	}
	for i := range out {
		out[i] = safeNormalize(out[i])
	}
	return out
}

func safeNormalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() < 1e-8 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Normalize()
}

// partFor maps the glTF metallic-roughness material onto Phong terms.
func partFor(doc *gltf.Document, m *Mesh, matIdx *int, images map[int]*textures.Image) ModelPart {
	part := defaultPart(m)
	if matIdx == nil || *matIdx < 0 || *matIdx >= len(doc.Materials) {
		return part
	}
	pbr := doc.Materials[*matIdx].PBRMetallicRoughness
	if pbr == nil {
		return part
	}
	cf := pbr.BaseColorFactorOrDefault()
	part.Tint = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}

	roughness := float32(pbr.RoughnessFactorOrDefault())
	metallic := float32(pbr.MetallicFactorOrDefault())
	part.Shininess = (1-roughness)*(1-roughness)*128 + 1
	s := 0.04 + metallic*0.66
	part.Specular = core.Color{R: s, G: s, B: s, A: 1}

	if pbr.BaseColorTexture != nil {
		part.BaseColor = images[pbr.BaseColorTexture.Index]
	}
	return part
}

// loadImages decodes every texture source, keyed by texture index.
// Failures are logged and leave the texture unset.
func loadImages(doc *gltf.Document, dir string) map[int]*textures.Image {
	log := core.Logger().With("component", "gltf")
	out := make(map[int]*textures.Image)
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source < 0 || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("image%d", *gt.Source)
		}

		var (
			decoded *textures.Image
			err     error
		)
		switch {
		case img.BufferView != nil:
			var raw []byte
			if err = checkBufferView(doc, *img.BufferView); err == nil {
				raw, err = modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			}
			if err == nil {
				decoded, err = textures.Decode(name, bytes.NewReader(raw))
			}
		case img.IsEmbeddedResource():
			var raw []byte
			raw, err = img.MarshalData()
			if err == nil {
				decoded, err = textures.Decode(name, bytes.NewReader(raw))
			}
		case img.URI != "":
			decoded, err = textures.Load(filepath.Join(dir, img.URI))
		default:
			continue
		}
		if err != nil {
			log.Warn("texture skipped", "texture", i, "image", name, "err", err)
			continue
		}
		out[i] = decoded
	}
	return out
}
