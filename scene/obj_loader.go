package scene

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"render-sandbox/core"
	"render-sandbox/textures"
)

// objCorner is one face corner: 0-based position / UV / normal indices,
// -1 when absent.
type objCorner struct{ v, vt, vn int }

type objGroup struct {
	name    string
	matName string
	faces   [][3]objCorner
}

type objMaterial struct {
	part    ModelPart
	texture string
}

// LoadOBJ parses a Wavefront .obj file into one part per object or group.
// A companion .mtl referenced with mtllib supplies colours and the diffuse
// map.
func LoadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()
	return ReadOBJ(filepath.Base(path), f, filepath.Dir(path))
}

// ReadOBJ is LoadOBJ over a reader; mtllib and map_Kd paths resolve
// against dir.
func ReadOBJ(name string, r io.Reader, dir string) (*Model, error) {
	log := core.Logger().With("component", "obj", "model", name)

	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		groups    []objGroup
	)
	materials := map[string]*objMaterial{}
	cur := &objGroup{name: "default"}

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v", "vn":
			vec, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: %w", name, line, err)
			}
			v := mgl32.Vec3{vec[0], vec[1], vec[2]}
			if fields[0] == "v" {
				positions = append(positions, v)
			} else {
				normals = append(normals, v)
			}

		case "vt":
			vec, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("obj %q line %d: %w", name, line, err)
			}
			uvs = append(uvs, mgl32.Vec2{vec[0], vec[1]})

		case "o", "g":
			if len(cur.faces) > 0 {
				groups = append(groups, *cur)
			}
			gname := "default"
			if len(fields) > 1 {
				gname = fields[1]
			}
			cur = &objGroup{name: gname, matName: cur.matName}

		case "usemtl":
			if len(fields) > 1 {
				cur.matName = fields[1]
			}

		case "mtllib":
			if len(fields) > 1 {
				loaded, err := loadMTL(filepath.Join(dir, fields[1]))
				if err != nil {
					log.Warn("material library skipped", "file", fields[1], "err", err)
					continue
				}
				for k, v := range loaded {
					materials[k] = v
				}
			}

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj %q line %d: face needs at least 3 vertices", name, line)
			}
			corners := make([]objCorner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("obj %q line %d: %w", name, line, err)
				}
				corners = append(corners, c)
			}
			// fan triangulation: 0-1-2, 0-2-3, ...
			for i := 1; i+1 < len(corners); i++ {
				cur.faces = append(cur.faces, [3]objCorner{corners[0], corners[i], corners[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj %q: %w", name, err)
	}
	if len(cur.faces) > 0 {
		groups = append(groups, *cur)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("obj %q: %w", name, errEmptyMesh)
	}

	model := &Model{Name: name}
	for _, g := range groups {
		mesh, err := buildOBJMesh(g, positions, normals, uvs)
		if err != nil {
			return nil, fmt.Errorf("obj %q: %w", name, err)
		}
		part := defaultPart(mesh)
		if mat, ok := materials[g.matName]; ok {
			part = mat.part
			part.Mesh = mesh
			if mat.texture != "" {
				img, err := textures.Load(filepath.Join(dir, mat.texture))
				if err != nil {
					log.Warn("texture skipped", "material", g.matName, "err", err)
				} else {
					// OBJ texture coordinates start at the bottom-left.
					img.FlipVertical()
					part.BaseColor = img
				}
			}
		}
		model.Parts = append(model.Parts, part)
	}
	log.Info("model loaded", "parts", len(model.Parts))
	return model, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices
// count back from the last element read so far.
func parseCorner(tok string, nv, nvt, nvn int) (objCorner, error) {
	c := objCorner{v: -1, vt: -1, vn: -1}
	parts := strings.Split(tok, "/")
	dst := []*int{&c.v, &c.vt, &c.vn}
	counts := []int{nv, nvt, nvn}
	for i, p := range parts {
		if i > 2 || p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return c, fmt.Errorf("bad face vertex %q", tok)
		}
		idx := n - 1
		if n < 0 {
			idx = counts[i] + n
		}
		if idx < 0 || idx >= counts[i] {
			return c, fmt.Errorf("face vertex %q out of range", tok)
		}
		*dst[i] = idx
	}
	if c.v < 0 {
		return c, fmt.Errorf("face vertex %q has no position", tok)
	}
	return c, nil
}

// buildOBJMesh deduplicates identical corners into shared vertices.
func buildOBJMesh(g objGroup, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) (*Mesh, error) {
	index := map[objCorner]uint32{}
	var (
		corners []objCorner
		indices []uint32
	)
	for _, face := range g.faces {
		for _, c := range face {
			idx, ok := index[c]
			if !ok {
				idx = uint32(len(corners))
				index[c] = idx
				corners = append(corners, c)
			}
			indices = append(indices, idx)
		}
	}

	pos := make([]mgl32.Vec3, len(corners))
	hasNormals := true
	for i, c := range corners {
		pos[i] = positions[c.v]
		if c.vn < 0 {
			hasNormals = false
		}
	}
	var smooth []mgl32.Vec3
	if !hasNormals {
		smooth = faceNormals(pos, indices)
	}

	m := NewMesh(g.name, LitLayout)
	for i, c := range corners {
		var normal mgl32.Vec3
		if hasNormals {
			normal = safeNormalize(normals[c.vn])
		} else {
			normal = smooth[i]
		}
		var uv mgl32.Vec2
		if c.vt >= 0 {
			uv = uvs[c.vt]
		}
		m.AddLitVertex(pos[i], normal, uv)
	}
	m.Indices = indices
	return m, m.Validate()
}

func defaultPart(m *Mesh) ModelPart {
	return ModelPart{
		Mesh:      m,
		Tint:      core.ColorWhite,
		Specular:  core.ColorWhite.Scale(0.5),
		Shininess: 32,
	}
}

func loadMTL(path string) (map[string]*objMaterial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string]*objMaterial{}
	var cur *objMaterial
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				cur = &objMaterial{part: defaultPart(nil)}
				mats[fields[1]] = cur
			}
			continue
		}
		if cur == nil {
			continue
		}
		switch fields[0] {
		case "Kd", "Ks":
			rgb, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("mtl %q: %w", path, err)
			}
			c := core.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: 1}
			if fields[0] == "Kd" {
				cur.part.Tint = c
			} else {
				cur.part.Specular = c
			}
		case "Ns":
			ns, err := parseFloats(fields[1:], 1)
			if err != nil {
				return nil, fmt.Errorf("mtl %q: %w", path, err)
			}
			cur.part.Shininess = float32(math.Max(1, float64(ns[0])))
		case "map_Kd":
			if len(fields) > 1 {
				cur.texture = fields[len(fields)-1]
			}
		}
	}
	return mats, scanner.Err()
}

// LoadModel picks the loader by file extension.
func LoadModel(path string) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return LoadGLTF(path)
	case ".obj":
		return LoadOBJ(path)
	default:
		return nil, fmt.Errorf("unsupported model format %q", path)
	}
}
