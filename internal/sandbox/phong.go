package sandbox

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"render-sandbox/assets"
	"render-sandbox/config"
	"render-sandbox/core"
	"render-sandbox/internal/gfx"
	"render-sandbox/scene"
	"render-sandbox/textures"
)

// orbitSpeed is the idle camera rotation in degrees per second.
const orbitSpeed = 15

type drawable struct {
	va       *gfx.VertexArray
	material *scene.Material
	model    mgl32.Mat4
	bounds   scene.AABB // world space
}

func newDrawable(ctx *gfx.Context, m *scene.Mesh, mat *scene.Material, model mgl32.Mat4) (drawable, error) {
	va, err := m.Upload(ctx)
	if err != nil {
		return drawable{}, err
	}
	return drawable{va: va, material: mat, model: model, bounds: m.Bounds().Transform(model)}, nil
}

// phongScene is a lit cube (or a glTF model) under the default light rig,
// with a spot light carried by the camera.
type phongScene struct {
	ctx      *gfx.Context
	shader   *gfx.Shader
	camera   *scene.Camera
	lights   *scene.Lights
	items    []drawable
	textures []*gfx.Texture2D
	culled   int // items skipped by the last Render
}

func newPhongScene(ctx *gfx.Context, cfg *config.Config) (_ *phongScene, err error) {
	shader, err := loadShader(ctx, assets.Phong, cfg.Shaders)
	if err != nil {
		return nil, err
	}
	s := &phongScene{
		ctx:    ctx,
		shader: shader,
		camera: scene.NewCamera(45, float32(cfg.Window.Width)/float32(cfg.Window.Height), 0.1, 100),
		lights: scene.DefaultLights(),
	}
	defer func() {
		if err != nil {
			s.Release()
		}
	}()

	s.camera.SetOrbit(6, 30, 25)
	s.lights.Spot = &scene.SpotLight{
		CutOff:      12.5,
		OuterCutOff: 17.5,
		Attenuation: scene.AttenuationRange50,
		Diffuse:     core.ColorWhite,
		Specular:    core.ColorWhite,
	}
	s.followCamera()

	diffuse, err := s.diffuseTexture(cfg.Texture)
	if err != nil {
		return nil, err
	}

	if cfg.Model != "" {
		if err := s.addModel(cfg.Model, diffuse); err != nil {
			return nil, err
		}
		return s, nil
	}

	cube, err := newDrawable(ctx, scene.Cube(1.5), scene.DefaultMaterial(diffuse), mgl32.Ident4())
	if err != nil {
		return nil, err
	}
	s.items = append(s.items, cube)

	floorMat := scene.DefaultMaterial(diffuse)
	floorMat.Name = "floor"
	floorMat.Tint = core.ColorGray
	floorMat.Shininess = 8
	floor, err := newDrawable(ctx, scene.Plane(10), floorMat, mgl32.Translate3D(0, -0.75, 0))
	if err != nil {
		return nil, err
	}
	s.items = append(s.items, floor)
	return s, nil
}

// diffuseTexture loads path, or a 1x1 white texture so untextured
// materials sample their tint unchanged.
func (s *phongScene) diffuseTexture(path string) (*gfx.Texture2D, error) {
	img := textures.Solid("white", 255, 255, 255, 255)
	if path != "" {
		var err error
		if img, err = textures.Load(path); err != nil {
			return nil, err
		}
		img.FlipVertical()
	}
	return s.upload(img)
}

func (s *phongScene) upload(img *textures.Image) (*gfx.Texture2D, error) {
	tex, err := img.Upload(s.ctx)
	if err != nil {
		return nil, err
	}
	s.textures = append(s.textures, tex)
	return tex, nil
}

func (s *phongScene) addModel(path string, fallback *gfx.Texture2D) error {
	model, err := scene.LoadModel(path)
	if err != nil {
		return err
	}
	for _, part := range model.Parts {
		diffuse := fallback
		if part.BaseColor != nil {
			if diffuse, err = s.upload(part.BaseColor); err != nil {
				return fmt.Errorf("model %q: %w", model.Name, err)
			}
		}
		mat := &scene.Material{
			Name:      part.Mesh.Name,
			Diffuse:   diffuse,
			Tint:      part.Tint,
			Specular:  part.Specular,
			Shininess: part.Shininess,
		}
		it, err := newDrawable(s.ctx, part.Mesh, mat, mgl32.Ident4())
		if err != nil {
			return err
		}
		s.items = append(s.items, it)
	}
	return nil
}

func (s *phongScene) followCamera() {
	s.lights.Spot.Position = s.camera.Position()
	s.lights.Spot.Direction = s.camera.Front()
}

func (s *phongScene) Name() string        { return config.ScenePhong }
func (s *phongScene) Shader() *gfx.Shader { return s.shader }
func (s *phongScene) DepthTest() bool     { return true }

func (s *phongScene) Update(dt float32) {
	s.camera.Orbit(orbitSpeed*dt, 0)
	s.followCamera()
}

func (s *phongScene) Orbit(deltaYaw, deltaPitch float32) {
	s.camera.Orbit(deltaYaw, deltaPitch)
	s.followCamera()
}

func (s *phongScene) Resize(width, height int) {
	s.camera.UpdateAspectRatio(float32(width), float32(height))
}

func (s *phongScene) Render(api *gfx.RenderAPI) error {
	s.shader.Bind()
	if err := scene.ApplyCamera(s.shader, s.camera); err != nil {
		return err
	}
	if err := s.lights.Apply(s.shader); err != nil {
		return err
	}
	frustum := scene.FrustumFromMatrix(s.camera.ViewProjection())
	s.culled = 0
	for _, it := range s.items {
		if !frustum.Intersects(it.bounds) {
			s.culled++
			continue
		}
		if err := it.material.Apply(s.shader); err != nil {
			return err
		}
		if err := scene.ApplyModel(s.shader, it.model); err != nil {
			return err
		}
		it.va.Bind()
		if err := api.DrawIndexed(it.va); err != nil {
			return err
		}
	}
	return nil
}

func (s *phongScene) Release() {
	var errs []error
	for _, it := range s.items {
		errs = append(errs, it.va.Release())
	}
	for _, tex := range s.textures {
		tex.Release()
	}
	s.items, s.textures = nil, nil
	s.shader.Release()
	if err := errors.Join(errs...); err != nil {
		core.Logger().Warn("phong scene release", "err", err)
	}
}
