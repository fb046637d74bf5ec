package gltfview

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"

	"github.com/gekko3d/gltfview/scene"
)

// Config holds everything the viewer reads from its TOML file. Command line
// flags are applied on top of it.
type Config struct {
	Window   WindowConfig `toml:"window"`
	Renderer RenderConfig `toml:"renderer"`
	Camera   CameraConfig `toml:"camera"`
	Light    LightConfig  `toml:"light"`
	Debug    bool         `toml:"debug"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type RenderConfig struct {
	Backend      string    `toml:"backend"`
	Output       string    `toml:"output"`
	Clear        []float32 `toml:"clear"`
	InferTargets bool      `toml:"infer_targets"`
}

type CameraConfig struct {
	// LookAt is eye, center and up as nine values. Empty means fit the scene.
	LookAt []float32 `toml:"lookat"`
	FovY   float32   `toml:"fov"`
}

type LightConfig struct {
	Direction  []float32 `toml:"direction"`
	Intensity  []float32 `toml:"intensity"`
	FromCamera bool      `toml:"from_camera"`
}

func DefaultConfig() Config {
	light := scene.DefaultLight()
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "glTF Viewer",
		},
		Renderer: RenderConfig{
			Backend: string(RendererGL),
			Clear:   []float32{0, 0, 0, 1},
		},
		Camera: CameraConfig{
			FovY: scene.DefaultFovY,
		},
		Light: LightConfig{
			Direction: light.Direction[:],
			Intensity: light.Intensity[:],
		},
	}
}

// LoadConfig reads path over DefaultConfig. Keys missing from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if _, err := ParseRendererName(c.Renderer.Backend); err != nil {
		errs = append(errs, err)
	}
	if n := len(c.Renderer.Clear); n != 0 && n != 3 && n != 4 {
		errs = append(errs, fmt.Errorf("clear color needs 3 or 4 values, got %d", n))
	}
	if n := len(c.Camera.LookAt); n != 0 && n != 9 {
		errs = append(errs, fmt.Errorf("lookat needs 9 values, got %d", n))
	}
	if c.Camera.FovY <= 0 || c.Camera.FovY >= 180 {
		errs = append(errs, fmt.Errorf("fov %g must be in (0, 180)", c.Camera.FovY))
	}
	if n := len(c.Light.Direction); n != 0 && n != 3 {
		errs = append(errs, fmt.Errorf("light direction needs 3 values, got %d", n))
	}
	if n := len(c.Light.Intensity); n != 0 && n != 3 {
		errs = append(errs, fmt.Errorf("light intensity needs 3 values, got %d", n))
	}
	return errors.Join(errs...)
}

func (c Config) ClearColor() [4]float32 {
	out := [4]float32{0, 0, 0, 1}
	copy(out[:], c.Renderer.Clear)
	return out
}

// SceneLight converts the light section, falling back to the default light
// for missing vectors.
func (c Config) SceneLight() scene.Light {
	l := scene.DefaultLight()
	if len(c.Light.Direction) == 3 {
		l.Direction = mgl32.Vec3{c.Light.Direction[0], c.Light.Direction[1], c.Light.Direction[2]}
	}
	if len(c.Light.Intensity) == 3 {
		l.Intensity = mgl32.Vec3{c.Light.Intensity[0], c.Light.Intensity[1], c.Light.Intensity[2]}
	}
	l.FromCamera = c.Light.FromCamera
	return l
}

// LookAtCamera returns the configured pose, or false when the scene bounds
// should decide.
func (c Config) LookAtCamera() (scene.Camera, bool) {
	if len(c.Camera.LookAt) != 9 {
		return scene.Camera{}, false
	}
	cam, err := scene.CameraFromValues(c.Camera.LookAt)
	if err != nil {
		return scene.Camera{}, false
	}
	return cam, true
}
