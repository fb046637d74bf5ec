// Package gltfview loads a glTF asset, uploads it to a graphics device and
// draws it every frame with a single directional light.
package gltfview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/gltfview/gpu"
	"github.com/gekko3d/gltfview/scene"
)

type App struct {
	cfg    Config
	logger Logger
	// debug as started, from the file or -debug
	startDebug bool

	device  gpu.Device
	asset   *scene.Asset
	res     *gpu.ResourceSet
	walker  *gpu.Walker
	camera  scene.Camera
	maxDist float32
	light   scene.Light
	clear   [4]float32
}

func NewApp(cfg Config, logger Logger) *App {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &App{
		cfg:        cfg,
		logger:     logger,
		startDebug: cfg.Debug,
		light:      cfg.SceneLight(),
		clear:      cfg.ClearColor(),
	}
}

func (app *App) Logger() Logger { return app.logger }

func (app *App) Camera() scene.Camera { return app.camera }

func (app *App) Resources() *gpu.ResourceSet { return app.res }

// Prepare builds the device resources for asset and places the camera,
// either from the configured lookat or by framing the scene bounds.
// Contract violations in the asset are returned as *gpu.ContractError.
func (app *App) Prepare(device gpu.Device, asset *scene.Asset) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*gpu.ContractError)
			if !ok {
				panic(r)
			}
			err = ce
		}
	}()

	for _, w := range asset.Warnings() {
		app.logger.Warnf("%s: %s", asset.Path, w)
	}

	start := time.Now()
	res, err := gpu.NewBuilder(device, app.logger, gpu.Options{
		InferTargets: app.cfg.Renderer.InferTargets,
	}).Build(asset)
	if err != nil {
		return fmt.Errorf("build %s: %w", asset.Path, err)
	}
	app.logger.Infof("built %d buffers, %d vertex arrays, %d textures in %s",
		len(res.Buffers), len(res.VertexArrays), len(res.Textures), time.Since(start).Round(time.Millisecond))

	bounds, err := scene.ComputeBounds(asset)
	if err != nil {
		app.logger.Warnf("scene bounds: %v", err)
		bounds = scene.EmptyBounds()
	}

	app.device = device
	app.asset = asset
	app.res = res
	app.walker = gpu.NewWalker(device, asset, res)
	app.maxDist = scene.MaxDistance(bounds)
	if cam, ok := app.cfg.LookAtCamera(); ok {
		app.camera = cam
	} else {
		app.camera = scene.CameraFromBounds(bounds, mgl32.Vec3{0, 1, 0})
	}
	app.logger.Infof("camera %s", app.camera.LookAtArgs())
	return nil
}

// ApplyConfig takes the live settings of a reloaded config: camera, light,
// clear color and field of view. A reload can turn debug on but never below
// what the app started with. Window and backend changes need a restart.
func (app *App) ApplyConfig(cfg Config) {
	if cfg.Renderer.Backend != app.cfg.Renderer.Backend {
		app.logger.Warnf("backend change to %q ignored until restart", cfg.Renderer.Backend)
	}
	if cam, ok := cfg.LookAtCamera(); ok {
		app.camera = cam
	}
	app.light = cfg.SceneLight()
	app.clear = cfg.ClearColor()
	app.cfg.Camera = cfg.Camera
	app.cfg.Light = cfg.Light
	app.cfg.Renderer.Clear = cfg.Renderer.Clear
	app.logger.SetDebug(app.startDebug || cfg.Debug)
}

// DrawFrame draws one frame covering a width x height framebuffer.
func (app *App) DrawFrame(width, height int) {
	if app.walker == nil {
		return
	}
	vp := gpu.Viewport{Width: width, Height: height}
	proj := scene.Projection(app.cfg.Camera.FovY, vp.Aspect(), app.maxDist)
	app.walker.DrawFrame(vp, app.clear, app.camera.ViewMatrix(), proj, app.light)
}

// RenderImage draws one frame offscreen.
func (app *App) RenderImage(width, height int) (*image.NRGBA, error) {
	off, ok := app.device.(gpu.Offscreen)
	if !ok {
		return nil, errors.New("device cannot render offscreen")
	}
	return off.RenderToImage(width, height, func() { app.DrawFrame(width, height) })
}

// ExportPNG renders one frame offscreen and writes it to path.
func (app *App) ExportPNG(path string, width, height int) error {
	img, err := app.RenderImage(width, height)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	app.logger.Infof("wrote %s (%dx%d)", path, width, height)
	return nil
}

// Run loads path and either exports a single frame, when an output path is
// configured, or draws into a window until it is closed or ctx is done.
// Configs received on updates are applied between frames. The caller must
// hold the main OS thread.
func (app *App) Run(ctx context.Context, path string, updates <-chan Config) error {
	backend, err := ParseRendererName(app.cfg.Renderer.Backend)
	if err != nil {
		return err
	}
	asset, err := scene.Load(path)
	if err != nil {
		return err
	}
	app.logger.Infof("loaded %s (%d meshes, %d nodes)", path, len(asset.Doc.Meshes), len(asset.Doc.Nodes))

	offscreen := app.cfg.Renderer.Output != ""
	var win *Window
	if !offscreen || backend == RendererGL {
		win, err = OpenWindow(app.cfg.Window, backend, offscreen)
		if err != nil {
			return err
		}
		defer win.Close()
	}
	device, err := openBackend(backend, win, app.logger)
	if err != nil {
		return err
	}
	app.logger.Infof("renderer: %s", backend)
	if err := app.Prepare(device, asset); err != nil {
		return err
	}

	if offscreen {
		return app.ExportPNG(app.cfg.Renderer.Output, app.cfg.Window.Width, app.cfg.Window.Height)
	}
	return app.loop(ctx, win, updates)
}

func (app *App) loop(ctx context.Context, win *Window, updates <-chan Config) error {
	stats := newFrameStats(time.Now())
	width, height := win.FramebufferSize()
	for !win.ShouldClose() {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-updates:
			if ok {
				app.ApplyConfig(cfg)
			} else {
				updates = nil
			}
		default:
		}

		win.PollEvents()
		if w, h := win.FramebufferSize(); w != width || h != height {
			width, height = w, h
			if r, ok := app.device.(resizer); ok {
				r.Resize(width, height)
			}
		}
		if width == 0 || height == 0 {
			// minimized
			time.Sleep(10 * time.Millisecond)
			continue
		}

		app.DrawFrame(width, height)
		win.Present()

		if msg, ok := stats.frame(time.Now()); ok && app.logger.DebugEnabled() {
			app.logger.Debugf("%s", msg)
		}
	}
	return nil
}

// frameStats averages frame time over one second windows.
type frameStats struct {
	start  time.Time
	frames int
}

func newFrameStats(now time.Time) *frameStats {
	return &frameStats{start: now}
}

// frame counts a finished frame and returns a summary once a second has
// passed since the last one.
func (s *frameStats) frame(now time.Time) (string, bool) {
	s.frames++
	elapsed := now.Sub(s.start)
	if elapsed < time.Second {
		return "", false
	}
	ms := float64(elapsed.Microseconds()) / 1000 / float64(s.frames)
	msg := fmt.Sprintf("%.3f ms/frame (%.1f FPS)", ms, float64(s.frames)/elapsed.Seconds())
	s.start = now
	s.frames = 0
	return msg, true
}
