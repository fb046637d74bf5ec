// Command gltf-viewer draws a glTF 2.0 file in a window, or renders one
// frame of it to a PNG.
//
//	gltf-viewer [flags] file.gltf
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gekko3d/gltfview"
	"github.com/gekko3d/gltfview/scene"
)

func init() {
	// GLFW and GL contexts are bound to the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "gltf-viewer:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("gltf-viewer", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML config `file`")
	lookat := fs.String("lookat", "", "camera as `ex,ey,ez,cx,cy,cz,ux,uy,uz`")
	width := fs.Int("w", 0, "window and output width")
	height := fs.Int("h", 0, "window and output height")
	output := fs.String("output", "", "render one frame to this PNG `file` and exit")
	backend := fs.String("backend", "", "renderer: gl or wgpu")
	inferTargets := fs.Bool("infer-targets", false, "accept buffer views without a target")
	debug := fs.Bool("debug", false, "debug logging and frame timing")
	watch := fs.Bool("watch", false, "reload the config file when it changes")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: gltf-viewer [flags] file.gltf\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one glTF file, got %d arguments", fs.NArg())
	}

	cfg := gltfview.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = gltfview.LoadConfig(*configPath); err != nil {
			return err
		}
	}

	// flags given explicitly win over the file
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lookat":
			cam, err := scene.ParseLookAt(*lookat)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Camera.LookAt = []float32{
				cam.Eye[0], cam.Eye[1], cam.Eye[2],
				cam.Center[0], cam.Center[1], cam.Center[2],
				cam.Up[0], cam.Up[1], cam.Up[2],
			}
		case "w":
			cfg.Window.Width = *width
		case "h":
			cfg.Window.Height = *height
		case "output":
			cfg.Renderer.Output = *output
		case "backend":
			cfg.Renderer.Backend = *backend
		case "infer-targets":
			cfg.Renderer.InferTargets = *inferTargets
		case "debug":
			cfg.Debug = *debug
		}
	})
	if flagErr != nil {
		return flagErr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := gltfview.NewDefaultLogger("gltf-viewer", cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var updates <-chan gltfview.Config
	if *watch {
		if *configPath == "" {
			return errors.New("-watch needs -config")
		}
		ch, err := gltfview.WatchConfig(ctx, *configPath, logger)
		if err != nil {
			return err
		}
		updates = ch
	}

	app := gltfview.NewApp(cfg, logger)
	return app.Run(ctx, fs.Arg(0), updates)
}
