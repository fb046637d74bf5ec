//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var Default = Build.Viewer

type Build mg.Namespace

// Builds the gltf-viewer binary into bin/.
func (Build) Viewer() error {
	fmt.Println("Building gltf-viewer...")
	return sh.RunV("go", "build", "-o", "bin/gltf-viewer", "./cmd/gltf-viewer")
}

type Test mg.Namespace

// Runs the tests that need no graphics context.
func (Test) Unit() error {
	return sh.RunV("go", "test", "./", "./scene/...", "./gpu", "./gpu/gputest")
}

// Runs every test, including the backend helpers that link GL and WebGPU.
func (Test) All() error {
	return sh.RunV("go", "test", "./...")
}

// Vets and tidies the module.
func Lint() error {
	mg.Deps(Tidy)
	return sh.RunV("go", "vet", "./...")
}

func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

// Renders a glTF file with both backends to out-gl.png and out-wgpu.png.
func Compare(file string) error {
	mg.Deps(Build.Viewer)
	for _, backend := range []string{"gl", "wgpu"} {
		out := fmt.Sprintf("out-%s.png", backend)
		if err := sh.RunV("bin/gltf-viewer", "-backend", backend, "-output", out, file); err != nil {
			return err
		}
	}
	return nil
}
