// Command viewer loads one glTF/GLB scene and renders it with a fly camera.
//
//	viewer <scene.glb|scene.gltf> [width height]
//
// WASD moves, the mouse looks around, the scroll wheel zooms and Escape
// quits.
//
// The scene path and window size are the only arguments. On top of that
// the viewer reads an optional viewer.yaml from the working directory or
// the user config directory. It holds the window title, vsync, clear
// colour, camera tuning, gamma correction and logging. The viewer runs
// with built-in defaults when no file exists and never writes one.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"autumn3d/internal/config"
	"autumn3d/internal/logger"
	"autumn3d/internal/window"
	"autumn3d/opengl"
	"autumn3d/renderer"
	"autumn3d/scene"
)

var errUsage = errors.New("usage: viewer <scene.glb|scene.gltf> [width height]")

type args struct {
	scene         string
	width, height int
}

func parseArgs(argv []string) (args, error) {
	var a args
	switch len(argv) {
	case 1:
	case 3:
		w, err := strconv.Atoi(argv[1])
		if err != nil || w <= 0 {
			return a, fmt.Errorf("%w: invalid width %q", errUsage, argv[1])
		}
		h, err := strconv.Atoi(argv[2])
		if err != nil || h <= 0 {
			return a, fmt.Errorf("%w: invalid height %q", errUsage, argv[2])
		}
		a.width, a.height = w, h
	default:
		return a, errUsage
	}
	a.scene = argv[0]
	return a, nil
}

func main() {
	a, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if a.width > 0 {
		cfg.Window.Width, cfg.Window.Height = a.width, a.height
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(a.scene, cfg); err != nil {
		logger.Error("viewer failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(path string, cfg *config.Config) error {
	model, err := scene.Load(path, cfg.Render.GammaCorrection)
	if err != nil {
		return err
	}

	r := renderer.New(window.New(), cfg)
	defer r.Terminate()

	if err := r.CreateWindow(); err != nil {
		return err
	}
	dev, err := opengl.NewDevice()
	if err != nil {
		return err
	}
	if err := r.InitDevice(dev); err != nil {
		return err
	}
	if _, err := r.LoadModel(model); err != nil {
		return err
	}
	return r.Run()
}
