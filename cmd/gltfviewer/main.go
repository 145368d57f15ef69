// Package main is the entry point for the glTF viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/gltfviewer/internal/config"
	"github.com/Faultbox/gltfviewer/internal/engine/gpu/opengl"
	"github.com/Faultbox/gltfviewer/internal/engine/window"
	"github.com/Faultbox/gltfviewer/internal/logger"
	"github.com/Faultbox/gltfviewer/internal/viewer"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if config.WriteConfigRequested() {
		path, err := cfg.Save()
		if err != nil {
			logger.Error("cannot write config", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("config written", zap.String("path", path))
		return
	}

	logger.Info("=== glTF Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)
	if n := config.ExtraArgs(); n > 0 {
		logger.Warn("ignoring extra arguments", zap.Int("count", n))
	}

	if err := run(cfg, config.ModelPath()); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(cfg *config.Config, modelPath string) error {
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer win.Close()

	dev, err := opengl.New()
	if err != nil {
		return fmt.Errorf("initializing OpenGL: %w", err)
	}

	app, err := viewer.New(cfg, win, dev, window.OpenModelDialog)
	if err != nil {
		return err
	}
	defer app.Close()

	app.Open(modelPath)
	app.Run()
	return nil
}
