// Package config loads signcoach settings from a TOML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/ensenando/signcoach/internal/capture"
	"github.com/ensenando/signcoach/internal/confirm"
	"github.com/ensenando/signcoach/internal/detector"
	"github.com/ensenando/signcoach/internal/plugin"
)

// Config is the full application configuration.
type Config struct {
	Server      Server      `toml:"server"`
	Camera      Camera      `toml:"camera"`
	Recognition Recognition `toml:"recognition"`
	Detector    Detector    `toml:"detector"`
	Classifier  Classifier  `toml:"classifier"`
	Plugins     Plugins     `toml:"plugins"`
	Store       Store       `toml:"store"`
}

type Server struct {
	Addr      string `toml:"addr"`
	StaticDir string `toml:"static_dir"`
}

type Camera struct {
	Device int `toml:"device"`
	FPS    int `toml:"fps"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type Recognition struct {
	ConfidenceThreshold float32 `toml:"confidence_threshold"`
	RequiredConsecutive int     `toml:"required_consecutive"`
}

type Detector struct {
	MaxHands              int     `toml:"max_hands"`
	MinConfidence         float64 `toml:"min_confidence"`
	MinTrackingConfidence float64 `toml:"min_tracking_confidence"`
}

type Classifier struct {
	ModelPath string `toml:"model_path"`
}

type Plugins struct {
	Dir       string `toml:"dir"`
	TimeoutMs int    `toml:"timeout_ms"`
}

type Store struct {
	Path string `toml:"path"`
}

// Dir returns the signcoach data directory, ~/.signcoach.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".signcoach"
	}
	return filepath.Join(home, ".signcoach")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Default returns the built-in configuration.
func Default() Config {
	cam := capture.DefaultConfig()
	rec := confirm.DefaultConfig()
	det := detector.DefaultConfig()
	dir := Dir()

	return Config{
		Server: Server{
			Addr:      "127.0.0.1:8080",
			StaticDir: "web",
		},
		Camera: Camera{
			Device: cam.DeviceID,
			FPS:    cam.FPS,
			Width:  cam.Width,
			Height: cam.Height,
		},
		Recognition: Recognition{
			ConfidenceThreshold: rec.ConfidenceThreshold,
			RequiredConsecutive: rec.RequiredConsecutive,
		},
		Detector: Detector{
			MaxHands:              det.MaxHands,
			MinConfidence:         det.MinConfidence,
			MinTrackingConfidence: det.MinTrackingConf,
		},
		Classifier: Classifier{
			ModelPath: filepath.Join(dir, "models", "gesture_classifier.tflite"),
		},
		Plugins: Plugins{
			Dir:       filepath.Join(dir, "plugins"),
			TimeoutMs: plugin.DefaultTimeoutMs,
		},
		Store: Store{
			Path: filepath.Join(dir, "signcoach.db"),
		},
	}
}

// Load reads path over Default and then applies SIGNCOACH_* environment
// overrides. A missing file is not an error. An empty path means DefaultPath.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("env %s: %w", k, err)
	}
	return n, nil
}

func (c *Config) applyEnv() error {
	c.Server.Addr = getEnv("SIGNCOACH_ADDR", c.Server.Addr)
	c.Classifier.ModelPath = getEnv("SIGNCOACH_MODEL", c.Classifier.ModelPath)
	c.Store.Path = getEnv("SIGNCOACH_DB", c.Store.Path)
	c.Plugins.Dir = getEnv("SIGNCOACH_PLUGINS", c.Plugins.Dir)

	device, err := getEnvInt("SIGNCOACH_CAMERA", c.Camera.Device)
	if err != nil {
		return err
	}
	c.Camera.Device = device
	return nil
}

// CaptureConfig converts the camera section.
func (c Config) CaptureConfig() capture.Config {
	return capture.Config{
		DeviceID: c.Camera.Device,
		FPS:      c.Camera.FPS,
		Width:    c.Camera.Width,
		Height:   c.Camera.Height,
	}
}

// ConfirmConfig converts the recognition section.
func (c Config) ConfirmConfig() confirm.Config {
	return confirm.Config{
		ConfidenceThreshold: c.Recognition.ConfidenceThreshold,
		RequiredConsecutive: c.Recognition.RequiredConsecutive,
	}
}

// DetectorConfig converts the detector section.
func (c Config) DetectorConfig() detector.Config {
	return detector.Config{
		MaxHands:        c.Detector.MaxHands,
		MinConfidence:   c.Detector.MinConfidence,
		MinTrackingConf: c.Detector.MinTrackingConfidence,
	}
}
