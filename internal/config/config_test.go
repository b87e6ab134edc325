package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ensenando/signcoach/internal/confirm"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if cfg.ConfirmConfig() != confirm.DefaultConfig() {
		t.Errorf("ConfirmConfig() = %+v, want %+v", cfg.ConfirmConfig(), confirm.DefaultConfig())
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
addr = ":9090"

[camera]
device = 2
fps = 30

[recognition]
required_consecutive = 3
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := Default()
	tests := []struct {
		name string
		got  any
		want any
	}{
		{name: "addr", got: cfg.Server.Addr, want: ":9090"},
		{name: "static dir kept", got: cfg.Server.StaticDir, want: def.Server.StaticDir},
		{name: "device", got: cfg.Camera.Device, want: 2},
		{name: "fps", got: cfg.Camera.FPS, want: 30},
		{name: "width kept", got: cfg.Camera.Width, want: def.Camera.Width},
		{name: "required", got: cfg.Recognition.RequiredConsecutive, want: 3},
		{name: "threshold kept", got: cfg.Recognition.ConfidenceThreshold, want: def.Recognition.ConfidenceThreshold},
		{name: "store kept", got: cfg.Store.Path, want: def.Store.Path},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\naddr ="), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid TOML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SIGNCOACH_ADDR", ":7000")
	t.Setenv("SIGNCOACH_DB", "/tmp/sc.db")
	t.Setenv("SIGNCOACH_CAMERA", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":7000" || cfg.Store.Path != "/tmp/sc.db" || cfg.Camera.Device != 3 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("SIGNCOACH_CAMERA", "front")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load() should fail on a non-numeric camera id")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	want := Default()
	want.Server.Addr = ":8181"
	want.Recognition.ConfidenceThreshold = 0.75
	want.Plugins.TimeoutMs = 500

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Camera.Device = 1
	cfg.Detector.MaxHands = 1

	if c := cfg.CaptureConfig(); c.DeviceID != 1 || c.FPS != cfg.Camera.FPS {
		t.Errorf("CaptureConfig() = %+v", c)
	}
	if d := cfg.DetectorConfig(); d.MaxHands != 1 || d.MinTrackingConf != cfg.Detector.MinTrackingConfidence {
		t.Errorf("DetectorConfig() = %+v", d)
	}
}
