package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/animlab/animutils/pkg/types"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero resolution", func(c *Config) { c.Camera.Resolution.Width = 0 }, "camera.resolution"},
		{"zoom too wide", func(c *Config) { c.Camera.Zoom = types.Zoom{X: 0.5, Y: 0, W: 0.6, H: 1} }, "camera.zoom"},
		{"stroke", func(c *Config) { c.Overlay.StrokeWidth = 0 }, "stroke_width"},
		{"snap", func(c *Config) { c.Overlay.SnapDistance = -1 }, "snap_distance"},
		{"colour", func(c *Config) { c.Overlay.ROIColor = "ultraviolet" }, "roi_color"},
		{"confidence", func(c *Config) { c.Detection.MinConfidence = 2 }, "min_confidence"},
		{"send quality", func(c *Config) { c.Detection.SendQuality = 0 }, "send_quality"},
		{"quality", func(c *Config) { c.Output.Quality = 101 }, "output.quality"},
		{"format", func(c *Config) { c.Output.Format = "gif" }, "output.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestValidateWrapsZoomError(t *testing.T) {
	cfg := Default()
	cfg.Camera.Zoom = types.Zoom{X: -1, Y: 0, W: 1, H: 1}
	if err := cfg.Validate(); !errors.Is(err, types.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := Default()
	cfg.Camera.Zoom = types.Zoom{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}
	cfg.Output.Format = "png"

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Camera.Zoom != cfg.Camera.Zoom || loaded.Output.Format != "png" {
		t.Errorf("loaded %+v", loaded)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"camera":{"resolution":{"width":1640,"height":1232}}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Camera.Resolution != (types.Resolution{Width: 1640, Height: 1232}) {
		t.Errorf("resolution = %v", cfg.Camera.Resolution)
	}
	if cfg.Output.Quality != 90 || cfg.Camera.Zoom != types.FullZoom {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFromFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(bad); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestCameraROI(t *testing.T) {
	cfg := Default()
	cfg.Camera.Resolution = types.Resolution{Width: 1000, Height: 500}
	cfg.Camera.Zoom = types.Zoom{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}

	r, err := cfg.CameraROI()
	if err != nil {
		t.Fatalf("CameraROI failed: %v", err)
	}
	if want := types.NewROI(100, 100, 400, 300); r != want {
		t.Errorf("CameraROI = %v, want %v", r, want)
	}

	if err := cfg.SetCameraROI(types.NewROI(500, 250, 0, 0)); err != nil {
		t.Fatalf("SetCameraROI failed: %v", err)
	}
	if want := (types.Zoom{X: 0, Y: 0, W: 0.5, H: 0.5}); cfg.Camera.Zoom != want {
		t.Errorf("zoom = %+v, want %+v", cfg.Camera.Zoom, want)
	}
}

func TestGetConfigPath(t *testing.T) {
	if p := GetConfigPath(); !strings.HasSuffix(p, "config.json") {
		t.Errorf("GetConfigPath = %q", p)
	}
}
