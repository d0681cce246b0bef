package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/snow"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snowfall.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "absent.yaml")} {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if cfg.Window.Width != WindowWidth || cfg.Window.Height != WindowHeight || !cfg.Window.Transparent {
			t.Errorf("Load(%q) window = %+v", path, cfg.Window)
		}
		if cfg.Audio.Enabled || cfg.Audio.Volume != DefaultVolume {
			t.Errorf("Load(%q) audio = %+v", path, cfg.Audio)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
debug: true
snow:
  preset: heavy
  speed: 0.9
  flake_color: "#ff8800"
device:
  memory_gb: 1.5
  low_power: true
window:
  width: 800
  height: 600
  title: Winter
audio:
  enabled: true
  volume: 0.7
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug || !cfg.Audio.Enabled || cfg.Audio.Volume != 0.7 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Window.Width != 800 || cfg.Window.Title != "Winter" {
		t.Errorf("window = %+v", cfg.Window)
	}
	// Unset keys keep their defaults.
	if !cfg.Window.Transparent {
		t.Error("transparent default lost")
	}
	if cfg.Device.MemoryGB == nil || *cfg.Device.MemoryGB != 1.5 {
		t.Errorf("memory override = %v", cfg.Device.MemoryGB)
	}
	if cfg.Device.CPUCores != nil {
		t.Error("unset override became non-nil")
	}
	s := cfg.Device.Apply(device.Signals{TotalMemoryGB: 8, CPUCores: 8, APILevel: 30})
	if got := device.Classify(s); got != device.TierLow {
		t.Errorf("tier with overrides = %s, want low", got)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown preset", "snow:\n  preset: blizzard\n"},
		{"bad colour", "snow:\n  flake_color: teal\n"},
		{"zero window", "window:\n  width: 0\n"},
		{"loud", "audio:\n  volume: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Load error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "snow: [unterminated\n"))
	if err == nil || errors.Is(err, ErrInvalid) {
		t.Fatalf("Load error = %v, want parse error", err)
	}
}

func TestParameters(t *testing.T) {
	low := device.DeriveProfile(device.TierLow)
	layers := 500
	opacity := 1.5

	tests := []struct {
		name string
		snow SnowConfig
		want func(p snow.Parameters) bool
	}{
		{"defaults", SnowConfig{}, func(p snow.Parameters) bool {
			return p == snow.DefaultParameters(low)
		}},
		{"preset capped at tier max", SnowConfig{Preset: "heavy"}, func(p snow.Parameters) bool {
			return p.Layers == low.MaxLayers && p.Depth == snow.HeavySnow.Depth && p.Speed == snow.HeavySnow.Speed
		}},
		{"explicit fields clamped", SnowConfig{Layers: &layers, Opacity: &opacity}, func(p snow.Parameters) bool {
			return p.Layers == low.MaxLayers && p.Opacity == 1
		}},
		{"colour", SnowConfig{FlakeColor: "#ffffff"}, func(p snow.Parameters) bool {
			return p.FlakeColor == snow.RGB{R: 1, G: 1, B: 1}
		}},
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.Snow = tt.snow
		if got := cfg.Parameters(low); !tt.want(got) {
			t.Errorf("%s: parameters = %+v", tt.name, got)
		}
	}
}
