package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/snow"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512
	WindowTitle  = "Snowfall"

	// Keyboard steps
	LayerStep   = 5
	SpeedStep   = 0.1
	OpacityStep = 0.05

	// Ambience
	AudioSampleRate = 44100
	AudioBufferSize = AudioSampleRate / 10
	DefaultVolume   = 0.4

	// Overlay text position
	OverlayX = 8
	OverlayY = 8
)

// ErrInvalid marks a configuration file that parsed but holds unusable values.
var ErrInvalid = errors.New("invalid configuration")

// Config is the optional user configuration. Every field has a default, so a
// missing file is not an error.
type Config struct {
	Snow   SnowConfig       `yaml:"snow"`
	Device device.Overrides `yaml:"device"`
	Window WindowConfig     `yaml:"window"`
	Audio  AudioConfig      `yaml:"audio"`
	Debug  bool             `yaml:"debug"`
}

// SnowConfig overrides the startup parameters. Nil fields keep the profile
// defaults.
type SnowConfig struct {
	Preset     string   `yaml:"preset,omitempty"`
	Layers     *int     `yaml:"layers,omitempty"`
	Speed      *float64 `yaml:"speed,omitempty"`
	Depth      *float64 `yaml:"depth,omitempty"`
	Width      *float64 `yaml:"width,omitempty"`
	Opacity    *float64 `yaml:"opacity,omitempty"`
	FlakeColor string   `yaml:"flake_color,omitempty"`
}

type WindowConfig struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Title       string `yaml:"title"`
	Transparent bool   `yaml:"transparent"`
}

type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:       WindowWidth,
			Height:      WindowHeight,
			Title:       WindowTitle,
			Transparent: true,
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no clamp could make sense of.
func (c *Config) Validate() error {
	if c.Snow.Preset != "" {
		if _, ok := snow.Presets[c.Snow.Preset]; !ok {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalid, c.Snow.Preset)
		}
	}
	if c.Snow.FlakeColor != "" {
		if _, err := snow.ParseHexColor(c.Snow.FlakeColor); err != nil {
			return fmt.Errorf("%w: flake_color: %w", ErrInvalid, err)
		}
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio volume %v outside [0, 1]", ErrInvalid, c.Audio.Volume)
	}
	return nil
}

// Parameters builds the startup parameter set: profile defaults, then the
// preset, then any explicit field.
func (c *Config) Parameters(profile device.Profile) snow.Parameters {
	p := snow.DefaultParameters(profile)
	s := c.Snow

	if pr, ok := snow.Presets[s.Preset]; ok {
		p.Layers = min(pr.Layers, profile.MaxLayers)
		p.Depth = pr.Depth
		p.Width = pr.Width
		p.Speed = pr.Speed
	}
	if s.Layers != nil {
		p.Layers = *s.Layers
	}
	if s.Speed != nil {
		p.Speed = *s.Speed
	}
	if s.Depth != nil {
		p.Depth = *s.Depth
	}
	if s.Width != nil {
		p.Width = *s.Width
	}
	if s.Opacity != nil {
		p.Opacity = *s.Opacity
	}
	if fc, err := snow.ParseHexColor(s.FlakeColor); err == nil {
		p.FlakeColor = fc
	}
	return p.Clamp(profile.MaxLayers)
}
