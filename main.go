package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/snowfall/internal/ambience"
	"github.com/iburimskiy/snowfall/internal/config"
	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/driver"
	"github.com/iburimskiy/snowfall/internal/game"
	"github.com/iburimskiy/snowfall/internal/log"
	"github.com/iburimskiy/snowfall/internal/snow"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fatal(fmt.Errorf("loading configuration: %w", err))
	}

	if err := log.Init(*debug || cfg.Debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	profile, signals := device.Detect(cfg.Device)
	store := snow.NewStore(cfg.Parameters(profile), profile.MaxLayers)

	var audio *ambience.Player
	if cfg.Audio.Enabled {
		audio, err = ambience.Start(config.AudioSampleRate, config.AudioBufferSize, cfg.Audio.Volume)
		if err != nil {
			// the snow runs fine without sound
			log.Warnf("Ambience disabled: %v", err)
			audio = nil
		}
	}

	g, err := game.New(game.Options{
		Profile:  profile,
		LowPower: signals.LowPowerMode,
		Store:    store,
		Audio:    audio,
		Reload:   func() (*config.Config, error) { return config.Load(*cfgFile) },
	})
	if err != nil {
		fatal(err)
	}
	defer g.Close()

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title + " - Space: pause, 1/2: presets, arrows: layers/speed, C: colour, F: stats, Esc/Q: quit")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetScreenClearedEveryFrame(false)
	ebiten.SetRunnableOnUnfocused(true)

	err = ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{
		ScreenTransparent: cfg.Window.Transparent,
	})
	if err != nil && !errors.Is(err, ebiten.Termination) {
		if errors.Is(err, driver.ErrSurfaceSetup) {
			log.Errorf("Render surface unavailable: %v", err)
		}
		g.Close()
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "snowfall: %v\n", err)
	log.Errorf("%v", err)
	log.Sync()
	_ = zenity.Error(err.Error(), zenity.Title("Snowfall"), zenity.ErrorIcon)
	os.Exit(1)
}
