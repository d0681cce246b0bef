package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/snowfall/internal/config"
	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/log"
	"github.com/iburimskiy/snowfall/internal/snow"
	"github.com/iburimskiy/snowfall/internal/term"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	workers := flag.Int("workers", 0, "Field render workers (0 = one per CPU)")
	flag.Parse()

	// tcell owns the terminal, so logs only go out in debug mode
	if *debug {
		if err := log.Init(true); err != nil {
			fmt.Printf("Failed to initialize logger: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
	}

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	profile, signals := device.Detect(cfg.Device)
	store := snow.NewStore(cfg.Parameters(profile), profile.MaxLayers)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	app, err := term.New(screen, term.Options{
		Profile:  profile,
		LowPower: signals.LowPowerMode,
		Store:    store,
		Workers:  *workers,
		Reload:   func() (*config.Config, error) { return config.Load(*cfgFile) },
	})
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Run(ctx)
	stop()
	screen.Fini()
	if err != nil {
		fmt.Fprintf(os.Stderr, "snowterm: %v\n", err)
		os.Exit(1)
	}
}
