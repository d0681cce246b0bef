package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/iburimskiy/snowfall/internal/bench"
	"github.com/iburimskiy/snowfall/internal/config"
	"github.com/iburimskiy/snowfall/internal/device"
	"github.com/iburimskiy/snowfall/internal/log"
	"github.com/iburimskiy/snowfall/internal/quality"
	"github.com/iburimskiy/snowfall/internal/snow"
)

func main() {
	var (
		cfgFile  = flag.String("config", "", "Path to YAML configuration file")
		debug    = flag.Bool("debug", false, "Turn on debugging output")
		width    = flag.Int("width", 160, "Render width in pixels")
		height   = flag.Int("height", 90, "Render height in pixels")
		layerArg = flag.String("layers", "15,50,100,150,250", "Comma separated layer counts to sweep")
		frames   = flag.Int("frames", 20, "Frames per layer count")
		workers  = flag.Int("workers", 0, "Field render workers (0 = one per CPU)")
		converge = flag.Duration("converge", 0, "Also run the adaptive controller for this long")
		pngOut   = flag.String("png", "", "Write the last frame to this PNG file")
		scale    = flag.Int("scale", 4, "PNG upscale factor")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	layers, err := parseLayers(*layerArg)
	if err != nil {
		log.Errorf("Bad -layers: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	profile, signals := device.Detect(cfg.Device)
	params := cfg.Parameters(profile)
	fmt.Printf("device: %.1f GB, %d cores, level %d -> tier %s (max %d layers)\n",
		signals.TotalMemoryGB, signals.CPUCores, signals.APILevel, profile.Tier, profile.MaxLayers)

	surface := bench.NewSurface(*workers)
	samples, err := bench.Sweep(ctx, surface, *width, *height, params, layers, *frames)
	if err != nil {
		log.Errorf("Sweep failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n%8s %8s %10s %10s %10s\n", "layers", "frames", "mean ms", "stddev", "p95 ms")
	for _, s := range bench.Summarize(samples) {
		fmt.Printf("%8d %8d %10.3f %10.3f %10.3f\n", s.Layers, s.Frames, s.Mean, s.StdDev, s.P95)
	}

	if model, err := bench.Fit(samples); err != nil {
		log.Warnf("No cost model: %v", err)
	} else {
		budget := time.Second / quality.TargetFPS
		fmt.Printf("\ncost = %.3f ms + %.4f ms/layer (R² %.3f)\n", model.Base, model.PerLayer, model.RSquared)
		fmt.Printf("layer ceiling for %d fps at %dx%d: %d\n", quality.TargetFPS, *width, *height, model.Ceiling(budget))
	}

	if *converge > 0 {
		run, err := bench.Converge(ctx, bench.NewSurface(*workers), profile, params, *width, *height, *converge)
		if err != nil {
			log.Errorf("Converge failed: %v", err)
			os.Exit(1)
		}
		fmt.Printf("\nadaptive run: %d frames, settled at %d layers, %d fps\n", run.Frames, run.FinalLayers, run.FinalFPS)
		for _, a := range run.Adjustments {
			fmt.Printf("  %8s -> %d layers\n", a.At.Round(time.Millisecond), a.Layers)
		}
	}

	if *pngOut != "" {
		if err := writeSnapshot(*pngOut, surface, *scale); err != nil {
			log.Errorf("Writing %s: %v", *pngOut, err)
			os.Exit(1)
		}
		fmt.Printf("\nwrote %s\n", *pngOut)
	}
}

func writeSnapshot(path string, s *bench.Surface, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bench.WritePNG(f, s.Image(), scale); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func parseLayers(arg string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(arg, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		if n < 0 || n > snow.MaxLayers {
			return nil, fmt.Errorf("layer count %d outside [0, %d]", n, snow.MaxLayers)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no layer counts in %q", arg)
	}
	return out, nil
}
