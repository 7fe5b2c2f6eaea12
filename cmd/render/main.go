package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"deferred-renderer/internal/batch"
	"deferred-renderer/internal/config"
	"deferred-renderer/internal/logging"
	"deferred-renderer/internal/output"
	"deferred-renderer/internal/pipeline"
	"deferred-renderer/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	format := flag.String("format", "", "Image format: webp or png (default: webp)")
	width := flag.Int("width", 0, "Output width (default: 640)")
	height := flag.Int("height", 0, "Output height (default: 360)")
	supersample := flag.Int("ss", 0, "Supersample factor (default: 1)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	frames := flag.Int("frames", 0, "Frames rendered per image, for exposure to settle (default: 8)")
	debug := flag.String("debug", "", "Debug view: name or number (disabled, position, normal, albedo, ...)")
	exposureFlag := flag.Float64("exposure", 0, "Fixed exposure; 0 uses auto-exposure")
	metering := flag.String("metering", "", "Metering method: histogram or logavg")
	sun := flag.Float64("sun", -1, "Sun transit, 0 horizon to 1 zenith")
	envImage := flag.String("env", "", "Environment image name to light with instead of the sky")
	sweep := flag.String("sweep", "", "Render a sweep instead of one frame: debug or sun")
	sheet := flag.Bool("sheet", false, "Also write a contact sheet of the sweep")
	histogram := flag.Bool("histogram", false, "Also write the luma histogram of the final frame")
	verbose := flag.Bool("v", false, "Log pipeline events to stderr")

	flag.Parse()

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:   *outputDir,
		Format:      *format,
		Width:       *width,
		Height:      *height,
		Supersample: *supersample,
		Workers:     *workers,
		Frames:      *frames,
		Debug:       *debug,
		Exposure:    *exposureFlag,
		Metering:    *metering,
		SunTransit:  *sun,
		EnvImage:    *envImage,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	images := texture.NewCache(texture.BuildIndex(cfg.Env.Dir))

	fmt.Printf("Deferred renderer → %s\n", cfg.Format)
	fmt.Printf("Size: %dx%d (x%d), Frames: %d, Workers: %d\n",
		cfg.Width, cfg.Height, cfg.Supersample, cfg.Frames, cfg.Workers)
	fmt.Printf("Environment: %s, Metering: %s/%s\n", cfg.Env.Source, cfg.Exposure.Metering, cfg.Exposure.Source)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	shared, err := batch.Prepare(ctx, &cfg, images)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mode, _ := cfg.DebugMode()
	if *sweep == "" {
		err = renderOne(ctx, shared, mode, *histogram)
	} else {
		err = renderSweep(ctx, shared, mode, *sweep, *sheet)
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func renderOne(ctx context.Context, s *batch.Shared, mode pipeline.DebugMode, histogram bool) error {
	cfg := s.Config
	job := batch.Job{Name: "frame", Debug: mode, Transit: *cfg.Sky.SunTransit, Sun: cfg.SunDirection()}
	img, last, err := batch.Render(ctx, s, job, cfg.Workers)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.OutputDir, "frame."+cfg.Format)
	if err := output.Save(path, img); err != nil {
		return err
	}
	fmt.Printf("Frame %d: exposure %.4f (metered from frame %d, L=%.4f)\n",
		last.Frame, last.Exposure, last.MeteredFrom, last.Metering.Average)
	fmt.Printf("Image: %s\n", path)

	if histogram {
		chart, err := output.HistogramChart(last.Metering, 512, 160)
		if err != nil {
			return err
		}
		chartPath := filepath.Join(cfg.OutputDir, "histogram.png")
		if err := output.Save(chartPath, chart); err != nil {
			return err
		}
		fmt.Printf("Histogram: %s\n", chartPath)
	}
	return nil
}

func renderSweep(ctx context.Context, s *batch.Shared, mode pipeline.DebugMode, kind string, sheet bool) error {
	cfg := s.Config
	var jobs []batch.Job
	switch kind {
	case "debug":
		modes, err := cfg.SweepModes()
		if err != nil {
			return err
		}
		jobs = batch.DebugJobs(s, modes)
	case "sun":
		jobs = batch.SunJobs(s, mode, cfg.SweepTransits())
	default:
		return fmt.Errorf("unknown sweep %q (want debug or sun)", kind)
	}
	fmt.Printf("Sweep: %s, %d images\n", kind, len(jobs))

	results := batch.Run(ctx, s, jobs)

	success := 0
	var failed []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))
	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		for _, r := range failed[:min(len(failed), 20)] {
			fmt.Printf("  %s: %s\n", r.Job.Name, r.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if sheet {
		if tiles := batch.Images(results); len(tiles) > 0 {
			img, err := output.ContactSheet(tiles, 4)
			if err != nil {
				return err
			}
			sheetPath := filepath.Join(cfg.OutputDir, "sheet."+cfg.Format)
			if err := output.Save(sheetPath, img); err != nil {
				return err
			}
			fmt.Printf("Contact sheet: %s\n", sheetPath)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d images failed", len(failed), len(jobs))
	}
	return nil
}
