package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"deferred-renderer/internal/config"
	"deferred-renderer/internal/envmap"
	"deferred-renderer/internal/logging"
	"deferred-renderer/internal/output"
	"deferred-renderer/internal/texture"
)

type preview struct {
	name string
	img  image.Image
}

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	outDir := flag.String("output", "envbake", "Directory for the preview images")
	sun := flag.Float64("sun", -1, "Sun transit, 0 horizon to 1 zenith")
	envImage := flag.String("env", "", "Bake from this environment image instead of the sky")
	exposure := flag.Float64("exposure", 1, "Exposure applied to the map previews")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	verbose := flag.Bool("v", false, "Log bake events to stderr")
	flag.Parse()

	if *verbose {
		logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{Workers: *workers, SunTransit: *sun, EnvImage: *envImage})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	opts := cfg.BakeOptions()

	var src envmap.Source
	switch cfg.Env.Source {
	case "image":
		images := texture.NewCache(texture.BuildIndex(cfg.Env.Dir))
		m, err := texture.Environment(images, cfg.Env.Image, opts.Width, cfg.Env.Intensity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		src = envmap.FromMap(m)
		fmt.Printf("Source: image %s\n", cfg.Env.Image)
	default:
		src = envmap.FromSky(cfg.SkyModel(), cfg.SunDirection())
		fmt.Printf("Source: sky, sun transit %.2f, turbidity %.1f\n", *cfg.Sky.SunTransit, cfg.Sky.Turbidity)
	}

	start := time.Now()
	maps, err := envmap.Bake(ctx, src, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Baked %d radiance levels in %.1fs\n", len(maps.Radiance), time.Since(start).Seconds())

	var previews []preview
	for i, m := range maps.Radiance {
		previews = append(previews, preview{fmt.Sprintf("radiance-%d.png", i), output.MapToNRGBA(m, *exposure)})
	}
	previews = append(previews,
		preview{"irradiance.png", output.MapToNRGBA(maps.Irradiance, *exposure)},
		preview{"brdf-lut.png", output.LUTToNRGBA(maps.BRDF)},
	)

	errors := 0
	for _, p := range previews {
		path := filepath.Join(*outDir, p.name)
		if err := output.Save(path, p.img); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
			continue
		}
		b := p.img.Bounds()
		fmt.Printf("OK  %s (%dx%d)\n", path, b.Dx(), b.Dy())
	}

	tiles := make([]image.Image, len(maps.Radiance))
	for i := range maps.Radiance {
		tiles[i] = previews[i].img
	}
	if sheet, err := output.ContactSheet(tiles, 1); err != nil {
		fmt.Fprintf(os.Stderr, "ERR contact sheet: %v\n", err)
		errors++
	} else if err := output.Save(filepath.Join(*outDir, "radiance-levels.png"), sheet); err != nil {
		fmt.Fprintf(os.Stderr, "ERR %v\n", err)
		errors++
	}

	if errors > 0 {
		fmt.Printf("\nDone with %d error(s).\n", errors)
		os.Exit(1)
	}
	fmt.Println("\nDone. All previews written.")
}
