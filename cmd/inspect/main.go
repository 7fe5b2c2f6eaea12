package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"deferred-renderer/internal/batch"
	"deferred-renderer/internal/config"
	"deferred-renderer/internal/hdr"
	"deferred-renderer/internal/renderer"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	x := flag.Int("x", -1, "Pixel column (default: center)")
	y := flag.Int("y", -1, "Pixel row (default: center)")
	frames := flag.Int("frames", 0, "Frames to render before inspecting (default: from config)")
	debug := flag.String("debug", "", "Debug view for the output line")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	// inspect at native resolution so pixel coordinates match the buffers
	cfg.Supersample = 1
	cfg.Resolve(config.Flags{Frames: *frames, Debug: *debug, SunTransit: -1})
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	px, py := *x, *y
	if px < 0 {
		px = cfg.Width / 2
	}
	if py < 0 {
		py = cfg.Height / 2
	}
	if px >= cfg.Width || py >= cfg.Height {
		fmt.Printf("Error: pixel (%d,%d) outside %dx%d\n", px, py, cfg.Width, cfg.Height)
		os.Exit(1)
	}

	ctx := context.Background()
	shared, err := batch.Prepare(ctx, &cfg, nil)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	mode, _ := cfg.DebugMode()
	job := batch.Job{Name: "inspect", Debug: mode, Transit: *cfg.Sky.SunTransit, Sun: cfg.SunDirection()}
	_, res, err := batch.Render(ctx, shared, job, cfg.Workers)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	i := py*cfg.Width + px
	gb := shared.GBuffer
	fmt.Printf("Pixel (%d,%d) of %dx%d, debug %s, frame %d\n", px, py, cfg.Width, cfg.Height, mode, res.Frame)
	if gb.Covered(i) {
		t := gb.Load(i)
		fmt.Printf("  position   %v\n", t.Position)
		fmt.Printf("  normal     %v\n", t.Normal)
		fmt.Printf("  albedo     %v\n", t.Albedo)
		fmt.Printf("  roughness  %.4f  metallic %.4f\n", t.Roughness, t.Metallic)
	} else {
		fmt.Println("  (no geometry)")
	}
	u := (float64(px) + 0.5) / float64(cfg.Width)
	v := (float64(py) + 0.5) / float64(cfg.Height)
	fmt.Printf("  occlusion  %.6f\n", shared.Occlusion.SampleUV(u, v))
	printStages(res, i)
}

func printStages(res renderer.Result, i int) {
	d, s := res.Diffuse.At(i), res.Specular.At(i)
	fmt.Printf("  diffuse    %v (stored %v)\n", hdr.DecodeVec(d), d)
	fmt.Printf("  specular   %v (stored %v)\n", hdr.DecodeVec(s), s)
	fmt.Printf("  scene      %v\n", res.SceneColor.At(i))
	lumaLine("luma", res.Luma.Pix[i])
	lumaLine("post luma", res.PostLuma.Pix[i])
	fmt.Printf("  exposure   %.4f (metered L=%.4f from frame %d)\n", res.Exposure, res.Metering.Average, res.MeteredFrom)
	fmt.Printf("  output     %v\n", res.Output.At(i))
}

func lumaLine(name string, v int32) {
	if l, ok := hdr.DecodeLuma(v); ok {
		fmt.Printf("  %-10s %d (L=%.3f)\n", name, v, l)
		return
	}
	fmt.Printf("  %-10s %d (excluded)\n", name, v)
}
