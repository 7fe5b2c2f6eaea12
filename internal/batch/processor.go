// Package batch renders sweeps of frame variations (debug views or sun
// positions) on a worker pool and records them in a manifest.
package batch

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"deferred-renderer/internal/logging"
	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/output"
	"deferred-renderer/internal/pipeline"
	"deferred-renderer/internal/renderer"
)

// Job is one output image.
type Job struct {
	Name    string
	Debug   pipeline.DebugMode
	Transit float64
	Sun     mathutil.Vec3
}

// Result holds the outcome of rendering one job.
type Result struct {
	Job      Job
	Image    string // path relative to the output directory
	Exposure float64
	// Luminance is the metered scene luminance the final exposure came from.
	Luminance float64
	Success   bool
	Error     string

	img image.Image
}

// DebugJobs renders every mode at the configured sun.
func DebugJobs(s *Shared, modes []pipeline.DebugMode) []Job {
	cfg := s.Config
	jobs := make([]Job, len(modes))
	for i, m := range modes {
		jobs[i] = Job{
			Name:    fmt.Sprintf("debug-%d-%s", int(m), m),
			Debug:   m,
			Transit: *cfg.Sky.SunTransit,
			Sun:     cfg.SunDirection(),
		}
	}
	return jobs
}

// SunJobs renders the configured debug mode at each sun transit.
func SunJobs(s *Shared, mode pipeline.DebugMode, transits []float64) []Job {
	jobs := make([]Job, len(transits))
	for i, t := range transits {
		jobs[i] = Job{
			Name:    fmt.Sprintf("sun-%03d", int(t*100+0.5)),
			Debug:   mode,
			Transit: t,
			Sun:     s.Config.SunAt(t),
		}
	}
	return jobs
}

// Run renders all jobs using a worker pool. Results keep job order.
func Run(ctx context.Context, s *Shared, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	workers := max(1, min(s.Config.Workers, total))

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.2f images/sec\n", p, total, rate)
				}
			}
		}
	}()

	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	// each job owns a renderer; row parallelism is split across the pool
	rowWorkers := max(1, s.Config.Workers/workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(ctx, s, jobs[idx], rowWorkers)
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(ctx context.Context, s *Shared, job Job, workers int) Result {
	res := Result{Job: job}
	img, final, err := Render(ctx, s, job, workers)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Exposure = final.Exposure
	res.Luminance = final.Metering.Average

	cfg := s.Config
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Image = job.Name + format.Ext()
	if err := output.Save(filepath.Join(cfg.OutputDir, res.Image), img); err != nil {
		res.Error = err.Error()
		return res
	}
	res.img = img
	res.Success = true
	return res
}

// Render runs the configured number of frames for job and returns the
// last output encoded for display plus its renderer result. Readbacks
// are flushed between frames so exposure converges the same way on every
// run.
func Render(ctx context.Context, s *Shared, job Job, workers int) (*image.NRGBA, renderer.Result, error) {
	cfg := s.Config
	opts, err := cfg.RendererOptions()
	if err != nil {
		return nil, renderer.Result{}, err
	}
	opts.Workers = workers
	env, err := s.Environment(ctx, job.Sun)
	if err != nil {
		return nil, renderer.Result{}, err
	}
	if env != nil {
		opts.Env, opts.SkyEnv = env, nil
	}

	r, err := renderer.New(opts)
	if err != nil {
		return nil, renderer.Result{}, err
	}
	defer r.Close()

	in := cfg.FrameInput(job.Debug, job.Sun)
	var last renderer.Result
	for i := 0; i < cfg.Frames; i++ {
		last, err = r.RenderFrame(ctx, s.GBuffer, s.Occlusion, in)
		if err != nil {
			return nil, renderer.Result{}, fmt.Errorf("batch: %s: %w", job.Name, err)
		}
		r.Flush()
	}
	logging.Logger().Debug("job rendered", "job", job.Name,
		"frames", cfg.Frames, "exposure", last.Exposure, "metered_from", last.MeteredFrom)

	img := output.ToNRGBA(last.Output, cfg.ACES)
	if cfg.Supersample > 1 {
		img = output.Downsample(img, cfg.Width, cfg.Height)
	}
	return img, last, nil
}

// Images returns the successfully rendered images in job order.
func Images(results []Result) []image.Image {
	var out []image.Image
	for _, r := range results {
		if r.Success && r.img != nil {
			out = append(out, r.img)
		}
	}
	return out
}
