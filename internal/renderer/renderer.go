// Package renderer is the CPU orchestrator: it owns the frame's output
// attachments, records the deferred passes into a validated graph, freezes
// per-frame parameters and closes the auto-exposure loop through the luma
// readback ring.
package renderer

import (
	"context"
	"fmt"
	"time"

	"deferred-renderer/internal/envmap"
	"deferred-renderer/internal/exposure"
	"deferred-renderer/internal/gbuffer"
	"deferred-renderer/internal/graph"
	"deferred-renderer/internal/logging"
	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/pipeline"
	"deferred-renderer/internal/sky"
)

// MeterSource picks which luma attachment feeds auto-exposure.
type MeterSource int

const (
	MeterResolve MeterSource = iota // diffuse-only luma from the resolve pass
	MeterPost                       // post-vignette luma with depth culling
)

// Options configure a Renderer. Zero values pick defaults.
type Options struct {
	Width, Height  int
	Workers        int
	FramesInFlight int

	Meter       exposure.Meter
	Exposure    exposure.Settings
	MeterSource MeterSource

	// Atmosphere draws the visible sky; nil leaves the background black.
	Atmosphere *sky.Atmosphere
	// Env is a fixed environment. When nil and SkyEnv is set, maps are
	// baked from the Perez model and rebaked whenever the sun moves.
	Env    *envmap.Maps
	SkyEnv *sky.Model
	Bake   envmap.BakeOptions
}

// FrameInput is what the caller changes from frame to frame.
type FrameInput struct {
	View    mathutil.Mat4
	ViewPos mathutil.Vec3
	FOV     float64
	Debug   pipeline.DebugMode

	Vignette  float64
	Near, Far float64

	Sun       mathutil.Vec3
	Turbidity float64

	Lights      []pipeline.Light
	Directional pipeline.DirectionalLight

	// FixedExposure overrides auto-exposure when > 0.
	FixedExposure float64
	// DT is the time since the previous frame, for exposure adaptation.
	DT time.Duration
}

// Result exposes the frame's attachments. The buffers are reused by the
// next RenderFrame call.
type Result struct {
	Frame      uint64
	Output     *gbuffer.Vec3Buffer
	SceneColor *gbuffer.Vec3Buffer
	Diffuse    *gbuffer.Vec3Buffer
	Specular   *gbuffer.Vec3Buffer
	Luma       *gbuffer.LumaBuffer
	PostLuma   *gbuffer.LumaBuffer
	Exposure   float64
	// Metering is the readback result the exposure was derived from.
	Metering    exposure.Metering
	MeteredFrom int64 // -1 before any readback completed
}

// Renderer is not safe for concurrent RenderFrame calls.
type Renderer struct {
	opts     Options
	plan     *graph.Plan[*pipeline.Frame]
	targets  *pipeline.Targets
	readback *exposure.Readback
	control  *exposure.Controller

	frame       uint64
	applied     int64
	env         *envmap.Maps
	envKey      envKey
	envBaked    bool
	lastMetered exposure.Metering
}

type envKey struct {
	sun       mathutil.Vec3
	turbidity float64
}

// New validates options, compiles the pass graph and allocates targets.
func New(opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("renderer: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.FramesInFlight <= 0 {
		opts.FramesInFlight = 2
	}
	if opts.Meter == (exposure.Meter{}) {
		opts.Meter = exposure.DefaultMeter()
	}
	if opts.Exposure == (exposure.Settings{}) {
		opts.Exposure = exposure.DefaultSettings()
	}
	if opts.Bake == (envmap.BakeOptions{}) {
		opts.Bake = envmap.DefaultBakeOptions()
	}
	if opts.Bake.Workers == 0 {
		opts.Bake.Workers = opts.Workers
	}

	plan, err := Plan()
	if err != nil {
		return nil, err
	}
	logging.Logger().Info("renderer ready",
		"width", opts.Width, "height", opts.Height,
		"frames_in_flight", opts.FramesInFlight, "meter", opts.Meter.Method.String())
	logging.Logger().Debug("frame graph", "plan", plan.String())

	return &Renderer{
		opts:     opts,
		plan:     plan,
		targets:  pipeline.NewTargets(opts.Width, opts.Height),
		readback: exposure.NewReadback(opts.FramesInFlight, opts.Meter),
		control:  exposure.NewController(opts.Exposure),
		applied:  -1,
		env:      opts.Env,
	}, nil
}

// Plan compiles the standard deferred pass sequence.
func Plan() (*graph.Plan[*pipeline.Frame], error) {
	g := graph.New[*pipeline.Frame]()
	g.Import(pipeline.AttachGBuffer, pipeline.AttachOcclusion, pipeline.AttachEnv)
	g.Add(
		pipeline.LightingPass{},
		pipeline.ResolvePass{},
		pipeline.SkyPass{},
		pipeline.PostPass{},
	)
	plan, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("renderer: compile graph: %w", err)
	}
	return plan, nil
}

// Exposure returns the exposure the next frame would use under
// auto-exposure.
func (r *Renderer) Exposure() float64 { return r.control.Exposure() }

// RenderFrame runs all passes for one frame. Parameters are frozen before
// the first pass; exposure comes from the newest completed readback, so it
// lags the scene by at least one frame.
func (r *Renderer) RenderFrame(ctx context.Context, gb *gbuffer.GBuffer, occ *gbuffer.OcclusionBuffer, in FrameInput) (Result, error) {
	r.applyReadback(in.DT)

	exp := r.control.Exposure()
	if in.FixedExposure > 0 {
		exp = in.FixedExposure
	}

	env, err := r.environment(ctx, in.Sun, in.Turbidity)
	if err != nil {
		return Result{}, err
	}

	f := &pipeline.Frame{
		Params: pipeline.FrameParams{
			View:      in.View,
			ViewPos:   in.ViewPos,
			FOV:       in.FOV,
			Width:     r.opts.Width,
			Height:    r.opts.Height,
			Debug:     in.Debug,
			Exposure:  exp,
			Vignette:  in.Vignette,
			Near:      in.Near,
			Far:       in.Far,
			Sun:       in.Sun,
			Turbidity: in.Turbidity,
		},
		Lights:    append([]pipeline.Light(nil), in.Lights...),
		Sun:       in.Directional,
		GBuffer:   gb,
		Occlusion: occ,
		Env:       env,
		Sky:       r.opts.Atmosphere,
		Workers:   r.opts.Workers,
	}
	f.Bind(r.targets)
	if err := f.Validate(); err != nil {
		return Result{}, fmt.Errorf("renderer: frame %d: %w", r.frame, err)
	}

	if err := r.plan.Run(ctx, f); err != nil {
		return Result{}, fmt.Errorf("renderer: frame %d: %w", r.frame, err)
	}

	luma := r.targets.Luma
	if r.opts.MeterSource == MeterPost {
		luma = r.targets.PostLuma
	}
	if err := r.readback.Submit(ctx, r.frame, luma); err != nil {
		return Result{}, err
	}

	res := Result{
		Frame:       r.frame,
		Output:      r.targets.Output,
		SceneColor:  r.targets.Scene,
		Diffuse:     r.targets.Diffuse,
		Specular:    r.targets.Specular,
		Luma:        r.targets.Luma,
		PostLuma:    r.targets.PostLuma,
		Exposure:    exp,
		Metering:    r.lastMetered,
		MeteredFrom: r.applied,
	}
	r.frame++
	return res, nil
}

// applyReadback feeds a newly completed metering result to the controller
// at most once.
func (r *Renderer) applyReadback(dt time.Duration) {
	latest, ok := r.readback.Latest()
	if !ok || int64(latest.Frame) <= r.applied {
		return
	}
	r.applied = int64(latest.Frame)
	if latest.OK {
		r.lastMetered = latest.Metering
	}
	e := r.control.Update(latest.Metering, latest.OK, dt)
	logging.Logger().Debug("exposure updated",
		"from_frame", latest.Frame, "ok", latest.OK, "exposure", e)
}

func (r *Renderer) environment(ctx context.Context, sun mathutil.Vec3, turbidity float64) (*envmap.Maps, error) {
	if r.opts.Env != nil || r.opts.SkyEnv == nil {
		return r.env, nil
	}
	key := envKey{sun: sun, turbidity: turbidity}
	if r.envBaked && key == r.envKey {
		return r.env, nil
	}
	model := *r.opts.SkyEnv
	if turbidity > 0 {
		model.Turbidity = turbidity
	}
	maps, err := envmap.Bake(ctx, envmap.FromSky(model, sun), r.opts.Bake)
	if err != nil {
		return nil, fmt.Errorf("renderer: bake environment: %w", err)
	}
	r.env, r.envKey, r.envBaked = maps, key, true
	return maps, nil
}

// Flush waits for outstanding readbacks so the next frame sees the
// metering of every frame rendered so far.
func (r *Renderer) Flush() {
	r.readback.Wait()
}

// Close releases the readback ring.
func (r *Renderer) Close() error {
	return r.readback.Close()
}
