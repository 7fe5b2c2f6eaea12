package config

import (
	"fmt"
	"time"

	"deferred-renderer/internal/envmap"
	"deferred-renderer/internal/exposure"
	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/pipeline"
	"deferred-renderer/internal/renderer"
	"deferred-renderer/internal/sky"
)

// DebugMode parses the configured debug view.
func (c *Config) DebugMode() (pipeline.DebugMode, error) {
	return pipeline.ParseDebugMode(c.Debug)
}

// Meter builds the metering reduction.
func (c *Config) Meter() (exposure.Meter, error) {
	method, err := exposure.ParseMethod(c.Exposure.Metering)
	if err != nil {
		return exposure.Meter{}, err
	}
	m := exposure.DefaultMeter()
	m.Method = method
	m.LowPercentile = c.Exposure.LowPercentile
	m.HighPercentile = c.Exposure.HighPercentile
	return m, nil
}

func (c *Config) ExposureSettings() exposure.Settings {
	speed := exposure.DefaultSettings().AdaptSpeed
	if c.Exposure.AdaptSpeed != nil {
		speed = *c.Exposure.AdaptSpeed
	}
	return exposure.Settings{
		Initial:      c.Exposure.Initial,
		Min:          c.Exposure.Min,
		Max:          c.Exposure.Max,
		Compensation: c.Exposure.Compensation,
		AdaptSpeed:   speed,
	}
}

func (c *Config) MeterSource() renderer.MeterSource {
	if c.Exposure.Source == "post" {
		return renderer.MeterPost
	}
	return renderer.MeterResolve
}

// FrameDT is the simulated time between frames.
func (c *Config) FrameDT() time.Duration {
	return time.Duration(c.FrameTime * float64(time.Second))
}

func (c *Config) PointLights() []pipeline.Light {
	out := make([]pipeline.Light, len(c.Lights))
	for i, l := range c.Lights {
		out[i] = pipeline.Light{Position: l.Position, Color: l.Color}
	}
	return out
}

func (c *Config) DirectionalLight() pipeline.DirectionalLight {
	if c.Directional == nil {
		return pipeline.DirectionalLight{}
	}
	return pipeline.DirectionalLight{
		Direction: c.Directional.Position.Normalize(),
		Color:     c.Directional.Color,
	}
}

func (c *Config) transit() float64 {
	if c.Sky.SunTransit == nil {
		return 0
	}
	return *c.Sky.SunTransit
}

// SunDirection points toward the sun.
func (c *Config) SunDirection() mathutil.Vec3 {
	return sky.SunDirection(c.Sky.SunRotation, c.transit())
}

// SunAt is SunDirection with a different transit, used by sweeps.
func (c *Config) SunAt(transit float64) mathutil.Vec3 {
	return sky.SunDirection(c.Sky.SunRotation, transit)
}

func (c *Config) SkyModel() sky.Model {
	m := sky.DefaultModel()
	if c.Sky.Reference != nil {
		m.Reference = *c.Sky.Reference
	}
	m.Turbidity = c.Sky.Turbidity
	m.Cloudiness = c.Sky.Cloudiness
	m.Intensity = c.Sky.Intensity
	return m
}

// Atmosphere returns the visible sky, or nil when the dome is off.
func (c *Config) Atmosphere() *sky.Atmosphere {
	if c.Sky.Dome != nil && !*c.Sky.Dome {
		return nil
	}
	a := sky.DefaultAtmosphere()
	a.Intensity = c.Sky.Intensity
	return &a
}

// BakeOptions overlays configured values on the defaults.
func (c *Config) BakeOptions() envmap.BakeOptions {
	o := envmap.DefaultBakeOptions()
	b := c.Env.Bake
	for _, f := range []struct {
		dst *int
		v   int
	}{
		{&o.Width, b.Width},
		{&o.Levels, b.Levels},
		{&o.Samples, b.Samples},
		{&o.IrradianceWidth, b.IrradianceWidth},
		{&o.IrradianceSamples, b.IrradianceSamples},
		{&o.LUTSize, b.LUTSize},
		{&o.LUTSamples, b.LUTSamples},
	} {
		if f.v > 0 {
			*f.dst = f.v
		}
	}
	o.Workers = c.Workers
	return o
}

// RendererOptions builds renderer options at the supersampled size.
// Environment maps from an image are attached by the caller.
func (c *Config) RendererOptions() (renderer.Options, error) {
	meter, err := c.Meter()
	if err != nil {
		return renderer.Options{}, err
	}
	opts := renderer.Options{
		Width:          c.Width * c.Supersample,
		Height:         c.Height * c.Supersample,
		Workers:        c.Workers,
		FramesInFlight: c.Exposure.FramesInFlight,
		Meter:          meter,
		Exposure:       c.ExposureSettings(),
		MeterSource:    c.MeterSource(),
		Atmosphere:     c.Atmosphere(),
		Bake:           c.BakeOptions(),
	}
	if c.Env.Source == "sky" {
		m := c.SkyModel()
		opts.SkyEnv = &m
	}
	return opts, nil
}

// FrameInput builds the per-frame input for the given debug mode and sun.
func (c *Config) FrameInput(mode pipeline.DebugMode, sun mathutil.Vec3) renderer.FrameInput {
	return renderer.FrameInput{
		View:          c.Camera.View(),
		ViewPos:       c.Camera.Position,
		FOV:           c.Camera.FOVRadians(),
		Debug:         mode,
		Vignette:      *c.Vignette,
		Near:          c.Near,
		Far:           c.Far,
		Sun:           sun,
		Turbidity:     c.Sky.Turbidity,
		Lights:        c.PointLights(),
		Directional:   c.DirectionalLight(),
		FixedExposure: c.Exposure.Fixed,
		DT:            c.FrameDT(),
	}
}

// SweepModes parses the debug sweep list; empty means every mode.
func (c *Config) SweepModes() ([]pipeline.DebugMode, error) {
	if len(c.Sweep.Debug) == 0 {
		return pipeline.DebugModes(), nil
	}
	out := make([]pipeline.DebugMode, 0, len(c.Sweep.Debug))
	for _, s := range c.Sweep.Debug {
		m, err := pipeline.ParseDebugMode(s)
		if err != nil {
			return nil, fmt.Errorf("config: sweep: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// SweepTransits returns the sun transits of a sun sweep; empty means five
// steps from horizon to zenith.
func (c *Config) SweepTransits() []float64 {
	if len(c.Sweep.Transits) > 0 {
		return c.Sweep.Transits
	}
	return []float64{0.05, 0.25, 0.5, 0.75, 1}
}
