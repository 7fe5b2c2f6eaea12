// Package config loads render settings from a JSON file, applies CLI
// overrides and fills defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"deferred-renderer/internal/mathutil"
	"deferred-renderer/internal/scene"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config holds all render settings.
type Config struct {
	// Output
	OutputDir   string  `json:"output_dir"`
	Format      string  `json:"format"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Supersample int     `json:"supersample"`
	Workers     int     `json:"workers"`
	Frames      int     `json:"frames"`
	FrameTime   float64 `json:"frame_time"` // seconds between frames, drives exposure adaptation
	ACES        bool    `json:"aces"`

	// Post-process
	Debug    string   `json:"debug"`
	Vignette *float64 `json:"vignette"`
	Near     float64  `json:"near"`
	Far      float64  `json:"far"`
	Exposure Exposure `json:"exposure"`

	// Scene content
	Camera      scene.Camera `json:"camera"`
	Scene       *scene.Scene `json:"scene"`
	Lights      []Light      `json:"lights"`
	Directional *Light       `json:"directional"`
	Sky         Sky          `json:"sky"`
	Env         Env          `json:"env"`
	Sweep       Sweep        `json:"sweep"`
}

// Exposure configures metering and the adaptation controller.
type Exposure struct {
	Fixed          float64  `json:"fixed"` // > 0 disables auto-exposure
	Initial        float64  `json:"initial"`
	Min            float64  `json:"min"`
	Max            float64  `json:"max"`
	AdaptSpeed     *float64 `json:"adapt_speed"` // 0 snaps to the target
	Compensation   float64  `json:"compensation"`
	Metering       string   `json:"metering"` // histogram | logavg
	Source         string   `json:"source"`   // resolve | post
	LowPercentile  float64  `json:"low_percentile"`
	HighPercentile float64  `json:"high_percentile"`
	FramesInFlight int      `json:"frames_in_flight"`
}

// Light is a point light, or a directional light when used as
// Config.Directional (Position is then the direction it shines along).
type Light struct {
	Position mathutil.Vec3 `json:"position"`
	Color    mathutil.Vec3 `json:"color"`
}

// Sky places the sun and shapes both sky models.
type Sky struct {
	SunRotation float64        `json:"sun_rotation"` // turns around +Y
	SunTransit  *float64       `json:"sun_transit"`  // 0 horizon, 1 zenith
	Turbidity   float64        `json:"turbidity"`
	Cloudiness  float64        `json:"cloudiness"`
	Intensity   float64        `json:"intensity"`
	Reference   *mathutil.Vec3 `json:"reference"`
	Dome        *bool          `json:"dome"` // draw the scattering sky behind geometry
}

// Env selects the image-based lighting source.
type Env struct {
	// Source is "sky" (bake from the Perez model), "image" or "none".
	Source    string  `json:"source"`
	Dir       string  `json:"dir"`
	Image     string  `json:"image"`
	Intensity float64 `json:"intensity"`
	Bake      Bake    `json:"bake"`
}

type Bake struct {
	Width             int `json:"width"`
	Levels            int `json:"levels"`
	Samples           int `json:"samples"`
	IrradianceWidth   int `json:"irradiance_width"`
	IrradianceSamples int `json:"irradiance_samples"`
	LUTSize           int `json:"lut_size"`
	LUTSamples        int `json:"lut_samples"`
}

// Sweep lists the variations rendered by batch mode.
type Sweep struct {
	Debug    []string  `json:"debug"`
	Transits []float64 `json:"transits"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir   string
	Format      string
	Width       int
	Height      int
	Supersample int
	Workers     int
	Frames      int
	Debug       string
	Exposure    float64
	Metering    string
	SunTransit  float64 // negative keeps the file value
	EnvImage    string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Debug != "" {
		c.Debug = flags.Debug
	}
	if flags.Exposure > 0 {
		c.Exposure.Fixed = flags.Exposure
	}
	if flags.Metering != "" {
		c.Exposure.Metering = flags.Metering
	}
	if flags.SunTransit >= 0 {
		t := flags.SunTransit
		c.Sky.SunTransit = &t
	}
	if flags.EnvImage != "" {
		c.Env.Image = flags.EnvImage
		c.Env.Source = "image"
	}

	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 360
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Frames <= 0 {
		c.Frames = 8
	}
	if c.FrameTime <= 0 {
		c.FrameTime = 0.25
	}
	if c.Vignette == nil {
		v := 0.2
		c.Vignette = &v
	}
	if c.Near <= 0 {
		c.Near = 0.1
	}
	if c.Far <= 0 {
		c.Far = 100
	}

	c.resolveExposure()
	c.resolveScene()
	c.resolveSky()
}

func (c *Config) resolveExposure() {
	e := &c.Exposure
	if e.Initial <= 0 {
		e.Initial = 0.5
	}
	if e.Min <= 0 {
		e.Min = 0.1
	}
	if e.Max <= 0 {
		e.Max = 3
	}
	if e.AdaptSpeed == nil {
		s := 0.5
		e.AdaptSpeed = &s
	}
	if e.LowPercentile <= 0 {
		e.LowPercentile = 0.6
	}
	if e.HighPercentile <= 0 {
		e.HighPercentile = 0.9
	}
	if e.FramesInFlight <= 0 {
		e.FramesInFlight = 2
	}
}

func (c *Config) resolveScene() {
	if c.Camera.Position.IsZero() && c.Camera.Target.IsZero() {
		c.Camera.Position = mathutil.Vec3{0, 2.2, 7}
		c.Camera.Target = mathutil.Vec3{0, 0.8, 0}
	}
	if c.Camera.FOV <= 0 {
		c.Camera.FOV = 50
	}
	if c.Scene == nil {
		s := scene.Default()
		c.Scene = &s
	}
	if c.Lights == nil {
		c.Lights = []Light{
			{Position: mathutil.Vec3{-3, 3, 3}, Color: mathutil.Vec3{20, 18, 15}},
			{Position: mathutil.Vec3{3, 2, 2}, Color: mathutil.Vec3{6, 8, 14}},
		}
	}
	if c.Directional == nil {
		c.Directional = &Light{
			Position: mathutil.Vec3{-0.4, -1, -0.3},
			Color:    mathutil.Vec3{2.5, 2.4, 2.2},
		}
	}
}

func (c *Config) resolveSky() {
	if c.Sky.SunTransit == nil {
		t := 0.6
		c.Sky.SunTransit = &t
	}
	if c.Sky.Turbidity <= 0 {
		c.Sky.Turbidity = 2.5
	}
	if c.Sky.Intensity <= 0 {
		c.Sky.Intensity = 1
	}
	if c.Sky.Dome == nil {
		on := true
		c.Sky.Dome = &on
	}
	if c.Env.Source == "" {
		c.Env.Source = "sky"
	}
	if c.Env.Intensity <= 0 {
		c.Env.Intensity = 1
	}
}

// Validate rejects settings no renderer can honor.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Supersample > 8:
		return fmt.Errorf("%w: supersample %d exceeds 8", ErrInvalid, c.Supersample)
	case c.Vignette != nil && (*c.Vignette < 0 || *c.Vignette > 1):
		return fmt.Errorf("%w: vignette %v outside [0,1]", ErrInvalid, *c.Vignette)
	case c.Near >= c.Far:
		return fmt.Errorf("%w: near %v must be below far %v", ErrInvalid, c.Near, c.Far)
	case c.Exposure.Min > c.Exposure.Max:
		return fmt.Errorf("%w: exposure min %v above max %v", ErrInvalid, c.Exposure.Min, c.Exposure.Max)
	case c.Exposure.LowPercentile >= c.Exposure.HighPercentile || c.Exposure.HighPercentile > 1:
		return fmt.Errorf("%w: percentiles %v/%v", ErrInvalid, c.Exposure.LowPercentile, c.Exposure.HighPercentile)
	case c.Sky.SunTransit != nil && (*c.Sky.SunTransit < 0 || *c.Sky.SunTransit > 2):
		return fmt.Errorf("%w: sun transit %v outside [0,2]", ErrInvalid, *c.Sky.SunTransit)
	case c.Sky.Cloudiness < 0 || c.Sky.Cloudiness > 1:
		return fmt.Errorf("%w: cloudiness %v outside [0,1]", ErrInvalid, c.Sky.Cloudiness)
	}
	switch c.Env.Source {
	case "sky", "none":
	case "image":
		if c.Env.Image == "" {
			return fmt.Errorf("%w: env source image needs env.image", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: env source %q", ErrInvalid, c.Env.Source)
	}
	switch c.Exposure.Source {
	case "", "resolve", "post":
	default:
		return fmt.Errorf("%w: exposure source %q", ErrInvalid, c.Exposure.Source)
	}
	switch c.Format {
	case "webp", "png":
	default:
		return fmt.Errorf("%w: format %q", ErrInvalid, c.Format)
	}
	if _, err := c.Meter(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.DebugMode(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.SweepModes(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
