package exposure

import (
	"math"
	"sync"
	"time"
)

// Settings bound and smooth the derived exposure.
type Settings struct {
	Initial      float64
	Min, Max     float64
	Compensation float64 // EV stops added to the metered scene
	// AdaptSpeed is the exponential approach rate per second; <= 0 snaps
	// to the target immediately.
	AdaptSpeed float64
}

func DefaultSettings() Settings {
	return Settings{Initial: 0.5, Min: 0.1, Max: 3.0, AdaptSpeed: 0.5}
}

// EV100 is the exposure value of a scene with average luminance l.
func EV100(l, compensation float64) float64 {
	return math.Log2(l*100/12.5) + compensation
}

// TargetExposure maps average luminance to 1/(1.2·2^EV100). It never
// increases as luminance grows; non-positive luminance yields +Inf.
func TargetExposure(avgLuma, compensation float64) float64 {
	if avgLuma <= 0 {
		return math.Inf(1)
	}
	return 1 / (1.2 * math.Exp2(EV100(avgLuma, compensation)))
}

// Target clamps TargetExposure to the configured range.
func (s Settings) Target(avgLuma float64) float64 {
	return math.Min(math.Max(TargetExposure(avgLuma, s.Compensation), s.Min), s.Max)
}

// Controller tracks the current exposure across frames.
type Controller struct {
	mu       sync.Mutex
	s        Settings
	exposure float64
	last     Metering
}

func NewController(s Settings) *Controller {
	e := s.Initial
	if e <= 0 {
		e = s.Min
	}
	return &Controller{s: s, exposure: math.Min(math.Max(e, s.Min), s.Max)}
}

// Exposure returns the value to freeze into the next frame.
func (c *Controller) Exposure() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exposure
}

// Last returns the metering that produced the current exposure.
func (c *Controller) Last() Metering {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Update moves the exposure toward the metered target. Without data
// (ok == false) the previous exposure is kept.
func (c *Controller) Update(m Metering, ok bool, dt time.Duration) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		return c.exposure
	}
	c.last = m
	target := c.s.Target(m.Average)
	if c.s.AdaptSpeed <= 0 {
		c.exposure = target
		return c.exposure
	}
	k := 1 - math.Exp(-dt.Seconds()*c.s.AdaptSpeed)
	c.exposure += (target - c.exposure) * k
	return c.exposure
}
