package exposure

import (
	"context"
	"fmt"
	"sync"

	"deferred-renderer/internal/gbuffer"
	"deferred-renderer/internal/logging"
)

// Result is the metering of one completed frame.
type Result struct {
	Frame    uint64
	Metering Metering
	OK       bool
}

type slot struct {
	luma []int32
	done chan struct{} // closed once the slot's reduction finished
}

// Readback is a ring of host-side luma copies, one per frame in flight.
// Submit copies a frame's luma into its slot and reduces it in the
// background; Latest returns the newest finished result without blocking,
// so exposure trails the scene by at least one frame.
//
// Submit must be called from a single goroutine. Latest and Close are safe
// for concurrent use.
type Readback struct {
	meter Meter
	slots []*slot

	mu     sync.Mutex
	latest Result
	has    bool
	wg     sync.WaitGroup
}

// NewReadback sizes the ring to framesInFlight (minimum 1).
func NewReadback(framesInFlight int, meter Meter) *Readback {
	n := max(framesInFlight, 1)
	r := &Readback{meter: meter, slots: make([]*slot, n)}
	for i := range r.slots {
		done := make(chan struct{})
		close(done)
		r.slots[i] = &slot{done: done}
	}
	return r
}

// Slots returns the ring size.
func (r *Readback) Slots() int { return len(r.slots) }

// Submit copies luma into frame's slot, first waiting for any reduction
// still reading that slot. The caller may reuse luma as soon as Submit
// returns.
func (r *Readback) Submit(ctx context.Context, frame uint64, luma *gbuffer.LumaBuffer) error {
	s := r.slots[frame%uint64(len(r.slots))]
	select {
	case <-s.done:
	default:
		logging.Logger().Warn("readback slot busy", "frame", frame)
		select {
		case <-s.done:
		case <-ctx.Done():
			return fmt.Errorf("exposure: readback frame %d: %w", frame, ctx.Err())
		}
	}

	if cap(s.luma) < len(luma.Pix) {
		s.luma = make([]int32, len(luma.Pix))
	}
	s.luma = s.luma[:len(luma.Pix)]
	copy(s.luma, luma.Pix)

	done := make(chan struct{})
	s.done = done
	r.wg.Add(1)
	go func(data []int32) {
		defer r.wg.Done()
		defer close(done)
		m, ok := r.meter.Measure(data)
		r.publish(Result{Frame: frame, Metering: m, OK: ok})
	}(s.luma)
	return nil
}

func (r *Readback) publish(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.has && res.Frame < r.latest.Frame {
		return
	}
	r.latest = res
	r.has = true
	logging.Logger().Debug("metering done",
		"frame", res.Frame, "ok", res.OK,
		"avg", res.Metering.Average, "samples", res.Metering.Samples)
}

// Latest returns the newest completed result, if any.
func (r *Readback) Latest() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.has
}

// Wait blocks until every submitted reduction has finished.
func (r *Readback) Wait() {
	r.wg.Wait()
}

// Close waits for outstanding work.
func (r *Readback) Close() error {
	r.wg.Wait()
	return nil
}
