package processr

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// Callbacks collects the milestone notifications for one Process call. Any
// slot may be nil. Each slot fires at most once for the lifetime of the call,
// no matter how many polls, retries, or overlapping transitions occur.
type Callbacks struct {
	// OnStart fires once after the resource is created.
	OnStart func(*Resource)
	// OnError fires once with the first submission or polling failure.
	OnError func(error)
	// OnComplete fires once when the resource leaves the pending state.
	OnComplete func(*Resource)
	// OnThumbnailsComplete fires once when every thumbnail processor has
	// settled, even if the resource as a whole is still pending.
	OnThumbnailsComplete func([]Processor)
	// OnImagesComplete fires once when every image-preview processor has
	// settled. Independent of the thumbnail milestone.
	OnImagesComplete func([]Processor)
}

// wantsPolling reports whether any registered callback can only be satisfied
// by polling. With none registered the poller stops after OnStart to avoid
// wasted traffic.
func (cb Callbacks) wantsPolling() bool {
	return cb.OnComplete != nil || cb.OnThumbnailsComplete != nil || cb.OnImagesComplete != nil
}

// gateSet enforces the at-most-once guarantee with one gate per callback
// slot. The gates are independent: firing one never consumes another.
type gateSet struct {
	cb         Callbacks
	start      sync.Once
	err        sync.Once
	complete   sync.Once
	thumbnails sync.Once
	images     sync.Once
}

func (g *gateSet) fireStart(r *Resource) {
	g.start.Do(func() {
		if g.cb.OnStart != nil {
			g.cb.OnStart(r)
		}
	})
}

func (g *gateSet) fireError(err error) {
	g.err.Do(func() {
		if g.cb.OnError != nil {
			g.cb.OnError(err)
		}
	})
}

func (g *gateSet) fireComplete(r *Resource) {
	g.complete.Do(func() {
		if g.cb.OnComplete != nil {
			g.cb.OnComplete(r)
		}
	})
}

func (g *gateSet) fireThumbnails(processors []Processor) {
	g.thumbnails.Do(func() {
		if g.cb.OnThumbnailsComplete != nil {
			g.cb.OnThumbnailsComplete(processors)
		}
	})
}

func (g *gateSet) fireImages(processors []Processor) {
	g.images.Do(func() {
		if g.cb.OnImagesComplete != nil {
			g.cb.OnImagesComplete(processors)
		}
	})
}

// Process submits the item and drives the resource to a terminal state,
// delivering milestone callbacks along the way. It blocks until the resource
// completes, an error occurs, or ctx is cancelled; cancellation is the only
// way to abandon a resource the server keeps reporting as pending.
//
// When the created resource is already terminal, OnComplete fires immediately
// after OnStart and no poll is issued. When it is pending but no
// polling-relevant callback is registered, Process returns after OnStart
// without polling.
func (c *Client) Process(ctx context.Context, item Item, opts SubmitOptions, cb Callbacks) error {
	gates := &gateSet{cb: cb}

	resource, err := c.Submit(ctx, item, opts)
	if err != nil {
		gates.fireError(err)
		return err
	}
	gates.fireStart(resource)

	return c.watch(ctx, resource, gates)
}

// Watch drives an already-created resource to a terminal state with the same
// transition rules, milestone callbacks, and backoff as Process. OnStart never
// fires here; the resource already exists.
func (c *Client) Watch(ctx context.Context, resource *Resource, cb Callbacks) error {
	if resource == nil {
		return errors.New("watch: resource required")
	}
	return c.watch(ctx, resource, &gateSet{cb: cb})
}

func (c *Client) watch(ctx context.Context, resource *Resource, gates *gateSet) error {
	if !resource.Pending() {
		gates.fireComplete(resource)
		return nil
	}
	if !gates.cb.wantsPolling() {
		return nil
	}

	delay := c.initialPollDelay
	attempts := 0
	for {
		attempts++
		if c.maxPollAttempts > 0 && attempts > c.maxPollAttempts {
			err := fmt.Errorf("%w: %d polls issued for resource %s", ErrPollLimit, c.maxPollAttempts, resource.ID)
			gates.fireError(err)
			return err
		}
		if err := c.sleep(ctx, delay); err != nil {
			gates.fireError(err)
			return err
		}

		current, err := c.Fetch(ctx, resource.ID)
		if err != nil {
			gates.fireError(err)
			return err
		}
		if c.logger != nil {
			c.logger.Debug("poll", "resource", current.ID, "status", current.Status, "attempt", attempts)
		}

		if processorsSettled(current.Thumbnails) {
			gates.fireThumbnails(current.Thumbnails)
		}
		if processorsSettled(current.Images) {
			gates.fireImages(current.Images)
		}
		if !current.Pending() {
			gates.fireComplete(current)
			return nil
		}

		delay = nextDelay(delay, c.backoffDenominator)
	}
}

// Wait submits the item and blocks until the resource reaches a terminal
// status, returning its final state. It is the future-style counterpart to
// Process for callers that only care about the end result.
func (c *Client) Wait(ctx context.Context, item Item, opts SubmitOptions) (*Resource, error) {
	var final *Resource
	err := c.Process(ctx, item, opts, Callbacks{
		OnComplete: func(r *Resource) { final = r },
	})
	if err != nil {
		return nil, err
	}
	return final, nil
}

// nextDelay grows the poll delay by round(delay/denominator). Delays are
// millisecond-granular, so with the defaults the sequence runs 2000, 2500,
// 3125, 3906, ... and never decreases.
func nextDelay(delay time.Duration, denominator int) time.Duration {
	if denominator <= 0 {
		denominator = defaultBackoffDenominator
	}
	ms := delay.Milliseconds()
	ms += int64(math.Round(float64(ms) / float64(denominator)))
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx == nil {
		return errors.New("poll sleep: nil context")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
