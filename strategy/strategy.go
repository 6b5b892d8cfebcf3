// Package strategy implements the acquisition strategies the orchestrator
// chooses between: a cheap remote-extraction call and an expensive stealth
// browser session. Both feed acquired content through the extraction engine
// and return a per-target ScrapeAttemptResult.
package strategy

import (
	"context"
	"math/rand"
	"time"

	"github.com/coachscout/coachscout/models"
)

// Strategy names, recorded on results and staff records as provenance.
const (
	NameRemote  = "remote_extraction"
	NameBrowser = "stealth_browser"
)

// Strategy is one acquisition method for a target.
type Strategy interface {
	// Name returns the strategy identifier.
	Name() string

	// Scrape acquires page content for the target, extracts staff records,
	// and returns the attempt outcome. Failures are returned as a result
	// with Success=false and Err set, never as a panic — the orchestrator
	// must always be able to proceed to fallback or the next target.
	Scrape(ctx context.Context, target models.Target) *models.ScrapeAttemptResult
}

// DelayPolicy produces humanized pauses: randomized jitter around a base
// value rather than fixed sleeps, which are a bot-detection signal. A zero
// base yields no delay, which is how tests run deterministically.
type DelayPolicy struct {
	Base   time.Duration
	Jitter float64 // ratio in [0,1]; 0.5 means ±50% of Base
	rng    *rand.Rand
}

// NewDelayPolicy creates a DelayPolicy seeded from the current time.
func NewDelayPolicy(base time.Duration, jitter float64) *DelayPolicy {
	return &DelayPolicy{
		Base:   base,
		Jitter: jitter,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NoDelay is a DelayPolicy that never sleeps.
func NoDelay() *DelayPolicy {
	return &DelayPolicy{}
}

// Next returns the duration of the next pause.
func (d *DelayPolicy) Next() time.Duration {
	if d == nil || d.Base <= 0 {
		return 0
	}
	if d.Jitter <= 0 || d.rng == nil {
		return d.Base
	}
	// Uniform in [Base*(1-Jitter), Base*(1+Jitter)].
	spread := float64(d.Base) * d.Jitter
	offset := (d.rng.Float64()*2 - 1) * spread
	return time.Duration(float64(d.Base) + offset)
}

// Sleep pauses for Next() or until the context is done.
func (d *DelayPolicy) Sleep(ctx context.Context) {
	wait := d.Next()
	if wait <= 0 {
		return
	}
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

// failedAttempt builds a failure result carrying the last error.
func failedAttempt(target models.Target, strategyName string, start time.Time, err error) *models.ScrapeAttemptResult {
	res := &models.ScrapeAttemptResult{
		Target:       target,
		StrategyUsed: strategyName,
		Success:      false,
		ElapsedMs:    time.Since(start).Milliseconds(),
		Err:          err,
	}
	if err != nil {
		res.ErrorMessage = err.Error()
	}
	return res
}
