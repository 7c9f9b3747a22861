// Package resilience provides failover for the external speech-to-text
// collaborator.
//
// A batch run over a directory of recordings makes one transcription
// call per file; a flaky backend (a corrupt model load, an exhausted
// native context) would otherwise fail every file one by one. The
// [STTFallback] wrapper tries each configured backend in order and
// trips a per-backend breaker after repeated failures so that a dead
// backend is skipped for the rest of the run.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vedavani/vedavani/pkg/provider/stt"
)

// ErrAllFailed is returned when every configured backend fails or is
// tripped.
var ErrAllFailed = errors.New("all stt backends failed")

// Config tunes the per-backend breaker.
type Config struct {
	// MaxFailures is the number of consecutive failures before a
	// backend is skipped. Default: 3.
	MaxFailures int

	// Cooldown is how long a tripped backend is skipped before it is
	// probed again. Default: 30s.
	Cooldown time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxFailures <= 0 {
		c.MaxFailures = 3
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	return c
}

// backend pairs a provider with its failure accounting.
type backend struct {
	name     string
	provider stt.Provider

	consecutiveFail int
	trippedAt       time.Time
}

// tripped reports whether the backend should be skipped, given the
// breaker config. A backend whose cooldown has elapsed is probed again.
func (b *backend) tripped(cfg Config, now time.Time) bool {
	return b.consecutiveFail >= cfg.MaxFailures && now.Sub(b.trippedAt) < cfg.Cooldown
}

// STTFallback implements [stt.Provider] over an ordered list of
// backends. Safe for concurrent use across recordings.
type STTFallback struct {
	cfg Config

	mu       sync.Mutex
	backends []*backend
}

var _ stt.Provider = (*STTFallback)(nil)

// NewSTTFallback creates a fallback wrapper with primary as the
// preferred backend.
func NewSTTFallback(primaryName string, primary stt.Provider, cfg Config) *STTFallback {
	f := &STTFallback{cfg: cfg.withDefaults()}
	f.backends = append(f.backends, &backend{name: primaryName, provider: primary})
	return f
}

// AddFallback registers an additional backend, tried after all
// previously registered ones.
func (f *STTFallback) AddFallback(name string, provider stt.Provider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backends = append(f.backends, &backend{name: name, provider: provider})
}

// Transcribe tries each backend in order until one succeeds.
// [stt.ErrNoSpeech] is a legitimate answer about the audio, not a
// backend fault: it is returned immediately and does not count against
// the breaker.
func (f *STTFallback) Transcribe(ctx context.Context, req stt.Request) (stt.Result, error) {
	var lastErr error
	for _, b := range f.candidates() {
		result, err := b.provider.Transcribe(ctx, req)
		switch {
		case err == nil:
			f.recordSuccess(b)
			return result, nil
		case errors.Is(err, stt.ErrNoSpeech):
			f.recordSuccess(b)
			return stt.Result{}, err
		default:
			f.recordFailure(b)
			slog.Warn("stt backend failed, trying next", "backend", b.name, "err", err)
			lastErr = err
		}
		if ctx.Err() != nil {
			return stt.Result{}, ctx.Err()
		}
	}
	if lastErr == nil {
		return stt.Result{}, ErrAllFailed
	}
	return stt.Result{}, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
}

// candidates snapshots the non-tripped backends in registration order.
func (f *STTFallback) candidates() []*backend {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	out := make([]*backend, 0, len(f.backends))
	for _, b := range f.backends {
		if b.tripped(f.cfg, now) {
			slog.Debug("skipping tripped stt backend", "backend", b.name)
			continue
		}
		out = append(out, b)
	}
	return out
}

func (f *STTFallback) recordSuccess(b *backend) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.consecutiveFail = 0
}

func (f *STTFallback) recordFailure(b *backend) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.consecutiveFail++
	// A failed probe after the cooldown re-trips for a fresh cooldown.
	if b.consecutiveFail >= f.cfg.MaxFailures {
		b.trippedAt = time.Now()
		slog.Warn("stt backend tripped",
			"backend", b.name,
			"consecutive_failures", b.consecutiveFail,
			"cooldown", f.cfg.Cooldown,
		)
	}
}
