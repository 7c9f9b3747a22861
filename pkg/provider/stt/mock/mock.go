// Package mock provides an in-memory [stt.Provider] test double.
package mock

import (
	"context"
	"sync"

	"github.com/vedavani/vedavani/pkg/provider/stt"
)

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider is a configurable stt.Provider double. The zero value
// returns an empty Result with no error. All fields must be set before
// first use; Calls is safe to read concurrently afterwards.
type Provider struct {
	// Result is returned by every Transcribe call when Err is nil.
	Result stt.Result

	// Err, when non-nil, is returned by every Transcribe call.
	Err error

	mu    sync.Mutex
	calls []stt.Request
}

// Transcribe records the request and returns the configured outcome.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return stt.Result{}, err
	}
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if p.Err != nil {
		return stt.Result{}, p.Err
	}
	return p.Result, nil
}

// Calls returns a copy of all requests seen so far.
func (p *Provider) Calls() []stt.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]stt.Request, len(p.calls))
	copy(out, p.calls)
	return out
}
