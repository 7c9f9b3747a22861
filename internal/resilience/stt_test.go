package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vedavani/vedavani/internal/resilience"
	"github.com/vedavani/vedavani/pkg/provider/stt"
	"github.com/vedavani/vedavani/pkg/provider/stt/mock"
)

var errBroken = errors.New("model exploded")

func TestSTTFallbackPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{Result: stt.Result{Text: "रामः"}}
	secondary := &mock.Provider{Result: stt.Result{Text: "wrong"}}

	f := resilience.NewSTTFallback("primary", primary, resilience.Config{})
	f.AddFallback("secondary", secondary)

	result, err := f.Transcribe(context.Background(), stt.Request{SampleRate: 16000})
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "रामः" {
		t.Errorf("text = %q, want the primary's answer", result.Text)
	}
	if len(secondary.Calls()) != 0 {
		t.Error("fallback was consulted although the primary succeeded")
	}
}

func TestSTTFallbackFailsOver(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{Err: errBroken}
	secondary := &mock.Provider{Result: stt.Result{Text: "अग्निम्"}}

	f := resilience.NewSTTFallback("primary", primary, resilience.Config{})
	f.AddFallback("secondary", secondary)

	result, err := f.Transcribe(context.Background(), stt.Request{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Text != "अग्निम्" {
		t.Errorf("text = %q, want the fallback's answer", result.Text)
	}
	if len(primary.Calls()) != 1 {
		t.Errorf("primary called %d times, want 1", len(primary.Calls()))
	}
}

func TestSTTFallbackAllFail(t *testing.T) {
	t.Parallel()

	f := resilience.NewSTTFallback("primary", &mock.Provider{Err: errBroken}, resilience.Config{})
	f.AddFallback("secondary", &mock.Provider{Err: errBroken})

	_, err := f.Transcribe(context.Background(), stt.Request{})
	if !errors.Is(err, resilience.ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestSTTFallbackNoSpeechIsNotFailover(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{Err: stt.ErrNoSpeech}
	secondary := &mock.Provider{Result: stt.Result{Text: "hallucinated"}}

	f := resilience.NewSTTFallback("primary", primary, resilience.Config{})
	f.AddFallback("secondary", secondary)

	_, err := f.Transcribe(context.Background(), stt.Request{})
	if !errors.Is(err, stt.ErrNoSpeech) {
		t.Fatalf("err = %v, want ErrNoSpeech passed through", err)
	}
	if len(secondary.Calls()) != 0 {
		t.Error("fallback consulted for a speechless recording")
	}
}

func TestSTTFallbackTripsAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	primary := &mock.Provider{Err: errBroken}
	secondary := &mock.Provider{Result: stt.Result{Text: "ok"}}

	f := resilience.NewSTTFallback("primary", primary, resilience.Config{
		MaxFailures: 2,
		Cooldown:    time.Hour,
	})
	f.AddFallback("secondary", secondary)

	for i := 0; i < 4; i++ {
		if _, err := f.Transcribe(context.Background(), stt.Request{}); err != nil {
			t.Fatal(err)
		}
	}

	// The primary fails twice, trips, and is skipped for the remaining
	// two calls.
	if got := len(primary.Calls()); got != 2 {
		t.Errorf("primary called %d times, want 2", got)
	}
	if got := len(secondary.Calls()); got != 4 {
		t.Errorf("secondary called %d times, want 4", got)
	}
}
