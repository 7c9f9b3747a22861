// Package whisper implements [stt.Provider] backed by the whisper.cpp
// CGO bindings. The whisper.cpp static library (libwhisper.a) and
// headers (whisper.h) must be available at link time via LIBRARY_PATH
// and C_INCLUDE_PATH environment variables.
package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/vedavani/vedavani/pkg/provider/stt"
)

// whisperSampleRate is the sample rate whisper.cpp expects.
const whisperSampleRate = 16000

const defaultLanguage = "auto"

// Compile-time assertion that Provider satisfies stt.Provider.
var _ stt.Provider = (*Provider)(nil)

// Provider implements [stt.Provider] with a locally loaded whisper.cpp
// model. The model is loaded once and shared across all concurrent
// Transcribe calls; each call gets its own whisper context.
type Provider struct {
	model    whisperlib.Model
	language string
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithLanguage sets the language hint passed to the model (e.g., "sa",
// "hi"). Defaults to automatic detection.
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// New creates a Provider that loads the whisper.cpp model from the
// given file path. The caller must call Close when the provider is no
// longer needed.
func New(modelPath string, opts ...Option) (*Provider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &Provider{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model.
func (p *Provider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe runs whisper.cpp inference on the complete recording.
// Each call creates a fresh whisper context: contexts are not
// thread-safe, but the shared model is.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return stt.Result{}, fmt.Errorf("whisper: context already cancelled: %w", err)
	}
	if len(req.Samples) == 0 {
		return stt.Result{}, stt.ErrNoSpeech
	}

	samples := toFloat32Resampled(req.Samples, req.SampleRate)

	wctx, err := p.model.NewContext()
	if err != nil {
		return stt.Result{}, fmt.Errorf("whisper: create context: %w", err)
	}

	lang := req.Language
	if lang == "" {
		lang = p.language
	}
	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", lang, "error", err)
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return stt.Result{}, fmt.Errorf("whisper: process audio: %w", err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stt.Result{}, fmt.Errorf("whisper: read segment: %w", err)
		}
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}

	text := strings.Join(parts, " ")
	if text == "" {
		return stt.Result{}, stt.ErrNoSpeech
	}
	return stt.Result{Text: text}, nil
}

// toFloat32Resampled converts normalized float64 samples to the
// float32 16 kHz mono signal whisper.cpp expects, using linear
// interpolation when the input rate differs.
func toFloat32Resampled(samples []float64, rate int) []float32 {
	if rate == whisperSampleRate || rate <= 0 {
		out := make([]float32, len(samples))
		for i, s := range samples {
			out[i] = float32(s)
		}
		return out
	}

	ratio := float64(rate) / float64(whisperSampleRate)
	n := int(float64(len(samples)) / ratio)
	out := make([]float32, n)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j+1 >= len(samples) {
			out[i] = float32(samples[len(samples)-1])
			continue
		}
		frac := pos - float64(j)
		out[i] = float32(samples[j]*(1-frac) + samples[j+1]*frac)
	}
	return out
}
