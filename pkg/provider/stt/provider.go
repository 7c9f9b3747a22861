// Package stt defines the Provider interface for speech-to-text
// backends.
//
// Transcription is an external collaborator: the analysis engine never
// performs network or model I/O itself, it consumes a pre-resolved
// transcript string. A Provider turns a complete recorded buffer into
// that string. There is no streaming surface — recordings are short,
// complete segments, and grading happens after the fact.
//
// Implementations must be safe for concurrent use; a batch run may
// transcribe several recordings at once.
package stt

import (
	"context"
	"errors"
)

// ErrNoSpeech is returned when the provider processed the audio
// successfully but found no transcribable speech in it. Callers grade
// this as a failed transcription with an explicit reason, not as a
// provider malfunction.
var ErrNoSpeech = errors.New("stt: no speech detected")

// Request describes one transcription job.
type Request struct {
	// Samples is the complete mono recording, normalized to [-1, 1].
	Samples []float64

	// SampleRate in Hz. Providers resample internally when their model
	// requires a specific rate.
	SampleRate int

	// Language is the BCP-47 language tag hint (e.g., "sa" for
	// Sanskrit, "hi" for Hindi). Empty lets the provider auto-detect.
	Language string
}

// Result is a completed transcription.
type Result struct {
	// Text is the transcribed content. Never empty on success; a
	// speechless recording yields [ErrNoSpeech] instead.
	Text string

	// Confidence is the provider's overall confidence in [0, 1], or 0
	// when the provider does not report one.
	Confidence float64
}

// Provider is the abstraction over any batch transcription backend.
type Provider interface {
	// Transcribe converts one complete recording into text. It blocks
	// until transcription finishes or ctx is cancelled.
	Transcribe(ctx context.Context, req Request) (Result, error)
}
