package pitch

import (
	"math"

	"github.com/vedavani/vedavani/pkg/audio"
)

// Tuned for the human chanting voice. All values can be overridden per
// call via options; keep the defaults stable — downstream accent
// thresholds were calibrated against them.
const (
	defaultMinFrequency  = 75.0  // Hz
	defaultMaxFrequency  = 800.0 // Hz
	defaultWindowSeconds = 0.025
	defaultHopSeconds    = 0.010
	defaultYinThreshold  = 0.15
	defaultEnergyFloor   = 0.01 // RMS gate below which a window is unvoiced
	defaultMinConfidence = 0.5
	medianFilterWindow   = 5
)

// Option is a functional option for configuring an extraction run.
type Option func(*extractor)

// WithFrequencyRange sets the candidate fundamental range in Hz.
// Defaults: 75–800 Hz.
func WithFrequencyRange(minHz, maxHz float64) Option {
	return func(e *extractor) {
		e.minFreq = minHz
		e.maxFreq = maxHz
	}
}

// WithWindow sets the analysis window and hop sizes in seconds.
// Defaults: 25 ms window, 10 ms hop.
func WithWindow(windowSec, hopSec float64) Option {
	return func(e *extractor) {
		e.windowSec = windowSec
		e.hopSec = hopSec
	}
}

// WithYinThreshold sets the normalized-difference threshold below which
// a lag is accepted as the period candidate. Default: 0.15.
func WithYinThreshold(threshold float64) Option {
	return func(e *extractor) { e.yinThreshold = threshold }
}

// WithEnergyFloor sets the RMS level below which a window is marked
// unvoiced without running the difference function. Default: 0.01.
func WithEnergyFloor(floor float64) Option {
	return func(e *extractor) { e.energyFloor = floor }
}

// WithMinConfidence sets the confidence floor below which a frame is
// discarded as unvoiced. Default: 0.5.
func WithMinConfidence(min float64) Option {
	return func(e *extractor) { e.minConfidence = min }
}

type extractor struct {
	minFreq       float64
	maxFreq       float64
	windowSec     float64
	hopSec        float64
	yinThreshold  float64
	energyFloor   float64
	minConfidence float64
}

// Extract computes the pitch contour of buf.
//
// An empty or all-silent buffer yields a contour whose frames are all
// unvoiced; that is a valid "no signal" result, not an error, and every
// downstream stage handles it.
func Extract(buf audio.Buffer, opts ...Option) Contour {
	e := &extractor{
		minFreq:       defaultMinFrequency,
		maxFreq:       defaultMaxFrequency,
		windowSec:     defaultWindowSeconds,
		hopSec:        defaultHopSeconds,
		yinThreshold:  defaultYinThreshold,
		energyFloor:   defaultEnergyFloor,
		minConfidence: defaultMinConfidence,
	}
	for _, o := range opts {
		o(e)
	}

	contour := Contour{
		SampleRate: buf.SampleRate,
		Duration:   buf.Duration(),
	}
	if buf.SampleRate <= 0 || len(buf.Samples) == 0 {
		return contour
	}

	windowLen := int(e.windowSec * float64(buf.SampleRate))
	hopLen := int(e.hopSec * float64(buf.SampleRate))
	if windowLen < 2 || hopLen < 1 || len(buf.Samples) < windowLen {
		return contour
	}

	// Lag bounds from the frequency range. maxLag is capped at half the
	// window so the difference function always has samples to compare.
	minLag := int(float64(buf.SampleRate) / e.maxFreq)
	if minLag < 2 {
		minLag = 2
	}
	maxLag := int(float64(buf.SampleRate) / e.minFreq)
	if maxLag > windowLen/2 {
		maxLag = windowLen / 2
	}
	if maxLag <= minLag {
		return contour
	}

	numFrames := 1 + (len(buf.Samples)-windowLen)/hopLen
	contour.Frames = make([]Frame, 0, numFrames)
	diff := make([]float64, maxLag+1)
	cmnd := make([]float64, maxLag+1)

	for i := 0; i < numFrames; i++ {
		start := i * hopLen
		window := buf.Samples[start : start+windowLen]
		t := (float64(start) + float64(windowLen)/2) / float64(buf.SampleRate)

		freq, conf := e.analyzeWindow(window, buf.SampleRate, minLag, maxLag, diff, cmnd)
		contour.Frames = append(contour.Frames, Frame{Time: t, Frequency: freq, Confidence: conf})
	}

	medianFilterFrequency(contour.Frames, medianFilterWindow)
	return contour
}

// analyzeWindow runs YIN on one window. diff and cmnd are scratch slices
// reused across windows. Returns (0, 0) for an unvoiced window.
func (e *extractor) analyzeWindow(window []float64, sampleRate, minLag, maxLag int, diff, cmnd []float64) (freq, confidence float64) {
	if audio.RMS(window) < e.energyFloor {
		return 0, 0
	}

	// Difference function d(tau) over the candidate lag range.
	half := len(window) / 2
	for tau := 1; tau <= maxLag; tau++ {
		var sum float64
		for j := 0; j < half; j++ {
			d := window[j] - window[j+tau]
			sum += d * d
		}
		diff[tau] = sum
	}

	// Cumulative mean normalized difference d'(tau).
	cmnd[0] = 1
	var running float64
	for tau := 1; tau <= maxLag; tau++ {
		running += diff[tau]
		if running == 0 {
			cmnd[tau] = 1
		} else {
			cmnd[tau] = diff[tau] * float64(tau) / running
		}
	}

	// First lag under threshold that is a local minimum; fall back to
	// the global minimum over the valid range.
	chosen := -1
	for tau := minLag; tau <= maxLag; tau++ {
		if cmnd[tau] < e.yinThreshold {
			if tau+1 <= maxLag && cmnd[tau+1] < cmnd[tau] {
				continue // still descending, keep walking to the minimum
			}
			chosen = tau
			break
		}
	}
	if chosen < 0 {
		best := minLag
		for tau := minLag + 1; tau <= maxLag; tau++ {
			if cmnd[tau] < cmnd[best] {
				best = tau
			}
		}
		chosen = best
	}

	confidence = 1 - cmnd[chosen]
	if confidence < e.minConfidence {
		return 0, 0
	}

	lag := refineLag(cmnd, chosen, minLag, maxLag)
	freq = float64(sampleRate) / lag
	if freq < e.minFreq || freq > e.maxFreq {
		return 0, 0
	}
	return freq, confidence
}

// refineLag applies parabolic interpolation around the chosen lag for
// sub-sample period accuracy.
func refineLag(cmnd []float64, tau, minLag, maxLag int) float64 {
	if tau <= minLag || tau >= maxLag {
		return float64(tau)
	}
	s0, s1, s2 := cmnd[tau-1], cmnd[tau], cmnd[tau+1]
	denom := 2 * (s0 - 2*s1 + s2)
	if denom == 0 {
		return float64(tau)
	}
	adjust := (s0 - s2) / denom
	if math.Abs(adjust) > 1 {
		return float64(tau)
	}
	return float64(tau) + adjust
}

// medianFilterFrequency smooths the frequency track in place with a
// centered median window. Confidence is left untouched. Unvoiced frames
// participate as zeros, which lets the filter also knock out isolated
// one-frame voicing glitches.
func medianFilterFrequency(frames []Frame, window int) {
	if len(frames) == 0 || window < 3 {
		return
	}
	half := window / 2
	orig := make([]float64, len(frames))
	for i, f := range frames {
		orig[i] = f.Frequency
	}
	neighborhood := make([]float64, 0, window)
	for i := range frames {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(frames) {
			hi = len(frames) - 1
		}
		neighborhood = append(neighborhood[:0], orig[lo:hi+1]...)
		frames[i].Frequency = median(neighborhood)
	}
}
