package whisper

import (
	"math"
	"testing"
)

func TestToFloat32ResampledPassthrough(t *testing.T) {
	t.Parallel()

	in := []float64{0, 0.5, -0.5, 1}
	out := toFloat32Resampled(in, whisperSampleRate)
	if len(out) != len(in) {
		t.Fatalf("got %d samples, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != float32(in[i]) {
			t.Errorf("sample %d = %v, want %v", i, out[i], in[i])
		}
	}
}

func TestToFloat32ResampledDownsamples(t *testing.T) {
	t.Parallel()

	// 48 kHz input: a 3:1 decimation toward whisper's 16 kHz.
	in := make([]float64, 4800)
	for i := range in {
		in[i] = math.Sin(2 * math.Pi * 100 * float64(i) / 48000)
	}
	out := toFloat32Resampled(in, 48000)

	if got, want := len(out), 1600; got != want {
		t.Fatalf("got %d samples, want %d", got, want)
	}
	// The interpolated signal still traces the same 100 Hz sine.
	for i := 0; i < len(out); i += 100 {
		want := math.Sin(2 * math.Pi * 100 * float64(i) / 16000)
		if math.Abs(float64(out[i])-want) > 0.01 {
			t.Errorf("sample %d = %v, want %v", i, out[i], want)
		}
	}
}

func TestToFloat32ResampledUnknownRate(t *testing.T) {
	t.Parallel()

	in := []float64{0.25, 0.75}
	out := toFloat32Resampled(in, 0)
	if len(out) != 2 || out[0] != 0.25 || out[1] != 0.75 {
		t.Errorf("got %v, want passthrough for unknown rate", out)
	}
}
