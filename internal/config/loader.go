package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to reject unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt": {"whisper-native"},
}

// Load reads the YAML configuration file at path and returns a
// validated [Config]. It is a convenience wrapper around
// [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the
// result. Useful in tests where configs are constructed from string
// literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil // empty config file: all defaults
		}
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if name := cfg.Providers.STT.Name; name != "" && !knownProvider("stt", name) {
		errs = append(errs, fmt.Errorf("providers.stt.name %q is not a known provider; valid values: %v", name, ValidProviderNames["stt"]))
	}

	p := cfg.Analysis.Pitch
	if p.MinFrequency < 0 || p.MaxFrequency < 0 {
		errs = append(errs, errors.New("analysis.pitch frequencies must be non-negative"))
	}
	if p.MinFrequency > 0 && p.MaxFrequency > 0 && p.MinFrequency >= p.MaxFrequency {
		errs = append(errs, fmt.Errorf("analysis.pitch.min_frequency (%v) must be below max_frequency (%v)", p.MinFrequency, p.MaxFrequency))
	}
	if p.YinThreshold < 0 || p.YinThreshold > 1 {
		errs = append(errs, fmt.Errorf("analysis.pitch.yin_threshold %v must be in [0, 1]", p.YinThreshold))
	}

	t := cfg.Analysis.Thresholds
	if t.LowDelta > 0 {
		errs = append(errs, fmt.Errorf("analysis.thresholds.low_delta %v must be negative (semitones below baseline)", t.LowDelta))
	}
	if t.MinGradableConfidence < 0 || t.MinGradableConfidence > 1 {
		errs = append(errs, fmt.Errorf("analysis.thresholds.min_gradable_confidence %v must be in [0, 1]", t.MinGradableConfidence))
	}
	if t.SmootherKeepConfidence < 0 || t.SmootherKeepConfidence > 1 {
		errs = append(errs, fmt.Errorf("analysis.thresholds.smoother_keep_confidence %v must be in [0, 1]", t.SmootherKeepConfidence))
	}
	if t.BaselineWindow < 0 {
		errs = append(errs, fmt.Errorf("analysis.thresholds.baseline_window %d must be non-negative", t.BaselineWindow))
	}

	return errors.Join(errs...)
}

func knownProvider(kind, name string) bool {
	for _, n := range ValidProviderNames[kind] {
		if n == name {
			return true
		}
	}
	return false
}
