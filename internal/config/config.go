// Package config provides the configuration schema, loader, canonical
// script parser, and transcription provider registry for Vedavani.
package config

import "github.com/vedavani/vedavani/internal/swara"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure, typically loaded from a
// YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// MetricsAddr is the TCP address for the optional Prometheus
	// /metrics endpoint (e.g., ":9090"). Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// AnalysisConfig exposes the engine's tuned constants. Every zero
// field falls back to the calibrated default; the YAML file only needs
// to name values that deviate.
type AnalysisConfig struct {
	Pitch      PitchConfig      `yaml:"pitch"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

// PitchConfig mirrors the pitch extractor options.
type PitchConfig struct {
	MinFrequency  float64 `yaml:"min_frequency"`
	MaxFrequency  float64 `yaml:"max_frequency"`
	WindowSeconds float64 `yaml:"window_seconds"`
	HopSeconds    float64 `yaml:"hop_seconds"`
	YinThreshold  float64 `yaml:"yin_threshold"`
	EnergyFloor   float64 `yaml:"energy_floor"`
	MinConfidence float64 `yaml:"min_confidence"`
}

// ThresholdsConfig mirrors [swara.Thresholds]. Zero fields use the
// calibrated defaults.
type ThresholdsConfig struct {
	LowDelta               float64 `yaml:"low_delta"`
	RisingJump             float64 `yaml:"rising_jump"`
	RisingEndDelta         float64 `yaml:"rising_end_delta"`
	RisingGlide            float64 `yaml:"rising_glide"`
	RisingSlope            float64 `yaml:"rising_slope"`
	ProlongedDelta         float64 `yaml:"prolonged_delta"`
	ProlongedDurationRatio float64 `yaml:"prolonged_duration_ratio"`
	ProlongedSustain       float64 `yaml:"prolonged_sustain"`
	MinGradableDuration    float64 `yaml:"min_gradable_duration"`
	MinGradableConfidence  float64 `yaml:"min_gradable_confidence"`
	SmootherKeepConfidence float64 `yaml:"smoother_keep_confidence"`
	BaselineWindow         int     `yaml:"baseline_window"`
}

// Thresholds merges the config over the calibrated defaults: any field
// left zero keeps its default value.
func (tc ThresholdsConfig) Thresholds() swara.Thresholds {
	th := swara.DefaultThresholds()
	if tc.LowDelta != 0 {
		th.LowDelta = tc.LowDelta
	}
	if tc.RisingJump != 0 {
		th.RisingJump = tc.RisingJump
	}
	if tc.RisingEndDelta != 0 {
		th.RisingEndDelta = tc.RisingEndDelta
	}
	if tc.RisingGlide != 0 {
		th.RisingGlide = tc.RisingGlide
	}
	if tc.RisingSlope != 0 {
		th.RisingSlope = tc.RisingSlope
	}
	if tc.ProlongedDelta != 0 {
		th.ProlongedDelta = tc.ProlongedDelta
	}
	if tc.ProlongedDurationRatio != 0 {
		th.ProlongedDurationRatio = tc.ProlongedDurationRatio
	}
	if tc.ProlongedSustain != 0 {
		th.ProlongedSustain = tc.ProlongedSustain
	}
	if tc.MinGradableDuration != 0 {
		th.MinGradableDuration = tc.MinGradableDuration
	}
	if tc.MinGradableConfidence != 0 {
		th.MinGradableConfidence = tc.MinGradableConfidence
	}
	if tc.SmootherKeepConfidence != 0 {
		th.SmootherKeepConfidence = tc.SmootherKeepConfidence
	}
	if tc.BaselineWindow != 0 {
		th.BaselineWindow = tc.BaselineWindow
	}
	return th
}

// ProvidersConfig declares which provider implementation to use for
// each external collaborator. Only speech-to-text exists today.
type ProvidersConfig struct {
	STT ProviderEntry `yaml:"stt"`
}

// ProviderEntry is the common configuration block shared by all
// provider types. The Name field looks up the constructor in the
// [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "whisper-native"). Empty means the collaborator is not
	// configured.
	Name string `yaml:"name"`

	// Model selects a model within the provider; for whisper-native
	// this is the model file path.
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered
	// by the standard fields.
	Options map[string]any `yaml:"options"`
}
