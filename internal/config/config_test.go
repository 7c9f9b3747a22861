package config_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/vedavani/vedavani/internal/config"
	"github.com/vedavani/vedavani/internal/swara"
	"github.com/vedavani/vedavani/pkg/provider/stt"
)

func TestLoadFromReader(t *testing.T) {
	t.Parallel()

	t.Run("full config", func(t *testing.T) {
		t.Parallel()
		yml := `
server:
  metrics_addr: ":9090"
  log_level: debug
analysis:
  pitch:
    min_frequency: 80
    max_frequency: 600
  thresholds:
    low_delta: -2.0
    baseline_window: 7
providers:
  stt:
    name: whisper-native
    model: /models/ggml-base.bin
    options:
      language: sa
`
		cfg, err := config.LoadFromReader(strings.NewReader(yml))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.MetricsAddr != ":9090" {
			t.Errorf("metrics_addr = %q", cfg.Server.MetricsAddr)
		}
		if cfg.Server.LogLevel != config.LogDebug {
			t.Errorf("log_level = %q", cfg.Server.LogLevel)
		}
		if cfg.Analysis.Pitch.MinFrequency != 80 {
			t.Errorf("min_frequency = %v", cfg.Analysis.Pitch.MinFrequency)
		}
		if cfg.Providers.STT.Model != "/models/ggml-base.bin" {
			t.Errorf("model = %q", cfg.Providers.STT.Model)
		}
		if lang := cfg.Providers.STT.Options["language"]; lang != "sa" {
			t.Errorf("language option = %v", lang)
		}
	})

	t.Run("empty file yields defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := config.LoadFromReader(strings.NewReader(""))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Server.MetricsAddr != "" || cfg.Providers.STT.Name != "" {
			t.Errorf("empty config not zero: %+v", cfg)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()
		_, err := config.LoadFromReader(strings.NewReader("server:\n  listen_addr: \":80\"\n"))
		if err == nil {
			t.Error("unknown field accepted")
		}
	})

	t.Run("validation failures joined", func(t *testing.T) {
		t.Parallel()
		yml := `
server:
  log_level: loud
analysis:
  thresholds:
    low_delta: 2.0
providers:
  stt:
    name: carrier-pigeon
`
		_, err := config.LoadFromReader(strings.NewReader(yml))
		if err == nil {
			t.Fatal("invalid config accepted")
		}
		for _, want := range []string{"log_level", "low_delta", "carrier-pigeon"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not mention %s", err, want)
			}
		}
	})
}

func TestThresholdsConfigMergesDefaults(t *testing.T) {
	t.Parallel()

	tc := config.ThresholdsConfig{LowDelta: -2.5, BaselineWindow: 8}
	th := tc.Thresholds()
	def := swara.DefaultThresholds()

	if th.LowDelta != -2.5 {
		t.Errorf("LowDelta = %v, want override -2.5", th.LowDelta)
	}
	if th.BaselineWindow != 8 {
		t.Errorf("BaselineWindow = %d, want override 8", th.BaselineWindow)
	}
	if th.RisingJump != def.RisingJump {
		t.Errorf("RisingJump = %v, want default %v", th.RisingJump, def.RisingJump)
	}
	if th.MinGradableDuration != def.MinGradableDuration {
		t.Errorf("MinGradableDuration = %v, want default %v", th.MinGradableDuration, def.MinGradableDuration)
	}
}

func TestLoadScriptFromReader(t *testing.T) {
	t.Parallel()

	t.Run("valid script", func(t *testing.T) {
		t.Parallel()
		yml := `
title: Test verse
syllables:
  - { text: "अ", accent: neutral }
  - { text: "ग्नि", accent: low, start: 0.5, end: 0.9 }
  - { text: "मी", accent: rising, start: 0.9, end: 1.4 }
  - { text: "ळे", accent: prolonged-rise }
`
		s, err := config.LoadScriptFromReader(strings.NewReader(yml))
		if err != nil {
			t.Fatal(err)
		}
		if s.Title != "Test verse" {
			t.Errorf("title = %q", s.Title)
		}
		want := []swara.Accent{swara.Neutral, swara.Low, swara.Rising, swara.ProlongedRise}
		got := s.Accents()
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("accent %d = %v, want %v", i, got[i], want[i])
			}
		}
		for i, syl := range s.Syllables {
			if syl.Index != i {
				t.Errorf("syllable %d has index %d", i, syl.Index)
			}
		}
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name string
			yml  string
		}{
			{"no syllables", "title: empty\n"},
			{"empty text", "syllables:\n  - { text: \"\", accent: neutral }\n"},
			{"unknown accent", "syllables:\n  - { text: \"अ\", accent: loudly }\n"},
			{"end before start", "syllables:\n  - { text: \"अ\", accent: neutral, start: 1.0, end: 0.5 }\n"},
			{"overlapping timings", "syllables:\n  - { text: \"अ\", accent: neutral, start: 0.1, end: 1.0 }\n  - { text: \"ग\", accent: neutral, start: 0.5, end: 1.5 }\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				if _, err := config.LoadScriptFromReader(strings.NewReader(tt.yml)); err == nil {
					t.Errorf("script accepted: %s", tt.yml)
				}
			})
		}
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := config.NewRegistry()

	_, err := reg.CreateSTT(config.ProviderEntry{Name: "whisper-native"})
	if !errors.Is(err, config.ErrProviderNotRegistered) {
		t.Fatalf("err = %v, want ErrProviderNotRegistered", err)
	}

	var gotEntry config.ProviderEntry
	reg.RegisterSTT("whisper-native", func(entry config.ProviderEntry) (stt.Provider, error) {
		gotEntry = entry
		return nil, nil
	})

	entry := config.ProviderEntry{Name: "whisper-native", Model: "m.bin"}
	if _, err := reg.CreateSTT(entry); err != nil {
		t.Fatal(err)
	}
	if gotEntry.Model != "m.bin" {
		t.Errorf("factory got entry %+v", gotEntry)
	}
}
