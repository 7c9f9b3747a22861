// Command vedavani grades recorded chant recitations: pitch-accent
// (swara) classification against a canonical script, phonetic
// pronunciation scoring of the transcript, and an aggregate score.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/vedavani/vedavani/internal/analysis"
	"github.com/vedavani/vedavani/internal/config"
	"github.com/vedavani/vedavani/internal/health"
	"github.com/vedavani/vedavani/internal/observe"
	"github.com/vedavani/vedavani/internal/pitch"
	"github.com/vedavani/vedavani/internal/resilience"
	"github.com/vedavani/vedavani/pkg/audio"
	"github.com/vedavani/vedavani/pkg/provider/stt"
	"github.com/vedavani/vedavani/pkg/provider/stt/whisper"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	scriptPath := flag.String("script", "", "path to the canonical script YAML file (required)")
	audioPath := flag.String("audio", "", "path to a WAV recording or a directory of recordings (required)")
	referencePath := flag.String("reference", "", "optional path to a reference WAV performance for melodic comparison")
	transcriptText := flag.String("transcript", "", "optional pre-resolved transcript; skips the STT provider")
	jsonOut := flag.Bool("json", false, "emit reports as JSON instead of text")
	flag.Parse()

	if *scriptPath == "" || *audioPath == "" {
		fmt.Fprintln(os.Stderr, "vedavani: -script and -audio are required")
		flag.Usage()
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("no config file found, using defaults", "path", *configPath)
			cfg = &config.Config{}
		} else {
			fmt.Fprintf(os.Stderr, "vedavani: %v\n", err)
			return 1
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Script ────────────────────────────────────────────────────────────────
	script, err := config.LoadScript(*scriptPath)
	if err != nil {
		slog.Error("failed to load script", "err", err)
		return 1
	}
	slog.Info("script loaded", "title", script.Title, "syllables", len(script.Syllables))

	// ── Transcription provider ────────────────────────────────────────────────
	reg := config.NewRegistry()
	reg.RegisterSTT("whisper-native", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.Model, opts...)
	})

	var transcriber stt.Provider
	var checkers []health.Checker
	if name := cfg.Providers.STT.Name; name != "" && *transcriptText == "" {
		created, err := reg.CreateSTT(cfg.Providers.STT)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Warn("stt provider not registered, pronunciation will not be scored", "name", name)
		} else if err != nil {
			slog.Error("failed to create stt provider", "name", name, "err", err)
			return 1
		} else {
			slog.Info("stt provider created", "name", name)
			transcriber = resilience.NewSTTFallback(name, created, resilience.Config{})
			model := cfg.Providers.STT.Model
			checkers = append(checkers, health.Checker{
				Name: "stt_model",
				Check: func(context.Context) error {
					_, err := os.Stat(model)
					return err
				},
			})
		}
	}

	if addr := cfg.Server.MetricsAddr; addr != "" {
		go serveMetrics(addr, health.New(checkers...))
	}

	// ── Recordings ────────────────────────────────────────────────────────────
	recordings, err := collectRecordings(*audioPath)
	if err != nil {
		slog.Error("failed to collect recordings", "err", err)
		return 1
	}
	if len(recordings) == 0 {
		slog.Error("no WAV recordings found", "path", *audioPath)
		return 1
	}

	var reference *audio.Buffer
	if *referencePath != "" {
		buf, err := audio.ReadWAVFile(*referencePath)
		if err != nil {
			slog.Error("failed to read reference recording", "err", err)
			return 1
		}
		reference = &buf
	}

	// ── Analysis fan-out ──────────────────────────────────────────────────────
	analyzer := analysis.New(
		analysis.WithThresholds(cfg.Analysis.Thresholds.Thresholds()),
		analysis.WithPitchOptions(pitchOptions(cfg.Analysis.Pitch)...),
	)

	reports := make([]*analysis.Report, len(recordings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range recordings {
		g.Go(func() error {
			report, err := analyzeOne(gctx, analyzer, script, transcriber, *transcriptText, reference, path)
			if err != nil {
				return fmt.Errorf("analyze %q: %w", path, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Error("analysis failed", "err", err)
		return 1
	}

	// ── Output ────────────────────────────────────────────────────────────────
	for i, report := range reports {
		if *jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				slog.Error("failed to encode report", "err", err)
				return 1
			}
		} else {
			printReport(recordings[i], script.Title, report)
		}
	}
	return 0
}

// analyzeOne grades a single recording end to end.
func analyzeOne(ctx context.Context, analyzer *analysis.Analyzer, script *config.Script, transcriber stt.Provider, transcript string, reference *audio.Buffer, path string) (*analysis.Report, error) {
	buf, err := audio.ReadWAVFile(path)
	if err != nil {
		return nil, err
	}

	report := &analysis.Report{}

	accent := analyzer.AnalyzeAccents(ctx, buf, script.Syllables)
	report.Accent = &accent

	switch {
	case transcript != "":
		pron := analyzer.ScorePronunciation(script.Syllables, transcript)
		report.Pronunciation = &pron
	case transcriber != nil:
		pron := transcribeAndScore(ctx, analyzer, script, transcriber, buf)
		report.Pronunciation = &pron
	}

	if reference != nil {
		melody := analyzer.CompareMelody(ctx, *reference, buf)
		report.Melody = &melody
	}

	analysis.Combine(report)
	return report, nil
}

// transcribeAndScore resolves a transcript via the external STT
// collaborator. Provider failure is fatal to the pronunciation score
// only: the report carries an explicit zero with the failure reason and
// the accent analysis stands untouched.
func transcribeAndScore(ctx context.Context, analyzer *analysis.Analyzer, script *config.Script, transcriber stt.Provider, buf audio.Buffer) analysis.PronunciationResult {
	start := time.Now()
	result, err := transcriber.Transcribe(ctx, stt.Request{
		Samples:    buf.Samples,
		SampleRate: buf.SampleRate,
	})
	observe.DefaultMetrics().TranscriptionDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		observe.DefaultMetrics().TranscriptionErrors.Add(ctx, 1)
		slog.Warn("transcription failed", "err", err)
		return analysis.PronunciationUnavailable("transcription failed: " + err.Error())
	}
	return analyzer.ScorePronunciation(script.Syllables, result.Text)
}

// collectRecordings expands path into a sorted list of WAV files.
func collectRecordings(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			out = append(out, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// pitchOptions maps the config's pitch section onto extractor options,
// touching only fields the file actually set.
func pitchOptions(pc config.PitchConfig) []pitch.Option {
	var opts []pitch.Option
	if pc.MinFrequency > 0 && pc.MaxFrequency > 0 {
		opts = append(opts, pitch.WithFrequencyRange(pc.MinFrequency, pc.MaxFrequency))
	}
	if pc.WindowSeconds > 0 && pc.HopSeconds > 0 {
		opts = append(opts, pitch.WithWindow(pc.WindowSeconds, pc.HopSeconds))
	}
	if pc.YinThreshold > 0 {
		opts = append(opts, pitch.WithYinThreshold(pc.YinThreshold))
	}
	if pc.EnergyFloor > 0 {
		opts = append(opts, pitch.WithEnergyFloor(pc.EnergyFloor))
	}
	if pc.MinConfidence > 0 {
		opts = append(opts, pitch.WithMinConfidence(pc.MinConfidence))
	}
	return opts
}

// ── Report output ─────────────────────────────────────────────────────────────

func printReport(path, title string, r *analysis.Report) {
	fmt.Printf("=== %s — %s ===\n", filepath.Base(path), title)
	if r.OverallReason != "" {
		fmt.Printf("overall: unavailable (%s)\n", r.OverallReason)
	} else {
		fmt.Printf("overall: %d\n", r.Overall)
	}
	if r.Pronunciation != nil {
		if r.Pronunciation.Failed() {
			fmt.Printf("pronunciation: 0 (%s)\n", r.Pronunciation.FailureReason)
		} else {
			fmt.Printf("pronunciation: %d\n", r.Pronunciation.OverallPercent)
		}
	}
	if r.Accent != nil {
		fmt.Printf("accent: %d%% over %d gradable syllables (quality %.2f, drift %.1f st)\n",
			r.Accent.AccuracyPercent, r.Accent.GradableCount, r.Accent.Quality, r.Accent.DriftSemitones)
		for _, s := range r.Accent.Syllables {
			marker := " "
			switch {
			case !s.Gradable:
				marker = "?"
			case !s.Acceptable:
				marker = "x"
			}
			fmt.Printf("  %s %2d %-8s expected=%-14s got=%-14s conf=%.2f\n",
				marker, s.Index, s.Text, s.Expected, s.Corrected, s.Confidence)
		}
	}
	if r.Melody != nil {
		if r.Melody.Failed() {
			fmt.Printf("melody: 0 (%s)\n", r.Melody.FailureReason)
		} else {
			fmt.Printf("melody: %d%% (mean deviation %.2f st)\n",
				r.Melody.SimilarityPercent, r.Melody.MeanDeviation)
		}
	}
}

// ── Metrics endpoint ──────────────────────────────────────────────────────────

func serveMetrics(addr string, h *health.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	h.Register(mux)
	slog.Info("metrics endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Warn("metrics endpoint error", "err", err)
	}
}

// ── Logger ────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map.
// Returns "" if the map is nil, the key is absent, or the value is not
// a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
