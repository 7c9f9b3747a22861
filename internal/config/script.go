package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vedavani/vedavani/internal/swara"
)

// Script is a parsed canonical recitation text: the ordered syllables
// with their prescribed accents. The catalog of scripts lives outside
// this system; a Script file is the already-parsed exchange format.
type Script struct {
	// Title names the mantra or verse, for reports only.
	Title string `yaml:"title"`

	// Syllables is the canonical sequence. Order in the file is the
	// recitation order; indices are assigned on load.
	Syllables []swara.CanonicalSyllable `yaml:"syllables"`
}

// LoadScript reads and validates a canonical script YAML file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open script %q: %w", path, err)
	}
	defer f.Close()

	s, err := LoadScriptFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse script %q: %w", path, err)
	}
	return s, nil
}

// LoadScriptFromReader decodes and validates a script from r.
func LoadScriptFromReader(r io.Reader) (*Script, error) {
	s := &Script{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("config: decode script yaml: %w", err)
	}

	var errs []error
	if len(s.Syllables) == 0 {
		errs = append(errs, errors.New("script has no syllables"))
	}
	prevEnd := 0.0
	for i := range s.Syllables {
		syl := &s.Syllables[i]
		syl.Index = i
		if syl.Text == "" {
			errs = append(errs, fmt.Errorf("syllables[%d] has empty text", i))
		}
		if syl.Start < 0 || syl.End < 0 {
			errs = append(errs, fmt.Errorf("syllables[%d] has negative timing", i))
		}
		if syl.End > 0 && syl.End <= syl.Start {
			errs = append(errs, fmt.Errorf("syllables[%d] end %v is not after start %v", i, syl.End, syl.Start))
		}
		if syl.Start > 0 && syl.Start < prevEnd {
			errs = append(errs, fmt.Errorf("syllables[%d] start %v overlaps previous syllable", i, syl.Start))
		}
		if syl.End > 0 {
			prevEnd = syl.End
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// Accents returns the canonical accent sequence of the script.
func (s *Script) Accents() []swara.Accent {
	out := make([]swara.Accent, len(s.Syllables))
	for i, syl := range s.Syllables {
		out[i] = syl.Accent
	}
	return out
}
