// Package importer reads a working set of new facts from a file, ready to be
// reviewed and saved through an edit session.
package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"tableflip.dev/factlog/pkg/fact"
)

// Format names a supported input encoding.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
	JSON Format = "json"
)

var (
	// ErrOverlap indicates two imported facts cover the same time.
	ErrOverlap = errors.New("importer: facts overlap")

	// ErrOpenEnd indicates an ongoing fact that is not the latest one.
	ErrOpenEnd = errors.New("importer: only the final fact may be open")

	// ErrFormat indicates an input encoding that cannot be told or is unknown.
	ErrFormat = errors.New("importer: unknown format")
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// Record is one fact as written in an import file.
type Record struct {
	Start       string   `json:"start" yaml:"start" toml:"start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	End         string   `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Activity    string   `json:"activity" yaml:"activity" toml:"activity" validate:"required,max=256"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty" toml:"category,omitempty" validate:"max=256"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty" validate:"dive,max=64"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
}

type document struct {
	Facts []Record `json:"facts" yaml:"facts" toml:"fact" validate:"dive"`
}

var validate = validator.New()

// FormatOf tells the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, path)
}

// Load reads and parses the file at path.
func Load(path string) ([]*fact.Fact, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("importer: reading %s: %w", path, err)
	}
	facts, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return facts, nil
}

// Parse decodes data and returns new facts in chronological order, with
// strictly decreasing negative pks.
func Parse(data []byte, format Format) ([]*fact.Fact, error) {
	var doc document
	var err error
	switch format {
	case TOML:
		err = toml.Unmarshal(data, &doc)
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&doc); errors.Is(err, io.EOF) {
			err = nil
		}
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("importer: parsing %s: %w", format, err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("importer: invalid record: %w", err)
	}

	facts := make([]*fact.Fact, 0, len(doc.Facts))
	for i, r := range doc.Facts {
		f, err := r.fact()
		if err != nil {
			return nil, fmt.Errorf("importer: record %d: %w", i+1, err)
		}
		facts = append(facts, f)
	}
	slices.SortStableFunc(facts, fact.Compare)
	if err := check(facts); err != nil {
		return nil, err
	}
	for i, f := range facts {
		f.PK = -int64(i + 1)
	}
	return facts, nil
}

func (r Record) fact() (*fact.Fact, error) {
	start, err := fact.ParseTime(r.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	end, err := fact.ParseTime(r.End)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	if !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("ends at %s before it starts at %s", end.Format(timeLayout), start.Format(timeLayout))
	}
	f := fact.New(0, start, end, strings.TrimSpace(r.Activity))
	f.Category = strings.TrimSpace(r.Category)
	f.Tags = NormalizeTags(r.Tags)
	f.Description = r.Description
	return f, nil
}

func check(facts []*fact.Fact) error {
	for i, f := range facts {
		if i == 0 {
			continue
		}
		prev := facts[i-1]
		if prev.End.IsZero() {
			return fmt.Errorf("%w: %s", ErrOpenEnd, prev.Short())
		}
		if f.Start.Before(prev.End.Time) {
			return fmt.Errorf("%w: %s and %s", ErrOverlap, prev.Short(), f.Short())
		}
	}
	return nil
}

// NormalizeTags trims, drops empties and duplicates, and sorts.
func NormalizeTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
