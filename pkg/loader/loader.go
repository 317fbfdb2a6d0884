// Package loader reads intent definition trees from YAML or JSON files.
//
// A file holds either a list of definitions, a single definition, or a document of the
// form {version: 2, intents: [...], schedules: [...]} where the document version applies
// to every definition that does not set its own. Schedule intervals are durations
// ("30s", "5m") or plain numbers of milliseconds.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
)

// Loader reads definitions from files and directories.
type Loader struct {
	paths  []string
	strict bool
	logger *slog.Logger
}

// Option configures the Loader.
type Option func(*Loader)

// WithStrict turns unknown keys into errors instead of warnings.
func WithStrict(strict bool) Option {
	return func(l *Loader) {
		l.strict = strict
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a loader over files or directories. Directories are walked recursively
// for .yaml, .yml and .json files.
func New(paths []string, opts ...Option) *Loader {
	l := &Loader{
		paths:  paths,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Files returns the intent files the loader will read, in load order.
func (l *Loader) Files() ([]string, error) {
	var files []string
	for _, p := range l.paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isIntentFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", p, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// Definitions reads every file. Failures of individual files are joined together.
func (l *Loader) Definitions() ([]domain.Definition, error) {
	var defs []domain.Definition
	err := l.each(func(file string, raw any) error {
		parsed, unused, err := Decode(raw, l.strict)
		if err != nil {
			return err
		}
		if len(unused) > 0 {
			l.logger.Warn("ignoring unknown intent keys", "file", file, "keys", unused)
		}
		l.logger.Debug("intents loaded", "file", file, "definitions", len(parsed))
		defs = append(defs, parsed...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return defs, nil
}

// Schedules reads the schedules of every document file.
// It implements ports.ScheduleSource.
func (l *Loader) Schedules() ([]domain.Schedule, error) {
	var schedules []domain.Schedule
	err := l.each(func(file string, raw any) error {
		parsed, err := DecodeSchedules(raw, l.strict)
		if err != nil {
			return err
		}
		if len(parsed) > 0 {
			l.logger.Debug("schedules loaded", "file", file, "schedules", len(parsed))
		}
		schedules = append(schedules, parsed...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// each parses every file and hands the raw document to fn.
func (l *Loader) each(fn func(file string, raw any) error) error {
	files, err := l.Files()
	if err != nil {
		return err
	}

	var errs []error
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read %s: %w", file, err))
			continue
		}
		raw, err := unmarshal(data, formatOf(file))
		if err == nil {
			err = fn(file, raw)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", file, err))
		}
	}
	return errors.Join(errs...)
}

// Format names an encoding of intent files.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func formatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

func isIntentFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// Parse decodes a document. It returns the definitions and the unknown keys it ignored.
// In strict mode unknown keys are an error.
func Parse(data []byte, format Format, strict bool) ([]domain.Definition, []string, error) {
	raw, err := unmarshal(data, format)
	if err != nil {
		return nil, nil, err
	}
	return Decode(raw, strict)
}

// ParseSchedules decodes the schedules of a document.
func ParseSchedules(data []byte, format Format, strict bool) ([]domain.Schedule, error) {
	raw, err := unmarshal(data, format)
	if err != nil {
		return nil, err
	}
	return DecodeSchedules(raw, strict)
}

func unmarshal(data []byte, format Format) (any, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	}
	return raw, nil
}

var documentKeys = map[string]bool{"version": true, "intents": true, "schedules": true}

// document reports whether v is a {version, intents, schedules} document
// rather than a single definition.
func document(v map[string]any) bool {
	_, intents := v["intents"]
	_, schedules := v["schedules"]
	return intents || schedules
}

// Decode converts a generic document (maps and slices) into definitions.
func Decode(raw any, strict bool) ([]domain.Definition, []string, error) {
	var (
		items   any
		version int
	)

	switch v := raw.(type) {
	case nil:
		return nil, nil, nil
	case []any:
		items = v
	case map[string]any:
		if document(v) {
			items = v["intents"]
			if ver, ok := v["version"]; ok {
				if err := decode(ver, &version, false, nil); err != nil {
					return nil, nil, fmt.Errorf("invalid document version: %w", err)
				}
			}
			for key := range v {
				if !documentKeys[key] && strict {
					return nil, nil, fmt.Errorf("%w: unknown document key %q", domain.ErrInvalidDefinition, key)
				}
			}
		} else {
			items = []any{v}
		}
	default:
		return nil, nil, fmt.Errorf("%w: unexpected document type %T", domain.ErrInvalidDefinition, raw)
	}

	var defs []domain.Definition
	var md mapstructure.Metadata
	if err := decode(items, &defs, strict, &md); err != nil {
		return nil, nil, err
	}

	if version != 0 {
		for i := range defs {
			if defs[i].Version == 0 {
				defs[i].Version = version
			}
		}
	}
	return defs, md.Unused, nil
}

// DecodeSchedules returns the validated schedules of a document.
// Lists and single definitions carry no schedules.
func DecodeSchedules(raw any, strict bool) ([]domain.Schedule, error) {
	v, ok := raw.(map[string]any)
	if !ok || !document(v) || v["schedules"] == nil {
		return nil, nil
	}

	var schedules []domain.Schedule
	if err := decode(v["schedules"], &schedules, strict, nil); err != nil {
		return nil, err
	}
	for i, sched := range schedules {
		if err := sched.Validate(); err != nil {
			return nil, fmt.Errorf("schedule %d: %w", i, err)
		}
		schedules[i] = sched.Normalize()
	}
	return schedules, nil
}

func decode(input, output any, strict bool, md *mapstructure.Metadata) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(policyHook, durationHook),
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		Metadata:         md,
		Result:           output,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidDefinition, err)
	}
	return nil
}

var policyType = reflect.TypeOf(domain.DefaultPolicy(""))

// policyHook accepts a list of policies for "default" and keeps the first one.
func policyHook(from, to reflect.Type, data any) (any, error) {
	if to != policyType || from.Kind() != reflect.Slice {
		return data, nil
	}
	list, ok := data.([]any)
	if !ok || len(list) == 0 {
		return "", nil
	}
	first, ok := list[0].(string)
	if !ok {
		return nil, fmt.Errorf("default policy must be a string, got %T", list[0])
	}
	return first, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// durationHook reads intervals as Go durations ("1m30s") or as milliseconds.
func durationHook(from, to reflect.Type, data any) (any, error) {
	if to != durationType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return time.ParseDuration(strings.TrimSpace(v))
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case uint64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return data, nil
}
