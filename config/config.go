// Package config reads comparison settings from YAML files.
//
// A configuration file looks like:
//
//	format: xml
//	options:
//	  ignore-spaces: "true"
//	  grouping: path
//	skip:
//	  - path: /project/build/**
//	  - content: '^\s*<!--'
//	only:
//	  - kinds: [changed, added]
//	rules:
//	  - path: /a/keep/**
//	    keep: true
//	  - path: /a/**
//	    keep: false
//	jobs: 4
package config

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/filter"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a configuration file fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// File is the decoded form of a configuration file.
type File struct {
	Format  string            `yaml:"format" validate:"omitempty,format"`
	Options map[string]string `yaml:"options" validate:"dive,keys,option,endkeys"`
	Skip    []MatchSpec       `yaml:"skip" validate:"dive"`
	Only    []MatchSpec       `yaml:"only" validate:"dive"`
	Rules   []RuleSpec        `yaml:"rules" validate:"dive"`
	Jobs    int               `yaml:"jobs" validate:"gte=0,lte=256"`
}

// MatchSpec describes a matcher. Every field that is set must match.
type MatchSpec struct {
	Path    string   `yaml:"path" validate:"required_without_all=Content Kinds"`
	Content string   `yaml:"content" validate:"omitempty,regexp"`
	Kinds   []string `yaml:"kinds" validate:"dive,kind"`
}

// RuleSpec is one ordered rule: the first rule whose matcher matches a
// fragment decides whether it is kept.
type RuleSpec struct {
	MatchSpec `yaml:",inline"`
	Keep      bool `yaml:"keep"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration. Unknown keys are errors. An
// empty document is a valid, empty configuration.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	cfg := &File{}
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its field rules.
func (c *File) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("%s: rule '%s'", strings.TrimPrefix(e.Namespace(), "File."), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if v, ok := e.Value().(string); ok && v != "" {
			msg += fmt.Sprintf(", actual: '%s'", v)
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("format", func(fl validator.FieldLevel) bool {
		_, err := anydiff.ParseFormat(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("option", func(fl validator.FieldLevel) bool {
		return slices.Contains(anydiff.OptionNames(), fl.Field().String())
	})
	_ = validate.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		_, err := anydiff.ParseKind(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
		_, err := regexp.Compile(fl.Field().String())
		return err == nil
	})

	return validate
}

// FormatOr returns the configured format, or def when none is set.
func (c *File) FormatOr(def anydiff.Format) (anydiff.Format, error) {
	if c.Format == "" {
		return def, nil
	}
	return anydiff.ParseFormat(c.Format)
}

// Values returns a copy of the configured option values, never nil.
func (c *File) Values() map[string]string {
	values := make(map[string]string, len(c.Options))
	maps.Copy(values, c.Options)
	return values
}

// Filters builds the configured filters: one Skip per skip entry, a single
// Only over all only entries and a FirstMatch over the rules.
func (c *File) Filters() ([]filter.Filter, error) {
	var filters []filter.Filter
	for _, s := range c.Skip {
		m, err := s.Matcher()
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter.Skip(m))
	}

	if len(c.Only) > 0 {
		ms := make([]filter.Matcher, 0, len(c.Only))
		for _, s := range c.Only {
			m, err := s.Matcher()
			if err != nil {
				return nil, err
			}
			ms = append(ms, m)
		}
		filters = append(filters, filter.Only(filter.AnyOf(ms...)))
	}

	if len(c.Rules) > 0 {
		rules := make([]filter.Rule, 0, len(c.Rules))
		for _, r := range c.Rules {
			m, err := r.Matcher()
			if err != nil {
				return nil, err
			}
			rules = append(rules, filter.Rule{Match: m, Keep: r.Keep})
		}
		filters = append(filters, filter.FirstMatch(rules...))
	}
	return filters, nil
}

// Matcher builds the conjunction of the fields that are set.
func (s MatchSpec) Matcher() (filter.Matcher, error) {
	var ms []filter.Matcher
	if s.Path != "" {
		m, err := filter.Path(s.Path)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if s.Content != "" {
		m, err := filter.Content(s.Content)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if len(s.Kinds) > 0 {
		kinds := make([]anydiff.Kind, 0, len(s.Kinds))
		for _, k := range s.Kinds {
			kind, err := anydiff.ParseKind(k)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, kind)
		}
		ms = append(ms, filter.Kinds(kinds...))
	}
	return filter.AllOf(ms...), nil
}
