package anydiff

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Grouping selects how the assembler merges adjacent fragments into blocks.
type Grouping int

// Grouping policies.
const (
	GroupByElement Grouping = iota // Same nearest element, attributes fold into it
	GroupByPath                    // Identical paths only
)

func (g Grouping) String() string {
	if g == GroupByPath {
		return "path"
	}
	return "element"
}

// Granularity selects the unit of sub-line marks.
type Granularity int

// Mark granularities.
const (
	GranularityWord Granularity = iota
	GranularityChar
	GranularitySyntax
)

func (g Granularity) String() string {
	switch g {
	case GranularityChar:
		return "char"
	case GranularitySyntax:
		return "syntax"
	}
	return "word"
}

// DefaultManifestWidth is the line length of a wrapped manifest header.
const DefaultManifestWidth = 72

// Options configures one comparison. It is a value type; the With methods
// return modified copies.
type Options struct {
	IgnoreSpaces      bool        // Whitespace-only differences are unchanged
	Normalize         bool        // Canonicalize structure; false compares raw lines
	ArrangeAttributes bool        // Order markup attributes deterministically
	Grouping          Grouping    // Block grouping policy
	Granularity       Granularity // Unit of sub-line marks
	TokenPattern      string      // Regexp defining word tokens; empty for the built-in scanner
	ManifestWidth     int         // Wrap column for manifest headers; zero means DefaultManifestWidth
}

// DefaultOptions returns the defaults for format f.
func DefaultOptions(f Format) Options {
	o := Options{ManifestWidth: DefaultManifestWidth}
	switch f {
	case FormatHTML, FormatXML:
		o.Normalize = true
		o.ArrangeAttributes = true
	case FormatManifest:
		o.Normalize = true
	}
	return o
}

type option struct {
	name string
	get  func(Options) string
	set  func(*Options, string) error
}

// optionTable enumerates every option settable by name.
var optionTable = []option{
	{
		name: "ignore-spaces",
		get:  func(o Options) string { return strconv.FormatBool(o.IgnoreSpaces) },
		set:  boolSetter(func(o *Options, v bool) { o.IgnoreSpaces = v }),
	},
	{
		name: "normalize",
		get:  func(o Options) string { return strconv.FormatBool(o.Normalize) },
		set:  boolSetter(func(o *Options, v bool) { o.Normalize = v }),
	},
	{
		name: "arrange-attributes",
		get:  func(o Options) string { return strconv.FormatBool(o.ArrangeAttributes) },
		set:  boolSetter(func(o *Options, v bool) { o.ArrangeAttributes = v }),
	},
	{
		name: "grouping",
		get:  func(o Options) string { return o.Grouping.String() },
		set: func(o *Options, v string) error {
			switch strings.ToLower(v) {
			case "element":
				o.Grouping = GroupByElement
			case "path":
				o.Grouping = GroupByPath
			default:
				return fmt.Errorf("grouping must be element or path, got %q", v)
			}
			return nil
		},
	},
	{
		name: "granularity",
		get:  func(o Options) string { return o.Granularity.String() },
		set: func(o *Options, v string) error {
			switch strings.ToLower(v) {
			case "word":
				o.Granularity = GranularityWord
			case "char":
				o.Granularity = GranularityChar
			case "syntax":
				o.Granularity = GranularitySyntax
			default:
				return fmt.Errorf("granularity must be word, char or syntax, got %q", v)
			}
			return nil
		},
	},
	{
		name: "token-pattern",
		get:  func(o Options) string { return o.TokenPattern },
		set: func(o *Options, v string) error {
			if v != "" {
				if _, err := regexp.Compile(v); err != nil {
					return err
				}
			}
			o.TokenPattern = v
			return nil
		},
	},
	{
		name: "manifest-width",
		get:  func(o Options) string { return strconv.Itoa(o.ManifestWidth) },
		set: func(o *Options, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			o.ManifestWidth = n
			return nil
		},
	},
}

func boolSetter(apply func(*Options, bool)) func(*Options, string) error {
	return func(o *Options, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		apply(o, b)
		return nil
	}
}

func lookupOption(name string) (option, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, opt := range optionTable {
		if opt.name == name {
			return opt, true
		}
	}
	return option{}, false
}

// OptionNames returns the names accepted by With, in table order.
func OptionNames() []string {
	names := make([]string, len(optionTable))
	for i, opt := range optionTable {
		names[i] = opt.name
	}
	return names
}

// With returns a copy of o with the named option set from its text form.
func (o Options) With(name, value string) (Options, error) {
	opt, ok := lookupOption(name)
	if !ok {
		return o, fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	if err := opt.set(&o, strings.TrimSpace(value)); err != nil {
		return o, fmt.Errorf("%w: %s: %v", ErrInvalidOption, opt.name, err)
	}
	return o, nil
}

// Get returns the text form of the named option.
func (o Options) Get(name string) (string, error) {
	opt, ok := lookupOption(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOption, name)
	}
	return opt.get(o), nil
}

// Values returns every option in its text form.
func (o Options) Values() map[string]string {
	m := make(map[string]string, len(optionTable))
	for _, opt := range optionTable {
		m[opt.name] = opt.get(o)
	}
	return m
}

// Validate reports option values that are set but unusable.
func (o Options) Validate() error {
	if o.ManifestWidth != 0 && o.ManifestWidth < 10 {
		return fmt.Errorf("%w: manifest-width must be at least 10, got %d", ErrInvalidOption, o.ManifestWidth)
	}
	if o.TokenPattern != "" {
		if _, err := regexp.Compile(o.TokenPattern); err != nil {
			return fmt.Errorf("%w: token-pattern: %v", ErrInvalidOption, err)
		}
	}
	return nil
}

// ParseOptions applies values to base in name order so that errors are
// reported deterministically.
func ParseOptions(base Options, values map[string]string) (Options, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	o := base
	for _, name := range names {
		var err error
		if o, err = o.With(name, values[name]); err != nil {
			return base, err
		}
	}
	return o, o.Validate()
}

// QueryPrefix marks URI query parameters that carry options, as in
// ?anydiff.ignore-spaces=true.
const QueryPrefix = "anydiff."

// ParseQueryOptions applies the prefixed parameters of q to base. Other
// parameters are ignored.
func ParseQueryOptions(base Options, q url.Values) (Options, error) {
	values := make(map[string]string)
	for key, vs := range q {
		name, ok := strings.CutPrefix(key, QueryPrefix)
		if !ok || len(vs) == 0 {
			continue
		}
		values[name] = vs[len(vs)-1]
	}
	return ParseOptions(base, values)
}
