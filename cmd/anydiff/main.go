package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fwojciec/anydiff"
	"github.com/fwojciec/anydiff/comparison"
	"github.com/fwojciec/anydiff/config"
	"github.com/fwojciec/anydiff/filter"
	"github.com/fwojciec/anydiff/fs"
	"github.com/fwojciec/anydiff/git"
	"github.com/fwojciec/anydiff/gitdiff"
	"github.com/fwojciec/anydiff/jsonl"
	"github.com/fwojciec/anydiff/lipgloss"
	"github.com/rs/zerolog"
)

// ErrDifferences is returned when at least one comparison found differences.
var ErrDifferences = errors.New("differences found")

// ErrUsage is returned for invalid command lines.
var ErrUsage = errors.New("usage: anydiff [flags] LEFT RIGHT | anydiff [flags] -pairs FILE")

// Exit statuses.
const (
	ExitSame  = 0
	ExitDiff  = 1
	ExitError = 2
)

// optionFlags are flags named after comparison options. Only the ones set on
// the command line override the configuration file.
var optionFlags = []string{"ignore-spaces", "normalize", "arrange-attributes", "grouping", "granularity", "token-pattern", "manifest-width"}

// App encapsulates the application logic for testing.
type App struct {
	Args          []string
	Stdout        io.Writer
	Stderr        io.Writer
	DefaultConfig string // Used when -config is not given and the file exists
}

type settings struct {
	format      string
	configPath  string
	skipPaths   stringList
	skipContent stringList
	output      string
	outPath     string
	jobs        int
	logLevel    string
	pairsPath   string
	theme       string
	context     int
	repo        string
	values      map[string]string
	operands    []string
}

type stringList []string

func (l *stringList) String() string { return fmt.Sprint(*l) }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func (a *App) parseFlags() (*settings, error) {
	s := &settings{values: make(map[string]string)}
	flags := flag.NewFlagSet("anydiff", flag.ContinueOnError)
	flags.SetOutput(a.Stderr)

	flags.StringVar(&s.format, "format", "", "input format: plain, html, xml or manifest (default: detect)")
	flags.StringVar(&s.configPath, "config", "", "configuration file")
	flags.Var(&s.skipPaths, "skip-path", "skip fragments under a path glob; [n] is a sibling index (repeatable)")
	flags.Var(&s.skipContent, "skip-content", "skip fragments whose text matches a regexp (repeatable)")
	flags.StringVar(&s.output, "output", "text", "output: text, unified or jsonl")
	flags.StringVar(&s.outPath, "o", "", "write output to file (jsonl appends)")
	flags.IntVar(&s.jobs, "jobs", 0, "concurrent comparisons (default: config or CPU count)")
	flags.StringVar(&s.logLevel, "log-level", "warn", "log level")
	flags.StringVar(&s.pairsPath, "pairs", "", "file listing LEFT RIGHT pairs, one per line")
	flags.StringVar(&s.theme, "theme", "dark", "text output theme: dark or light")
	flags.IntVar(&s.context, "context", gitdiff.DefaultContext, "unchanged lines shown around differences")
	flags.StringVar(&s.repo, "repo", ".", "repository for git:REV:PATH operands")

	flags.Bool("ignore-spaces", false, "ignore white space")
	flags.Bool("normalize", false, "canonicalize markup and manifests (default depends on format)")
	flags.Bool("arrange-attributes", false, "sort markup attributes (default depends on format)")
	flags.String("grouping", "element", "block grouping: element or path")
	flags.String("granularity", "word", "change marks: word, char or syntax")
	flags.String("token-pattern", "", "regexp of word tokens")
	flags.Int("manifest-width", anydiff.DefaultManifestWidth, "manifest line width")

	if err := flags.Parse(a.Args); err != nil {
		return nil, err
	}
	flags.Visit(func(f *flag.Flag) {
		for _, name := range optionFlags {
			if f.Name == name {
				s.values[name] = f.Value.String()
			}
		}
	})
	s.operands = flags.Args()
	return s, nil
}

// Run compares the requested pairs and writes the report. It returns
// ErrDifferences when any pair differs.
func (a *App) Run(ctx context.Context) error {
	s, err := a.parseFlags()
	if err != nil {
		return err
	}

	switch s.output {
	case "text", "unified", "jsonl":
	default:
		return fmt.Errorf("unknown output %q: want text, unified or jsonl", s.output)
	}

	level, err := zerolog.ParseLevel(s.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", s.logLevel, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        a.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}).Level(level).With().Timestamp().Logger()

	cfg, err := a.loadConfig(s.configPath)
	if err != nil {
		return err
	}

	format, err := cfg.FormatOr(anydiff.FormatAuto)
	if err != nil {
		return err
	}
	if s.format != "" {
		if format, err = anydiff.ParseFormat(s.format); err != nil {
			return err
		}
	}

	values := cfg.Values()
	for name, v := range s.values {
		values[name] = v
	}

	filters, err := cfg.Filters()
	if err != nil {
		return err
	}
	for _, p := range s.skipPaths {
		m, err := filter.Path(p)
		if err != nil {
			return err
		}
		filters = append(filters, filter.Skip(m))
	}
	for _, p := range s.skipContent {
		m, err := filter.Content(p)
		if err != nil {
			return err
		}
		filters = append(filters, filter.Skip(m))
	}

	pairs, err := a.pairs(s)
	if err != nil {
		return err
	}

	jobs := s.jobs
	if jobs == 0 {
		jobs = cfg.Jobs
	}
	if jobs == 0 {
		jobs = runtime.NumCPU()
	}

	detector := fs.NewDetector()
	src := &sourceMux{
		files:  fs.NewLoader(detector),
		git:    git.NewSource(s.repo, detector),
		format: format,
	}
	task := comparison.NewTask(comparison.WithLogger(logger), comparison.WithDetector(detector))
	results := task.Batch(ctx, src, pairs, comparison.Config{Values: values, Filters: filters}, jobs)

	if err := a.write(s, results); err != nil {
		return err
	}

	failed, differ := 0, false
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case !r.Diff.Empty():
			differ = true
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d comparison(s) failed", failed, len(results))
	}
	if differ {
		return ErrDifferences
	}
	return nil
}

func (a *App) loadConfig(path string) (*config.File, error) {
	if path == "" && a.DefaultConfig != "" {
		if _, err := os.Stat(a.DefaultConfig); err == nil {
			path = a.DefaultConfig
		}
	}
	if path == "" {
		return &config.File{}, nil
	}
	return config.Load(path)
}

func (a *App) pairs(s *settings) ([]comparison.Pair, error) {
	if s.pairsPath == "" {
		if len(s.operands) != 2 {
			return nil, ErrUsage
		}
		return []comparison.Pair{{Left: s.operands[0], Right: s.operands[1]}}, nil
	}
	if len(s.operands) != 0 {
		return nil, ErrUsage
	}
	f, err := os.Open(s.pairsPath)
	if err != nil {
		return nil, fmt.Errorf("opening pairs: %w", err)
	}
	defer f.Close()
	return readPairs(f)
}

func (a *App) write(s *settings, results []comparison.Result) error {
	if s.output == "jsonl" {
		records := make([]jsonl.Record, len(results))
		for i, r := range results {
			records[i] = jsonl.NewRecord(r.Pair.Left, r.Pair.Right, r.Diff, r.Err)
		}
		saver := jsonl.NewSaver()
		if s.outPath != "" {
			return saver.Save(s.outPath, records...)
		}
		return saver.Write(a.Stdout, records...)
	}

	if s.outPath == "" {
		return a.render(a.Stdout, s, results)
	}
	var buf bytes.Buffer
	if err := a.render(&buf, s, results); err != nil {
		return err
	}
	if err := os.WriteFile(s.outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func (a *App) render(out io.Writer, s *settings, results []comparison.Result) error {
	switch s.output {
	case "unified":
		formatter := gitdiff.NewFormatter(s.context)
		for _, r := range results {
			if r.Err != nil {
				continue
			}
			left, right := "a/"+r.Pair.Left, "b/"+r.Pair.Right
			if r.LeftMissing {
				left = gitdiff.DevNull
			}
			if r.RightMissing {
				right = gitdiff.DevNull
			}
			if err := formatter.Format(out, left, right, r.Diff); err != nil {
				return err
			}
		}
		return nil
	case "text":
		theme, err := lipgloss.ThemeByName(s.theme)
		if err != nil {
			return err
		}
		r := lipgloss.NewRenderer(out, theme, lipgloss.WithContext(s.context))
		for _, res := range results {
			if res.Err != nil {
				err = r.RenderError(res.Pair.Left, res.Pair.Right, res.Err)
			} else {
				err = r.Render(res.Pair.Left, res.Pair.Right, res.Diff)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ExitCode maps the result of Run to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSame
	case errors.Is(err, ErrDifferences):
		return ExitDiff
	}
	return ExitError
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := &App{
		Args:          os.Args[1:],
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		DefaultConfig: fs.DefaultConfigPath(),
	}

	err := app.Run(ctx)
	if err != nil && !errors.Is(err, ErrDifferences) && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
	}
	cancel()
	os.Exit(ExitCode(err))
}
