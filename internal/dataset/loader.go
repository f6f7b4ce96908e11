package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

var (
	// ErrFileNotFound is wrapped by LoadError when the dataset path does not exist.
	ErrFileNotFound = errors.New("dataset file not found")
	// ErrUnreadable is wrapped by LoadError when every parsing strategy failed.
	ErrUnreadable = errors.New("no parsing strategy could read the dataset")
)

// RawTable is what a Strategy extracts before it becomes a Table.
type RawTable struct {
	Header   []string
	Rows     [][]string
	Sheet    string
	Encoding string
}

// Strategy is one way of turning a file into rows.
type Strategy interface {
	Name() string
	Parse(ctx context.Context, path string) (*RawTable, error)
}

// StrategyError records why one strategy failed.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e StrategyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Strategy, e.Err)
}

// LoadError is the hard-stop failure of Load. It carries diagnostics about
// the directory the process was running in.
type LoadError struct {
	Path       string
	Cause      error
	Attempts   []StrategyError
	WorkingDir string
	Listing    []string
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "load %s: %v", e.Path, e.Cause)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; %s", a.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() []error {
	errs := []error{e.Cause}
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Loader reads a dataset through an ordered chain of strategies.
type Loader struct {
	strategies []Strategy
	required   []string
	logger     *slog.Logger
}

// NewLoader returns a Loader. With no strategies it uses DefaultStrategies(required).
func NewLoader(logger *slog.Logger, required []string, strategies ...Strategy) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies(required)
	}
	return &Loader{
		strategies: strategies,
		required:   required,
		logger:     logger.With(slog.String("component", "dataset_loader")),
	}
}

// DefaultStrategies is the fallback chain: first xlsx sheet, xlsx header scan, delimited text.
func DefaultStrategies(required []string) []Strategy {
	return []Strategy{
		XLSXStrategy{},
		XLSXScanStrategy{Required: required},
		DelimitedStrategy{},
	}
}

// Load parses path with the first strategy that succeeds. A parse whose header lacks
// a required column is held back while later strategies get a chance to find one
// that has them all; if none does, the first successful parse is returned and
// Validate reports the missing columns.
func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		loadErr := l.newLoadError(path, ErrFileNotFound, nil)
		if !errors.Is(err, os.ErrNotExist) {
			loadErr.Cause = fmt.Errorf("%w: %v", ErrFileNotFound, err)
		}
		l.logger.ErrorContext(ctx, "dataset file not found",
			slog.String("path", path),
			slog.String("working_dir", loadErr.WorkingDir))
		return nil, loadErr
	}

	var (
		attempts  []StrategyError
		fallback  *RawTable
		fallbackS string
	)

	for _, s := range l.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := s.Parse(ctx, path)
		if err != nil {
			l.logger.WarnContext(ctx, "parsing strategy failed",
				slog.String("strategy", s.Name()),
				slog.String("error", err.Error()))
			attempts = append(attempts, StrategyError{Strategy: s.Name(), Err: err})
			continue
		}

		if missing := missingColumns(raw.Header, l.required); len(missing) > 0 {
			l.logger.InfoContext(ctx, "parsed table lacks required columns, trying next strategy",
				slog.String("strategy", s.Name()),
				slog.Any("missing", missing))
			if fallback == nil {
				fallback, fallbackS = raw, s.Name()
			}
			continue
		}

		return l.build(ctx, path, s.Name(), raw, start)
	}

	if fallback != nil {
		return l.build(ctx, path, fallbackS, fallback, start)
	}

	loadErr := l.newLoadError(path, ErrUnreadable, attempts)
	l.logger.ErrorContext(ctx, "all parsing strategies failed",
		slog.String("path", path),
		slog.Int("attempts", len(attempts)))
	return nil, loadErr
}

func (l *Loader) build(ctx context.Context, path, strategy string, raw *RawTable, start time.Time) (*Table, error) {
	table, err := NewTable(raw.Header, raw.Rows)
	if err != nil {
		return nil, l.newLoadError(path, ErrUnreadable, []StrategyError{{Strategy: strategy, Err: err}})
	}
	table.Source = Source{Path: path, Strategy: strategy, Sheet: raw.Sheet}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.String("strategy", strategy),
		slog.String("sheet", raw.Sheet),
		slog.String("encoding", raw.Encoding),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns())),
		slog.Duration("duration", time.Since(start)))
	return table, nil
}

func (l *Loader) newLoadError(path string, cause error, attempts []StrategyError) *LoadError {
	wd, listing := Diagnose()
	return &LoadError{
		Path:       path,
		Cause:      cause,
		Attempts:   attempts,
		WorkingDir: wd,
		Listing:    listing,
	}
}

// Diagnose returns the working directory and the names in it, for error reports.
func Diagnose() (string, []string) {
	wd, err := os.Getwd()
	if err != nil {
		wd = fmt.Sprintf("<unknown: %v>", err)
	}
	entries, err := os.ReadDir(".")
	if err != nil {
		return wd, nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return wd, names
}

func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[CleanHeader(h)] = true
	}
	var missing []string
	for _, r := range required {
		if !present[r] {
			missing = append(missing, r)
		}
	}
	return missing
}
