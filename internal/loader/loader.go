// Package loader fetches transaction CSV exports from an object store,
// decodes their legacy Shift-JIS encoding, and parses them into raw
// tables tagged with their source filename.
//
// Failures are per-file at this boundary: an object that cannot be
// fetched or decoded is retried with backoff, then skipped and logged.
// Everything past the loader treats the load as all-or-nothing instead.
package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"kakeibo/internal/core"
)

// Loader reads every CSV under a prefix into one combined raw result.
type Loader struct {
	store           ObjectStore
	prefix          string
	concurrency     int
	maxRetries      uint64
	statementOffset int
}

// Option configures a Loader.
type Option func(*Loader)

// WithConcurrency bounds the number of objects fetched in parallel.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithMaxRetries sets how many times a failing object read is retried
// before the file is skipped.
func WithMaxRetries(n uint64) Option {
	return func(l *Loader) {
		l.maxRetries = n
	}
}

// WithStatementOffset sets how many days past a statement's start date
// its filing month lies. See StatementMonth.
func WithStatementOffset(days int) Option {
	return func(l *Loader) {
		if days > 0 {
			l.statementOffset = days
		}
	}
}

// New creates a Loader over the given store and key prefix.
func New(store ObjectStore, prefix string, opts ...Option) *Loader {
	l := &Loader{
		store:           store,
		prefix:          prefix,
		concurrency:     4,
		maxRetries:      3,
		statementOffset: 32,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Result is one combined load: the successfully parsed files plus the
// per-file errors that were recovered by skipping. FileCount reflects
// only files that were actually read, which is what the UI reports.
type Result struct {
	Files   []core.SourceFile
	Skipped []*core.SourceReadError
}

// FileCount returns the number of successfully read files.
func (r Result) FileCount() int {
	return len(r.Files)
}

// Months returns the distinct statement months of the loaded files, in
// chronological order. Files named outside the statement convention
// carry no month and are not represented.
func (r Result) Months() []core.Month {
	seen := make(map[core.Month]struct{})
	var out []core.Month
	for _, f := range r.Files {
		m := f.StatementMonth
		if m.IsZero() {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Load lists and fetches every CSV under the prefix. Objects are fetched
// concurrently but the result is ordered by key, so two loads of the same
// data are identical. Returns *core.EmptyResultError when no objects match.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	keys, err := l.store.List(ctx, l.prefix)
	if err != nil {
		return Result{}, fmt.Errorf("list objects under %q: %w", l.prefix, err)
	}
	if len(keys) == 0 {
		return Result{}, &core.EmptyResultError{Reason: fmt.Sprintf("no CSV files under %q", l.prefix)}
	}
	sort.Strings(keys)

	files := make([]core.SourceFile, len(keys))
	ok := make([]bool, len(keys))
	var mu sync.Mutex
	var skipped []*core.SourceReadError

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			f, err := l.fetchOne(gctx, key)
			if err != nil {
				// Context errors abort the whole load; anything else is
				// a per-file skip.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				srcErr := &core.SourceReadError{Key: key, Err: err}
				slog.WarnContext(gctx, "Skipping unreadable source file",
					"key", key, "error", err)
				mu.Lock()
				skipped = append(skipped, srcErr)
				mu.Unlock()
				return nil
			}
			files[i] = f
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Result{Skipped: skipped}
	for i, f := range files {
		if ok[i] {
			res.Files = append(res.Files, f)
		}
	}
	if len(res.Files) == 0 {
		return res, &core.EmptyResultError{Reason: "no CSV files were read successfully"}
	}
	slog.InfoContext(ctx, "Loaded source files",
		"prefix", l.prefix, "files", len(res.Files), "skipped", len(res.Skipped))
	return res, nil
}

func (l *Loader) fetchOne(ctx context.Context, key string) (core.SourceFile, error) {
	var data []byte
	op := func() error {
		var err error
		data, err = l.store.Read(ctx, key)
		return err
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), l.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return core.SourceFile{}, err
	}
	f, err := parseCSV(path.Base(key), data)
	if err != nil {
		return core.SourceFile{}, err
	}
	l.fileStatement(ctx, key, &f)
	return f, nil
}

// fileStatement derives the filing month from the statement filename and
// flags objects sitting under the wrong year=/month= prefix.
func (l *Loader) fileStatement(ctx context.Context, key string, f *core.SourceFile) {
	period, err := ParseStatementFilename(key)
	if err != nil {
		slog.WarnContext(ctx, "Source file outside statement naming convention",
			"key", key, "error", err)
		return
	}
	m := period.StatementMonth(l.statementOffset)
	f.StatementMonth = m

	if strings.Contains(key, "year=") {
		if want := StatementKey(l.prefix, m); path.Dir(key) != want {
			slog.WarnContext(ctx, "Statement filed under the wrong month prefix",
				"key", key, "expected_prefix", want)
		}
	}
}

func newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = 10 * time.Second
	return bo
}

// parseCSV decodes Shift-JIS bytes and splits them into header + rows.
func parseCSV(name string, data []byte) (core.SourceFile, error) {
	decoded := transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
	r := csv.NewReader(decoded)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return core.SourceFile{}, fmt.Errorf("empty CSV file")
		}
		return core.SourceFile{}, fmt.Errorf("decode CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows, err := r.ReadAll()
	if err != nil {
		return core.SourceFile{}, fmt.Errorf("decode CSV rows: %w", err)
	}
	return core.SourceFile{Name: name, Columns: header, Rows: rows}, nil
}
