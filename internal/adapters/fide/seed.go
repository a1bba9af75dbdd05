package fide

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/okian/fideboard/internal/domain/model"
	"github.com/okian/fideboard/pkg/logger"
	"github.com/okian/fideboard/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Ingester is the part of a store a seed writes to.
type Ingester interface {
	Ingest(ctx context.Context, snap model.Snapshot) (model.IngestResult, error)
	KnownIDs(ctx context.Context) (map[string]struct{}, error)
}

// ListFile is a rating list on disk and the month it covers.
type ListFile struct {
	Path string
	Date time.Time
}

// FindLists returns the standard list files in dir, oldest first.
// Files with other names are ignored.
func FindLists(dir string) ([]ListFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []ListFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		d, err := DateFromFileName(e.Name())
		if err != nil {
			continue
		}
		out = append(out, ListFile{Path: filepath.Join(dir, e.Name()), Date: d})
	}
	slices.SortFunc(out, func(a, b ListFile) int { return a.Date.Compare(b.Date) })
	return out, nil
}

// FileReport is the outcome of seeding one file.
type FileReport struct {
	ListFile
	Summary ParseSummary
	Result  model.IngestResult
}

// Seeder loads rating list files into a store.
type Seeder struct {
	store     Ingester
	minRating int
	workers   int
	source    string
	logger    logger.Logger
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithMinRating sets the rating new players need.
func WithMinRating(r int) SeederOption {
	return func(s *Seeder) {
		if r > 0 {
			s.minRating = r
		}
	}
}

// WithWorkers bounds how many files are parsed at once.
func WithWorkers(n int) SeederOption {
	return func(s *Seeder) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSource sets the data source recorded with the ratings.
func WithSource(src string) SeederOption {
	return func(s *Seeder) {
		if src != "" {
			s.source = src
		}
	}
}

// WithSeedLogger sets the logger.
func WithSeedLogger(l logger.Logger) SeederOption {
	return func(s *Seeder) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSeeder returns a seeder writing to store.
func NewSeeder(store Ingester, opts ...SeederOption) *Seeder {
	s := &Seeder{
		store:     store,
		minRating: DefaultMinRating,
		workers:   runtime.NumCPU(),
		source:    model.SourceHistorical,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed parses files concurrently and ingests them oldest first.
//
// A player qualifies by reaching the minimum rating in any of the files or by
// already being stored; qualifying players are kept in every list they appear
// in, so their deltas have history even from months they were rated lower.
func (s *Seeder) Seed(ctx context.Context, files []ListFile) ([]FileReport, error) {
	files = slices.Clone(files)
	slices.SortFunc(files, func(a, b ListFile) int { return a.Date.Compare(b.Date) })

	known, err := s.store.KnownIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load known players: %w", err)
	}

	// Pass 1: who qualifies anywhere.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, f := range files {
		g.Go(func() error {
			ids, err := qualifyingFile(gctx, f.Path, s.minRating)
			if err != nil {
				return err
			}
			mu.Lock()
			for id := range ids {
				known[id] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Pass 2: full parse against the merged known set.
	snaps := make([]model.Snapshot, len(files))
	reports := make([]FileReport, len(files))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range files {
		g.Go(func() error {
			entries, sum, err := parseFile(gctx, f.Path, ParseOptions{
				MinRating:    s.minRating,
				Known:        known,
				MaxBirthYear: f.Date.Year(),
			})
			if err != nil {
				return err
			}
			snaps[i] = model.Snapshot{Date: f.Date, Source: s.source, Ratings: entries}
			reports[i] = FileReport{ListFile: f, Summary: sum}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, snap := range snaps {
		r := &reports[i]
		metrics.RecordIngestSkipped("invalid", r.Summary.SkippedInvalid)
		metrics.RecordIngestSkipped("low_rating", r.Summary.SkippedLowRating)
		if len(snap.Ratings) == 0 {
			s.logger.Warn(ctx, "rating list has no qualifying players", logger.String("path", r.Path))
			continue
		}
		res, err := s.store.Ingest(ctx, snap)
		if err != nil {
			return reports[:i], fmt.Errorf("ingest %s: %w", filepath.Base(r.Path), err)
		}
		r.Result = res
		s.logger.Info(ctx, "rating list seeded",
			logger.String("month", MonthCode(r.Date)),
			logger.Int("stored", res.Stored),
			logger.Int("duplicates", res.Duplicates),
			logger.Int("new_players", res.Players),
			logger.Int("skipped_low_rating", r.Summary.SkippedLowRating),
			logger.Int("skipped_invalid", r.Summary.SkippedInvalid))
	}
	return reports, nil
}

// SeedDir seeds every standard list file in dir.
func (s *Seeder) SeedDir(ctx context.Context, dir string) ([]FileReport, error) {
	files, err := FindLists(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		s.logger.Warn(ctx, "no rating list files found", logger.String("dir", dir))
		return nil, nil
	}
	return s.Seed(ctx, files)
}

func qualifyingFile(ctx context.Context, path string, minRating int) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return QualifyingIDs(f, minRating)
}

func parseFile(ctx context.Context, path string, opts ParseOptions) ([]model.RatingEntry, ParseSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, ParseSummary{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, ParseSummary{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f, opts)
}
