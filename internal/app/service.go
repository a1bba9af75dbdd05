// Package service wires the rating store, the list ingest and the queries the
// HTTP API serves.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/fideboard/internal/adapters/fide"
	repository "github.com/okian/fideboard/internal/adapters/repository"
	"github.com/okian/fideboard/internal/domain/model"
	"github.com/okian/fideboard/internal/domain/types"
	"github.com/okian/fideboard/pkg/logger"
)

// Service implements the API dependencies for the rankings server.
type Service struct {
	mu sync.RWMutex

	store repository.Store

	// Configuration
	storeKind       string
	sqlitePath      string
	seedDir         string
	minRating       int
	defaultPageSize int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore selects the store kind, repository.KindMemory or repository.KindSQLite.
func WithStore(kind string) Option {
	return func(s *Service) {
		if kind != "" {
			s.storeKind = kind
		}
	}
}

// WithSQLitePath sets the database file used by the sqlite store.
func WithSQLitePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.sqlitePath = path
		}
	}
}

// WithSeedDir makes Start load every rating list file found in dir.
func WithSeedDir(dir string) Option {
	return func(s *Service) {
		s.seedDir = dir
	}
}

// WithMinRating sets the rating a new player needs to be stored.
func WithMinRating(r int) Option {
	return func(s *Service) {
		if r > 0 {
			s.minRating = r
		}
	}
}

// WithDefaultPageSize sets the page size used when a request names none.
func WithDefaultPageSize(n int) Option {
	return func(s *Service) {
		if n >= 1 && n <= types.MaxPageSize {
			s.defaultPageSize = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeKind:       repository.KindMemory,
		sqlitePath:      "data/fideboard.db",
		minRating:       fide.DefaultMinRating,
		defaultPageSize: types.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and seeds it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting rankings service", logger.String("store", s.storeKind))

	store, err := s.openStore(ctx)
	if err != nil {
		return err
	}

	if s.seedDir != "" {
		seeder := fide.NewSeeder(store,
			fide.WithMinRating(s.minRating),
			fide.WithSeedLogger(s.logger.Named("seed")),
		)
		start := time.Now()
		reports, err := seeder.SeedDir(ctx, s.seedDir)
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("seed %s: %w", s.seedDir, err)
		}
		s.logger.Info(ctx, "seed finished",
			logger.Int("files", len(reports)),
			logger.Duration("took", time.Since(start)))
	}

	s.store = store
	s.started = true

	st, err := store.Stats(ctx)
	if err == nil {
		s.logger.Info(ctx, "rankings service started",
			logger.Int("players", st.Players),
			logger.Int("ranked", st.RankedPlayers),
			logger.Int("lists", st.Lists))
	}
	return nil
}

func (s *Service) openStore(ctx context.Context) (repository.Store, error) {
	switch s.storeKind {
	case repository.KindMemory:
		return repository.NewTreapStore(ctx), nil
	case repository.KindSQLite:
		store, err := repository.OpenSQLite(ctx, s.sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, s.storeKind)
	}
}

// Stop closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(context.Background(), "close store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(context.Background(), "rankings service stopped")
}

func (s *Service) current() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// DefaultPageSize is the page size used when a request names none.
func (s *Service) DefaultPageSize() int { return s.defaultPageSize }

// Rankings returns one page of the latest list.
func (s *Service) Rankings(ctx context.Context, q types.Query) (types.Page, error) {
	store, err := s.current()
	if err != nil {
		return types.Page{}, err
	}
	return store.Rankings(ctx, q)
}

// Player returns a player's current row.
func (s *Service) Player(ctx context.Context, id string) (types.Record, error) {
	store, err := s.current()
	if err != nil {
		return types.Record{}, err
	}
	return store.Player(ctx, id)
}

// IngestReport is the outcome of ingesting one uploaded list.
type IngestReport struct {
	model.IngestResult
	Parsed fide.ParseSummary `json:"parsed"`
}

// IngestList parses a fixed-width rating list for the month of date and stores it.
// Players already stored are kept at any rating; others need the minimum rating.
func (s *Service) IngestList(ctx context.Context, date time.Time, r io.Reader) (IngestReport, error) {
	store, err := s.current()
	if err != nil {
		return IngestReport{}, err
	}
	known, err := store.KnownIDs(ctx)
	if err != nil {
		return IngestReport{}, fmt.Errorf("load known players: %w", err)
	}
	date = model.Month(date)
	entries, sum, err := fide.Parse(r, fide.ParseOptions{
		MinRating:    s.minRating,
		Known:        known,
		MaxBirthYear: date.Year(),
	})
	if err != nil {
		return IngestReport{Parsed: sum}, err
	}
	if len(entries) == 0 {
		return IngestReport{Parsed: sum}, ErrNoRatings
	}
	res, err := store.Ingest(ctx, model.Snapshot{Date: date, Source: model.SourceAPI, Ratings: entries})
	if err != nil {
		return IngestReport{Parsed: sum}, err
	}
	s.logger.Info(ctx, "rating list uploaded",
		logger.String("month", fide.MonthCode(date)),
		logger.Int("stored", res.Stored),
		logger.Int("duplicates", res.Duplicates),
		logger.Int("new_players", res.Players))
	return IngestReport{IngestResult: res, Parsed: sum}, nil
}

// Stats is the service state reported by /stats.
type Stats struct {
	Started bool   `json:"started"`
	Store   string `json:"store"`
	repository.Stats
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	out := Stats{Store: s.storeKind}
	store, err := s.current()
	if err != nil {
		return out, nil
	}
	out.Started = true
	st, err := store.Stats(ctx)
	if err != nil {
		return out, err
	}
	out.Stats = st
	return out, nil
}
