// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	service "github.com/okian/fideboard/internal/app"
	"github.com/okian/fideboard/internal/domain/types"
	"github.com/okian/fideboard/pkg/logger"
	"github.com/okian/fideboard/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RankingsDependencies
	PlayerDependencies
	SnapshotDependencies
	StatsProvider
}

// RankingsDependencies serves ranking pages.
type RankingsDependencies interface {
	Rankings(ctx context.Context, q types.Query) (types.Page, error)
	DefaultPageSize() int
}

// PlayerDependencies looks up single players.
type PlayerDependencies interface {
	Player(ctx context.Context, id string) (types.Record, error)
}

// SnapshotDependencies ingests uploaded rating lists.
type SnapshotDependencies interface {
	IngestList(ctx context.Context, date time.Time, r io.Reader) (service.IngestReport, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	rankingsHandler *RankingsHandler
	playerHandler   *PlayerHandler
	snapshotHandler *SnapshotHandler
	logger          logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.rankingsHandler = NewRankingsHandler(deps, s.logger)
	s.playerHandler = NewPlayerHandler(deps)
	s.snapshotHandler = NewSnapshotHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("GET /players/{fide_id}", MetricsMiddleware(s.playerHandler.HandleGetPlayer, "players"))
	mux.HandleFunc("POST /snapshots", MetricsMiddleware(s.snapshotHandler.HandlePostSnapshot, "snapshots"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with {code,message}. Errors tagged with an op are counted
// per operation.
func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
		if op := Op(err); op != "" {
			metrics.RecordErrorByComponent(op, code)
		}
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
