package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	service "github.com/okian/fideboard/internal/app"
	repository "github.com/okian/fideboard/internal/adapters/repository"
	"github.com/okian/fideboard/pkg/logger"
)

// maxSnapshotBytes bounds an uploaded list; a full FIDE standard list is about 60MB.
const maxSnapshotBytes = 128 << 20

// SnapshotHandler accepts monthly rating lists.
type SnapshotHandler struct {
	deps   SnapshotDependencies
	logger logger.Logger
}

// NewSnapshotHandler creates a new snapshot handler.
func NewSnapshotHandler(deps SnapshotDependencies, l logger.Logger) *SnapshotHandler {
	return &SnapshotHandler{deps: deps, logger: l}
}

// HandlePostSnapshot handles POST /snapshots?date=YYYY-MM-DD with a fixed-width list as the body.
func (h *SnapshotHandler) HandlePostSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_snapshot"

	date, err := time.Parse(time.DateOnly, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			NewKind(op, fmt.Errorf("date must be YYYY-MM-DD: %w", ErrBadRequest)))
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxSnapshotBytes)
	report, err := h.deps.IngestList(r.Context(), date, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", NewKind(op, err))
		case errors.Is(err, service.ErrNoRatings), errors.Is(err, repository.ErrEmptySnapshot):
			writeError(w, http.StatusUnprocessableEntity, "no_ratings", NewKind(op, err))
		default:
			h.logger.Error(r.Context(), "snapshot ingest failed",
				logger.String("op", op),
				logger.String("request_id", RequestIDFrom(r.Context())),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
