package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/fideboard/internal/domain/types"
	"github.com/okian/fideboard/pkg/logger"
)

// RankingsHandler handles ranking page requests.
type RankingsHandler struct {
	deps   RankingsDependencies
	logger logger.Logger
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingsDependencies, l logger.Logger) *RankingsHandler {
	return &RankingsHandler{deps: deps, logger: l}
}

// HandleGetRankings handles GET /rankings?page=&page_size=&sort=&order= requests.
// Missing parameters take their defaults; the order defaults per sort field.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"

	q, err := h.parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, err))
		return
	}
	if err := q.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", NewKind(op, err))
		return
	}

	page, err := h.deps.Rankings(r.Context(), q)
	if err != nil {
		if errors.Is(err, types.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, "invalid_query", NewKind(op, err))
			return
		}
		h.logger.Error(r.Context(), "rankings query failed",
			logger.String("op", op),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if page.Records == nil {
		page.Records = []types.Record{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *RankingsHandler) parseQuery(v url.Values) (types.Query, error) {
	q := types.Query{
		Page:     1,
		PageSize: h.deps.DefaultPageSize(),
		Sort:     types.SortRank,
	}
	var err error
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("page must be an integer: %w", ErrBadRequest)
		}
	}
	if s := v.Get("page_size"); s != "" {
		if q.PageSize, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("page_size must be an integer: %w", ErrBadRequest)
		}
	}
	if s := v.Get("sort"); s != "" {
		q.Sort = types.SortField(s)
	}
	q.Order = types.DefaultDirection(q.Sort)
	if s := v.Get("order"); s != "" {
		q.Order = types.SortDirection(s)
	}
	return q, nil
}
