package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fideboard/internal/domain/model"
	"github.com/okian/fideboard/internal/domain/types"
	"github.com/okian/fideboard/pkg/metrics"
)

// In-memory Store.
//
// Every ingest rebuilds an immutable view of the latest list: ranks, deltas
// and one treap per (column, direction). Readers load the view through an
// atomic pointer and never take the write lock.

type player struct {
	name      string
	birthYear *int
}

type listEntry struct {
	rating     int
	federation string
}

type ratingList struct {
	source  string
	entries map[string]listEntry
}

type indexKey struct {
	field types.SortField
	dir   types.SortDirection
}

// view is an immutable picture of the latest list.
type view struct {
	date    time.Time
	byID    map[string]*row
	total   int
	indexes map[indexKey]*node
}

// TreapStore is the in-memory Store.
type TreapStore struct {
	mu      sync.Mutex
	players map[string]player
	lists   map[time.Time]*ratingList

	view atomic.Pointer[view]

	metricsUpdateInterval time.Duration
	wg                    sync.WaitGroup
	stopChan              chan struct{}
	closed                atomic.Bool
}

// NewTreapStore constructs an empty in-memory store and starts its metrics updater.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		players:               make(map[string]player),
		lists:                 make(map[time.Time]*ratingList),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the metrics updater.
func (s *TreapStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.stopChan)
	s.wg.Wait()
	return nil
}

// Ingest stores a monthly list and rebuilds the view.
func (s *TreapStore) Ingest(ctx context.Context, snap model.Snapshot) (model.IngestResult, error) {
	if s.closed.Load() {
		return model.IngestResult{}, ErrClosed
	}
	if len(snap.Ratings) == 0 {
		return model.IngestResult{}, ErrEmptySnapshot
	}
	if err := ctx.Err(); err != nil {
		return model.IngestResult{}, err
	}

	date := model.Month(snap.Date)
	res := model.IngestResult{Date: date}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[date]
	if !ok {
		list = &ratingList{source: snap.Source, entries: make(map[string]listEntry, len(snap.Ratings))}
		s.lists[date] = list
	}
	for _, e := range snap.Ratings {
		p, known := s.players[e.ID]
		p.name = e.Name
		if e.BirthYear != nil {
			p.birthYear = e.BirthYear
		}
		s.players[e.ID] = p
		if !known {
			res.Players++
		}

		if _, dup := list.entries[e.ID]; dup {
			res.Duplicates++
			continue
		}
		list.entries[e.ID] = listEntry{rating: e.Rating, federation: e.Federation}
		res.Stored++
	}

	s.rebuild()

	metrics.RecordSnapshotIngested(time.Now().Unix())
	metrics.RecordRatingsIngested(snap.Source, res.Stored)
	metrics.RecordIngestSkipped("duplicate", res.Duplicates)
	return res, nil
}

// rebuild publishes a new view of the latest list. Caller holds mu.
func (s *TreapStore) rebuild() {
	start := time.Now()

	var latest time.Time
	for d := range s.lists {
		if d.After(latest) {
			latest = d
		}
	}
	list := s.lists[latest]
	prev := s.lists[monthAgo(latest)]
	old := s.lists[yearAgo(latest)]

	rows := make([]*row, 0, len(list.entries))
	for id, e := range list.entries {
		p := s.players[id]
		r := &row{
			id:         id,
			name:       p.name,
			federation: e.federation,
			rating:     e.rating,
			birthYear:  p.birthYear,
		}
		if prev != nil {
			pe, ok := prev.entries[id]
			r.deltaMonth = delta(e.rating, pe.rating, ok)
		}
		if old != nil {
			oe, ok := old.entries[id]
			r.deltaYear = delta(e.rating, oe.rating, ok)
		}
		rows = append(rows, r)
	}

	ranked := make([]*row, 0, len(rows))
	collectAll(build(rows, byRating), &ranked)
	byID := make(map[string]*row, len(ranked))
	for i, r := range ranked {
		r.rank = i + 1
		byID[r.id] = r
	}

	v := &view{
		date:    latest,
		byID:    byID,
		total:   len(ranked),
		indexes: make(map[indexKey]*node, 2*len(types.SortFields)),
	}
	for _, f := range types.SortFields {
		for _, d := range []types.SortDirection{types.Asc, types.Desc} {
			v.indexes[indexKey{f, d}] = build(ranked, orderFor(f, d))
		}
	}
	s.view.Store(v)

	metrics.RecordIndexRebuild(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateRankedPlayers(v.total)
	metrics.UpdateRatingLists(len(s.lists))
}

// Rankings returns one page of the latest list in O(log n + page size).
func (s *TreapStore) Rankings(_ context.Context, q types.Query) (types.Page, error) {
	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency(KindMemory, float64(time.Since(start).Microseconds())/1000)
	}()

	if err := q.Validate(); err != nil {
		metrics.RecordQueryError(KindMemory, "invalid_query")
		return types.Page{}, err
	}
	metrics.RecordQuery(KindMemory, string(q.Sort), string(q.Order))

	v := s.view.Load()
	if v == nil {
		return types.Page{Records: []types.Record{}, Pagination: types.NewPagination(q.Page, q.PageSize, 0)}, nil
	}

	p := types.NewPagination(q.Page, q.PageSize, v.total)
	root, ok := v.indexes[indexKey{q.Sort, q.Order}]
	if !ok {
		return types.Page{}, fmt.Errorf("%w: no index for %s %s", types.ErrInvalidQuery, q.Sort, q.Order)
	}

	out := make([]*row, 0, q.PageSize)
	collectRange(root, p.Offset(), p.PageSize, &out)

	recs := make([]types.Record, len(out))
	for i, r := range out {
		recs[i] = r.record()
	}
	date := v.date
	return types.Page{Records: recs, Pagination: p, LastUpdated: &date}, nil
}

// Player returns a player's row in the latest list.
func (s *TreapStore) Player(_ context.Context, id string) (types.Record, error) {
	v := s.view.Load()
	if v == nil {
		return types.Record{}, ErrNotFound
	}
	r, ok := v.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Record{}, ErrNotFound
	}
	return r.record(), nil
}

// KnownIDs returns the ids of every stored player.
func (s *TreapStore) KnownIDs(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[string]struct{}, len(s.players))
	for id := range s.players {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Stats summarises the stored lists.
func (s *TreapStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	st := Stats{Players: len(s.players), Lists: len(s.lists)}
	s.mu.Unlock()

	if v := s.view.Load(); v != nil {
		st.RankedPlayers = v.total
		d := v.date
		st.LatestList = &d
	}
	return st, nil
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				st, _ := s.Stats(ctx)
				metrics.UpdateRankedPlayers(st.RankedPlayers)
				metrics.UpdateRatingLists(st.Lists)
			}
		}
	}()
}
