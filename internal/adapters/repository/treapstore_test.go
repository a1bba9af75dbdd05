package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/okian/fideboard/internal/domain/model"
	"github.com/okian/fideboard/internal/domain/types"
)

func TestCollectRange(t *testing.T) {
	rows := make([]*row, 0, 500)
	for i := 0; i < 500; i++ {
		rows = append(rows, &row{id: fmt.Sprintf("%04d", i), rank: i + 1, rating: 3000 - i})
	}
	rand.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	root := build(rows, orderFor(types.SortRank, types.Asc))

	if nsize(root) != 500 {
		t.Fatalf("expected size 500, got %d", nsize(root))
	}

	var all []*row
	collectAll(root, &all)
	for i, r := range all {
		if r.rank != i+1 {
			t.Fatalf("in-order position %d holds rank %d", i, r.rank)
		}
	}

	for _, tc := range []struct{ skip, limit, want int }{
		{0, 25, 25},
		{25, 25, 25},
		{475, 25, 25},
		{490, 25, 10},
		{500, 25, 0},
		{137, 1, 1},
	} {
		var out []*row
		collectRange(root, tc.skip, tc.limit, &out)
		if len(out) != tc.want {
			t.Errorf("skip %d limit %d: expected %d rows, got %d", tc.skip, tc.limit, tc.want, len(out))
			continue
		}
		for i, r := range out {
			if r.rank != tc.skip+i+1 {
				t.Errorf("skip %d: row %d has rank %d", tc.skip, i, r.rank)
			}
		}
	}
}

func TestTreapStore_RanksTieBreakByID(t *testing.T) {
	ctx := context.Background()
	s := NewTreapStore(ctx)
	defer func() { _ = s.Close() }()

	seed(t, s, []model.Snapshot{{Date: month(2025, time.October), Source: model.SourceAPI, Ratings: []model.RatingEntry{
		entry("b", 2700), entry("a", 2700), entry("c", 2750),
	}}})

	page, err := s.Rankings(ctx, types.DefaultQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ids(page.Records); got != "cab" {
		t.Errorf("expected rating desc then id asc (cab), got %s", got)
	}
}

func TestTreapStore_OlderListDoesNotMoveLatest(t *testing.T) {
	ctx := context.Background()
	s := NewTreapStore(ctx)
	defer func() { _ = s.Close() }()

	lists := fixtureLists()
	// newest first: the view must still show October 2025
	seed(t, s, []model.Snapshot{lists[2], lists[0], lists[1]})

	rec, err := s.Player(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deref(rec.DeltaMonth) != "10" || deref(rec.DeltaYear) != "-10" {
		t.Errorf("deltas must follow late-arriving lists, got %s %s", deref(rec.DeltaMonth), deref(rec.DeltaYear))
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Lists != 3 || st.LatestList == nil || !st.LatestList.Equal(month(2025, time.October)) {
		t.Errorf("expected 3 lists with October 2025 latest, got %+v", st)
	}
}

func TestTreapStore_ConcurrentReadsDuringIngest(t *testing.T) {
	ctx := context.Background()
	s := NewTreapStore(ctx)
	defer func() { _ = s.Close() }()
	seed(t, s, fixtureLists())

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				page, err := s.Rankings(ctx, types.Query{Page: 1, PageSize: 2, Sort: types.SortDeltaYear, Order: types.Desc})
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if page.Pagination.TotalCount < 4 || len(page.Records) != 2 {
					t.Errorf("torn page %+v", page.Pagination)
					return
				}
			}
		}()
	}

	for m := 1; m <= 5; m++ {
		snap := model.Snapshot{Date: month(2025, time.October).AddDate(0, m, 0), Source: model.SourceAPI}
		for i := 0; i < 4+m; i++ {
			snap.Ratings = append(snap.Ratings, entry(fmt.Sprint(i+1), 2700+i))
		}
		if _, err := s.Ingest(ctx, snap); err != nil {
			t.Fatalf("ingest: %v", err)
		}
	}
	wg.Wait()
}

func TestTreapStore_Closed(t *testing.T) {
	ctx := context.Background()
	s := NewTreapStore(ctx, WithMetricsUpdateInterval(10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := s.Ingest(ctx, fixtureLists()[0]); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func BenchmarkTreapStore_Rankings(b *testing.B) {
	ctx := context.Background()
	s := NewTreapStore(ctx)
	defer func() { _ = s.Close() }()

	for m := 0; m < 13; m++ {
		snap := model.Snapshot{Date: month(2024, time.October).AddDate(0, m, 0), Source: model.SourceHistorical}
		for i := 0; i < 20_000; i++ {
			snap.Ratings = append(snap.Ratings, entry(fmt.Sprintf("%07d", i), 2000+rand.Intn(850)))
		}
		if _, err := s.Ingest(ctx, snap); err != nil {
			b.Fatalf("ingest: %v", err)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			field := types.SortFields[i%len(types.SortFields)]
			q := types.Query{Page: 1 + i%800, PageSize: 25, Sort: field, Order: types.DefaultDirection(field)}
			_, _ = s.Rankings(ctx, q)
			i++
		}
	})
}
