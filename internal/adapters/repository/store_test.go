package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/fideboard/internal/domain/model"
	"github.com/okian/fideboard/internal/domain/types"
)

func month(y int, m time.Month) time.Time { return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC) }

func entry(id string, rating int) model.RatingEntry {
	return model.RatingEntry{ID: id, Name: "Player " + id, Federation: "NOR", Rating: rating}
}

// fixtureLists has a latest list (Oct 2025), the list one month before and the list twelve months before.
//
//	id  latest  month-ago  year-ago   rank  dMonth  dYear
//	1   2830    2820       2840       1     +10     -10
//	2   2800    2800       -          2     0       nil
//	3   2800    -          2750       3     nil     +50
//	4   2790    2795       2790       4     -5      0
func fixtureLists() []model.Snapshot {
	return []model.Snapshot{
		{Date: month(2024, time.October), Source: model.SourceHistorical, Ratings: []model.RatingEntry{
			entry("1", 2840), entry("3", 2750), entry("4", 2790), entry("5", 2700),
		}},
		{Date: month(2025, time.September), Source: model.SourceHistorical, Ratings: []model.RatingEntry{
			entry("1", 2820), entry("2", 2800), entry("4", 2795),
		}},
		{Date: month(2025, time.October), Source: model.SourceAPI, Ratings: []model.RatingEntry{
			entry("4", 2790), entry("3", 2800), entry("2", 2800), entry("1", 2830),
		}},
	}
}

func seed(t *testing.T, s Store, lists []model.Snapshot) {
	t.Helper()
	for _, snap := range lists {
		if _, err := s.Ingest(context.Background(), snap); err != nil {
			t.Fatalf("ingest %s: %v", snap.Date.Format("2006-01"), err)
		}
	}
}

func ids(recs []types.Record) string {
	out := ""
	for _, r := range recs {
		out += r.ID
	}
	return out
}

func deref(p *int) string {
	if p == nil {
		return "nil"
	}
	return fmt.Sprint(*p)
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		s := open(t)
		page, err := s.Rankings(ctx, types.Query{Page: 3, PageSize: 25, Sort: types.SortRank, Order: types.Asc})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Records) != 0 {
			t.Errorf("expected no records, got %d", len(page.Records))
		}
		want := types.Pagination{CurrentPage: 1, PageSize: 25, TotalCount: 0, TotalPages: 0}
		if page.Pagination != want {
			t.Errorf("expected %+v, got %+v", want, page.Pagination)
		}
		if _, err := s.Player(ctx, "1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := s.Ingest(ctx, model.Snapshot{Date: month(2025, time.October)}); !errors.Is(err, ErrEmptySnapshot) {
			t.Errorf("expected ErrEmptySnapshot, got %v", err)
		}
	})

	t.Run("ordering", func(t *testing.T) {
		s := open(t)
		seed(t, s, fixtureLists())

		cases := []struct {
			sort  types.SortField
			order types.SortDirection
			want  string
		}{
			{types.SortRank, types.Asc, "1234"},
			{types.SortRank, types.Desc, "4321"},
			{types.SortDeltaMonth, types.Desc, "1243"},
			{types.SortDeltaMonth, types.Asc, "4213"},
			{types.SortDeltaYear, types.Desc, "3412"},
			{types.SortDeltaYear, types.Asc, "1432"},
		}
		for _, tc := range cases {
			page, err := s.Rankings(ctx, types.Query{Page: 1, PageSize: 10, Sort: tc.sort, Order: tc.order})
			if err != nil {
				t.Fatalf("%s %s: unexpected error: %v", tc.sort, tc.order, err)
			}
			if got := ids(page.Records); got != tc.want {
				t.Errorf("%s %s: expected order %s, got %s", tc.sort, tc.order, tc.want, got)
			}
		}
	})

	t.Run("records", func(t *testing.T) {
		s := open(t)
		seed(t, s, fixtureLists())

		page, err := s.Rankings(ctx, types.DefaultQuery())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := map[string][3]string{
			"1": {"1", "10", "-10"},
			"2": {"2", "0", "nil"},
			"3": {"3", "nil", "50"},
			"4": {"4", "-5", "0"},
		}
		for _, r := range page.Records {
			got := [3]string{fmt.Sprint(r.Rank), deref(r.DeltaMonth), deref(r.DeltaYear)}
			if got != want[r.ID] {
				t.Errorf("player %s: expected rank/dMonth/dYear %v, got %v", r.ID, want[r.ID], got)
			}
		}
		if page.LastUpdated == nil || !page.LastUpdated.Equal(month(2025, time.October)) {
			t.Errorf("expected last updated Oct 2025, got %v", page.LastUpdated)
		}

		rec, err := s.Player(ctx, "3")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Rank != 3 || rec.Rating != 2800 || rec.Name != "Player 3" || rec.DeltaMonth != nil {
			t.Errorf("unexpected player record %+v", rec)
		}
		if _, err := s.Player(ctx, "5"); !errors.Is(err, ErrNotFound) {
			t.Errorf("player absent from the latest list: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		s := open(t)
		seed(t, s, fixtureLists())

		page, err := s.Rankings(ctx, types.Query{Page: 2, PageSize: 3, Sort: types.SortRank, Order: types.Asc})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ids(page.Records) != "4" {
			t.Errorf("expected page 2 to hold player 4, got %s", ids(page.Records))
		}

		page, err = s.Rankings(ctx, types.Query{Page: 9, PageSize: 3, Sort: types.SortDeltaYear, Order: types.Desc})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Pagination.CurrentPage != 2 || ids(page.Records) != "2" {
			t.Errorf("expected the last page to be served, got %+v %s", page.Pagination, ids(page.Records))
		}

		_, err = s.Rankings(ctx, types.Query{Page: 1, PageSize: 101, Sort: types.SortRank, Order: types.Asc})
		if !errors.Is(err, types.ErrInvalidQuery) {
			t.Errorf("expected ErrInvalidQuery, got %v", err)
		}
	})

	t.Run("page_size_bound", func(t *testing.T) {
		s := open(t)
		ratings := make([]model.RatingEntry, 0, 237)
		for i := 0; i < 237; i++ {
			ratings = append(ratings, entry(fmt.Sprintf("p%03d", i), 2500+i))
		}
		seed(t, s, []model.Snapshot{{Date: month(2025, time.October), Source: model.SourceHistorical, Ratings: ratings}})

		seen := map[string]bool{}
		for p := 1; p <= 10; p++ {
			page, err := s.Rankings(ctx, types.Query{Page: p, PageSize: 25, Sort: types.SortDeltaMonth, Order: types.Desc})
			if err != nil {
				t.Fatalf("page %d: unexpected error: %v", p, err)
			}
			if len(page.Records) > 25 {
				t.Errorf("page %d: %d records exceed the page size", p, len(page.Records))
			}
			if page.Pagination.TotalPages != 10 {
				t.Errorf("expected 10 pages, got %d", page.Pagination.TotalPages)
			}
			for i, r := range page.Records {
				if seen[r.ID] {
					t.Errorf("player %s listed twice", r.ID)
				}
				seen[r.ID] = true
				// no deltas anywhere: rank order is the tie-break
				if want := (p-1)*25 + i + 1; r.Rank != want {
					t.Errorf("page %d row %d: expected rank %d, got %d", p, i, want, r.Rank)
				}
			}
			if p == 10 && len(page.Records) != 12 {
				t.Errorf("expected 12 records on the last page, got %d", len(page.Records))
			}
		}
		if len(seen) != 237 {
			t.Errorf("expected 237 distinct players, got %d", len(seen))
		}
	})

	t.Run("duplicates", func(t *testing.T) {
		s := open(t)
		lists := fixtureLists()
		seed(t, s, lists)

		again := lists[2]
		again.Ratings = append([]model.RatingEntry{}, again.Ratings...)
		again.Ratings[0].Rating = 1000
		again.Ratings[1].Name = "Renamed"
		res, err := s.Ingest(ctx, again)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Stored != 0 || res.Duplicates != 4 || res.Players != 0 {
			t.Errorf("unexpected ingest result %+v", res)
		}
		rec, _ := s.Player(ctx, "4")
		if rec.Rating != 2790 {
			t.Errorf("existing rating must be kept, got %d", rec.Rating)
		}
		rec, _ = s.Player(ctx, "3")
		if rec.Name != "Renamed" {
			t.Errorf("player name must be upserted, got %q", rec.Name)
		}
	})

	t.Run("stats", func(t *testing.T) {
		s := open(t)
		seed(t, s, fixtureLists())

		st, err := s.Stats(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Players != 5 || st.RankedPlayers != 4 || st.Lists != 3 {
			t.Errorf("unexpected stats %+v", st)
		}
		known, err := s.KnownIDs(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := known["5"]; !ok || len(known) != 5 {
			t.Errorf("expected 5 known players including 5, got %v", known)
		}
	})
}

func TestTreapStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		s := NewTreapStore(context.Background(), WithMetricsUpdateInterval(time.Hour))
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContract(t, func(t *testing.T) Store {
		s, err := OpenSQLite(context.Background(), ":memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestSQLiteStore_File(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/data/fide.db"

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	seed(t, s, fixtureLists())
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen sqlite: %v", err)
	}
	defer func() { _ = s.Close() }()
	rec, err := s.Player(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Rank != 1 {
		t.Errorf("expected persisted rank 1, got %d", rec.Rank)
	}
}
