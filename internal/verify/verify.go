// Package verify walks a live rankings service through the view controller and
// checks the paging and ordering guarantees clients rely on.
package verify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/fideboard/internal/domain/types"
	"github.com/okian/fideboard/internal/rankview"
	"github.com/okian/fideboard/pkg/logger"
)

// ErrViolations is returned by Run when any check fails.
var ErrViolations = errors.New("rankings verification failed")

// Sorts is every column and direction a client can ask for.
var Sorts = []rankview.SortState{
	{Field: types.SortRank, Direction: types.Asc},
	{Field: types.SortRank, Direction: types.Desc},
	{Field: types.SortDeltaMonth, Direction: types.Desc},
	{Field: types.SortDeltaMonth, Direction: types.Asc},
	{Field: types.SortDeltaYear, Direction: types.Desc},
	{Field: types.SortDeltaYear, Direction: types.Asc},
}

// Config holds the run settings.
type Config struct {
	PageSize int
	Logger   logger.Logger
}

// Violation is one failed check.
type Violation struct {
	Sort    rankview.SortState
	Page    int
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s page %d: %s", v.Sort.Field, v.Sort.Direction, v.Page, v.Message)
}

// SortReport summarises the walk of one sort order.
type SortReport struct {
	Sort    rankview.SortState
	Pages   int
	Records int
	Took    time.Duration
}

// Report is the outcome of a run.
type Report struct {
	Total      int
	Sorts      []SortReport
	Violations []Violation
}

// OK reports whether every check passed.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Run walks every page of every sort order. It returns ErrViolations with the
// report when checks fail, and other errors when the service cannot be queried.
func Run(ctx context.Context, svc rankview.QueryService, cfg Config) (Report, error) {
	if cfg.PageSize < 1 || cfg.PageSize > types.MaxPageSize {
		cfg.PageSize = types.DefaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	var rep Report
	for i, s := range Sorts {
		w := walker{ctx: ctx, svc: svc, sort: s, size: cfg.PageSize, log: cfg.Logger}
		sr, err := w.run()
		if err != nil {
			return rep, fmt.Errorf("%s %s: %w", s.Field, s.Direction, err)
		}
		rep.Sorts = append(rep.Sorts, sr)
		rep.Violations = append(rep.Violations, w.violations...)
		if i == 0 {
			rep.Total = w.total
		} else if w.total != rep.Total {
			rep.Violations = append(rep.Violations, Violation{Sort: s, Message: fmt.Sprintf(
				"total %d differs from %d under %s %s", w.total, rep.Total, Sorts[0].Field, Sorts[0].Direction)})
		}
		cfg.Logger.Info(ctx, "sort order verified",
			logger.String("sort", string(s.Field)),
			logger.String("order", string(s.Direction)),
			logger.Int("pages", sr.Pages),
			logger.Int("records", sr.Records),
			logger.Duration("took", sr.Took))
	}

	if !rep.OK() {
		return rep, ErrViolations
	}
	return rep, nil
}

type walker struct {
	ctx  context.Context
	svc  rankview.QueryService
	sort rankview.SortState
	size int
	log  logger.Logger

	ctrl       *rankview.Controller
	total      int
	violations []Violation
}

func (w *walker) fail(page int, format string, args ...any) {
	w.violations = append(w.violations, Violation{Sort: w.sort, Page: page, Message: fmt.Sprintf(format, args...)})
}

// drive runs req and reconciles it; a rejected or failed request ends the walk.
func (w *walker) drive(req rankview.Request) error {
	if !w.ctrl.Receive(rankview.Fetch(w.ctx, w.svc, req)) {
		return fmt.Errorf("response to request %d was dropped", req.Seq)
	}
	if w.ctrl.Status() == rankview.StatusError {
		return w.ctrl.Err()
	}
	return nil
}

// selectSort reaches the wanted order the way a user would, by column clicks.
func (w *walker) selectSort() error {
	for w.ctrl.Sort() != w.sort {
		req, ok := w.ctrl.SetSort(w.sort.Field)
		if !ok {
			return fmt.Errorf("sort %s not accepted", w.sort.Field)
		}
		if err := w.drive(req); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) run() (SortReport, error) {
	start := time.Now()
	w.ctrl = rankview.New(rankview.WithPageSize(w.size), rankview.WithLogger(w.log))
	if err := w.drive(w.ctrl.Mount()); err != nil {
		return SortReport{}, err
	}
	if err := w.selectSort(); err != nil {
		return SortReport{}, err
	}

	first := w.ctrl.Page()
	w.total = first.TotalCount
	if want := types.TotalPages(first.TotalCount, w.size); first.TotalPages != want {
		w.fail(1, "total_pages %d, want %d for %d records of %d", first.TotalPages, want, first.TotalCount, w.size)
	}

	var (
		all   []types.Record
		seen  = make(map[string]int)
		pages int
	)
	for {
		p := w.ctrl.Page()
		recs := w.ctrl.Records()
		pages++
		w.checkPage(p, recs, pages)
		for _, r := range recs {
			if prev, dup := seen[r.ID]; dup {
				w.fail(p.CurrentPage, "player %s already listed on page %d", r.ID, prev)
			}
			seen[r.ID] = p.CurrentPage
		}
		all = append(all, recs...)

		req, ok := w.ctrl.NextPage()
		if !ok {
			break
		}
		if err := w.drive(req); err != nil {
			return SortReport{}, err
		}
	}

	if len(all) != w.total {
		w.fail(pages, "walked %d records, total_count is %d", len(all), w.total)
	}
	for _, msg := range CheckOrder(all, w.sort) {
		w.fail(0, "%s", msg)
	}
	if err := w.checkPastEnd(); err != nil {
		return SortReport{}, err
	}

	return SortReport{Sort: w.sort, Pages: pages, Records: len(all), Took: time.Since(start)}, nil
}

func (w *walker) checkPage(p rankview.PageState, recs []types.Record, want int) {
	if p.CurrentPage != want {
		w.fail(p.CurrentPage, "expected to be on page %d", want)
	}
	if len(recs) > w.size {
		w.fail(p.CurrentPage, "%d records exceed the page size %d", len(recs), w.size)
	}
	if p.TotalCount != w.total {
		w.fail(p.CurrentPage, "total_count changed from %d to %d", w.total, p.TotalCount)
	}
	r := rankview.RangeOf(p)
	if !r.Empty() && r.To-r.From+1 != len(recs) {
		w.fail(p.CurrentPage, "range %s does not match %d records", r, len(recs))
	}
}

// checkPastEnd asks for a page beyond the last one: the controller must refuse
// it and the service must serve the last page.
func (w *walker) checkPastEnd() error {
	last := w.ctrl.Page().TotalPages
	if _, ok := w.ctrl.GoToPage(last + 1); ok {
		w.fail(last+1, "controller issued a request past the last page")
	}
	page, err := w.svc.Rankings(w.ctx, types.Query{
		Page: last + 5, PageSize: w.size, Sort: w.sort.Field, Order: w.sort.Direction,
	})
	if err != nil {
		return fmt.Errorf("request past the end: %w", err)
	}
	if want := max(last, 1); page.Pagination.CurrentPage != want {
		w.fail(last+5, "served page %d, want the last page %d", page.Pagination.CurrentPage, want)
	}
	return nil
}

// CheckOrder returns a message for every adjacent pair of records out of the
// order s prescribes: the sort key in its direction, absent deltas last, rank
// ascending between equal keys.
func CheckOrder(recs []types.Record, s rankview.SortState) []string {
	var out []string
	for i := 1; i < len(recs); i++ {
		a, b := recs[i-1], recs[i]
		if !inOrder(a, b, s) {
			out = append(out, fmt.Sprintf("position %d: %s (rank %d) before %s (rank %d)", i, a.ID, a.Rank, b.ID, b.Rank))
		}
	}
	return out
}

func inOrder(a, b types.Record, s rankview.SortState) bool {
	if s.Field == types.SortRank {
		if s.Direction == types.Desc {
			return a.Rank > b.Rank
		}
		return a.Rank < b.Rank
	}

	da, db := a.DeltaMonth, b.DeltaMonth
	if s.Field == types.SortDeltaYear {
		da, db = a.DeltaYear, b.DeltaYear
	}
	switch {
	case da == nil && db == nil:
		return a.Rank < b.Rank
	case da == nil:
		return false
	case db == nil:
		return true
	case *da == *db:
		return a.Rank < b.Rank
	case s.Direction == types.Desc:
		return *da > *db
	default:
		return *da < *db
	}
}
