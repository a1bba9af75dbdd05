// Package rankview holds the rankings view controller: the pagination and sort
// state machine behind the rankings table, and the page-fetch protocol it drives.
//
// The controller is not safe for concurrent use. It is meant to be owned by a
// single event loop (the Bubble Tea program in internal/tui) that calls the
// operations below and runs the returned Requests through Fetch on its own
// goroutines, feeding each Result back through Receive.
package rankview

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/okian/fideboard/internal/domain/types"
	"github.com/okian/fideboard/pkg/logger"
)

// Status is the controller state.
type Status int

// Controller states.
const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusEmpty:
		return "empty"
	}
	return "unknown"
}

// PageState is the pagination the view is on.
type PageState struct {
	CurrentPage int
	PageSize    int
	TotalCount  int
	TotalPages  int
}

// SortState is the active column and direction.
type SortState struct {
	Field     types.SortField
	Direction types.SortDirection
}

// Request is one page fetch tagged with its sequence number.
type Request struct {
	Seq   uint64
	Query types.Query
}

// Result is the outcome of a Request.
type Result struct {
	Seq  uint64
	Page types.Page
	Err  error
}

// QueryService serves pages of the ranked set.
type QueryService interface {
	Rankings(ctx context.Context, q types.Query) (types.Page, error)
}

// Fetch runs req against svc and tags the outcome with the request's sequence number.
func Fetch(ctx context.Context, svc QueryService, req Request) Result {
	page, err := svc.Rankings(ctx, req.Query)
	return Result{Seq: req.Seq, Page: page, Err: err}
}

// Controller is the rankings view state machine.
type Controller struct {
	page PageState
	sort SortState

	// last reconciled state, restored when a request fails
	shownPage PageState
	shownSort SortState

	records     []types.Record
	lastUpdated *time.Time
	status      Status
	err         error
	input       string

	seq     uint64 // latest issued
	pending types.Query

	logger logger.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used to report dropped responses.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPageSize sets the requested page size, clamped to [1, types.MaxPageSize].
func WithPageSize(n int) Option {
	return func(c *Controller) {
		switch {
		case n < 1:
			c.page.PageSize = 1
		case n > types.MaxPageSize:
			c.page.PageSize = types.MaxPageSize
		default:
			c.page.PageSize = n
		}
	}
}

// New returns a controller on page 1 sorted by rank ascending.
func New(opts ...Option) *Controller {
	c := &Controller{
		page:   PageState{CurrentPage: 1, PageSize: types.DefaultPageSize},
		sort:   SortState{Field: types.SortRank, Direction: types.DefaultDirection(types.SortRank)},
		status: StatusIdle,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.shownPage = c.page
	c.shownSort = c.sort
	c.input = strconv.Itoa(c.page.CurrentPage)
	return c
}

// Mount issues the initial request.
func (c *Controller) Mount() Request {
	return c.issue()
}

// Refresh reissues the request for the current state.
func (c *Controller) Refresh() Request {
	return c.issue()
}

// SetSort selects a column. Selecting the active column toggles its direction;
// selecting another column switches to that column's default direction and
// returns to page 1.
func (c *Controller) SetSort(field types.SortField) (Request, bool) {
	if !field.Valid() {
		return Request{}, false
	}
	if field == c.sort.Field {
		c.sort.Direction = c.sort.Direction.Toggle()
	} else {
		c.sort = SortState{Field: field, Direction: types.DefaultDirection(field)}
		c.page.CurrentPage = 1
	}
	c.input = strconv.Itoa(c.page.CurrentPage)
	return c.issue(), true
}

// GoToPage moves to page n. Pages outside [1, TotalPages] are ignored.
func (c *Controller) GoToPage(n int) (Request, bool) {
	if n < 1 || n > c.page.TotalPages {
		return Request{}, false
	}
	c.page.CurrentPage = n
	c.input = strconv.Itoa(n)
	return c.issue(), true
}

// PrevPage moves one page back.
func (c *Controller) PrevPage() (Request, bool) {
	return c.GoToPage(c.page.CurrentPage - 1)
}

// NextPage moves one page forward.
func (c *Controller) NextPage() (Request, bool) {
	return c.GoToPage(c.page.CurrentPage + 1)
}

// EditPageInput replaces the page input buffer without navigating.
func (c *Controller) EditPageInput(text string) {
	c.input = text
}

// CommitPageInput navigates to the page typed into the buffer. Text that is not
// an in-range page number resets the buffer to the current page.
func (c *Controller) CommitPageInput(text string) (Request, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > c.page.TotalPages {
		c.input = strconv.Itoa(c.page.CurrentPage)
		return Request{}, false
	}
	return c.GoToPage(n)
}

// Receive reconciles a completed request. Results for anything but the latest
// issued request are dropped and Receive reports false.
func (c *Controller) Receive(res Result) bool {
	if res.Seq != c.seq {
		c.logger.Debug(context.Background(), "dropping superseded rankings response",
			logger.Uint64("seq", res.Seq), logger.Uint64("latest", c.seq))
		return false
	}
	if c.status != StatusLoading {
		// already reconciled
		return false
	}

	if res.Err != nil {
		c.page = c.shownPage
		c.sort = c.shownSort
		c.input = strconv.Itoa(c.page.CurrentPage)
		c.err = res.Err
		c.status = StatusError
		c.logger.Warn(context.Background(), "rankings request failed",
			logger.Uint64("seq", res.Seq), logger.Error(res.Err))
		return true
	}

	p := res.Page.Pagination
	size := p.PageSize
	if size < 1 {
		size = c.pending.PageSize
	}
	total := p.TotalCount
	if total < 0 {
		total = 0
	}
	pages := types.TotalPages(total, size)
	current := p.CurrentPage
	if current > pages {
		current = pages
	}
	if current < 1 {
		current = 1
	}

	c.page = PageState{CurrentPage: current, PageSize: size, TotalCount: total, TotalPages: pages}
	c.sort = SortState{Field: c.pending.Sort, Direction: c.pending.Order}
	c.shownPage = c.page
	c.shownSort = c.sort
	c.records = res.Page.Records
	c.lastUpdated = res.Page.LastUpdated
	c.input = strconv.Itoa(current)
	c.err = nil
	if len(c.records) == 0 && total == 0 {
		c.status = StatusEmpty
	} else {
		c.status = StatusIdle
	}
	return true
}

func (c *Controller) issue() Request {
	c.seq++
	c.pending = types.Query{
		Page:     c.page.CurrentPage,
		PageSize: c.page.PageSize,
		Sort:     c.sort.Field,
		Order:    c.sort.Direction,
	}
	c.status = StatusLoading
	c.err = nil
	return Request{Seq: c.seq, Query: c.pending}
}

// Status returns the controller state.
func (c *Controller) Status() Status { return c.status }

// Page returns the pagination state.
func (c *Controller) Page() PageState { return c.page }

// Sort returns the sort state.
func (c *Controller) Sort() SortState { return c.sort }

// PageInput returns the page input buffer.
func (c *Controller) PageInput() string { return c.input }

// Latest returns the sequence number of the latest issued request.
func (c *Controller) Latest() uint64 { return c.seq }

// Err returns the error of the last failed request while in the error state.
func (c *Controller) Err() error { return c.err }

// Records returns the displayed records.
func (c *Controller) Records() []types.Record { return c.records }
