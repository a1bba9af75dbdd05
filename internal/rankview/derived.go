package rankview

import (
	"fmt"
	"strconv"
	"time"

	"github.com/okian/fideboard/internal/domain/types"
)

// NoData is shown for a delta without a comparison rating.
const NoData = "—"

// Range is the span of records the current page covers.
type Range struct {
	From  int
	To    int
	Total int
}

// Empty reports whether there is nothing to show.
func (r Range) Empty() bool { return r.Total == 0 }

func (r Range) String() string {
	if r.Empty() {
		return "No players"
	}
	return fmt.Sprintf("%d–%d of %d", r.From, r.To, r.Total)
}

// RangeOf computes the displayed range of a page state.
func RangeOf(p PageState) Range {
	if p.TotalCount <= 0 {
		return Range{}
	}
	from := (p.CurrentPage-1)*p.PageSize + 1
	to := p.CurrentPage * p.PageSize
	if to > p.TotalCount {
		to = p.TotalCount
	}
	return Range{From: from, To: to, Total: p.TotalCount}
}

// Range is the displayed range of the current page.
func (c *Controller) Range() Range { return RangeOf(c.page) }

// CanPrev reports whether there is a previous page.
func (c *Controller) CanPrev() bool { return c.page.CurrentPage > 1 }

// CanNext reports whether there is a next page.
func (c *Controller) CanNext() bool { return c.page.CurrentPage < c.page.TotalPages }

// Indicator is the sort marker of a column header.
type Indicator int

// Column sort markers.
const (
	IndicatorNeutral Indicator = iota
	IndicatorAsc
	IndicatorDesc
)

// Glyph renders the indicator.
func (i Indicator) Glyph() string {
	switch i {
	case IndicatorAsc:
		return "↑"
	case IndicatorDesc:
		return "↓"
	}
	return "↕"
}

// IndicatorFor returns the marker of field under s.
func IndicatorFor(s SortState, field types.SortField) Indicator {
	if s.Field != field {
		return IndicatorNeutral
	}
	if s.Direction == types.Desc {
		return IndicatorDesc
	}
	return IndicatorAsc
}

// SortIndicator returns the marker of a column header.
func (c *Controller) SortIndicator(field types.SortField) Indicator {
	return IndicatorFor(c.sort, field)
}

// Tone is the styling class of a delta.
type Tone int

// Delta tones.
const (
	ToneNone Tone = iota // no comparison data
	ToneNeutral
	TonePositive
	ToneNegative
)

// Delta is a formatted rating change.
type Delta struct {
	Text string
	Tone Tone
}

// FormatDelta renders a rating change. A nil delta is shown as NoData, never as zero.
func FormatDelta(d *int) Delta {
	switch {
	case d == nil:
		return Delta{Text: NoData, Tone: ToneNone}
	case *d == 0:
		return Delta{Text: "0", Tone: ToneNeutral}
	case *d > 0:
		return Delta{Text: "+" + strconv.Itoa(*d), Tone: TonePositive}
	default:
		return Delta{Text: strconv.Itoa(*d), Tone: ToneNegative}
	}
}

// Snapshot is everything the render layer needs for one frame.
type Snapshot struct {
	Records     []types.Record
	Page        PageState
	Sort        SortState
	Status      Status
	Error       string
	PageInput   string
	LastUpdated *time.Time
	Range       Range
	CanPrev     bool
	CanNext     bool
}

// Loading reports whether a request is in flight.
func (s Snapshot) Loading() bool { return s.Status == StatusLoading }

// Snapshot returns the render state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Records:     c.records,
		Page:        c.page,
		Sort:        c.sort,
		Status:      c.status,
		PageInput:   c.input,
		LastUpdated: c.lastUpdated,
		Range:       c.Range(),
		CanPrev:     c.CanPrev(),
		CanNext:     c.CanNext(),
	}
	if c.err != nil {
		s.Error = c.err.Error()
	}
	return s
}
