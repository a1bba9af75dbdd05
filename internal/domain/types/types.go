// Package types contains the rankings types shared by the store, the HTTP layer and the view controller.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Page size bounds.
const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// ErrInvalidQuery wraps every query validation failure.
var ErrInvalidQuery = errors.New("invalid query")

// SortField names a sortable column.
type SortField string

// Sortable columns.
const (
	SortRank       SortField = "rank"
	SortDeltaMonth SortField = "delta_month"
	SortDeltaYear  SortField = "delta_year"
)

// SortFields lists every sortable column in display order.
var SortFields = []SortField{SortRank, SortDeltaMonth, SortDeltaYear}

// Valid reports whether f is a known column.
func (f SortField) Valid() bool {
	switch f {
	case SortRank, SortDeltaMonth, SortDeltaYear:
		return true
	}
	return false
}

// SortDirection is asc or desc.
type SortDirection string

// Sort directions.
const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// Valid reports whether d is asc or desc.
func (d SortDirection) Valid() bool { return d == Asc || d == Desc }

// Toggle returns the opposite direction.
func (d SortDirection) Toggle() SortDirection {
	if d == Asc {
		return Desc
	}
	return Asc
}

// DefaultDirection is the direction a column starts with when it becomes the sort column.
// Rank reads best-first ascending; the deltas show the biggest change first.
func DefaultDirection(f SortField) SortDirection {
	if f == SortRank {
		return Asc
	}
	return Desc
}

// Record is one ranked player.
type Record struct {
	Rank       int    `json:"rank"`
	ID         string `json:"fide_id"`
	Name       string `json:"name"`
	Federation string `json:"federation"`
	Rating     int    `json:"rating"`
	// DeltaMonth and DeltaYear are nil when the comparison list has no entry for the player.
	DeltaMonth *int `json:"delta_month"`
	DeltaYear  *int `json:"delta_year"`
	BirthYear  *int `json:"birth_year,omitempty"`
}

// Query asks for one page of the ranked set.
type Query struct {
	Page     int           `json:"page" validate:"gte=1"`
	PageSize int           `json:"page_size" validate:"gte=1,lte=100"`
	Sort     SortField     `json:"sort" validate:"oneof=rank delta_month delta_year"`
	Order    SortDirection `json:"order" validate:"oneof=asc desc"`
}

// DefaultQuery is the first page in rank order.
func DefaultQuery() Query {
	return Query{Page: 1, PageSize: DefaultPageSize, Sort: SortRank, Order: Asc}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the query bounds. The returned error wraps ErrInvalidQuery and
// carries one message per failing field.
func (q Query) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		name := jsonName(e.Field())
		switch e.Tag() {
		case "gte":
			msgs = append(msgs, name+" must be at least "+e.Param())
		case "lte":
			msgs = append(msgs, name+" must be at most "+e.Param())
		case "oneof":
			msgs = append(msgs, name+" must be one of: "+strings.ReplaceAll(e.Param(), " ", ", "))
		default:
			msgs = append(msgs, name+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidQuery, strings.Join(msgs, "; "))
}

func jsonName(field string) string {
	switch field {
	case "PageSize":
		return "page_size"
	default:
		return strings.ToLower(field)
	}
}

// Pagination is the echo block returned with every page.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
	TotalCount  int `json:"total_count"`
	TotalPages  int `json:"total_pages"`
}

// Offset is the number of records before the served page.
func (p Pagination) Offset() int { return (p.CurrentPage - 1) * p.PageSize }

// TotalPages is ceil(total/size), 0 when total is 0.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// NewPagination builds the echo for a requested page. A page past the end is
// served as the last page, so CurrentPage always lies in [1, max(TotalPages,1)].
func NewPagination(requested, size, total int) Pagination {
	pages := TotalPages(total, size)
	current := requested
	if current > pages {
		current = pages
	}
	if current < 1 {
		current = 1
	}
	return Pagination{CurrentPage: current, PageSize: size, TotalCount: total, TotalPages: pages}
}

// Page is one page of records plus its pagination echo.
type Page struct {
	Records     []Record   `json:"records"`
	Pagination  Pagination `json:"pagination"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}
