package types_test

import (
	"errors"
	"testing"

	types "github.com/okian/fideboard/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTotalPages(t *testing.T) {
	Convey("Given total counts and page sizes", t, func() {
		So(types.TotalPages(0, 25), ShouldEqual, 0)
		So(types.TotalPages(1, 25), ShouldEqual, 1)
		So(types.TotalPages(25, 25), ShouldEqual, 1)
		So(types.TotalPages(26, 25), ShouldEqual, 2)
		So(types.TotalPages(237, 25), ShouldEqual, 10)
		So(types.TotalPages(10, 0), ShouldEqual, 0)
	})
}

func TestNewPagination(t *testing.T) {
	Convey("Given a ranked set of 237 players", t, func() {
		Convey("When page 4 is requested", func() {
			p := types.NewPagination(4, 25, 237)

			Convey("Then it is echoed unchanged", func() {
				So(p, ShouldResemble, types.Pagination{CurrentPage: 4, PageSize: 25, TotalCount: 237, TotalPages: 10})
			})
		})

		Convey("When a page past the end is requested", func() {
			p := types.NewPagination(11, 25, 237)

			Convey("Then the last page is served", func() {
				So(p.CurrentPage, ShouldEqual, 10)
			})
		})
	})

	Convey("Given an empty set", t, func() {
		p := types.NewPagination(3, 25, 0)

		Convey("Then page 1 with zero pages is echoed", func() {
			So(p.CurrentPage, ShouldEqual, 1)
			So(p.TotalPages, ShouldEqual, 0)
		})
	})
}

func TestDefaultDirection(t *testing.T) {
	Convey("Given the sortable columns", t, func() {
		So(types.DefaultDirection(types.SortRank), ShouldEqual, types.Asc)
		So(types.DefaultDirection(types.SortDeltaMonth), ShouldEqual, types.Desc)
		So(types.DefaultDirection(types.SortDeltaYear), ShouldEqual, types.Desc)
		So(types.Asc.Toggle(), ShouldEqual, types.Desc)
		So(types.Desc.Toggle(), ShouldEqual, types.Asc)
		So(types.SortField("rating").Valid(), ShouldBeFalse)
		So(types.SortDirection("up").Valid(), ShouldBeFalse)
	})
}

func TestQueryValidate(t *testing.T) {
	Convey("Given queries", t, func() {
		Convey("When the default query is validated", func() {
			So(types.DefaultQuery().Validate(), ShouldBeNil)
		})

		Convey("When page is zero", func() {
			q := types.DefaultQuery()
			q.Page = 0
			err := q.Validate()

			Convey("Then it is rejected with a field message", func() {
				So(errors.Is(err, types.ErrInvalidQuery), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "page must be at least 1")
			})
		})

		Convey("When page_size is out of bounds", func() {
			q := types.DefaultQuery()
			q.PageSize = 101
			err := q.Validate()
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "page_size must be at most 100")

			q.PageSize = 0
			So(q.Validate().Error(), ShouldContainSubstring, "page_size must be at least 1")
		})

		Convey("When sort and order are unknown", func() {
			q := types.Query{Page: 2, PageSize: 10, Sort: "rating", Order: "up"}
			err := q.Validate()

			Convey("Then both fields are reported", func() {
				So(err.Error(), ShouldContainSubstring, "sort must be one of: rank, delta_month, delta_year")
				So(err.Error(), ShouldContainSubstring, "order must be one of: asc, desc")
			})
		})

		Convey("When the third page of size 10 is asked", func() {
			q := types.Query{Page: 3, PageSize: 10, Sort: types.SortDeltaYear, Order: types.Desc}
			So(q.Validate(), ShouldBeNil)
			So(types.NewPagination(q.Page, q.PageSize, 95).Offset(), ShouldEqual, 20)
		})

		Convey("When a page past the end is asked", func() {
			p := types.NewPagination(40, 25, 237)
			So(p.CurrentPage, ShouldEqual, 10)
			So(p.Offset(), ShouldEqual, 225)
		})
	})
}
