package repository

import (
	"math/rand/v2"

	"github.com/okian/fideboard/internal/domain/types"
)

// row is one player of the latest list with its computed rank and deltas.
type row struct {
	rank       int
	id         string
	name       string
	federation string
	rating     int
	deltaMonth *int
	deltaYear  *int
	birthYear  *int
}

func (r *row) record() types.Record {
	return types.Record{
		Rank:       r.rank,
		ID:         r.id,
		Name:       r.name,
		Federation: r.federation,
		Rating:     r.rating,
		DeltaMonth: r.deltaMonth,
		DeltaYear:  r.deltaYear,
		BirthYear:  r.birthYear,
	}
}

// lessFunc reports whether a is listed before b.
type lessFunc func(a, b *row) bool

// byRating orders the latest list into ranks: rating DESC, then id ASC.
func byRating(a, b *row) bool {
	if a.rating != b.rating {
		return a.rating > b.rating
	}
	return a.id < b.id
}

// orderFor returns the listing order of a sort column and direction.
// Missing deltas go last in both directions; ties keep rank order.
func orderFor(field types.SortField, dir types.SortDirection) lessFunc {
	if field == types.SortRank {
		if dir == types.Desc {
			return func(a, b *row) bool { return a.rank > b.rank }
		}
		return func(a, b *row) bool { return a.rank < b.rank }
	}
	pick := func(r *row) *int { return r.deltaMonth }
	if field == types.SortDeltaYear {
		pick = func(r *row) *int { return r.deltaYear }
	}
	return func(a, b *row) bool {
		da, db := pick(a), pick(b)
		switch {
		case da == nil && db == nil:
			return a.rank < b.rank
		case da == nil:
			return false
		case db == nil:
			return true
		case *da != *db:
			if dir == types.Desc {
				return *da > *db
			}
			return *da < *db
		}
		return a.rank < b.rank
	}
}

// treap node; size is the subtree size used for positional selection.
type node struct {
	row   *row
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, r *row, less lessFunc) *node {
	if n == nil {
		return &node{row: r, prio: rand.Uint64(), size: 1}
	}
	if less(r, n.row) {
		n.left = insert(n.left, r, less)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, r, less)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// collectAll appends every row in order.
func collectAll(n *node, out *[]*row) {
	if n == nil {
		return
	}
	collectAll(n.left, out)
	*out = append(*out, n.row)
	collectAll(n.right, out)
}

// collectRange appends up to limit rows in order after skipping the first skip.
// Subtrees entirely inside the skipped prefix are not visited.
func collectRange(n *node, skip, limit int, out *[]*row) int {
	if n == nil || len(*out) >= limit {
		return skip
	}
	if ls := nsize(n.left); skip >= ls {
		skip -= ls
	} else {
		skip = collectRange(n.left, skip, limit, out)
	}
	if len(*out) >= limit {
		return skip
	}
	if skip > 0 {
		skip--
	} else {
		*out = append(*out, n.row)
	}
	return collectRange(n.right, skip, limit, out)
}

// build inserts rows into a fresh treap under less.
func build(rows []*row, less lessFunc) *node {
	var root *node
	for _, r := range rows {
		root = insert(root, r, less)
	}
	return root
}
