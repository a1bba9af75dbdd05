package repository

import (
	"time"

	"github.com/okian/fideboard/internal/domain/model"
)

// Comparison lists for the two deltas.
func monthAgo(d time.Time) time.Time { return model.Month(d).AddDate(0, -1, 0) }
func yearAgo(d time.Time) time.Time  { return model.Month(d).AddDate(-1, 0, 0) }

func delta(now, before int, ok bool) *int {
	if !ok {
		return nil
	}
	d := now - before
	return &d
}
