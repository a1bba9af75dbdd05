// Package repository stores monthly rating lists and serves ranked, sorted pages of the latest one.
package repository

import (
	"context"
	"time"

	"github.com/okian/fideboard/internal/domain/model"
	"github.com/okian/fideboard/internal/domain/types"
)

// Store kinds.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
)

// Store provides read/write access to the rating lists.
type Store interface {
	// Ingest stores a monthly list. Ratings already stored for a player and
	// month are kept; names and birth years are upserted.
	Ingest(ctx context.Context, snap model.Snapshot) (model.IngestResult, error)

	// Rankings returns one page of the latest list. A page past the end is
	// served as the last page.
	Rankings(ctx context.Context, q types.Query) (types.Page, error)

	// Player returns a player's row in the latest list.
	// Returns ErrNotFound if the player is not ranked.
	Player(ctx context.Context, id string) (types.Record, error)

	// KnownIDs returns the ids of every stored player.
	KnownIDs(ctx context.Context) (map[string]struct{}, error)

	// Stats summarises the stored lists.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// Stats summarises a store.
type Stats struct {
	Players       int        `json:"players"`
	RankedPlayers int        `json:"ranked_players"`
	Lists         int        `json:"lists"`
	LatestList    *time.Time `json:"latest_list,omitempty"`
}
