package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/fideboard/internal/domain/model"
	"github.com/okian/fideboard/internal/domain/types"
	"github.com/okian/fideboard/pkg/metrics"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteStore is the persistent Store. Ranks are materialised per list on
// ingest; deltas and ordering are computed by the query.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS players (
			fide_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			birth_year INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS rankings (
			fide_id TEXT NOT NULL REFERENCES players(fide_id),
			rank INTEGER,
			rating INTEGER NOT NULL,
			federation TEXT NOT NULL DEFAULT '',
			scraped_date TEXT NOT NULL,
			scraped_at TEXT NOT NULL,
			data_source TEXT NOT NULL,
			PRIMARY KEY (fide_id, scraped_date)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_date_rating ON rankings(scraped_date, rating DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_date_rank ON rankings(scraped_date, rank);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("sqlite migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ingest stores a monthly list in one transaction and re-ranks that month.
func (s *SQLiteStore) Ingest(ctx context.Context, snap model.Snapshot) (res model.IngestResult, err error) {
	if len(snap.Ratings) == 0 {
		return res, ErrEmptySnapshot
	}
	date := model.Month(snap.Date)
	day := date.Format(dateLayout)
	res.Date = date

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin ingest: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var before int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&before); err != nil {
		return res, fmt.Errorf("count players: %w", err)
	}

	upsertPlayer, err := tx.PrepareContext(ctx, `
		INSERT INTO players (fide_id, name, birth_year) VALUES (?, ?, ?)
		ON CONFLICT(fide_id) DO UPDATE SET
			name = excluded.name,
			birth_year = COALESCE(excluded.birth_year, players.birth_year)`)
	if err != nil {
		return res, fmt.Errorf("prepare player upsert: %w", err)
	}
	defer upsertPlayer.Close()

	insertRating, err := tx.PrepareContext(ctx, `
		INSERT INTO rankings (fide_id, rating, federation, scraped_date, scraped_at, data_source)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(fide_id, scraped_date) DO NOTHING`)
	if err != nil {
		return res, fmt.Errorf("prepare rating insert: %w", err)
	}
	defer insertRating.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range snap.Ratings {
		var birth any
		if e.BirthYear != nil {
			birth = *e.BirthYear
		}
		if _, err = upsertPlayer.ExecContext(ctx, e.ID, e.Name, birth); err != nil {
			return res, fmt.Errorf("upsert player %s: %w", e.ID, err)
		}
		var r sql.Result
		r, err = insertRating.ExecContext(ctx, e.ID, e.Rating, e.Federation, day, now, snap.Source)
		if err != nil {
			return res, fmt.Errorf("insert rating %s: %w", e.ID, err)
		}
		n, _ := r.RowsAffected()
		if n == 0 {
			res.Duplicates++
		} else {
			res.Stored++
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE rankings SET rank = x.r
		FROM (
			SELECT fide_id, ROW_NUMBER() OVER (ORDER BY rating DESC, fide_id ASC) AS r
			FROM rankings WHERE scraped_date = ?1
		) AS x
		WHERE rankings.fide_id = x.fide_id AND rankings.scraped_date = ?1`, day)
	if err != nil {
		return res, fmt.Errorf("rank %s: %w", day, err)
	}

	var after int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&after); err != nil {
		return res, fmt.Errorf("count players: %w", err)
	}
	res.Players = after - before

	if err = tx.Commit(); err != nil {
		return res, fmt.Errorf("commit ingest: %w", err)
	}

	metrics.RecordSnapshotIngested(time.Now().Unix())
	metrics.RecordRatingsIngested(snap.Source, res.Stored)
	metrics.RecordIngestSkipped("duplicate", res.Duplicates)
	return res, nil
}

const recordSelect = `
WITH latest AS (SELECT MAX(scraped_date) AS d FROM rankings),
cur AS (
	SELECT r.fide_id, r.rank, r.rating, r.federation, latest.d AS d
	FROM rankings r JOIN latest ON r.scraped_date = latest.d
)
SELECT cur.rank, cur.fide_id, p.name, cur.federation, cur.rating,
	cur.rating - pm.rating AS delta_month,
	cur.rating - py.rating AS delta_year,
	p.birth_year
FROM cur
JOIN players p ON p.fide_id = cur.fide_id
LEFT JOIN rankings pm ON pm.fide_id = cur.fide_id AND pm.scraped_date = date(cur.d, '-1 month')
LEFT JOIN rankings py ON py.fide_id = cur.fide_id AND py.scraped_date = date(cur.d, '-12 months')
`

// orderClause maps a validated query onto SQL. Only whitelisted text reaches the statement.
func orderClause(q types.Query) string {
	col := "cur.rank"
	switch q.Sort {
	case types.SortDeltaMonth:
		col = "delta_month"
	case types.SortDeltaYear:
		col = "delta_year"
	}
	dir := "ASC"
	if q.Order == types.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s NULLS LAST, cur.rank ASC", col, dir)
}

// Rankings returns one page of the latest list.
func (s *SQLiteStore) Rankings(ctx context.Context, q types.Query) (types.Page, error) {
	start := time.Now()
	defer func() {
		metrics.RecordQueryLatency(KindSQLite, float64(time.Since(start).Microseconds())/1000)
	}()

	if err := q.Validate(); err != nil {
		metrics.RecordQueryError(KindSQLite, "invalid_query")
		return types.Page{}, err
	}
	metrics.RecordQuery(KindSQLite, string(q.Sort), string(q.Order))

	total, latest, err := s.latest(ctx)
	if err != nil {
		metrics.RecordQueryError(KindSQLite, "count")
		return types.Page{}, err
	}
	p := types.NewPagination(q.Page, q.PageSize, total)
	page := types.Page{Records: []types.Record{}, Pagination: p, LastUpdated: latest}
	if total == 0 {
		return page, nil
	}

	rows, err := s.db.QueryContext(ctx, recordSelect+orderClause(q)+" LIMIT ? OFFSET ?",
		p.PageSize, p.Offset())
	if err != nil {
		metrics.RecordQueryError(KindSQLite, "query")
		return types.Page{}, fmt.Errorf("query rankings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			metrics.RecordQueryError(KindSQLite, "scan")
			return types.Page{}, err
		}
		page.Records = append(page.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return types.Page{}, fmt.Errorf("iterate rankings: %w", err)
	}
	return page, nil
}

// Player returns a player's row in the latest list.
func (s *SQLiteStore) Player(ctx context.Context, id string) (types.Record, error) {
	row := s.db.QueryRowContext(ctx, recordSelect+"WHERE cur.fide_id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Record{}, ErrNotFound
	}
	return rec, err
}

// KnownIDs returns the ids of every stored player.
func (s *SQLiteStore) KnownIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fide_id FROM players`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Stats summarises the stored lists.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM players), (SELECT COUNT(DISTINCT scraped_date) FROM rankings)`).
		Scan(&st.Players, &st.Lists)
	if err != nil {
		return st, fmt.Errorf("stats: %w", err)
	}
	st.RankedPlayers, st.LatestList, err = s.latest(ctx)
	if err != nil {
		return st, err
	}
	metrics.UpdateRankedPlayers(st.RankedPlayers)
	metrics.UpdateRatingLists(st.Lists)
	return st, nil
}

// latest returns the size and date of the latest list.
func (s *SQLiteStore) latest(ctx context.Context) (int, *time.Time, error) {
	var (
		total int
		day   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(scraped_date) FROM rankings
		WHERE scraped_date = (SELECT MAX(scraped_date) FROM rankings)`).Scan(&total, &day)
	if err != nil {
		return 0, nil, fmt.Errorf("count latest list: %w", err)
	}
	if !day.Valid {
		return 0, nil, nil
	}
	d, err := time.Parse(dateLayout, day.String)
	if err != nil {
		return 0, nil, fmt.Errorf("parse list date %q: %w", day.String, err)
	}
	return total, &d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (types.Record, error) {
	var (
		rec                   types.Record
		rank                  sql.NullInt64
		dMonth, dYear, birthY sql.NullInt64
	)
	if err := sc.Scan(&rank, &rec.ID, &rec.Name, &rec.Federation, &rec.Rating, &dMonth, &dYear, &birthY); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan record: %w", err)
	}
	rec.Rank = int(rank.Int64)
	rec.DeltaMonth = nullInt(dMonth)
	rec.DeltaYear = nullInt(dYear)
	rec.BirthYear = nullInt(birthY)
	return rec, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
