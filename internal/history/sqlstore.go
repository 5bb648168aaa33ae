package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"   // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/rshade/esgledger/internal/batch"
	"github.com/rshade/esgledger/internal/emissions"
	"github.com/rshade/esgledger/internal/logging"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// ErrUnsupportedDriver indicates a driver other than postgres or sqlite.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

const entryColumns = `id, source_id, period_name, scope, category, activity, region,
	activity_value, activity_unit, normalized_value, factor_unit, emission_factor, factor_source,
	co2_kg, ch4_kg, n2o_kg, total_tco2e, created_at`

// DefaultWriters is the number of batch transactions SaveEntries runs at
// once on postgres.
const DefaultWriters = 4

// SQLStore persists entry snapshots and serves their history.
type SQLStore struct {
	db        *sql.DB
	driver    string
	batchSize int
	writers   int
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == DriverPostgres {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	} else {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	}

	return &SQLStore{db: db, driver: driver, batchSize: batch.DefaultSize, writers: DefaultWriters}, nil
}

// SetWriters sets how many batch transactions SaveEntries may run at once.
// Values below 1 restore the default. SQLite always writes one batch at a time.
func (s *SQLStore) SetWriters(n int) {
	if n < 1 {
		n = DefaultWriters
	}
	s.writers = n
}

func (s *SQLStore) writeLimit() int {
	if s.driver == DriverSQLite || s.writers < 1 {
		return 1
	}
	return s.writers
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Migrate creates the entries table and index if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	ts := "TIMESTAMPTZ"
	if s.driver == DriverSQLite {
		ts = "TIMESTAMP"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS activity_entries (
			id               TEXT PRIMARY KEY,
			source_id        TEXT NOT NULL,
			period_name      TEXT NOT NULL,
			scope            INTEGER NOT NULL,
			category         TEXT NOT NULL DEFAULT '',
			activity         TEXT NOT NULL DEFAULT '',
			region           TEXT NOT NULL DEFAULT '',
			activity_value   DOUBLE PRECISION NOT NULL,
			activity_unit    TEXT NOT NULL,
			normalized_value DOUBLE PRECISION NOT NULL,
			factor_unit      TEXT NOT NULL,
			emission_factor  DOUBLE PRECISION NOT NULL,
			factor_source    TEXT NOT NULL DEFAULT '',
			co2_kg           DOUBLE PRECISION NOT NULL,
			ch4_kg           DOUBLE PRECISION NOT NULL,
			n2o_kg           DOUBLE PRECISION NOT NULL,
			total_tco2e      DOUBLE PRECISION NOT NULL,
			created_at       ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_entries_series
			ON activity_entries (source_id, period_name, created_at DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// SaveEntries writes entries in batched transactions, one transaction per
// batch. On postgres up to SetWriters batches commit concurrently and every
// batch error is reported; on sqlite batches run in order and the first
// failure stops the save. Saving an entry whose id already exists replaces
// the stored snapshot.
func (s *SQLStore) SaveEntries(ctx context.Context, entries []*emissions.Entry) error {
	p, err := batch.NewProcessor[*emissions.Entry](s.batchSize)
	if err != nil {
		return err
	}

	log := logging.FromContext(ctx)
	p.WithProgress(func(pr batch.Progress) {
		log.Debug().
			Str("component", "history").
			Str("operation", "save_entries").
			Int("saved", pr.ProcessedItems).
			Int("total", pr.TotalItems).
			Msg("entry batch committed")
	})

	query := s.rebind(`INSERT INTO activity_entries (` + entryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			activity_value = excluded.activity_value,
			activity_unit = excluded.activity_unit,
			normalized_value = excluded.normalized_value,
			factor_unit = excluded.factor_unit,
			emission_factor = excluded.emission_factor,
			factor_source = excluded.factor_source,
			co2_kg = excluded.co2_kg,
			ch4_kg = excluded.ch4_kg,
			n2o_kg = excluded.n2o_kg,
			total_tco2e = excluded.total_tco2e`)

	save := func(ctx context.Context, items []*emissions.Entry, _ int) error {
		return s.saveBatch(ctx, query, items)
	}
	if limit := s.writeLimit(); limit > 1 {
		return p.ProcessConcurrent(ctx, entries, save, limit)
	}
	return p.Process(ctx, entries, save)
}

func (s *SQLStore) saveBatch(ctx context.Context, query string, items []*emissions.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range items {
		if _, err = stmt.ExecContext(ctx,
			e.ID, e.SourceID, e.Period, int(e.Scope), e.Category, e.Activity, e.Region,
			e.ActivityValue, e.ActivityUnit, e.NormalizedValue, e.FactorUnit, e.EmissionFactor, e.FactorSource,
			e.CO2Kg, e.CH4Kg, e.N2OKg, e.TotalTCO2e, e.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("failed to save entry %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// ListEntries returns up to limit entries for a source, newest first. An
// empty sourceID lists every source; limit <= 0 means no limit.
func (s *SQLStore) ListEntries(ctx context.Context, sourceID string, limit int) ([]*emissions.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM activity_entries`
	var args []any
	if sourceID != "" {
		query += ` WHERE source_id = ?`
		args = append(args, sourceID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*emissions.Entry
	for rows.Next() {
		var (
			e     emissions.Entry
			scope int
			at    time.Time
		)
		if err = rows.Scan(
			&e.ID, &e.SourceID, &e.Period, &scope, &e.Category, &e.Activity, &e.Region,
			&e.ActivityValue, &e.ActivityUnit, &e.NormalizedValue, &e.FactorUnit, &e.EmissionFactor, &e.FactorSource,
			&e.CO2Kg, &e.CH4Kg, &e.N2OKg, &e.TotalTCO2e, &at,
		); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Scope = emissions.Scope(scope)
		e.CreatedAt = at.UTC()
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// RecentActivityValues implements Source.
func (s *SQLStore) RecentActivityValues(ctx context.Context, sourceID, period string, limit int) ([]float64, error) {
	if limit <= 0 {
		return []float64{}, nil
	}

	query := s.rebind(`SELECT activity_value FROM activity_entries
		WHERE source_id = ? AND period_name = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`)

	rows, err := s.db.QueryContext(ctx, query, sourceID, period, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	values := make([]float64, 0, limit)
	for rows.Next() {
		var v float64
		if err = rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
