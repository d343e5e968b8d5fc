// Package db archives search runs and their facility records in PostgreSQL.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/recycling-locator/internal/types"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS search_runs (
	id          UUID PRIMARY KEY,
	material    TEXT NOT NULL,
	postal_code TEXT NOT NULL,
	source      TEXT NOT NULL,
	attempts    INTEGER NOT NULL DEFAULT 0,
	fallbacks   INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS facilities (
	run_id             UUID NOT NULL REFERENCES search_runs(id) ON DELETE CASCADE,
	position           INTEGER NOT NULL,
	business_name      TEXT NOT NULL,
	last_update_date   TEXT NOT NULL,
	street_address     TEXT NOT NULL,
	materials_category TEXT NOT NULL,
	materials_accepted TEXT[] NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the archive tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// SaveRun stores a run and its records in one transaction.
func (db *DB) SaveRun(ctx context.Context, run Run, records types.ResultSet) error {
	if run.ID == uuid.Nil {
		return fmt.Errorf("failed to save run: missing run ID")
	}

	return pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO search_runs (id, material, postal_code, source, attempts, fallbacks)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			run.ID, run.Material, run.PostalCode, run.Source, run.Attempts, run.Fallbacks,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		batch := &pgx.Batch{}
		for i, r := range records {
			batch.Queue(
				`INSERT INTO facilities (run_id, position, business_name, last_update_date,
				   street_address, materials_category, materials_accepted)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				run.ID, i, r.BusinessName, r.LastUpdateDate, r.StreetAddress, r.MaterialsCategory, r.MaterialsAccepted,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert facilities: %w", err)
		}
		return nil
	})
}

// GetRun retrieves a run by ID, or nil when it does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, material, postal_code, source, attempts, fallbacks, created_at
		 FROM search_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Material, &run.PostalCode, &run.Source, &run.Attempts, &run.Fallbacks, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves the most recent runs.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, material, postal_code, source, attempts, fallbacks, created_at
		 FROM search_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Material, &run.PostalCode, &run.Source, &run.Attempts, &run.Fallbacks, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListFacilities returns the records of a run in their original order.
func (db *DB) ListFacilities(ctx context.Context, runID uuid.UUID) ([]Facility, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, position, business_name, last_update_date, street_address,
		        materials_category, materials_accepted
		 FROM facilities WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	defer rows.Close()

	var facilities []Facility
	for rows.Next() {
		var f Facility
		if err := rows.Scan(&f.RunID, &f.Position, &f.BusinessName, &f.LastUpdateDate, &f.StreetAddress,
			&f.MaterialsCategory, &f.MaterialsAccepted); err != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", err)
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}
