// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/gantry/internal/model"
	"github.com/alfredjeanlab/gantry/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *model.Run) error {
	return queryCreateRun(ctx, s.db, run)
}

func (s *PostgresStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	return queryGetRun(ctx, s.db, id)
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter model.RunFilter) ([]*model.Run, int, error) {
	return queryListRuns(ctx, s.db, filter)
}

func (s *PostgresStore) ConcludeRun(ctx context.Context, id string, conclusion model.Conclusion) (*model.Run, error) {
	return queryConcludeRun(ctx, s.db, id, conclusion)
}

func (s *PostgresStore) DeleteRun(ctx context.Context, id string) error {
	return queryDeleteRun(ctx, s.db, id)
}

func (s *PostgresStore) PutOutcome(ctx context.Context, runID string, outcome *model.JobOutcome) error {
	return queryPutOutcome(ctx, s.db, runID, outcome)
}

func (s *PostgresStore) GetOutcomes(ctx context.Context, runID string) ([]*model.JobOutcome, error) {
	return queryGetOutcomes(ctx, s.db, runID)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.RunEvent) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvents(ctx context.Context, runID string) ([]*model.RunEvent, error) {
	return queryGetEvents(ctx, s.db, runID)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateRun(ctx context.Context, run *model.Run) error {
	return queryCreateRun(ctx, s.tx, run)
}

func (s *txStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	return queryGetRun(ctx, s.tx, id)
}

func (s *txStore) ListRuns(ctx context.Context, filter model.RunFilter) ([]*model.Run, int, error) {
	return queryListRuns(ctx, s.tx, filter)
}

func (s *txStore) ConcludeRun(ctx context.Context, id string, conclusion model.Conclusion) (*model.Run, error) {
	return queryConcludeRun(ctx, s.tx, id, conclusion)
}

func (s *txStore) DeleteRun(ctx context.Context, id string) error {
	return queryDeleteRun(ctx, s.tx, id)
}

func (s *txStore) PutOutcome(ctx context.Context, runID string, outcome *model.JobOutcome) error {
	return queryPutOutcome(ctx, s.tx, runID, outcome)
}

func (s *txStore) GetOutcomes(ctx context.Context, runID string) ([]*model.JobOutcome, error) {
	return queryGetOutcomes(ctx, s.tx, runID)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.RunEvent) error {
	return queryRecordEvent(ctx, s.tx, event)
}

func (s *txStore) GetEvents(ctx context.Context, runID string) ([]*model.RunEvent, error) {
	return queryGetEvents(ctx, s.tx, runID)
}

// RunInTransaction on a txStore reuses the already-open transaction.
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *txStore) Close() error {
	return nil
}
