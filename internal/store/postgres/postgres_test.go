package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alfredjeanlab/gantry/internal/model"
	"github.com/alfredjeanlab/gantry/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// runRowColumns is the column list for scanRun results.
var runRowColumns = []string{
	"id", "workflow", "trigger", "ref", "head_sha", "conclusion",
	"created_at", "created_by", "concluded_at",
}

// runWithTotalColumns is the column list for queryListRuns results.
var runWithTotalColumns = append([]string{"total_count"}, runRowColumns...)

func TestParseSortClause(t *testing.T) {
	for _, tc := range []struct {
		input string
		want  string
	}{
		{"", "created_at DESC"},
		{"workflow", "workflow ASC"},
		{"-workflow", "workflow DESC"},
		{"evil_column", "created_at DESC"},
		{"-evil_column", "created_at DESC"},
	} {
		if got := parseSortClause(tc.input); got != tc.want {
			t.Errorf("parseSortClause(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	// All allowed columns.
	for _, col := range []string{"created_at", "concluded_at", "workflow", "conclusion", "trigger"} {
		if got := parseSortClause(col); got != col+" ASC" {
			t.Errorf("parseSortClause(%q) = %q, want %q", col, got, col+" ASC")
		}
		if got := parseSortClause("-" + col); got != col+" DESC" {
			t.Errorf("parseSortClause(-%q) = %q, want %q", col, got, col+" DESC")
		}
	}
}

func TestCreateRun(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	mock.ExpectExec("INSERT INTO runs").
		WithArgs("run-abc", "ci", "pull_request", "refs/pull/42/merge", "deadbeef",
			"pending", now, "ci-bot", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.CreateRun(context.Background(), &model.Run{
		ID:         "run-abc",
		Workflow:   "ci",
		Trigger:    model.TriggerPullRequest,
		Ref:        "refs/pull/42/merge",
		HeadSHA:    "deadbeef",
		Conclusion: model.ConclusionPending,
		CreatedAt:  now,
		CreatedBy:  "ci-bot",
	})
	if err != nil {
		t.Fatalf("CreateRun returned unexpected error: %v", err)
	}
}

func TestGetRun(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	rows := sqlmock.NewRows(runRowColumns).
		AddRow("run-abc", "ci", "push", nil, nil, "success", now, nil, now)
	mock.ExpectQuery("SELECT .+ FROM runs WHERE id = \\$1").WithArgs("run-abc").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT name, result FROM outcomes WHERE run_id = \\$1").WithArgs("run-abc").
		WillReturnRows(sqlmock.NewRows([]string{"name", "result"}).
			AddRow("clippy", "success").
			AddRow("tests", "success"))

	run, err := s.GetRun(context.Background(), "run-abc")
	if err != nil {
		t.Fatalf("GetRun returned unexpected error: %v", err)
	}
	if run.ID != "run-abc" {
		t.Errorf("ID = %q, want run-abc", run.ID)
	}
	if run.Trigger != model.TriggerPush {
		t.Errorf("Trigger = %q, want push", run.Trigger)
	}
	if run.ConcludedAt == nil {
		t.Error("ConcludedAt = nil, want set")
	}
	if len(run.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(run.Outcomes))
	}
	if run.Outcomes[0].Name != "clippy" || run.Outcomes[0].Result != model.ResultSuccess {
		t.Errorf("Outcomes[0] = %+v, want clippy/success", run.Outcomes[0])
	}
}

func TestGetRunNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery("SELECT .+ FROM runs WHERE id = \\$1").WithArgs("run-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetRun(context.Background(), "run-missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetRun error = %v, want sql.ErrNoRows", err)
	}
}

func TestListRunsFilters(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	rows := sqlmock.NewRows(runWithTotalColumns).
		AddRow(7, "run-abc", "ci", "push", nil, nil, "failure", now, nil, now)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) OVER\\(\\) AS total_count, .+ FROM runs WHERE workflow = \\$1 AND conclusion IN \\(\\$2\\) ORDER BY created_at DESC LIMIT \\$3").
		WithArgs("ci", "failure", 20).
		WillReturnRows(rows)

	runs, total, err := s.ListRuns(context.Background(), model.RunFilter{
		Workflow:   "ci",
		Conclusion: []model.Conclusion{model.ConclusionFailure},
		Limit:      20,
	})
	if err != nil {
		t.Fatalf("ListRuns returned unexpected error: %v", err)
	}
	if total != 7 {
		t.Errorf("total = %d, want 7", total)
	}
	if len(runs) != 1 || runs[0].Conclusion != model.ConclusionFailure {
		t.Errorf("runs = %+v, want one failed run", runs)
	}
}

func TestListRunsDefaultLimit(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) OVER\\(\\) AS total_count, .+ FROM runs ORDER BY created_at DESC LIMIT \\$1").
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows(runWithTotalColumns))

	runs, total, err := s.ListRuns(context.Background(), model.RunFilter{})
	if err != nil {
		t.Fatalf("ListRuns returned unexpected error: %v", err)
	}
	if total != 0 || len(runs) != 0 {
		t.Errorf("got %d runs (total %d), want none", len(runs), total)
	}
}

func TestConcludeRun(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE runs SET conclusion = \\$1, concluded_at = \\$2 WHERE id = \\$3").
		WithArgs("failure", sqlmock.AnyArg(), "run-abc").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .+ FROM runs WHERE id = \\$1").WithArgs("run-abc").
		WillReturnRows(sqlmock.NewRows(runRowColumns).
			AddRow("run-abc", "ci", "push", nil, nil, "failure", now, nil, now))
	mock.ExpectQuery("SELECT name, result FROM outcomes WHERE run_id = \\$1").WithArgs("run-abc").
		WillReturnRows(sqlmock.NewRows([]string{"name", "result"}))

	run, err := s.ConcludeRun(context.Background(), "run-abc", model.ConclusionFailure)
	if err != nil {
		t.Fatalf("ConcludeRun returned unexpected error: %v", err)
	}
	if run.Conclusion != model.ConclusionFailure {
		t.Errorf("Conclusion = %q, want failure", run.Conclusion)
	}
}

func TestConcludeRunNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec("UPDATE runs SET conclusion = \\$1, concluded_at = \\$2 WHERE id = \\$3").
		WithArgs("success", sqlmock.AnyArg(), "run-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.ConcludeRun(context.Background(), "run-missing", model.ConclusionSuccess)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("ConcludeRun error = %v, want sql.ErrNoRows", err)
	}
}

func TestPutOutcomeUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectExec("ON CONFLICT \\(run_id, name\\) DO UPDATE").
		WithArgs("run-abc", "tests", "failure").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.PutOutcome(context.Background(), "run-abc", &model.JobOutcome{
		Name:   "tests",
		Result: model.ResultFailure,
	})
	if err != nil {
		t.Fatalf("PutOutcome returned unexpected error: %v", err)
	}
}

func TestRecordEvent(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery("INSERT INTO run_events").
		WithArgs("gantry.gate.failed", "run-abc", "gate", []byte(`{"blocking":["tests"]}`), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(13)))

	e := &model.RunEvent{
		Topic:   "gantry.gate.failed",
		RunID:   "run-abc",
		Actor:   "gate",
		Payload: []byte(`{"blocking":["tests"]}`),
	}
	if err := s.RecordEvent(context.Background(), e); err != nil {
		t.Fatalf("RecordEvent returned unexpected error: %v", err)
	}
	if e.ID != 13 {
		t.Errorf("ID = %d, want 13", e.ID)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not backfilled")
	}
}

func TestRunInTransactionCommit(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").
		WithArgs("run-tx", "ci", "push", nil, nil, "pending", now, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.CreateRun(context.Background(), &model.Run{
			ID:         "run-tx",
			Workflow:   "ci",
			Trigger:    model.TriggerPush,
			Conclusion: model.ConclusionPending,
			CreatedAt:  now,
		})
	})
	if err != nil {
		t.Fatalf("RunInTransaction returned unexpected error: %v", err)
	}
}

func TestRunInTransactionRollback(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("boom")
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunInTransaction error = %v, want %v", err, wantErr)
	}
}
