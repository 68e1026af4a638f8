package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/alfredjeanlab/gantry/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanRun scans a single row into a model.Run.
// The row must contain columns in the order defined by runColumns.
func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var (
		ref         sql.NullString
		headSHA     sql.NullString
		createdBy   sql.NullString
		concludedAt sql.NullTime
	)

	err := row.Scan(
		&r.ID,
		&r.Workflow,
		&r.Trigger,
		&ref,
		&headSHA,
		&r.Conclusion,
		&r.CreatedAt,
		&createdBy,
		&concludedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Ref = ref.String
	r.HeadSHA = headSHA.String
	r.CreatedBy = createdBy.String
	if concludedAt.Valid {
		t := concludedAt.Time
		r.ConcludedAt = &t
	}
	return &r, nil
}

// scanRunWithTotal scans a row of (total_count, runColumns...) as produced
// by queryListRuns.
func scanRunWithTotal(row scannable) (*model.Run, int, error) {
	var r model.Run
	var (
		total       int
		ref         sql.NullString
		headSHA     sql.NullString
		createdBy   sql.NullString
		concludedAt sql.NullTime
	)

	err := row.Scan(
		&total,
		&r.ID,
		&r.Workflow,
		&r.Trigger,
		&ref,
		&headSHA,
		&r.Conclusion,
		&r.CreatedAt,
		&createdBy,
		&concludedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	r.Ref = ref.String
	r.HeadSHA = headSHA.String
	r.CreatedBy = createdBy.String
	if concludedAt.Valid {
		t := concludedAt.Time
		r.ConcludedAt = &t
	}
	return &r, total, nil
}

// scanEvent scans a run_events row into a model.RunEvent.
func scanEvent(row scannable) (*model.RunEvent, error) {
	var e model.RunEvent
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.RunID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	e.Payload = json.RawMessage(payload)
	return &e, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTimePtr converts a nil time pointer to a SQL NULL.
func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// jsonbBytes normalizes a raw JSON payload for a JSONB column; empty payloads
// become the empty object rather than NULL.
func jsonbBytes(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}
