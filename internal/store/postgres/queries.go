package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alfredjeanlab/gantry/internal/model"
)

// runColumns is the column list used for SELECT statements on the runs table.
const runColumns = `id, workflow, trigger, ref, head_sha, conclusion, created_at, created_by, concluded_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateRun(ctx context.Context, db executor, r *model.Run) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO runs (
			id, workflow, trigger, ref, head_sha, conclusion,
			created_at, created_by, concluded_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9
		)`,
		r.ID,
		r.Workflow,
		string(r.Trigger),
		nullString(r.Ref),
		nullString(r.HeadSHA),
		string(r.Conclusion),
		r.CreatedAt,
		nullString(r.CreatedBy),
		nullTimePtr(r.ConcludedAt),
	)
	return err
}

func queryGetRun(ctx context.Context, db executor, id string) (*model.Run, error) {
	row := db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = $1`, id)
	r, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	outcomes, err := queryGetOutcomes(ctx, db, id)
	if err != nil {
		return nil, err
	}
	r.Outcomes = outcomes

	return r, nil
}

func queryListRuns(ctx context.Context, db executor, filter model.RunFilter) ([]*model.Run, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Workflow != "" {
		whereClauses = append(whereClauses, "workflow = "+nextArg())
		args = append(args, filter.Workflow)
	}

	if len(filter.Trigger) > 0 {
		placeholders := make([]string, len(filter.Trigger))
		for i, t := range filter.Trigger {
			placeholders[i] = nextArg()
			args = append(args, string(t))
		}
		whereClauses = append(whereClauses, "trigger IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Conclusion) > 0 {
		placeholders := make([]string, len(filter.Conclusion))
		for i, c := range filter.Conclusion {
			placeholders[i] = nextArg()
			args = append(args, string(c))
		}
		whereClauses = append(whereClauses, "conclusion IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.Ref != "" {
		whereClauses = append(whereClauses, "ref = "+nextArg())
		args = append(args, filter.Ref)
	}

	where := ""
	if len(whereClauses) > 0 {
		where = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	query := `SELECT COUNT(*) OVER() AS total_count, ` + runColumns +
		` FROM runs` + where +
		` ORDER BY ` + parseSortClause(filter.Sort)

	// A negative limit disables the cap (used by the archive exporter).
	if filter.Limit >= 0 {
		limit := filter.Limit
		if limit == 0 {
			limit = 50
		}
		query += ` LIMIT ` + nextArg()
		args = append(args, limit)
	}

	if filter.Offset > 0 {
		query += ` OFFSET ` + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		runs  []*model.Run
		total int
	)
	for rows.Next() {
		r, rowTotal, err := scanRunWithTotal(rows)
		if err != nil {
			return nil, 0, err
		}
		total = rowTotal
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return runs, total, nil
}

// sortColumns lists columns allowed in ORDER BY clauses.
var sortColumns = map[string]bool{
	"created_at":   true,
	"concluded_at": true,
	"workflow":     true,
	"conclusion":   true,
	"trigger":      true,
}

// parseSortClause converts a filter sort string ("-created_at", "workflow")
// into a safe ORDER BY clause. Unknown columns fall back to the default.
func parseSortClause(sort string) string {
	if sort == "" {
		return "created_at DESC"
	}
	dir := "ASC"
	col := sort
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		col = sort[1:]
	}
	if !sortColumns[col] {
		return "created_at DESC"
	}
	return col + " " + dir
}

func queryConcludeRun(ctx context.Context, db executor, id string, conclusion model.Conclusion) (*model.Run, error) {
	now := time.Now().UTC()
	res, err := db.ExecContext(ctx, `
		UPDATE runs SET conclusion = $1, concluded_at = $2 WHERE id = $3`,
		string(conclusion), now, id,
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, sql.ErrNoRows
	}
	return queryGetRun(ctx, db, id)
}

func queryDeleteRun(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryPutOutcome(ctx context.Context, db executor, runID string, o *model.JobOutcome) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, name, result)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id, name) DO UPDATE SET result = EXCLUDED.result`,
		runID, o.Name, string(o.Result),
	)
	return err
}

func queryGetOutcomes(ctx context.Context, db executor, runID string) ([]*model.JobOutcome, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, result FROM outcomes WHERE run_id = $1 ORDER BY name`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []*model.JobOutcome
	for rows.Next() {
		var o model.JobOutcome
		if err := rows.Scan(&o.Name, &o.Result); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, &o)
	}
	return outcomes, rows.Err()
}

func queryRecordEvent(ctx context.Context, db executor, e *model.RunEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO run_events (topic, run_id, actor, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.Topic, e.RunID, nullString(e.Actor), jsonbBytes(e.Payload), e.CreatedAt,
	).Scan(&e.ID)
}

func queryGetEvents(ctx context.Context, db executor, runID string) ([]*model.RunEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, run_id, actor, payload, created_at
		FROM run_events WHERE run_id = $1 ORDER BY created_at, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*model.RunEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
