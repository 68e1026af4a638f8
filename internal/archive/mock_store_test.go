package archive

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/alfredjeanlab/gantry/internal/model"
	"github.com/alfredjeanlab/gantry/internal/store"
)

// mockStore is an in-memory store.Store for exercising the exporter.
type mockStore struct {
	runs     map[string]*model.Run
	outcomes map[string][]*model.JobOutcome
	events   []*model.RunEvent
}

func newMockStore() *mockStore {
	return &mockStore{
		runs:     make(map[string]*model.Run),
		outcomes: make(map[string][]*model.JobOutcome),
	}
}

func (m *mockStore) CreateRun(_ context.Context, run *model.Run) error {
	m.runs[run.ID] = run
	return nil
}

func (m *mockStore) GetRun(_ context.Context, id string) (*model.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return r, nil
}

func (m *mockStore) ListRuns(_ context.Context, _ model.RunFilter) ([]*model.Run, int, error) {
	var result []*model.Run
	for _, r := range m.runs {
		result = append(result, r)
	}
	return result, len(result), nil
}

func (m *mockStore) ConcludeRun(_ context.Context, id string, conclusion model.Conclusion) (*model.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	now := time.Now().UTC()
	r.Conclusion = conclusion
	r.ConcludedAt = &now
	return r, nil
}

func (m *mockStore) DeleteRun(_ context.Context, id string) error {
	delete(m.runs, id)
	return nil
}

func (m *mockStore) PutOutcome(_ context.Context, runID string, outcome *model.JobOutcome) error {
	m.outcomes[runID] = append(m.outcomes[runID], outcome)
	return nil
}

func (m *mockStore) GetOutcomes(_ context.Context, runID string) ([]*model.JobOutcome, error) {
	return m.outcomes[runID], nil
}

func (m *mockStore) RecordEvent(_ context.Context, event *model.RunEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, runID string) ([]*model.RunEvent, error) {
	var result []*model.RunEvent
	for _, e := range m.events {
		if e.RunID == runID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

// nonEmptyLines splits s on newlines and drops empty lines.
func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
