package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/gantry/internal/model"
	"github.com/alfredjeanlab/gantry/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunCount  int       `json:"run_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes all runs from the store as JSONL to w. Runs are sorted
// by ID and include their job outcomes.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	// Fetch all runs (no filter, no cap).
	runs, _, err := s.ListRuns(ctx, model.RunFilter{Sort: "created_at", Limit: -1})
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	// Populate outcomes for each run.
	for _, r := range runs {
		outcomes, err := s.GetOutcomes(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("get outcomes for %s: %w", r.ID, err)
		}
		r.Outcomes = outcomes
	}

	// Sort runs by ID.
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].ID < runs[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	// Write header.
	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Timestamp: time.Now().UTC(),
		RunCount:  len(runs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	// Write runs.
	for _, r := range runs {
		if err := enc.Encode(record{Type: "run", Data: r}); err != nil {
			return fmt.Errorf("encode run %s: %w", r.ID, err)
		}
	}

	return nil
}
