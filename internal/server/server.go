package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/alfredjeanlab/gantry/internal/events"
	"github.com/alfredjeanlab/gantry/internal/model"
	"github.com/alfredjeanlab/gantry/internal/store"
)

// GantryServer serves the run-tracking API: runs are created per pipeline
// execution, collect one outcome per upstream job, and are concluded by the
// gate once every outcome has been reported.
type GantryServer struct {
	store     store.Store
	publisher events.Publisher

	// requireFormat controls whether the format job can block a run's
	// conclusion. When false, format is demoted to optional at evaluation.
	requireFormat bool
}

// NewGantryServer returns a new GantryServer backed by the given store and
// publisher.
func NewGantryServer(s store.Store, p events.Publisher, requireFormat bool) *GantryServer {
	return &GantryServer{
		store:         s,
		publisher:     p,
		requireFormat: requireFormat,
	}
}

// recordAndPublish persists an event to the store and publishes it to NATS.
// Both operations are best-effort; failures are logged but do not block the caller.
func (s *GantryServer) recordAndPublish(ctx context.Context, topic, runID, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "run_id", runID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.RunEvent{
		Topic:   topic,
		RunID:   runID,
		Actor:   actor,
		Payload: payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "run_id", runID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "run_id", runID, "error", err)
	}
}

// inputError indicates invalid user input.
// The HTTP layer maps this to 400 Bad Request.
type inputError string

func (e inputError) Error() string { return string(e) }
