package model

import (
	"encoding/json"
	"time"
)

// RunEvent is a persisted event record, mirroring what is published to NATS.
type RunEvent struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	RunID     string          `json:"run_id"`
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
