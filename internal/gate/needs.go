package gate

import (
	"encoding/json"
	"fmt"

	"github.com/alfredjeanlab/gantry/internal/model"
)

// needsEntry mirrors the runner's per-job needs context object. Fields other
// than "result" (outputs, etc.) are ignored.
type needsEntry struct {
	Result model.Result `json:"result"`
}

// ParseNeeds decodes the runner-injected needs context -- a JSON object
// mapping job name to {"result": "..."} -- into an explicit outcome map.
// Results outside the closed enum are rejected.
func ParseNeeds(data []byte) (map[string]model.Result, error) {
	var raw map[string]needsEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding needs context: %w", err)
	}

	outcomes := make(map[string]model.Result, len(raw))
	for name, entry := range raw {
		if !entry.Result.IsValid() {
			return nil, fmt.Errorf("job %q has unknown result %q", name, entry.Result)
		}
		outcomes[name] = entry.Result
	}
	return outcomes, nil
}
