package gate

import (
	"fmt"
	"io"
	"sort"

	"github.com/alfredjeanlab/gantry/internal/model"
	"github.com/alfredjeanlab/gantry/internal/ui"
)

// Dump writes a human-readable listing of all observed outcomes to w,
// sorted by job name. The gate emits this before evaluating so the full
// upstream picture is visible in the log even when the rule fails.
func Dump(w io.Writer, outcomes map[string]model.Result) {
	names := make([]string, 0, len(outcomes))
	for name := range outcomes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		result := outcomes[name]
		var bullet string
		switch {
		case result == model.ResultSkipped:
			bullet = ui.RenderMuted("○")
		case result.Passing():
			bullet = ui.RenderGood("●")
		default:
			bullet = ui.RenderBad("●")
		}
		fmt.Fprintf(w, "  %s %s: %s\n", bullet, name, result)
	}
}
