package workflow

import (
	"path"
	"strings"

	"github.com/alfredjeanlab/gantry/internal/model"
)

// Event is the external occurrence a workflow may react to.
type Event struct {
	Trigger model.Trigger

	// Branch is the target branch for push events.
	Branch string

	// ChangedPaths lists the files touched by a pull-request event, used
	// against paths-ignore. Empty means the change set is unknown and the
	// workflow triggers.
	ChangedPaths []string
}

// ShouldTrigger reports whether the workflow runs for the given event.
func (w *Workflow) ShouldTrigger(ev Event) bool {
	switch ev.Trigger {
	case model.TriggerPullRequest:
		pr := w.On.PullRequest
		if pr == nil {
			return false
		}
		return !allIgnored(ev.ChangedPaths, pr.PathsIgnore)
	case model.TriggerMergeGroup:
		return w.On.MergeGroup != nil
	case model.TriggerPush:
		push := w.On.Push
		if push == nil {
			return false
		}
		if len(push.Branches) == 0 {
			return true
		}
		for _, b := range push.Branches {
			if b == ev.Branch {
				return true
			}
		}
		return false
	}
	return false
}

// allIgnored reports whether every changed path matches an ignore pattern.
// A pull request whose changes are confined to ignored paths does not start
// the pipeline. An empty change set never counts as ignored.
func allIgnored(changed, ignore []string) bool {
	if len(changed) == 0 || len(ignore) == 0 {
		return false
	}
	for _, p := range changed {
		ignored := false
		for _, pattern := range ignore {
			if matchPath(pattern, p) {
				ignored = true
				break
			}
		}
		if !ignored {
			return false
		}
	}
	return true
}

// matchPath matches a changed path against an ignore pattern. Patterns are
// path globs; a "dir/**" suffix matches everything under dir.
func matchPath(pattern, p string) bool {
	if pattern == p {
		return true
	}
	if strings.HasSuffix(pattern, "/**") {
		return strings.HasPrefix(p, strings.TrimSuffix(pattern, "**"))
	}
	ok, err := path.Match(pattern, p)
	return err == nil && ok
}
