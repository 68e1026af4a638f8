package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alfredjeanlab/gantry/internal/model"
	"github.com/alfredjeanlab/gantry/internal/ui"
)

func printRunJSON(run *model.Run) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRunTable(run *model.Run) {
	fmt.Printf("ID:           %s\n", run.ID)
	fmt.Printf("Workflow:     %s\n", run.Workflow)
	fmt.Printf("Trigger:      %s\n", run.Trigger)
	if run.Ref != "" {
		fmt.Printf("Ref:          %s\n", run.Ref)
	}
	if run.HeadSHA != "" {
		fmt.Printf("Head SHA:     %s\n", run.HeadSHA)
	}
	fmt.Printf("Conclusion:   %s\n", renderConclusion(run.Conclusion))
	fmt.Printf("Created By:   %s\n", run.CreatedBy)
	if !run.CreatedAt.IsZero() {
		fmt.Printf("Created At:   %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if run.ConcludedAt != nil {
		fmt.Printf("Concluded At: %s\n", run.ConcludedAt.Format("2006-01-02 15:04:05"))
	}
	if len(run.Outcomes) > 0 {
		fmt.Println("Outcomes:")
		printOutcomes(run.Outcomes)
	}
}

func printOutcomes(outcomes []*model.JobOutcome) {
	for _, o := range outcomes {
		fmt.Printf("  %s: %s\n", o.Name, renderResult(o.Result))
	}
}

func printRunListJSON(runs []*model.Run) {
	data, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRunListTable(runs []*model.Run, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWORKFLOW\tTRIGGER\tCONCLUSION\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Workflow,
			r.Trigger,
			renderConclusion(r.Conclusion),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()
	fmt.Printf("\n%d runs (%d total)\n", len(runs), total)
}

func renderConclusion(c model.Conclusion) string {
	switch c {
	case model.ConclusionSuccess:
		return ui.RenderGood(c.String())
	case model.ConclusionFailure:
		return ui.RenderBad(c.String())
	default:
		return ui.RenderMuted(c.String())
	}
}

func renderResult(r model.Result) string {
	switch r {
	case model.ResultSuccess:
		return ui.RenderGood(r.String())
	case model.ResultFailure, model.ResultCancelled:
		return ui.RenderBad(r.String())
	default:
		return ui.RenderMuted(r.String())
	}
}
