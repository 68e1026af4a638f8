package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantry/internal/client"
)

var runsCmd = &cobra.Command{
	Use:     "runs",
	Short:   "Inspect recorded pipeline runs",
	GroupID: "runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		workflow, _ := cmd.Flags().GetString("workflow")
		trigger, _ := cmd.Flags().GetStringSlice("trigger")
		conclusion, _ := cmd.Flags().GetStringSlice("conclusion")
		ref, _ := cmd.Flags().GetString("ref")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := gantryClient.ListRuns(cmd.Context(), &client.ListRunsRequest{
			Workflow:   workflow,
			Trigger:    trigger,
			Conclusion: conclusion,
			Ref:        ref,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			printRunListJSON(resp.Runs)
			return nil
		}
		printRunListTable(resp.Runs, resp.Total)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run with its outcomes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := gantryClient.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(run.Outcomes) == 0 {
			outcomes, err := gantryClient.GetOutcomes(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			run.Outcomes = outcomes
		}

		if jsonOutput {
			printRunJSON(run)
			return nil
		}
		printRunTable(run)
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run and its outcomes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := gantryClient.DeleteRun(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("run %s deleted\n", args[0])
		return nil
	},
}

var runsConcludeCmd = &cobra.Command{
	Use:   "conclude <run-id>",
	Short: "Conclude a run on the server from its reported outcomes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		required, _ := cmd.Flags().GetStringSlice("required")
		optional, _ := cmd.Flags().GetStringSlice("optional")

		resp, err := gantryClient.ConcludeRun(cmd.Context(), args[0], &client.ConcludeRunRequest{
			Required: required,
			Optional: optional,
			Actor:    actor,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			printRunJSON(resp.Run)
			return nil
		}
		if !resp.Verdict.Success {
			fmt.Printf("%s concluded %s, blocked by: %v\n",
				resp.Run.ID, renderConclusion(resp.Run.Conclusion), resp.Verdict.Blocking)
			return nil
		}
		fmt.Printf("%s concluded %s\n", resp.Run.ID, renderConclusion(resp.Run.Conclusion))
		return nil
	},
}

var runsEventsCmd = &cobra.Command{
	Use:   "events <run-id>",
	Short: "Show the event history of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := gantryClient.GetEvents(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			data, err := json.MarshalIndent(events, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		if len(events) == 0 {
			fmt.Println("no events")
			return nil
		}
		for _, ev := range events {
			fmt.Fprintf(os.Stdout, "[%s] %s %s %s\n",
				ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Topic, ev.Actor, ev.Payload)
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("workflow", "", "filter by workflow name")
	runsListCmd.Flags().StringSlice("trigger", nil, "filter by trigger (pull_request, merge_group, push)")
	runsListCmd.Flags().StringSlice("conclusion", nil, "filter by conclusion (pending, success, failure)")
	runsListCmd.Flags().String("ref", "", "filter by git ref")
	runsListCmd.Flags().Int("limit", 0, "maximum runs to return (0 = server default)")
	runsListCmd.Flags().Int("offset", 0, "number of runs to skip")

	runsConcludeCmd.Flags().StringSlice("required", nil, "jobs that must have passing outcomes (default: all reported)")
	runsConcludeCmd.Flags().StringSlice("optional", nil, "jobs whose outcome never blocks the gate")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsConcludeCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsEventsCmd)
}
