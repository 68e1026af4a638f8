package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantry/internal/ui"
	"github.com/alfredjeanlab/gantry/internal/workflow"
)

var workflowCmd = &cobra.Command{
	Use:     "workflow",
	Short:   "Validate and inspect pipeline definitions",
	GroupID: "pipeline",
}

var workflowLintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Check a workflow definition for structural errors",
	Long: `Parses the workflow YAML and verifies the job graph: every needs
reference resolves, the graph is acyclic, and exactly one conclusion job
exists that needs every other job and carries if: always().`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workflow.ParseFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: %d jobs, conclusion job %q\n",
			ui.RenderGood("ok"), args[0], len(w.Jobs), w.GateJob())
		return nil
	},
}

var workflowGraphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Print the job graph in dependency order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := workflow.ParseFile(args[0])
		if err != nil {
			return err
		}

		order := w.TopoOrder()
		gateName := w.GateJob()

		if jsonOutput {
			type node struct {
				Name   string   `json:"name"`
				Needs  []string `json:"needs,omitempty"`
				Combos int      `json:"combos"`
				Gate   bool     `json:"gate,omitempty"`
			}
			nodes := make([]node, 0, len(order))
			for _, name := range order {
				job := w.Jobs[name]
				nodes = append(nodes, node{
					Name:   name,
					Needs:  job.Needs,
					Combos: len(job.MatrixCombos()),
					Gate:   name == gateName,
				})
			}
			data, err := json.MarshalIndent(nodes, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		for _, name := range order {
			job := w.Jobs[name]
			label := name
			if name == gateName {
				label = ui.RenderAccent(name) + " (conclusion)"
			}
			if combos := len(job.MatrixCombos()); combos > 1 {
				label += fmt.Sprintf(" x%d", combos)
			}
			if len(job.Needs) == 0 {
				fmt.Println(label)
				continue
			}
			fmt.Printf("%s <- %s\n", label, strings.Join(job.Needs, ", "))
		}
		return nil
	},
}

func init() {
	workflowCmd.AddCommand(workflowLintCmd)
	workflowCmd.AddCommand(workflowGraphCmd)
}
