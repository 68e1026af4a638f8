package main

import (
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantry/internal/client"
	"github.com/alfredjeanlab/gantry/internal/ui"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool
	noColor    bool
	actor      string

	gantryClient client.GantryClient
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

func defaultServer() string {
	if s := os.Getenv("GANTRY_SERVER"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if t := os.Getenv("GANTRY_AUTH_TOKEN"); t != "" {
		return t
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:   "gantry <command>",
	Short: "Conclusion gate and run tracking for CI pipelines",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.ForceNoColor()
		} else {
			ui.Init()
		}
		gantryClient = client.NewHTTPClient(serverURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if gantryClient != nil {
			gantryClient.Close()
			gantryClient = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "gantry server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for authentication")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor name for created_by fields")

	rootCmd.AddGroup(
		&cobra.Group{ID: "gate", Title: "Gate:"},
		&cobra.Group{ID: "runs", Title: "Runs:"},
		&cobra.Group{ID: "pipeline", Title: "Pipeline:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	// Gate
	rootCmd.AddCommand(concludeCmd)
	rootCmd.AddCommand(reportCmd)

	// Runs
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(watchCmd)

	// Pipeline
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(workflowCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	err := rootCmd.Execute()
	// PersistentPostRun is skipped when a command errors; close here so the
	// client is torn down on every path.
	if gantryClient != nil {
		gantryClient.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
