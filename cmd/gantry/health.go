package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check server connectivity",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := gantryClient.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}
		fmt.Printf("%s (%s)\n", status, serverURL)
		return nil
	},
}
