package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gantry/internal/manifest"
)

var featuresCmd = &cobra.Command{
	Use:     "features",
	Short:   "Inspect the backend feature-flag manifest",
	GroupID: "pipeline",
}

// loadManifest returns the manifest named by --manifest, or the embedded
// default when the flag is empty.
func loadManifest(cmd *cobra.Command) (*manifest.Manifest, error) {
	path, _ := cmd.Flags().GetString("manifest")
	if path == "" {
		return manifest.Default(), nil
	}
	return manifest.Load(path)
}

var featuresListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all declared feature flags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest(cmd)
		if err != nil {
			return err
		}

		if jsonOutput {
			out := map[string]any{
				"package":  m.Package,
				"flags":    m.Flags(),
				"backends": m.Backends,
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FLAG\tKIND\tENABLES")
		for _, flag := range m.Flags() {
			kind := "feature"
			if m.IsBackend(flag) {
				kind = "backend"
			}
			fmt.Fprintf(w, "%s\t%s\t%d entries\n", flag, kind, len(m.Features[flag]))
		}
		return w.Flush()
	},
}

var featuresResolveCmd = &cobra.Command{
	Use:   "resolve <flag>...",
	Short: "Expand selected flags to the full enabled-feature set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest(cmd)
		if err != nil {
			return err
		}

		enabled, err := m.Resolve(args)
		if err != nil {
			return err
		}
		backend, err := m.Backend(args)
		if err != nil {
			return err
		}

		if jsonOutput {
			out := map[string]any{
				"selected": args,
				"enabled":  enabled,
				"backend":  backend,
			}
			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		if backend != "" {
			fmt.Printf("backend: %s\n", backend)
		} else {
			fmt.Println("backend: (none)")
		}
		for _, e := range enabled {
			fmt.Printf("  %s\n", e)
		}
		return nil
	},
}

func init() {
	featuresCmd.PersistentFlags().String("manifest", "", "path to a manifest TOML (default: built-in)")
	featuresCmd.AddCommand(featuresListCmd)
	featuresCmd.AddCommand(featuresResolveCmd)
}
