// Package cli implements discoveryctl, an offline tool that runs the
// discovery and rating logic over JSON snapshots.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the discoveryctl root command with every subcommand.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "discoveryctl",
		Short: "Inspect product listings and ratings offline",
		Long: `discoveryctl applies the discovery service's filtering, sorting,
related-product and rating rules to local JSON files and prints the
result as JSON.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewStatsCmd())
	root.AddCommand(NewFilterCmd())
	root.AddCommand(NewRelatedCmd())
	root.AddCommand(NewValidateCmd())

	return root
}

// readJSONFile decodes path into v. A path of "-" reads from in.
func readJSONFile(path string, in io.Reader, v any) error {
	r := in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
