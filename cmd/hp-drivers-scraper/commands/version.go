package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rgl/hp-drivers-scraper/internal/output"
	"github.com/rgl/hp-drivers-scraper/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		if !asJSON {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			return err
		}
		w := output.NewJSONWriter(cmd.OutOrStdout(), "  ")
		if err := w.Write(version.Get()); err != nil {
			return err
		}
		return w.Close()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("json", false, "print as JSON")
}
