package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/drawcheck/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		printVersion(cmd)
		return nil
	},
}

func printVersion(cmd *cobra.Command) {
	v, commit, date := version.Info()
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "drawcheck version %s\n", v)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", commit)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", date)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
