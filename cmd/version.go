package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/techpulse/internal/logging"
	"github.com/matheuskafuri/techpulse/internal/update"
)

var flagCheck bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "techpulse %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return nil
		}

		logger, err := logging.New(logging.Options{Verbose: flagVerbose})
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		checker := &update.Checker{Logger: logger}
		if res := checker.Check(cmd.Context(), version); res != nil {
			fmt.Fprintf(out, "A newer release is available: %s\n", res.LatestVersion)
		} else {
			fmt.Fprintln(out, "You are up to date.")
		}
		return nil
	},
}
