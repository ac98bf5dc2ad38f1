package cmd

import (
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/techpulse/internal/config"
	"github.com/matheuskafuri/techpulse/internal/tui"
)

func runTUI(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal, so logs go to a file.
	a, err := setup(cmd.Context(), config.LogPath())
	if err != nil {
		return err
	}
	defer a.close()

	return tui.Run(tui.RunOpts{
		Fetcher: a.fetcher,
		Logger:  a.logger.Named("tui"),
		Refresh: flagRefresh,
		Timeout: flagTimeout,
	})
}
