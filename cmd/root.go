package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/techpulse/internal/errs"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagVerbose bool
	flagTimeout time.Duration
	flagRefresh bool
	flagJSON    bool
)

var rootCmd = &cobra.Command{
	Use:   "techpulse",
	Short: "AI news and phone specs from your terminal",
	Long: `techpulse asks a generative-AI backend with live web search for today's
AI news, the latest flagship phone, phone comparisons, spec lookups and
market statistics. News categories are cached locally for a few hours.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "bound each AI call (e.g. 45s); 0 means no limit")
	rootCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "bypass the cache for the first view")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newsCmd, phoneCmd, compareCmd, searchCmd, statsCmd, refreshCmd)
	rootCmd.AddCommand(cacheCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errs.Classify(err) != errs.ClassUnknown {
			fmt.Fprintln(os.Stderr, errs.UserMessage(err))
		}
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
