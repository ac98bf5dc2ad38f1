package cmd

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/techpulse/internal/domain"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local cache",
}

var cacheLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List cached entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), "")
		if err != nil {
			return err
		}
		defer a.close()

		infos, err := a.store.List(cmd.Context())
		if err != nil {
			return errors.Wrap(err, "listing cache")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cache: %s (%s)\n", a.cfg.Cache.Backend, cacheLocation(a.cfg.Cache.Backend, a.cfg.CacheTarget()))
		if len(infos) == 0 {
			fmt.Fprintln(out, "No entries.")
			return nil
		}

		now := time.Now()
		ttl := a.cfg.TTL()
		for _, info := range infos {
			age := now.Sub(time.UnixMilli(info.Timestamp))
			state := "fresh"
			if age >= ttl {
				state = "stale"
			}
			fmt.Fprintf(out, "%-20s v%-3d %-6s %8s old  %s\n",
				info.Key, info.Version, state, formatAge(age), formatBytes(int64(info.Size)))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:       "clear [category]",
	Short:     "Delete cached entries (all, or one category)",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(domain.CategoryAINews), string(domain.CategoryPhoneNews)},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), "")
		if err != nil {
			return err
		}
		defer a.close()

		keys, err := keysToClear(cmd, a, args)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := a.store.Delete(cmd.Context(), k); err != nil {
				return errors.Wrapf(err, "deleting %s", k)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d entr%s.\n", len(keys), plural(len(keys), "y", "ies"))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheLsCmd, cacheClearCmd)
}

func keysToClear(cmd *cobra.Command, a *app, args []string) ([]string, error) {
	if len(args) == 1 {
		c, ok := domain.ParseCategory(args[0])
		if !ok {
			return nil, errors.Errorf("unknown category %q (valid: %s, %s)", args[0], domain.CategoryAINews, domain.CategoryPhoneNews)
		}
		return []string{a.fetcher.CacheKey(c)}, nil
	}

	infos, err := a.store.List(cmd.Context())
	if err != nil {
		return nil, errors.Wrap(err, "listing cache")
	}
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	return keys, nil
}

func cacheLocation(backend, target string) string {
	if backend == "memory" {
		return "in-process, empty at start"
	}
	return target
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
