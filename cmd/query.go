package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/techpulse/internal/domain"
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Today's most important AI news",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCategory(cmd, domain.CategoryAINews)
	},
}

var phoneCmd = &cobra.Command{
	Use:   "phone",
	Short: "Spec sheet of the latest flagship phone",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCategory(cmd, domain.CategoryPhoneNews)
	},
}

var compareCmd = &cobra.Command{
	Use:     "compare <phone1> <phone2>",
	Short:   "Compare two phones feature by feature",
	Example: `  techpulse compare "Pixel 10" "iPhone 17"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, func(ctx context.Context, a *app) (domain.Record, error) {
			return a.fetcher.Compare(ctx, args[0], args[1])
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <phone>",
	Short: "Look up the spec sheet of any phone",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return runQuery(cmd, func(ctx context.Context, a *app) (domain.Record, error) {
			return a.fetcher.SearchPhone(ctx, query)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <phone>",
	Short: "Market statistics for a phone",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return runQuery(cmd, func(ctx context.Context, a *app) (domain.Record, error) {
			return a.fetcher.QueryStats(ctx, query)
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refetch every cached category now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd.Context(), "")
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		recs, err := a.fetcher.WarmAll(ctx, true)
		out := cmd.OutOrStdout()
		for _, c := range domain.Categories {
			if rec, ok := recs[c]; ok {
				fmt.Fprintf(out, "%-12s refreshed (%s)\n", c, summarize(rec))
			} else {
				fmt.Fprintf(out, "%-12s failed\n", c)
			}
		}
		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{newsCmd, phoneCmd} {
		c.Flags().BoolVar(&flagRefresh, "refresh", false, "bypass the cache")
	}
	for _, c := range []*cobra.Command{newsCmd, phoneCmd, compareCmd, searchCmd, statsCmd} {
		c.Flags().BoolVar(&flagJSON, "json", false, "print the record as JSON")
	}
}

func runCategory(cmd *cobra.Command, c domain.Category) error {
	return runQuery(cmd, func(ctx context.Context, a *app) (domain.Record, error) {
		return a.fetcher.FetchCategory(ctx, c, flagRefresh)
	})
}

func runQuery(cmd *cobra.Command, run func(ctx context.Context, a *app) (domain.Record, error)) error {
	a, err := setup(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	rec, err := run(ctx, a)
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(cmd.OutOrStdout(), rec)
	}
	printRecord(cmd.OutOrStdout(), rec)
	return nil
}

func printJSON(w io.Writer, rec domain.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func printRecord(w io.Writer, rec domain.Record) {
	switch r := rec.(type) {
	case domain.AINewsList:
		if len(r.Items) == 0 {
			fmt.Fprintln(w, "No stories today.")
		}
		for i, item := range r.Items {
			fmt.Fprintf(w, "%d. %s\n   %s\n   %s\n", i+1, item.Title, item.Description, item.URL)
			if i < len(r.Items)-1 {
				fmt.Fprintln(w)
			}
		}
	case domain.PhoneSpecSheet:
		if r.Name != "" {
			fmt.Fprintf(w, "%s\n\n", r.Name)
		}
		for _, row := range r.Rows() {
			fmt.Fprintf(w, "%-20s %s\n", row[0], row[1])
		}
	case domain.ComparisonResult:
		fmt.Fprintf(w, "%-20s %-30s %s\n", "", r.Phone1, r.Phone2)
		for _, s := range r.Specs {
			fmt.Fprintf(w, "%-20s %-30s %s\n", domain.SpecLabel(s.Feature), s.Phone1, s.Phone2)
		}
		better := r.BetterPhone
		if r.IsTie() {
			better = "too close to call"
		}
		fmt.Fprintf(w, "\nBetter phone: %s\n", better)
		if r.Verdict != "" {
			fmt.Fprintf(w, "%s\n", r.Verdict)
		}
	case domain.StatsResult:
		fmt.Fprintf(w, "%s\n\n", r.Query)
		if len(r.Fields) == 0 {
			fmt.Fprintln(w, "No statistics published.")
		}
		for _, k := range r.Keys() {
			fmt.Fprintf(w, "%-20s %s\n", domain.StatLabel(k), r.Value(k))
		}
	}
}

func summarize(rec domain.Record) string {
	switch r := rec.(type) {
	case domain.AINewsList:
		return fmt.Sprintf("%d stories", len(r.Items))
	case domain.PhoneSpecSheet:
		if r.Name != "" {
			return r.Name
		}
		return "spec sheet"
	}
	return string(rec.Kind())
}
