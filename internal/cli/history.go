package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/polyglot-fetch/internal/storage"
)

func newHistoryCommand(a *app) *cobra.Command {
	var (
		limit   int
		outcome string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded fetches, newest first",
		Long: `List recorded fetches, newest first.

History is only kept across runs with storage.type set to sqlite.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(a.cfg.Storage)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is disabled: set storage.type to sqlite")
			}
			defer store.Close()

			recs, err := store.ListFetches(cmd.Context(), storage.ListOptions{
				Outcome: outcome,
				Limit:   limit,
			})
			if err != nil {
				return err
			}

			if output != "table" {
				if recs == nil {
					recs = []*storage.FetchRecord{}
				}
				return writeValue(cmd.OutOrStdout(), output, recs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tMETHOD\tURL\tOUTCOME\tSTATUS\tDURATION")
			for _, rec := range recs {
				status := "-"
				if rec.StatusCode != 0 {
					status = fmt.Sprint(rec.StatusCode)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					rec.CreatedAt.Local().Format(time.RFC3339), rec.Method, rec.URL,
					rec.Outcome, status, rec.Duration.Round(time.Millisecond))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of records")
	cmd.Flags().StringVar(&outcome, "outcome", "", "only show this outcome (success or an error kind)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")

	return cmd
}
