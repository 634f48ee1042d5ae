package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/clublocker/internal/app"
	"github.com/riskibarqy/clublocker/internal/usecase"
)

func newSummaryCommand(rt *runtime) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show record counts, date ranges and the most active players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withServices(cmd.Context(), func(s *app.Services) error {
				summary, err := s.Insights.Summary(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(rt.opts.Out, "\n=== Club Locker datasets (%s) ===\n\n", summary.Date)
				table := newTable(rt.opts.Out, "DATASET", "RECORDS", "FROM", "TO", "COMPLETE", "DROPPED")
				rows := []struct {
					name string
					ds   usecase.DatasetSummary
				}{
					{"tournaments", summary.Tournaments},
					{"matches", summary.Matches},
					{"rankings", summary.Rankings},
				}
				for _, row := range rows {
					_ = table.Append(row.name, itoa(row.ds.Count), formatDate(row.ds.From), formatDate(row.ds.To),
						yesNo(row.ds.Complete), itoa(row.ds.Dropped))
				}
				if err := table.Render(); err != nil {
					return err
				}

				if limit == 0 {
					return nil
				}
				players, err := s.Insights.ActivePlayers(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.opts.Out, "\n--- Most Active Players ---\n\n")
				pt := newTable(rt.opts.Out, "PLAYER", "MATCHES", "WINS", "LOSSES")
				for _, p := range players {
					_ = pt.Append(p.Name, itoa(p.TotalMatches), itoa(p.Wins), itoa(p.Losses))
				}
				return pt.Render()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", usecase.DefaultStatsLimit, "number of active players to list (0 hides the table)")
	return cmd
}
