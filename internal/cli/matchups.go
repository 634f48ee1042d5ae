package cli

import (
	"github.com/spf13/cobra"

	"github.com/riskibarqy/clublocker/internal/app"
	"github.com/riskibarqy/clublocker/internal/usecase"
)

func newMatchupsCommand(rt *runtime) *cobra.Command {
	var (
		limit     int
		unordered bool
	)

	cmd := &cobra.Command{
		Use:   "matchups",
		Short: "Show the most frequent winner/loser pairs",
		Long: `Show the most frequent (winner, loser) pairs. With --rivalries the pairs are
direction-free and each side's wins are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withServices(cmd.Context(), func(s *app.Services) error {
				if unordered {
					rivalries, err := s.Insights.Rivalries(cmd.Context(), limit)
					if err != nil {
						return err
					}
					table := newTable(rt.opts.Out, "PLAYER A", "PLAYER B", "MATCHES", "A WINS", "B WINS")
					for _, r := range rivalries {
						_ = table.Append(r.PlayerA, r.PlayerB, itoa(r.Count), itoa(r.WinsA), itoa(r.WinsB))
					}
					return table.Render()
				}

				matchups, err := s.Insights.Matchups(cmd.Context(), limit)
				if err != nil {
					return err
				}
				table := newTable(rt.opts.Out, "WINNER", "LOSER", "MATCHES")
				for _, m := range matchups {
					_ = table.Append(m.Winner, m.Loser, itoa(m.Count))
				}
				return table.Render()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", usecase.DefaultStatsLimit, "number of pairs to list (0 lists all)")
	cmd.Flags().BoolVar(&unordered, "rivalries", false, "count pairs regardless of who won")
	return cmd
}
