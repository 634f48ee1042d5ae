package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/clublocker/internal/app"
)

func newPlayersCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "players [name]",
		Short: "List player names, or the matches of players matching name",
		Long: `Without an argument, list every player name seen in the match dataset.
With a name, list the matches whose home or visitor player contains it,
ignoring case, newest match first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withServices(cmd.Context(), func(s *app.Services) error {
				if len(args) == 0 {
					names, err := s.Insights.PlayerNames(cmd.Context())
					if err != nil {
						return err
					}
					for _, name := range names {
						fmt.Fprintln(rt.opts.Out, name)
					}
					return nil
				}

				results, err := s.Insights.PlayerMatches(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(results) == 0 {
					fmt.Fprintf(rt.opts.Out, "No matches found for %q.\n", args[0])
					return nil
				}
				table := newTable(rt.opts.Out, "MATCH", "DATE", "HOME", "VISITOR", "WINNER", "SCORE", "RALLIES", "WIN")
				for _, r := range results {
					score := r.ScoreShort
					if strings.TrimSpace(score) == "" {
						score = "-"
					}
					_ = table.Append(fmt.Sprintf("%d", r.MatchID), r.MatchDate.Format("2006-01-02"),
						r.HomePlayerName, r.VisitorPlayerName, r.WinnerPlayerName, score, itoa(r.TotalRallies), yesNo(r.Win))
				}
				return table.Render()
			})
		},
	}
}
