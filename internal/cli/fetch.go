package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/clublocker/internal/app"
	"github.com/riskibarqy/clublocker/internal/domain/snapshot"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
)

func newFetchCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Load today's datasets, fetching whatever is not yet in a snapshot",
		Long: `Load the tournament, match and ranking datasets for today's snapshot date.
Datasets already captured today are read from their snapshot; the rest are
fetched from Club Locker and persisted. The sweep report of each dataset is
printed afterwards, including requests that returned no data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withServices(cmd.Context(), func(s *app.Services) error {
				progress := func(p sweep.Progress) {
					fmt.Fprintf(rt.opts.Err, "\rmatches: %d/%d tournaments (%.0f%%)", p.Done, p.Total, 100*p.Fraction())
					if p.Done == p.Total {
						fmt.Fprintln(rt.opts.Err)
					}
				}
				all, err := s.Datasets.LoadAll(cmd.Context(), progress)
				if err != nil {
					return err
				}

				counts := map[snapshot.Kind]int{
					snapshot.KindTournaments: len(all.Tournaments.Items),
					snapshot.KindMatches:     len(all.Matches.Items),
					snapshot.KindRankings:    len(all.Rankings.Items),
				}
				cached := map[snapshot.Kind]bool{
					snapshot.KindTournaments: all.Tournaments.FromCache,
					snapshot.KindMatches:     all.Matches.FromCache,
					snapshot.KindRankings:    all.Rankings.FromCache,
				}

				fmt.Fprintf(rt.opts.Out, "\nSnapshot date: %s\n\n", s.Datasets.Today())
				reports := all.Reports()
				table := newTable(rt.opts.Out, "DATASET", "RECORDS", "REQUESTS", "GAPS", "DROPPED", "FROM SNAPSHOT")
				for _, kind := range snapshot.Kinds {
					report := reports[kind]
					_ = table.Append(string(kind), itoa(counts[kind]), itoa(report.Requests),
						itoa(len(report.Gaps)), itoa(report.Drops.Total()), yesNo(cached[kind]))
				}
				if err := table.Render(); err != nil {
					return err
				}

				printDrops(rt, reports)
				return nil
			})
		},
	}
}

func printDrops(rt *runtime, reports map[snapshot.Kind]sweep.Report) {
	for _, kind := range snapshot.Kinds {
		report := reports[kind]
		reasons := report.Drops.Reasons()
		if len(reasons) == 0 {
			continue
		}
		parts := make([]string, 0, len(reasons))
		for _, reason := range reasons {
			parts = append(parts, fmt.Sprintf("%s=%d", reason, report.Drops[reason]))
		}
		fmt.Fprintf(rt.opts.Out, "%s dropped: %s\n", kind, strings.Join(parts, " "))
	}
}
