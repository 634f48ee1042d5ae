package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/clublocker/internal/app"
)

func newCleanCommand(rt *runtime) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete the snapshots of one day so the next load refetches them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withServices(cmd.Context(), func(s *app.Services) error {
				if date == "" {
					date = s.Datasets.Today()
				}
				removed, err := s.Datasets.Purge(cmd.Context(), date)
				if err != nil {
					return err
				}
				fmt.Fprintf(rt.opts.Out, "Removed %d snapshot(s) for %s.\n", removed, date)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "snapshot date to delete, YYYY-MM-DD (default today)")
	return cmd
}
