package clublocker

import (
	"context"
	"net/url"
	"strconv"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	"github.com/riskibarqy/clublocker/internal/domain/tournament"
)

const (
	tournamentsPath = "/tournaments"
	kindTournaments = "tournaments"
)

// tournamentStatuses are swept in this order; each record is tagged with
// the label of the status it was fetched under.
var tournamentStatuses = []struct {
	code  int
	label string
}{
	{code: 1, label: tournament.TypeScheduled},
	{code: 3, label: tournament.TypeResults},
}

// FetchTournaments sweeps the scheduled and results tournament listings.
func (c *Client) FetchTournaments(ctx context.Context) (sweep.Result[tournament.Raw], error) {
	report := sweep.NewReport(kindTournaments, c.now())
	sweepCtx, cancel := c.sweepContext(ctx)
	defer cancel()

	out := make([]tournament.Raw, 0, 512)
	for _, status := range tournamentStatuses {
		query := url.Values{}
		query.Set("TopRecords", "500")
		query.Set("ngbId", "10142")
		query.Set("OrganizerType", "1")
		query.Set("Sanctioned", "1")
		query.Set("Status", strconv.Itoa(status.code))

		report.Requests++
		records, gap, err := c.fetchPage(ctx, sweepCtx, kindTournaments, tournamentsPath, query)
		if err != nil {
			return sweep.Result[tournament.Raw]{Report: report}, crerr.Wrapf(err, "fetch %s tournaments", status.label)
		}
		if gap != nil {
			report.AddGap(*gap)
			continue
		}

		for _, record := range records {
			raw, parseErr := c.parseTournament(record, status.label)
			if parseErr != nil {
				report.Drops.Add(sweep.DropMalformed, 1)
				c.logger.DebugContext(ctx, "skip malformed tournament", "status", status.label, "error", parseErr)
				continue
			}
			out = append(out, raw)
		}
	}

	report.Records = len(out)
	report.FinishedAt = c.now()
	c.logger.InfoContext(ctx, "tournament sweep finished",
		"records", report.Records,
		"requests", report.Requests,
		"gaps", len(report.Gaps),
		"dropped", report.Drops.Total(),
	)

	if len(out) == 0 {
		return sweep.Result[tournament.Raw]{Report: report}, crerr.Wrapf(ErrEmptyDataset, "tournaments: %d of %d requests failed", len(report.Gaps), report.Requests)
	}
	return sweep.Result[tournament.Raw]{Records: out, Report: report}, nil
}
