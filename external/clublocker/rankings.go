package clublocker

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/clublocker/internal/domain/ranking"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
)

const kindRankings = "rankings"

type divisionResult struct {
	records  []ranking.Raw
	gaps     []sweep.Gap
	requests int
}

// FetchRankings pages through every configured division until a page comes
// back empty. Divisions are fetched concurrently and merged in configured
// order.
func (c *Client) FetchRankings(ctx context.Context) (sweep.Result[ranking.Raw], error) {
	report := sweep.NewReport(kindRankings, c.now())
	sweepCtx, cancel := c.sweepContext(ctx)
	defer cancel()

	slots := make([]divisionResult, len(c.rankingDivisions))
	p := pool.New().WithErrors().WithMaxGoroutines(len(c.rankingDivisions))
	for i, division := range c.rankingDivisions {
		p.Go(func() error {
			res, err := c.fetchDivision(ctx, sweepCtx, division)
			slots[i] = res
			return err
		})
	}
	if err := p.Wait(); err != nil {
		return sweep.Result[ranking.Raw]{Report: report}, err
	}

	out := make([]ranking.Raw, 0, 1024)
	for _, slot := range slots {
		report.Requests += slot.requests
		for _, gap := range slot.gaps {
			report.AddGap(gap)
		}
		out = append(out, slot.records...)
	}

	report.Records = len(out)
	report.FinishedAt = c.now()
	c.logger.InfoContext(ctx, "ranking sweep finished",
		"divisions", len(c.rankingDivisions),
		"records", report.Records,
		"requests", report.Requests,
		"gaps", len(report.Gaps),
	)

	if len(out) == 0 {
		return sweep.Result[ranking.Raw]{Report: report}, crerr.Wrapf(ErrEmptyDataset, "rankings: %d of %d requests failed", len(report.Gaps), report.Requests)
	}
	return sweep.Result[ranking.Raw]{Records: out, Report: report}, nil
}

func (c *Client) fetchDivision(ctx, sweepCtx context.Context, division int) (divisionResult, error) {
	var res divisionResult
	path := fmt.Sprintf("/rankings/%d/current", c.rankingGroup)

	for page := 1; page <= c.maxRankingPages; page++ {
		query := url.Values{}
		query.Set("divisions", strconv.Itoa(division))
		query.Set("pageNumber", strconv.Itoa(page))

		res.requests++
		records, gap, err := c.fetchPage(ctx, sweepCtx, kindRankings, path, query)
		if err != nil {
			return res, crerr.Wrapf(err, "fetch rankings division=%d page=%d", division, page)
		}
		if gap != nil {
			res.gaps = append(res.gaps, *gap)
			if gap.Reason == sweep.GapDeadline {
				break
			}
			continue
		}
		if len(records) == 0 {
			break
		}
		for _, record := range records {
			res.records = append(res.records, ranking.Raw{DivisionID: division, Page: page, Fields: record})
		}
	}
	return res, nil
}
