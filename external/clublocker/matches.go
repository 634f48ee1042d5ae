package clublocker

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
	"github.com/riskibarqy/clublocker/internal/domain/match"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	"github.com/riskibarqy/clublocker/internal/domain/tournament"
)

const (
	liveMatrixPath = "/res/trn/live_matrix"
	kindMatches    = "matches"
)

type dayTask struct {
	tournamentID int64
	date         string
}

type dayResult struct {
	records []map[string]any
	gap     *sweep.Gap
	err     error
}

// FetchMatches requests the live matrix for every date of every tournament.
// Requests run on a bounded worker pool; results are merged in
// (tournament id, date) order, so the first occurrence of a duplicated
// match id is deterministic.
func (c *Client) FetchMatches(ctx context.Context, tournaments []tournament.Tournament, progress sweep.ProgressFunc) (sweep.Result[match.Raw], error) {
	report := sweep.NewReport(kindMatches, c.now())
	sweepCtx, cancel := c.sweepContext(ctx)
	defer cancel()

	ordered := append([]tournament.Tournament(nil), tournaments...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TournamentID < ordered[j].TournamentID
	})

	tasks := make([]dayTask, 0, tournament.RequestCount(ordered))
	pending := make(map[int64]int, len(ordered))
	for _, item := range ordered {
		for _, day := range calendar.DaysInclusive(item.StartDate, item.EndDate) {
			tasks = append(tasks, dayTask{tournamentID: item.TournamentID, date: day.Format(calendar.DateLayout)})
			pending[item.TournamentID]++
		}
	}
	totalTournaments := len(pending)

	results := make([]dayResult, len(tasks))
	if len(tasks) > 0 {
		if err := c.runDayTasks(ctx, sweepCtx, tasks, results, pending, totalTournaments, progress); err != nil {
			return sweep.Result[match.Raw]{Report: report}, err
		}
	}

	seen := make(map[int64]struct{}, len(tasks))
	out := make([]match.Raw, 0, len(tasks))
	for i, res := range results {
		report.Requests++
		if res.err != nil {
			return sweep.Result[match.Raw]{Report: report}, crerr.Wrapf(res.err, "fetch matches tournament_id=%d date=%s", tasks[i].tournamentID, tasks[i].date)
		}
		if res.gap != nil {
			report.AddGap(*res.gap)
			continue
		}
		for _, record := range res.records {
			if len(record) <= 1 {
				report.Drops.Add(sweep.DropPlaceholder, 1)
				continue
			}
			raw, parseErr := c.parseMatch(record, tasks[i].tournamentID)
			if parseErr != nil {
				report.Drops.Add(sweep.DropMalformed, 1)
				c.logger.DebugContext(ctx, "skip malformed match", "tournament_id", tasks[i].tournamentID, "error", parseErr)
				continue
			}
			if _, dup := seen[raw.MatchID]; dup {
				report.Drops.Add(sweep.DropDuplicate, 1)
				continue
			}
			seen[raw.MatchID] = struct{}{}
			out = append(out, raw)
		}
	}

	report.Records = len(out)
	report.FinishedAt = c.now()
	c.logger.InfoContext(ctx, "match sweep finished",
		"tournaments", totalTournaments,
		"records", report.Records,
		"requests", report.Requests,
		"gaps", len(report.Gaps),
		"dropped", report.Drops.Total(),
	)

	if len(out) == 0 {
		return sweep.Result[match.Raw]{Report: report}, crerr.Wrapf(ErrEmptyDataset, "matches: %d of %d requests failed", len(report.Gaps), report.Requests)
	}
	return sweep.Result[match.Raw]{Records: out, Report: report}, nil
}

func (c *Client) runDayTasks(
	ctx, sweepCtx context.Context,
	tasks []dayTask,
	results []dayResult,
	pending map[int64]int,
	totalTournaments int,
	progress sweep.ProgressFunc,
) error {
	pool, err := ants.NewPool(min(c.workers, len(tasks)))
	if err != nil {
		return crerr.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	var (
		workers  sync.WaitGroup
		mu       sync.Mutex
		finished int
	)
	complete := func(tournamentID int64) {
		mu.Lock()
		defer mu.Unlock()
		pending[tournamentID]--
		if pending[tournamentID] > 0 {
			return
		}
		finished++
		c.logger.DebugContext(ctx, "tournament matches fetched", "tournament_id", tournamentID, "done", finished, "total", totalTournaments)
		if progress != nil {
			progress(sweep.Progress{Done: finished, Total: totalTournaments})
		}
	}

	for i, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			defer complete(task.tournamentID)

			query := url.Values{}
			query.Set("date", task.date)
			query.Set("tournamentId", strconv.FormatInt(task.tournamentID, 10))
			records, gap, fetchErr := c.fetchPage(ctx, sweepCtx, kindMatches, liveMatrixPath, query)
			results[i] = dayResult{records: records, gap: gap, err: fetchErr}
		}); err != nil {
			workers.Done()
			workers.Wait()
			return crerr.Wrap(err, "submit task to worker pool")
		}
	}

	workers.Wait()
	return nil
}
