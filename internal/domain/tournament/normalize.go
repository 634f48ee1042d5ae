package tournament

import (
	"sort"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
)

// Normalize keeps tournaments that have both matches and players, derives
// their calendar fields and orders them by start date. Ties keep fetch order.
func Normalize(raws []Raw) ([]Tournament, sweep.Drops) {
	drops := sweep.Drops{}
	out := make([]Tournament, 0, len(raws))
	for _, raw := range raws {
		if raw.NumMatches <= 0 || raw.NumPlayers <= 0 {
			drops.Add(sweep.DropCounts, 1)
			continue
		}
		out = append(out, Tournament{
			Raw:              raw,
			StartDateOrdinal: calendar.Ordinal(raw.StartDate),
			CovidEra:         Era(raw.StartDate),
			Fields:           calendar.Derive(raw.StartDate),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, drops
}

// RequestCount is the number of per-day match requests a sweep over these
// tournaments issues.
func RequestCount(items []Tournament) int {
	total := 0
	for _, item := range items {
		total += len(calendar.DaysInclusive(item.StartDate, item.EndDate))
	}
	return total
}

// FindByID returns the tournament with the given id.
func FindByID(items []Tournament, id int64) (Tournament, bool) {
	for _, item := range items {
		if item.TournamentID == id {
			return item, true
		}
	}
	return Tournament{}, false
}
