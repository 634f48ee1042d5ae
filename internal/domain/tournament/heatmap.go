package tournament

import "github.com/riskibarqy/clublocker/internal/domain/calendar"

// MatchesHeatmap sums NumMatches by start year (rows) and month (columns).
func MatchesHeatmap(items []Tournament) *calendar.Heatmap {
	h := calendar.NewHeatmap("year", "month")
	for _, item := range items {
		h.Add(item.Year, item.Month, item.NumMatches)
	}
	return h
}
