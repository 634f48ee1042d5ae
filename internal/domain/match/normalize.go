package match

import (
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
	"github.com/riskibarqy/clublocker/internal/domain/sweep"
)

// Normalize derives scoring fields, drops matches that fail the retention
// rules, removes duplicate match ids (first occurrence wins) and orders the
// result by match date. Every dropped record is counted under the first rule
// it fails.
func Normalize(raws []Raw) ([]Match, sweep.Drops) {
	drops := sweep.Drops{}
	seen := make(map[int64]struct{}, len(raws))
	out := make([]Match, 0, len(raws))

	for _, raw := range raws {
		item, reason := derive(raw)
		if reason != "" {
			drops.Add(reason, 1)
			continue
		}
		if _, dup := seen[item.MatchID]; dup {
			drops.Add(sweep.DropDuplicate, 1)
			continue
		}
		seen[item.MatchID] = struct{}{}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchDate.Before(out[j].MatchDate)
	})
	return out, drops
}

func derive(raw Raw) (Match, string) {
	raw.HomePlayerName = NormalizeName(raw.HomePlayerName)
	raw.VisitorPlayerName = NormalizeName(raw.VisitorPlayerName)
	item := Match{Raw: raw}

	for i, game := range raw.Games {
		item.GameScores[i] = scoreOrZero(game.WinnerScore) + scoreOrZero(game.OpponentScore)
		if item.GameScores[i] != 0 {
			item.NumberOfGames++
		}
		if game.Duration != nil {
			item.GameDurationSeconds[i] = int(game.Duration.Sub(time.Unix(0, 0)) / time.Second)
		}
	}

	duration, ok := raw.Duration()
	if !ok || duration <= MinDuration || duration >= MaxDuration {
		return Match{}, sweep.DropDuration
	}
	item.DurationMinutes = int(duration / time.Minute)

	rallies, complete := totalRallies(raw.Games)
	if !complete {
		return Match{}, sweep.DropScore
	}
	item.TotalRallies = rallies

	switch {
	case raw.MatchID <= MinMatchID:
		return Match{}, sweep.DropMatchID
	case item.TotalRallies <= MinRallies:
		return Match{}, sweep.DropRallies
	case item.NumberOfGames < MinGamesPlayed || item.NumberOfGames > MaxGames:
		return Match{}, sweep.DropGames
	}

	item.WinnerPlayerName, item.LoserPlayerName = resolveSides(raw)

	if raw.HomePlayerName == "" || raw.VisitorPlayerName == "" {
		return Match{}, sweep.DropPlayerName
	}

	item.Fields = calendar.Derive(raw.MatchDate)
	return item, ""
}

// totalRallies sums all ten sub-scores. A single missing sub-score leaves the
// match without a rally count.
func totalRallies(games [MaxGames]Game) (int, bool) {
	total := 0
	for _, game := range games {
		if game.WinnerScore == nil || game.OpponentScore == nil {
			return 0, false
		}
		total += *game.WinnerScore + *game.OpponentScore
	}
	return total, true
}

func resolveSides(raw Raw) (winner, loser string) {
	switch strings.ToUpper(strings.TrimSpace(raw.WinnerSide)) {
	case SideHome:
		return raw.HomePlayerName, raw.VisitorPlayerName
	case SideVisitor:
		return raw.VisitorPlayerName, raw.HomePlayerName
	default:
		return "", ""
	}
}

func scoreOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

// NormalizeName turns the provider's "Last,First" into "First Last". Names
// without a comma are returned trimmed.
func NormalizeName(raw string) string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		if part := strings.TrimSpace(parts[i]); part != "" {
			names = append(names, part)
		}
	}
	return strings.Join(names, " ")
}
