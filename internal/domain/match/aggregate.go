package match

import (
	"sort"
	"strings"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
)

// PlayerActivity counts how often a player appears as winner and loser.
type PlayerActivity struct {
	Name         string `json:"name"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	TotalMatches int    `json:"total_matches"`
}

// Matchup is an ordered (winner, loser) pair.
type Matchup struct {
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
	Count  int    `json:"count"`
}

// Rivalry is an unordered pair; PlayerA sorts before PlayerB.
type Rivalry struct {
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
	WinsA   int    `json:"wins_a"`
	WinsB   int    `json:"wins_b"`
	Count   int    `json:"count"`
}

// PlayerResult is one match of a player search.
type PlayerResult struct {
	Match
	Win bool `json:"win"`
}

// MostActivePlayers ranks players by matches played, then by name. A limit
// of zero or less returns every player.
func MostActivePlayers(items []Match, limit int) []PlayerActivity {
	byName := make(map[string]*PlayerActivity)
	get := func(name string) *PlayerActivity {
		p, ok := byName[name]
		if !ok {
			p = &PlayerActivity{Name: name}
			byName[name] = p
		}
		return p
	}
	for _, item := range items {
		if item.WinnerPlayerName != "" {
			get(item.WinnerPlayerName).Wins++
		}
		if item.LoserPlayerName != "" {
			get(item.LoserPlayerName).Losses++
		}
	}

	out := make([]PlayerActivity, 0, len(byName))
	for _, p := range byName {
		p.TotalMatches = p.Wins + p.Losses
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMatches != out[j].TotalMatches {
			return out[i].TotalMatches > out[j].TotalMatches
		}
		return out[i].Name < out[j].Name
	})
	return truncate(out, limit)
}

// MostCommonMatchups counts who beat whom. A beating B and B beating A are
// separate rows; see Rivalries for the direction-free view.
func MostCommonMatchups(items []Match, limit int) []Matchup {
	counts := make(map[[2]string]int)
	for _, item := range items {
		if item.WinnerPlayerName == "" || item.LoserPlayerName == "" {
			continue
		}
		counts[[2]string{item.WinnerPlayerName, item.LoserPlayerName}]++
	}

	out := make([]Matchup, 0, len(counts))
	for pair, count := range counts {
		out = append(out, Matchup{Winner: pair[0], Loser: pair[1], Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Winner != out[j].Winner {
			return out[i].Winner < out[j].Winner
		}
		return out[i].Loser < out[j].Loser
	})
	return truncate(out, limit)
}

// Rivalries counts matches per unordered player pair.
func Rivalries(items []Match, limit int) []Rivalry {
	byPair := make(map[[2]string]*Rivalry)
	for _, item := range items {
		winner, loser := item.WinnerPlayerName, item.LoserPlayerName
		if winner == "" || loser == "" {
			continue
		}
		a, b := winner, loser
		if b < a {
			a, b = b, a
		}
		r, ok := byPair[[2]string{a, b}]
		if !ok {
			r = &Rivalry{PlayerA: a, PlayerB: b}
			byPair[[2]string{a, b}] = r
		}
		r.Count++
		if winner == a {
			r.WinsA++
		} else {
			r.WinsB++
		}
	}

	out := make([]Rivalry, 0, len(byPair))
	for _, r := range byPair {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].PlayerA != out[j].PlayerA {
			return out[i].PlayerA < out[j].PlayerA
		}
		return out[i].PlayerB < out[j].PlayerB
	})
	return truncate(out, limit)
}

// WeekdayHeatmap counts matches by weekday (rows) and month (columns).
func WeekdayHeatmap(items []Match) *calendar.Heatmap {
	h := calendar.NewHeatmap("weekday", "month")
	for _, item := range items {
		h.Add(item.Weekday, item.Month, 1)
	}
	return h
}

// PlayerNames lists every distinct player name in ascending order.
func PlayerNames(items []Match) []string {
	set := make(map[string]struct{})
	for _, item := range items {
		for _, name := range []string{item.HomePlayerName, item.VisitorPlayerName} {
			if name != "" {
				set[name] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PlayerMatches finds matches where either side contains query, ignoring
// case. Win is set when the winner's name equals query. Newest match ids
// come first.
func PlayerMatches(items []Match, query string) []PlayerResult {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	out := make([]PlayerResult, 0)
	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.HomePlayerName), needle) &&
			!strings.Contains(strings.ToLower(item.VisitorPlayerName), needle) {
			continue
		}
		out = append(out, PlayerResult{
			Match: item,
			Win:   strings.EqualFold(item.WinnerPlayerName, strings.TrimSpace(query)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchID > out[j].MatchID
	})
	return out
}

// TournamentMatches keeps the matches of one tournament, preserving order.
func TournamentMatches(items []Match, tournamentID int64) []Match {
	out := make([]Match, 0)
	for _, item := range items {
		if item.TournamentID == tournamentID {
			out = append(out, item)
		}
	}
	return out
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
