package clublocker

import (
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
	"github.com/riskibarqy/clublocker/internal/domain/match"
	"github.com/riskibarqy/clublocker/internal/domain/tournament"
)

func (c *Client) parseTournament(src map[string]any, label string) (tournament.Raw, error) {
	start, err := requiredTime(src, "StartDate")
	if err != nil {
		return tournament.Raw{}, err
	}
	end := start
	if parsed := optionalTime(src, "EndDate"); parsed != nil {
		end = *parsed
	}

	raw := tournament.Raw{
		TournamentID: getInt64(src, "TournamentID", "tournamentId", "Id"),
		Name:         getString(src, "TournamentName", "Name"),
		StartDate:    start,
		EndDate:      end,
		NumMatches:   int(getInt64(src, "NumMatches")),
		NumPlayers:   int(getInt64(src, "NumPlayers")),
		Type:         label,
		City:         getString(src, "City"),
		Venue:        getString(src, "Venue", "VenueName"),
		ClubName:     getString(src, "ClubName", "Club"),
		Status:       getString(src, "Status", "StatusName"),
	}
	if err := c.validate.Struct(raw); err != nil {
		return tournament.Raw{}, crerr.Wrapf(err, "tournament id=%d", raw.TournamentID)
	}
	return raw, nil
}

func (c *Client) parseMatch(src map[string]any, tournamentID int64) (match.Raw, error) {
	matchDate, err := requiredTime(src, "MatchDate")
	if err != nil {
		return match.Raw{}, err
	}

	raw := match.Raw{
		MatchID:           getInt64(src, "matchid", "MatchID", "matchId"),
		TournamentID:      tournamentID,
		HomePlayerName:    getString(src, "hPlayerName"),
		VisitorPlayerName: getString(src, "vPlayerName"),
		MatchDate:         matchDate,
		MatchStart:        optionalTime(src, "matchStart"),
		MatchEnd:          optionalTime(src, "matchEnd"),
		WinnerSide:        getString(src, "Winner"),
		ScoreShort:        getString(src, "Score_Short", "ScoreShort"),
	}
	for i := range raw.Games {
		n := strconv.Itoa(i + 1)
		raw.Games[i] = match.Game{
			WinnerScore:   optionalInt(src, "wset"+n),
			OpponentScore: optionalInt(src, "oset"+n),
			Duration:      optionalTime(src, "gameDuration"+n),
		}
	}
	if err := c.validate.Struct(raw); err != nil {
		return match.Raw{}, crerr.Wrapf(err, "match id=%d", raw.MatchID)
	}
	return raw, nil
}

func lookup(src map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if value, ok := src[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

func getString(src map[string]any, keys ...string) string {
	value, ok := lookup(src, keys...)
	if !ok {
		return ""
	}
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	default:
		return ""
	}
}

func getInt64(src map[string]any, keys ...string) int64 {
	if v := optionalInt(src, keys...); v != nil {
		return int64(*v)
	}
	return 0
}

// optionalInt returns nil when the key is absent, null or not a number.
func optionalInt(src map[string]any, keys ...string) *int {
	value, ok := lookup(src, keys...)
	if !ok {
		return nil
	}
	switch typed := value.(type) {
	case float64:
		v := int(typed)
		return &v
	case int:
		return &typed
	case int64:
		v := int(typed)
		return &v
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func optionalTime(src map[string]any, keys ...string) *time.Time {
	raw := getString(src, keys...)
	if raw == "" {
		return nil
	}
	parsed, err := calendar.Parse(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func requiredTime(src map[string]any, key string) (time.Time, error) {
	raw := getString(src, key)
	if raw == "" {
		return time.Time{}, crerr.Newf("%s is required", key)
	}
	parsed, err := calendar.Parse(raw)
	if err != nil {
		return time.Time{}, crerr.Wrapf(err, "%s", key)
	}
	return parsed, nil
}
