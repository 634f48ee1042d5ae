package match

import (
	"time"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
)

const (
	SideHome    = "H"
	SideVisitor = "V"

	// MaxGames is the most games a squash match can have.
	MaxGames = 5

	MinMatchID     int64 = 1_000_000
	MinDuration          = 4 * time.Minute
	MaxDuration          = 2 * time.Hour
	MinRallies           = 20
	MinGamesPlayed       = 3
)

// Game holds the two sub-scores of one game plus its duration timestamp.
// Nil means the provider did not report the value.
type Game struct {
	WinnerScore   *int       `json:"wset,omitempty"`
	OpponentScore *int       `json:"oset,omitempty"`
	Duration      *time.Time `json:"duration,omitempty"`
}

// Raw is a match as parsed from the live matrix endpoint.
type Raw struct {
	MatchID           int64          `json:"match_id" validate:"required"`
	TournamentID      int64          `json:"tournament_id" validate:"gt=0"`
	HomePlayerName    string         `json:"home_player_name"`
	VisitorPlayerName string         `json:"visitor_player_name"`
	MatchDate         time.Time      `json:"match_date"`
	MatchStart        *time.Time     `json:"match_start,omitempty"`
	MatchEnd          *time.Time     `json:"match_end,omitempty"`
	Games             [MaxGames]Game `json:"games"`
	WinnerSide        string         `json:"winner_side"`
	ScoreShort        string         `json:"score_short,omitempty"`
}

// Match is a retained match with its derived scoring and calendar fields.
type Match struct {
	Raw
	GameScores          [MaxGames]int `json:"game_scores"`
	GameDurationSeconds [MaxGames]int `json:"game_duration_seconds"`
	NumberOfGames       int           `json:"number_of_games"`
	DurationMinutes     int           `json:"duration_minutes"`
	TotalRallies        int           `json:"total_rallies"`
	WinnerPlayerName    string        `json:"winner_player_name"`
	LoserPlayerName     string        `json:"loser_player_name"`
	calendar.Fields
}

// Duration is the raw end minus start, or false when either is missing.
func (r Raw) Duration() (time.Duration, bool) {
	if r.MatchStart == nil || r.MatchEnd == nil {
		return 0, false
	}
	return r.MatchEnd.Sub(*r.MatchStart), true
}

// Involves reports whether name played in the match.
func (m Match) Involves(name string) bool {
	return name != "" && (m.HomePlayerName == name || m.VisitorPlayerName == name)
}
