package tournament

import (
	"time"

	"github.com/riskibarqy/clublocker/internal/domain/calendar"
)

const (
	TypeScheduled = "scheduled"
	TypeResults   = "results"

	EraPre  = "pre"
	EraPost = "post"
)

// CovidCutoff splits tournaments into the pre and post pandemic eras.
var CovidCutoff = time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)

// Raw is a tournament as parsed from the provider, tagged with the status
// sweep it came from.
type Raw struct {
	TournamentID int64     `json:"tournament_id" validate:"gt=0"`
	Name         string    `json:"name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	NumMatches   int       `json:"num_matches" validate:"gte=0"`
	NumPlayers   int       `json:"num_players" validate:"gte=0"`
	Type         string    `json:"type" validate:"oneof=scheduled results"`
	City         string    `json:"city,omitempty"`
	Venue        string    `json:"venue,omitempty"`
	ClubName     string    `json:"club_name,omitempty"`
	Status       string    `json:"status,omitempty"`
}

// Tournament is a retained tournament with its calendar fields derived from
// the start date.
type Tournament struct {
	Raw
	StartDateOrdinal int64  `json:"start_date_ordinal"`
	CovidEra         string `json:"covid_era"`
	calendar.Fields
}

// Era classifies a start date against CovidCutoff.
func Era(start time.Time) string {
	if calendar.Day(start).Before(CovidCutoff) {
		return EraPre
	}
	return EraPost
}
