package match

import (
	"reflect"
	"testing"
	"time"

	"github.com/riskibarqy/clublocker/internal/domain/sweep"
)

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// validRaw builds a three game match lasting 30 minutes with 33 rallies.
func validRaw(id int64) Raw {
	start := time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)
	r := Raw{
		MatchID:           id,
		TournamentID:      42,
		HomePlayerName:    "Smith,Alice",
		VisitorPlayerName: "Jones,Bob",
		MatchDate:         start,
		MatchStart:        timePtr(start),
		MatchEnd:          timePtr(start.Add(30 * time.Minute)),
		WinnerSide:        SideHome,
	}
	scores := [MaxGames][2]int{{11, 5}, {11, 3}, {11, 3}, {0, 0}, {0, 0}}
	for i, s := range scores {
		r.Games[i] = Game{WinnerScore: intPtr(s[0]), OpponentScore: intPtr(s[1])}
	}
	return r
}

func TestNormalize_WinnerLoserResolution(t *testing.T) {
	got, _ := Normalize([]Raw{validRaw(2_000_001)})
	if len(got) != 1 {
		t.Fatalf("expected one match, got %d", len(got))
	}
	m := got[0]
	if m.HomePlayerName != "Alice Smith" || m.VisitorPlayerName != "Bob Jones" {
		t.Fatalf("unexpected names: %q %q", m.HomePlayerName, m.VisitorPlayerName)
	}
	if m.WinnerPlayerName != "Alice Smith" || m.LoserPlayerName != "Bob Jones" {
		t.Fatalf("unexpected winner/loser: %q %q", m.WinnerPlayerName, m.LoserPlayerName)
	}

	visitor := validRaw(2_000_002)
	visitor.WinnerSide = SideVisitor
	got, _ = Normalize([]Raw{visitor})
	if got[0].WinnerPlayerName != "Bob Jones" || got[0].LoserPlayerName != "Alice Smith" {
		t.Fatalf("unexpected visitor resolution: %+v", got[0])
	}
}

func TestNormalize_DerivedFields(t *testing.T) {
	raw := validRaw(2_000_001)
	raw.Games[0].Duration = timePtr(time.Unix(540, 0))
	got, _ := Normalize([]Raw{raw})
	if len(got) != 1 {
		t.Fatalf("expected one match, got %d", len(got))
	}
	m := got[0]
	if m.GameScores != [MaxGames]int{16, 14, 14, 0, 0} {
		t.Fatalf("unexpected game scores: %v", m.GameScores)
	}
	if m.NumberOfGames != 3 || m.TotalRallies != 44 || m.DurationMinutes != 30 {
		t.Fatalf("unexpected derived fields: games=%d rallies=%d minutes=%d", m.NumberOfGames, m.TotalRallies, m.DurationMinutes)
	}
	if m.GameDurationSeconds[0] != 540 {
		t.Fatalf("unexpected game duration: %d", m.GameDurationSeconds[0])
	}
	// 2023-01-01 was a Sunday.
	if m.Weekday != 6 || m.Year != 2023 || m.Month != 1 || m.Week != 52 {
		t.Fatalf("unexpected calendar fields: %+v", m.Fields)
	}
}

func TestNormalize_DurationBoundary(t *testing.T) {
	start := time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)

	exact := validRaw(2_000_001)
	exact.MatchEnd = timePtr(time.Date(2023, 1, 1, 10, 4, 0, 0, time.UTC))
	over := validRaw(2_000_002)
	over.MatchEnd = timePtr(time.Date(2023, 1, 1, 10, 4, 1, 0, time.UTC))
	long := validRaw(2_000_003)
	long.MatchEnd = timePtr(start.Add(2 * time.Hour))
	open := validRaw(2_000_004)
	open.MatchEnd = nil

	got, drops := Normalize([]Raw{exact, over, long, open})
	if len(got) != 1 || got[0].MatchID != 2_000_002 {
		t.Fatalf("expected only the 4m01s match to survive, got %+v", got)
	}
	if got[0].DurationMinutes != 4 {
		t.Fatalf("expected truncated duration of 4, got %d", got[0].DurationMinutes)
	}
	if drops[sweep.DropDuration] != 3 {
		t.Fatalf("unexpected drops: %+v", drops)
	}
}

func TestNormalize_MinimumBoundaryRecord(t *testing.T) {
	start := time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)
	minimal := validRaw(2_000_001)
	minimal.MatchEnd = timePtr(start.Add(5 * time.Minute))
	minimal.Games[0] = Game{WinnerScore: intPtr(7), OpponentScore: intPtr(0)}
	minimal.Games[1] = Game{WinnerScore: intPtr(7), OpponentScore: intPtr(0)}
	minimal.Games[2] = Game{WinnerScore: intPtr(7), OpponentScore: intPtr(0)}

	twenty := minimal
	twenty.MatchID = 2_000_002
	twenty.Games[2] = Game{WinnerScore: intPtr(6), OpponentScore: intPtr(0)}

	got, drops := Normalize([]Raw{minimal, twenty})
	if len(got) != 1 || got[0].MatchID != 2_000_001 {
		t.Fatalf("expected only the 21 rally match, got %+v", got)
	}
	if got[0].TotalRallies != 21 || got[0].NumberOfGames != 3 || got[0].DurationMinutes != 5 {
		t.Fatalf("unexpected boundary record: %+v", got[0])
	}
	if drops[sweep.DropRallies] != 1 {
		t.Fatalf("unexpected drops: %+v", drops)
	}
}

func TestNormalize_FilterReasons(t *testing.T) {
	legacy := validRaw(1_000_000)

	twoGames := validRaw(2_000_002)
	twoGames.Games[2] = Game{WinnerScore: intPtr(0), OpponentScore: intPtr(0)}
	twoGames.Games[0] = Game{WinnerScore: intPtr(15), OpponentScore: intPtr(13)}

	missingScore := validRaw(2_000_003)
	missingScore.Games[4].OpponentScore = nil

	noName := validRaw(2_000_004)
	noName.VisitorPlayerName = " , "

	unknownSide := validRaw(2_000_005)
	unknownSide.WinnerSide = "X"

	got, drops := Normalize([]Raw{legacy, twoGames, missingScore, noName, unknownSide})
	want := sweep.Drops{
		sweep.DropMatchID:    1,
		sweep.DropGames:      1,
		sweep.DropScore:      1,
		sweep.DropPlayerName: 1,
	}
	if !reflect.DeepEqual(drops, want) {
		t.Fatalf("unexpected drops: got %+v want %+v", drops, want)
	}
	if len(got) != 1 || got[0].MatchID != 2_000_005 {
		t.Fatalf("expected unknown side match to be kept, got %+v", got)
	}
	if got[0].WinnerPlayerName != "" || got[0].LoserPlayerName != "" {
		t.Fatalf("unknown side must leave winner and loser empty: %+v", got[0])
	}

	for _, m := range got {
		d, _ := m.Duration()
		if m.MatchID <= MinMatchID || d <= MinDuration || d >= MaxDuration ||
			m.TotalRallies <= MinRallies || m.NumberOfGames < MinGamesPlayed || m.NumberOfGames > MaxGames ||
			m.HomePlayerName == "" || m.VisitorPlayerName == "" {
			t.Fatalf("retained match violates retention rules: %+v", m)
		}
	}
}

func TestNormalize_DeduplicatesAndSorts(t *testing.T) {
	later := validRaw(2_000_001)
	later.MatchDate = later.MatchDate.Add(48 * time.Hour)
	later.ScoreShort = "first"

	earlier := validRaw(2_000_002)

	dup := validRaw(2_000_001)
	dup.ScoreShort = "second"

	got, drops := Normalize([]Raw{later, earlier, dup})
	if len(got) != 2 {
		t.Fatalf("expected two matches, got %d", len(got))
	}
	if got[0].MatchID != 2_000_002 || got[1].MatchID != 2_000_001 {
		t.Fatalf("unexpected order: %d %d", got[0].MatchID, got[1].MatchID)
	}
	if got[1].ScoreShort != "first" {
		t.Fatalf("expected first occurrence to win, got %q", got[1].ScoreShort)
	}
	if drops[sweep.DropDuplicate] != 1 {
		t.Fatalf("unexpected drops: %+v", drops)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raws := []Raw{validRaw(2_000_003), validRaw(2_000_001), validRaw(2_000_002)}
	raws[0].MatchDate = raws[0].MatchDate.Add(time.Hour)

	once, _ := Normalize(raws)
	again := make([]Raw, 0, len(once))
	for _, m := range once {
		again = append(again, m.Raw)
	}
	twice, drops := Normalize(again)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalizing a duplicate-free set must be idempotent")
	}
	if drops.Total() != 0 {
		t.Fatalf("unexpected drops on second pass: %+v", drops)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"Smith,Alice":   "Alice Smith",
		"Smith, Alice ": "Alice Smith",
		"Cher":          "Cher",
		"":              "",
		",":             "",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
