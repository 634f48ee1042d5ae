// Package sweep describes the outcome of a fetch sweep: how many requests
// were issued, which ones produced no data, and which records were dropped.
package sweep

import (
	"sort"
	"time"
)

const (
	GapTimeout     = "timeout"
	GapTransport   = "transport"
	GapStatus      = "status"
	GapCircuitOpen = "circuit_open"
	GapDeadline    = "deadline"
)

// Drop reasons shared by the normalizers and the raw record parser.
const (
	DropMalformed   = "malformed"
	DropCounts      = "counts"
	DropDuration    = "duration"
	DropScore       = "score_missing"
	DropMatchID     = "match_id"
	DropRallies     = "rallies"
	DropGames       = "games"
	DropPlayerName  = "player_name"
	DropDuplicate   = "duplicate"
	DropPlaceholder = "placeholder"
)

// Gap is one request whose data is absent from the sweep result.
type Gap struct {
	Kind     string `json:"kind"`
	Request  string `json:"request"`
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts"`
}

// Drops counts excluded records per reason.
type Drops map[string]int

func (d Drops) Add(reason string, n int) {
	if d == nil || n <= 0 {
		return
	}
	d[reason] += n
}

func (d Drops) Merge(other Drops) {
	for reason, n := range other {
		d.Add(reason, n)
	}
}

func (d Drops) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Reasons returns the non-zero reasons in name order.
func (d Drops) Reasons() []string {
	out := make([]string, 0, len(d))
	for reason, n := range d {
		if n > 0 {
			out = append(out, reason)
		}
	}
	sort.Strings(out)
	return out
}

// Report is attached to every fetched dataset and persisted with its snapshot.
type Report struct {
	Kind       string    `json:"kind"`
	Requests   int       `json:"requests"`
	Records    int       `json:"records"`
	Gaps       []Gap     `json:"gaps,omitempty"`
	Drops      Drops     `json:"drops,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func NewReport(kind string, startedAt time.Time) Report {
	return Report{Kind: kind, StartedAt: startedAt, Drops: Drops{}}
}

// Complete reports whether every request in the sweep returned data.
func (r Report) Complete() bool {
	return len(r.Gaps) == 0
}

func (r *Report) AddGap(gap Gap) {
	r.Gaps = append(r.Gaps, gap)
}

// Merge folds other into r. Used when one logical dataset is assembled from
// several sub-sweeps.
func (r *Report) Merge(other Report) {
	r.Requests += other.Requests
	r.Records += other.Records
	r.Gaps = append(r.Gaps, other.Gaps...)
	if r.Drops == nil {
		r.Drops = Drops{}
	}
	r.Drops.Merge(other.Drops)
	if r.StartedAt.IsZero() || (!other.StartedAt.IsZero() && other.StartedAt.Before(r.StartedAt)) {
		r.StartedAt = other.StartedAt
	}
	if other.FinishedAt.After(r.FinishedAt) {
		r.FinishedAt = other.FinishedAt
	}
}

// Result is the typed output of one sweep with its coverage report.
type Result[T any] struct {
	Records []T
	Report  Report
}

// Progress reports how many tournaments have had every date fetched.
type Progress struct {
	Done  int
	Total int
}

func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Done) / float64(p.Total)
}

// ProgressFunc is called once per completed tournament, never concurrently,
// with a monotonically increasing Done.
type ProgressFunc func(Progress)
