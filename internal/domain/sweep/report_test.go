package sweep

import (
	"testing"
	"time"
)

func TestReport_Merge(t *testing.T) {
	t0 := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	a := NewReport("matches", t0.Add(time.Minute))
	a.Requests = 3
	a.Records = 10
	a.Drops.Add(DropDuplicate, 2)
	a.FinishedAt = t0.Add(2 * time.Minute)

	b := NewReport("matches", t0)
	b.Requests = 2
	b.AddGap(Gap{Kind: GapTimeout, Request: "tournamentId=1&date=2026-10-01", Attempts: 3})
	b.Drops.Add(DropDuplicate, 1)
	b.Drops.Add(DropRallies, 4)
	b.FinishedAt = t0.Add(5 * time.Minute)

	a.Merge(b)

	if a.Requests != 5 || a.Records != 10 {
		t.Fatalf("unexpected totals: %+v", a)
	}
	if a.Complete() {
		t.Fatalf("report with a gap must not be complete")
	}
	if a.Drops[DropDuplicate] != 3 || a.Drops.Total() != 7 {
		t.Fatalf("unexpected drops: %+v", a.Drops)
	}
	if !a.StartedAt.Equal(t0) || !a.FinishedAt.Equal(t0.Add(5*time.Minute)) {
		t.Fatalf("unexpected window: %s..%s", a.StartedAt, a.FinishedAt)
	}
	reasons := a.Drops.Reasons()
	if len(reasons) != 2 || reasons[0] != DropDuplicate || reasons[1] != DropRallies {
		t.Fatalf("unexpected reasons: %v", reasons)
	}
}

func TestDrops_IgnoresNonPositive(t *testing.T) {
	d := Drops{}
	d.Add(DropGames, 0)
	d.Add(DropGames, -1)
	if d.Total() != 0 {
		t.Fatalf("expected empty drops, got %+v", d)
	}

	var nilDrops Drops
	nilDrops.Add(DropGames, 1)
}

func TestProgressFraction(t *testing.T) {
	if got := (Progress{Done: 1, Total: 4}).Fraction(); got != 0.25 {
		t.Fatalf("unexpected fraction %v", got)
	}
	if got := (Progress{}).Fraction(); got != 1 {
		t.Fatalf("empty sweep should report complete, got %v", got)
	}
}
