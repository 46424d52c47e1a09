package domain_test

import (
	"testing"
	"time"

	"studytracker/internal/modules/timer/domain"
)

func TestCountdownAt(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c := domain.Countdown{StartTime: start, PlannedEndTime: start.Add(25 * time.Minute)}

	cases := []struct {
		name     string
		now      time.Time
		remain   int64
		fraction float64
		expired  bool
	}{
		{"at start", start, 1500, 0, false},
		{"half way", start.Add(750 * time.Second), 750, 0.5, false},
		{"sub-second floors", start.Add(1499*time.Second + 500*time.Millisecond), 0, 1, true},
		{"overdue clamps", start.Add(30 * time.Minute), -300, 1, true},
		{"clock behind start clamps", start.Add(-time.Minute), 1560, 0, false},
	}
	for _, tc := range cases {
		p := c.At(tc.now)
		if p.RemainSec != tc.remain || p.Fraction != tc.fraction || p.Expired != tc.expired || p.TotalSec != 1500 {
			t.Fatalf("%s: got %+v", tc.name, p)
		}
	}
}

func TestCountdownZeroLengthIsComplete(t *testing.T) {
	t.Parallel()
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	p := domain.Countdown{StartTime: start, PlannedEndTime: start}.At(start)
	if !p.Expired || p.Fraction != 1 {
		t.Fatalf("unexpected progress %+v", p)
	}
}

func TestFormatRemaining(t *testing.T) {
	t.Parallel()
	cases := map[int64]string{1500: "25:00 remaining", 61: "01:01 remaining", 0: "00:00 remaining", -5: "00:00 remaining", 6000: "100:00 remaining"}
	for sec, want := range cases {
		if got := domain.FormatRemaining(sec); got != want {
			t.Fatalf("FormatRemaining(%d) = %q, want %q", sec, got, want)
		}
	}
}
