package domain

import (
	"fmt"
	"math"
	"time"
)

type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Countdown is the running view of one active session.
type Countdown struct {
	SessionID      int64
	SubjectID      int64
	SubjectName    string
	StartTime      time.Time
	PlannedEndTime time.Time
}

// Completion describes a session the driver has ended.
type Completion struct {
	SessionID   int64
	SubjectName string
	DurationMin int
}

type Progress struct {
	RemainSec int64
	TotalSec  int64
	Fraction  float64
	Expired   bool
}

// At computes whole remaining and total seconds (floored) and the completed
// fraction clamped to [0, 1].
func (c Countdown) At(now time.Time) Progress {
	remain := floorSeconds(c.PlannedEndTime.Sub(now))
	total := floorSeconds(c.PlannedEndTime.Sub(c.StartTime))
	fraction := 1.0
	if total > 0 {
		fraction = 1 - float64(remain)/float64(total)
	}
	return Progress{
		RemainSec: remain,
		TotalSec:  total,
		Fraction:  math.Max(0, math.Min(1, fraction)),
		Expired:   remain <= 0,
	}
}

func floorSeconds(d time.Duration) int64 {
	return int64(math.Floor(float64(d.Milliseconds()) / 1000))
}

// FormatRemaining renders seconds as "mm:ss remaining"; overdue shows 00:00.
func FormatRemaining(sec int64) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d remaining", sec/60, sec%60)
}
