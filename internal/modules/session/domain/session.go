package domain

import (
	"math"
	"sort"
	"time"

	"studytracker/internal/platform/clock"
	apperrors "studytracker/internal/platform/errors"
)

type Session struct {
	ID             int64
	SubjectID      int64
	StartTime      time.Time
	PlannedEndTime time.Time
	EndTime        *time.Time
	DurationMin    *int
	StartDay       string
}

// LastStart remembers the most recent start so it can be repeated.
type LastStart struct {
	SubjectID int64 `json:"subject_id"`
	Minutes   int   `json:"minutes"`
}

func (l LastStart) Valid() bool {
	return l.SubjectID > 0 && l.Minutes > 0
}

func New(subjectID int64, minutes int, now time.Time, loc *time.Location) Session {
	return Session{
		SubjectID:      subjectID,
		StartTime:      now,
		PlannedEndTime: now.Add(time.Duration(minutes) * time.Minute),
		StartDay:       clock.Day(now, loc),
	}
}

func (s Session) Active() bool {
	return s.EndTime == nil
}

// Ended returns s closed at now.
func (s Session) Ended(now time.Time) Session {
	end := now
	minutes := DurationMinutes(s.StartTime, now)
	s.EndTime = &end
	s.DurationMin = &minutes
	return s
}

// PlannedMinutes is the requested length of the session.
func (s Session) PlannedMinutes() int {
	return int(s.PlannedEndTime.Sub(s.StartTime) / time.Minute)
}

// DurationMinutes rounds the elapsed time up to whole minutes, never below 0.
func DurationMinutes(start, end time.Time) int {
	ms := end.Sub(start).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int((ms + 59_999) / 60_000)
}

// NormalizeMinutes truncates fractional input and rejects anything below 1.
func NormalizeMinutes(minutes float64) (int, error) {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0, apperrors.ErrInvalidMinutes
	}
	n := math.Floor(minutes)
	if n < 1 {
		return 0, apperrors.ErrInvalidMinutes
	}
	return int(n), nil
}

// PickActive returns the active session with the earliest start time and the
// number of active sessions seen. More than one is an integrity anomaly.
func PickActive(sessions []Session) (Session, int) {
	active := make([]Session, 0, 1)
	for _, s := range sessions {
		if s.Active() {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return Session{}, 0
	}
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].StartTime.Equal(active[j].StartTime) {
			return active[i].ID < active[j].ID
		}
		return active[i].StartTime.Before(active[j].StartTime)
	})
	return active[0], len(active)
}
