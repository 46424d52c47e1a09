package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	apperrors "studytracker/internal/platform/errors"
)

type SubjectRef struct {
	ID       int64
	Name     string
	Archived bool
}

type EndedSession struct {
	SubjectID   int64
	StartDay    string
	DurationMin int
}

type Row struct {
	SubjectID int64
	Name      string
	Minutes   int
	Archived  bool
}

// Filter selects the sessions that count toward a view.
type Filter func(EndedSession) bool

func AllDays(EndedSession) bool { return true }

func OnDay(day string) Filter {
	return func(s EndedSession) bool { return s.StartDay == day }
}

// Aggregate emits one row per subject, in subject order, summing the minutes
// of included sessions. Sessions of subjects not listed are dropped.
func Aggregate(subjects []SubjectRef, sessions []EndedSession, include Filter) []Row {
	if include == nil {
		include = AllDays
	}
	minutes := make(map[int64]int, len(subjects))
	for _, s := range sessions {
		if include(s) {
			minutes[s.SubjectID] += s.DurationMin
		}
	}
	rows := make([]Row, 0, len(subjects))
	for _, subject := range subjects {
		rows = append(rows, Row{
			SubjectID: subject.ID,
			Name:      subject.Name,
			Minutes:   minutes[subject.ID],
			Archived:  subject.Archived,
		})
	}
	return rows
}

// SortByMinutes orders rows by minutes descending, then by name.
func SortByMinutes(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Minutes != rows[j].Minutes {
			return rows[i].Minutes > rows[j].Minutes
		}
		return rows[i].Name < rows[j].Name
	})
}

func TotalMinutes(rows []Row) int {
	total := 0
	for _, r := range rows {
		total += r.Minutes
	}
	return total
}

// Hours converts minutes to hours rounded to one decimal.
func Hours(minutes int) float64 {
	return math.Round(float64(minutes)/60*10) / 10
}

// ParseDay validates a YYYY-MM-DD bucket key.
func ParseDay(raw string) (string, error) {
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return "", fmt.Errorf("%w %q", apperrors.ErrInvalidDay, raw)
	}
	return t.Format(time.DateOnly), nil
}
