package service

import (
	"context"
	"time"

	"studytracker/internal/modules/stats/domain"
	statsout "studytracker/internal/modules/stats/port/out"
	"studytracker/internal/platform/clock"
)

type StatsService struct {
	subjects statsout.SubjectSource
	sessions statsout.SessionSource
	clock    clock.Clock
	loc      *time.Location
}

func NewStatsService(subjects statsout.SubjectSource, sessions statsout.SessionSource, clk clock.Clock, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{subjects: subjects, sessions: sessions, clock: clk, loc: loc}
}

// Today returns the local calendar day used as the "today" bucket.
func (s *StatsService) Today() string {
	return clock.Day(s.clock.Now(), s.loc)
}

// Report fetches current subjects and ended sessions afresh and aggregates
// them. Rows come back sorted by minutes.
func (s *StatsService) Report(ctx context.Context, include domain.Filter, includeArchived bool) ([]domain.Row, error) {
	subjects, err := s.subjects.Subjects(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.EndedSessions(ctx)
	if err != nil {
		return nil, err
	}
	rows := domain.Aggregate(subjects, sessions, include)
	domain.SortByMinutes(rows)
	return rows, nil
}
