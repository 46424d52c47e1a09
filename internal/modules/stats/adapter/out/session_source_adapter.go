package out

import (
	"context"

	sessionin "studytracker/internal/modules/session/port/in"
	"studytracker/internal/modules/stats/domain"
	statsout "studytracker/internal/modules/stats/port/out"
)

type SessionSourceAdapter struct {
	sessions sessionin.Usecase
}

func NewSessionSourceAdapter(sessions sessionin.Usecase) statsout.SessionSource {
	return &SessionSourceAdapter{sessions: sessions}
}

func (a *SessionSourceAdapter) EndedSessions(ctx context.Context) ([]domain.EndedSession, error) {
	sessions, err := a.sessions.ListEnded(ctx)
	if err != nil {
		return nil, err
	}
	ended := make([]domain.EndedSession, 0, len(sessions))
	for _, s := range sessions {
		if s.DurationMin == nil {
			continue
		}
		ended = append(ended, domain.EndedSession{SubjectID: s.SubjectID, StartDay: s.StartDay, DurationMin: *s.DurationMin})
	}
	return ended, nil
}
