package out

import (
	"context"

	"studytracker/internal/modules/stats/domain"
)

type SubjectSource interface {
	Subjects(ctx context.Context, includeArchived bool) ([]domain.SubjectRef, error)
}

type SessionSource interface {
	EndedSessions(ctx context.Context) ([]domain.EndedSession, error)
}
