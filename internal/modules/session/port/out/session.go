package out

import (
	"context"
	"time"

	"studytracker/internal/modules/session/domain"
)

type SessionStore interface {
	Insert(ctx context.Context, session domain.Session) (domain.Session, error)
	Update(ctx context.Context, session domain.Session) error
	List(ctx context.Context) ([]domain.Session, error)
	ListActive(ctx context.Context) ([]domain.Session, error)
	ListEnded(ctx context.Context) ([]domain.Session, error)
	DeleteStartedBetween(ctx context.Context, from, to time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	DeleteBySubject(ctx context.Context, subjectID int64) (int64, error)
}

// LastStartStore holds the repeat-last-session state. LoadLast returns a
// zero LastStart when nothing was recorded.
type LastStartStore interface {
	SaveLast(ctx context.Context, last domain.LastStart) error
	LoadLast(ctx context.Context) (domain.LastStart, error)
}
