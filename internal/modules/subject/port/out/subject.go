package out

import (
	"context"

	"studytracker/internal/modules/subject/domain"
)

// SubjectStore persists subjects. Insert and Rename report
// apperrors.ErrDuplicateName on a name collision; lookups report
// apperrors.ErrNotFound.
type SubjectStore interface {
	Insert(ctx context.Context, name string) (domain.Subject, error)
	Get(ctx context.Context, id int64) (domain.Subject, error)
	FindByName(ctx context.Context, name string) (domain.Subject, error)
	List(ctx context.Context, includeArchived bool) ([]domain.Subject, error)
	Rename(ctx context.Context, id int64, name string) error
	SetArchived(ctx context.Context, id int64, archived bool) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// SessionPurger removes the sessions recorded against a subject.
type SessionPurger interface {
	PurgeSubject(ctx context.Context, subjectID int64) (int64, error)
}
