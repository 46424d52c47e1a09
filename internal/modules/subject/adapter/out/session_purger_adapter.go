package out

import (
	"context"
	"fmt"

	sessionin "studytracker/internal/modules/session/port/in"
	subjectout "studytracker/internal/modules/subject/port/out"
)

// SessionPurgerAdapter forwards cascade deletes to the session module. The
// session usecase itself depends on subjects, so it is bound after both are
// built.
type SessionPurgerAdapter struct {
	sessions sessionin.Usecase
}

var _ subjectout.SessionPurger = (*SessionPurgerAdapter)(nil)

func NewSessionPurgerAdapter() *SessionPurgerAdapter {
	return &SessionPurgerAdapter{}
}

func (a *SessionPurgerAdapter) Bind(sessions sessionin.Usecase) {
	a.sessions = sessions
}

func (a *SessionPurgerAdapter) PurgeSubject(ctx context.Context, subjectID int64) (int64, error) {
	if a.sessions == nil {
		return 0, fmt.Errorf("session usecase is not bound")
	}
	out, err := a.sessions.ResetSubject(ctx, subjectID)
	if err != nil {
		return 0, err
	}
	return out.Deleted, nil
}
