package out

import (
	"context"

	"studytracker/internal/modules/timer/domain"
)

type SessionGateway interface {
	Start(ctx context.Context, subjectID int64, minutes float64) (domain.Countdown, error)
	Repeat(ctx context.Context) (domain.Countdown, error)
	// Active reports the active session; ok is false when there is none.
	Active(ctx context.Context) (countdown domain.Countdown, ok bool, err error)
	End(ctx context.Context) (domain.Completion, error)
}

type Alarm interface {
	Ring() error
}
