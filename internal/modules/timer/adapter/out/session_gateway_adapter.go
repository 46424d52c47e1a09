package out

import (
	"context"
	"errors"

	sessiondto "studytracker/internal/modules/session/dto"
	sessionin "studytracker/internal/modules/session/port/in"
	"studytracker/internal/modules/timer/domain"
	timerout "studytracker/internal/modules/timer/port/out"
	apperrors "studytracker/internal/platform/errors"
)

type SessionGatewayAdapter struct {
	sessions sessionin.Usecase
}

func NewSessionGatewayAdapter(sessions sessionin.Usecase) timerout.SessionGateway {
	return &SessionGatewayAdapter{sessions: sessions}
}

func (a *SessionGatewayAdapter) Start(ctx context.Context, subjectID int64, minutes float64) (domain.Countdown, error) {
	out, err := a.sessions.Start(ctx, sessiondto.StartInput{SubjectID: subjectID, Minutes: minutes})
	if err != nil {
		return domain.Countdown{}, err
	}
	return toCountdown(out), nil
}

func (a *SessionGatewayAdapter) Repeat(ctx context.Context) (domain.Countdown, error) {
	out, err := a.sessions.Repeat(ctx)
	if err != nil {
		return domain.Countdown{}, err
	}
	return toCountdown(out), nil
}

func (a *SessionGatewayAdapter) Active(ctx context.Context) (domain.Countdown, bool, error) {
	out, err := a.sessions.GetActive(ctx)
	if errors.Is(err, apperrors.ErrNoActiveSession) {
		return domain.Countdown{}, false, nil
	}
	if err != nil {
		return domain.Countdown{}, false, err
	}
	return toCountdown(out), true, nil
}

func (a *SessionGatewayAdapter) End(ctx context.Context) (domain.Completion, error) {
	out, err := a.sessions.End(ctx)
	if err != nil {
		return domain.Completion{}, err
	}
	done := domain.Completion{SessionID: out.ID, SubjectName: out.SubjectName}
	if out.DurationMin != nil {
		done.DurationMin = *out.DurationMin
	}
	return done, nil
}

func toCountdown(out sessiondto.SessionOutput) domain.Countdown {
	return domain.Countdown{
		SessionID:      out.ID,
		SubjectID:      out.SubjectID,
		SubjectName:    out.SubjectName,
		StartTime:      out.StartTime,
		PlannedEndTime: out.PlannedEndTime,
	}
}
