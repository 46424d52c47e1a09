package usecase

import (
	"context"
	"errors"
	"log/slog"

	"studytracker/internal/modules/session/domain"
	sessiondto "studytracker/internal/modules/session/dto"
	sessionin "studytracker/internal/modules/session/port/in"
	sessionout "studytracker/internal/modules/session/port/out"
	"studytracker/internal/modules/session/service"
	subjectin "studytracker/internal/modules/subject/port/in"
	apperrors "studytracker/internal/platform/errors"
)

type Interactor struct {
	svc      *service.SessionService
	subjects subjectin.Usecase
	last     sessionout.LastStartStore
	logger   *slog.Logger
}

func NewInteractor(svc *service.SessionService, subjects subjectin.Usecase, last sessionout.LastStartStore, logger *slog.Logger) sessionin.Usecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interactor{svc: svc, subjects: subjects, last: last, logger: logger}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error) {
	if input.SubjectID <= 0 {
		return sessiondto.SessionOutput{}, apperrors.ErrMissingSelection
	}
	minutes, err := domain.NormalizeMinutes(input.Minutes)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	name := ""
	if i.subjects != nil {
		subject, err := i.subjects.Get(ctx, input.SubjectID)
		if err != nil {
			return sessiondto.SessionOutput{}, err
		}
		name = subject.Name
	}

	started, err := i.svc.Start(ctx, input.SubjectID, minutes)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if i.last != nil {
		if err := i.last.SaveLast(ctx, domain.LastStart{SubjectID: input.SubjectID, Minutes: minutes}); err != nil {
			i.logger.Warn("failed to record last start", slog.String("error", err.Error()))
		}
	}
	out := toOutput(started)
	out.SubjectName = name
	return out, nil
}

func (i *Interactor) End(ctx context.Context) (sessiondto.SessionOutput, error) {
	ended, err := i.svc.End(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.withName(ctx, ended), nil
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	active, err := i.svc.Active(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	return i.withName(ctx, active), nil
}

func (i *Interactor) Repeat(ctx context.Context) (sessiondto.SessionOutput, error) {
	if i.last == nil {
		return sessiondto.SessionOutput{}, apperrors.ErrMissingSelection
	}
	last, err := i.last.LoadLast(ctx)
	if err != nil {
		return sessiondto.SessionOutput{}, err
	}
	if !last.Valid() {
		return sessiondto.SessionOutput{}, apperrors.ErrMissingSelection
	}
	return i.Start(ctx, sessiondto.StartInput{SubjectID: last.SubjectID, Minutes: float64(last.Minutes)})
}

func (i *Interactor) LastStart(ctx context.Context) (sessiondto.LastStartOutput, error) {
	if i.last == nil {
		return sessiondto.LastStartOutput{}, nil
	}
	last, err := i.last.LoadLast(ctx)
	if err != nil {
		return sessiondto.LastStartOutput{}, err
	}
	if !last.Valid() {
		return sessiondto.LastStartOutput{}, nil
	}
	out := sessiondto.LastStartOutput{SubjectID: last.SubjectID, Minutes: last.Minutes, Available: true}
	if i.subjects != nil {
		subject, err := i.subjects.Get(ctx, last.SubjectID)
		switch {
		case err == nil:
			out.SubjectName = subject.Name
		case errors.Is(err, apperrors.ErrNotFound):
			out.Available = false
		default:
			return sessiondto.LastStartOutput{}, err
		}
	}
	return out, nil
}

func (i *Interactor) List(ctx context.Context) ([]sessiondto.SessionOutput, error) {
	sessions, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	return toOutputs(sessions), nil
}

func (i *Interactor) ListEnded(ctx context.Context) ([]sessiondto.SessionOutput, error) {
	sessions, err := i.svc.ListEnded(ctx)
	if err != nil {
		return nil, err
	}
	return toOutputs(sessions), nil
}

func (i *Interactor) ResetToday(ctx context.Context) (sessiondto.ResetOutput, error) {
	ended, err := i.endIfActive(ctx)
	if err != nil {
		return sessiondto.ResetOutput{}, err
	}
	n, err := i.svc.DeleteToday(ctx)
	if err != nil {
		return sessiondto.ResetOutput{}, err
	}
	return sessiondto.ResetOutput{Deleted: n, EndedActive: ended}, nil
}

func (i *Interactor) ResetAll(ctx context.Context) (sessiondto.ResetOutput, error) {
	ended, err := i.endIfActive(ctx)
	if err != nil {
		return sessiondto.ResetOutput{}, err
	}
	n, err := i.svc.DeleteAll(ctx)
	if err != nil {
		return sessiondto.ResetOutput{}, err
	}
	return sessiondto.ResetOutput{Deleted: n, EndedActive: ended}, nil
}

// ResetSubject deletes every session of one subject, an active one included.
func (i *Interactor) ResetSubject(ctx context.Context, subjectID int64) (sessiondto.ResetOutput, error) {
	if subjectID <= 0 {
		return sessiondto.ResetOutput{}, apperrors.ErrMissingSelection
	}
	n, err := i.svc.DeleteBySubject(ctx, subjectID)
	if err != nil {
		return sessiondto.ResetOutput{}, err
	}
	return sessiondto.ResetOutput{Deleted: n}, nil
}

// endIfActive ends the running session before a reset; having none is fine.
func (i *Interactor) endIfActive(ctx context.Context) (bool, error) {
	if _, err := i.svc.End(ctx); err != nil {
		if errors.Is(err, apperrors.ErrNoActiveSession) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (i *Interactor) withName(ctx context.Context, session domain.Session) sessiondto.SessionOutput {
	out := toOutput(session)
	if i.subjects == nil {
		return out
	}
	if subject, err := i.subjects.Get(ctx, session.SubjectID); err == nil {
		out.SubjectName = subject.Name
	}
	return out
}

func toOutputs(sessions []domain.Session) []sessiondto.SessionOutput {
	out := make([]sessiondto.SessionOutput, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toOutput(s))
	}
	return out
}

func toOutput(s domain.Session) sessiondto.SessionOutput {
	return sessiondto.SessionOutput{
		ID:             s.ID,
		SubjectID:      s.SubjectID,
		StartTime:      s.StartTime,
		PlannedEndTime: s.PlannedEndTime,
		EndTime:        s.EndTime,
		DurationMin:    s.DurationMin,
		StartDay:       s.StartDay,
		PlannedMinutes: s.PlannedMinutes(),
	}
}
