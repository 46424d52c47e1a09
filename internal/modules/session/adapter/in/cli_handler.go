package in

import (
	"context"

	sessiondto "studytracker/internal/modules/session/dto"
	sessionin "studytracker/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, subjectID int64, minutes float64) (sessiondto.SessionOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{SubjectID: subjectID, Minutes: minutes})
}

func (h CLIHandler) End(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.End(ctx)
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) Repeat(ctx context.Context) (sessiondto.SessionOutput, error) {
	return h.usecase.Repeat(ctx)
}

func (h CLIHandler) LastStart(ctx context.Context) (sessiondto.LastStartOutput, error) {
	return h.usecase.LastStart(ctx)
}

func (h CLIHandler) List(ctx context.Context) ([]sessiondto.SessionOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) ResetToday(ctx context.Context) (sessiondto.ResetOutput, error) {
	return h.usecase.ResetToday(ctx)
}

func (h CLIHandler) ResetAll(ctx context.Context) (sessiondto.ResetOutput, error) {
	return h.usecase.ResetAll(ctx)
}

func (h CLIHandler) ResetSubject(ctx context.Context, subjectID int64) (sessiondto.ResetOutput, error) {
	return h.usecase.ResetSubject(ctx, subjectID)
}
