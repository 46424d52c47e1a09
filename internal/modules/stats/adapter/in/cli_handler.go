package in

import (
	"context"

	"studytracker/internal/modules/stats/dto"
	statsin "studytracker/internal/modules/stats/port/in"
)

type CLIHandler struct {
	usecase statsin.Usecase
}

func NewCLIHandler(usecase statsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Today(ctx context.Context, includeArchived bool) (dto.ReportOutput, error) {
	return h.usecase.Today(ctx, dto.ReportInput{IncludeArchived: includeArchived})
}

func (h CLIHandler) Total(ctx context.Context, includeArchived bool) (dto.ReportOutput, error) {
	return h.usecase.Total(ctx, dto.ReportInput{IncludeArchived: includeArchived})
}

func (h CLIHandler) ByDay(ctx context.Context, day string, includeArchived bool) (dto.ReportOutput, error) {
	return h.usecase.ByDay(ctx, dto.ReportInput{Day: day, IncludeArchived: includeArchived})
}
