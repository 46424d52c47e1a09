package in

import (
	"context"

	"studytracker/internal/modules/stats/dto"
)

type Usecase interface {
	Today(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error)
	Total(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error)
	ByDay(ctx context.Context, input dto.ReportInput) (dto.ReportOutput, error)
}
