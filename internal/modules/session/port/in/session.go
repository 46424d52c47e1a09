package in

import (
	"context"

	"studytracker/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SessionOutput, error)
	End(ctx context.Context) (dto.SessionOutput, error)
	GetActive(ctx context.Context) (dto.SessionOutput, error)
	Repeat(ctx context.Context) (dto.SessionOutput, error)
	LastStart(ctx context.Context) (dto.LastStartOutput, error)
	List(ctx context.Context) ([]dto.SessionOutput, error)
	ListEnded(ctx context.Context) ([]dto.SessionOutput, error)
	ResetToday(ctx context.Context) (dto.ResetOutput, error)
	ResetAll(ctx context.Context) (dto.ResetOutput, error)
	ResetSubject(ctx context.Context, subjectID int64) (dto.ResetOutput, error)
}
