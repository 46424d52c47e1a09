package in

import (
	"context"

	"studytracker/internal/modules/subject/dto"
)

type Usecase interface {
	Add(ctx context.Context, input dto.AddInput) (dto.SubjectOutput, error)
	List(ctx context.Context, includeArchived bool) ([]dto.SubjectOutput, error)
	Get(ctx context.Context, id int64) (dto.SubjectOutput, error)
	FindByName(ctx context.Context, name string) (dto.SubjectOutput, error)
	Rename(ctx context.Context, input dto.RenameInput) (dto.SubjectOutput, error)
	Delete(ctx context.Context, input dto.DeleteInput) (dto.DeleteOutput, error)
	EnsureDefault(ctx context.Context, name string) (dto.EnsureDefaultOutput, error)
}
