package in

import (
	"context"

	"studytracker/internal/modules/subject/dto"
	subjectin "studytracker/internal/modules/subject/port/in"
)

type CLIHandler struct {
	usecase subjectin.Usecase
}

func NewCLIHandler(usecase subjectin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Add(ctx context.Context, name string) (dto.SubjectOutput, error) {
	return h.usecase.Add(ctx, dto.AddInput{Name: name})
}

func (h CLIHandler) List(ctx context.Context, includeArchived bool) ([]dto.SubjectOutput, error) {
	return h.usecase.List(ctx, includeArchived)
}

func (h CLIHandler) Get(ctx context.Context, id int64) (dto.SubjectOutput, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) FindByName(ctx context.Context, name string) (dto.SubjectOutput, error) {
	return h.usecase.FindByName(ctx, name)
}

func (h CLIHandler) Rename(ctx context.Context, id int64, name string) (dto.SubjectOutput, error) {
	return h.usecase.Rename(ctx, dto.RenameInput{ID: id, Name: name})
}

func (h CLIHandler) Delete(ctx context.Context, id int64, policy string) (dto.DeleteOutput, error) {
	return h.usecase.Delete(ctx, dto.DeleteInput{ID: id, Policy: policy})
}

func (h CLIHandler) EnsureDefault(ctx context.Context, name string) (dto.EnsureDefaultOutput, error) {
	return h.usecase.EnsureDefault(ctx, name)
}
