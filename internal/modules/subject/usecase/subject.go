package usecase

import (
	"context"

	"studytracker/internal/modules/subject/domain"
	"studytracker/internal/modules/subject/dto"
	subjectin "studytracker/internal/modules/subject/port/in"
	"studytracker/internal/modules/subject/service"
)

type Interactor struct {
	svc *service.SubjectService
}

func NewInteractor(svc *service.SubjectService) subjectin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Add(ctx context.Context, input dto.AddInput) (dto.SubjectOutput, error) {
	subject, err := i.svc.Add(ctx, input.Name)
	if err != nil {
		return dto.SubjectOutput{}, err
	}
	return toOutput(subject), nil
}

func (i *Interactor) List(ctx context.Context, includeArchived bool) ([]dto.SubjectOutput, error) {
	subjects, err := i.svc.List(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubjectOutput, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, toOutput(subject))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id int64) (dto.SubjectOutput, error) {
	subject, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.SubjectOutput{}, err
	}
	return toOutput(subject), nil
}

func (i *Interactor) FindByName(ctx context.Context, name string) (dto.SubjectOutput, error) {
	subject, err := i.svc.FindByName(ctx, name)
	if err != nil {
		return dto.SubjectOutput{}, err
	}
	return toOutput(subject), nil
}

func (i *Interactor) Rename(ctx context.Context, input dto.RenameInput) (dto.SubjectOutput, error) {
	subject, err := i.svc.Rename(ctx, input.ID, input.Name)
	if err != nil {
		return dto.SubjectOutput{}, err
	}
	return toOutput(subject), nil
}

func (i *Interactor) Delete(ctx context.Context, input dto.DeleteInput) (dto.DeleteOutput, error) {
	var policy domain.DeletePolicy
	if input.Policy != "" {
		p, err := domain.ParsePolicy(input.Policy)
		if err != nil {
			return dto.DeleteOutput{}, err
		}
		policy = p
	}
	subject, applied, purged, err := i.svc.Delete(ctx, input.ID, policy)
	if err != nil {
		return dto.DeleteOutput{}, err
	}
	return dto.DeleteOutput{ID: subject.ID, Name: subject.Name, Policy: string(applied), SessionsDeleted: purged}, nil
}

func (i *Interactor) EnsureDefault(ctx context.Context, name string) (dto.EnsureDefaultOutput, error) {
	subject, created, err := i.svc.EnsureDefault(ctx, name)
	if err != nil {
		return dto.EnsureDefaultOutput{}, err
	}
	return dto.EnsureDefaultOutput{Subject: toOutput(subject), Created: created}, nil
}

func toOutput(subject domain.Subject) dto.SubjectOutput {
	return dto.SubjectOutput{ID: subject.ID, Name: subject.Name, Archived: subject.Archived}
}
