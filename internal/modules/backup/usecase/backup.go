package usecase

import (
	"context"

	"studytracker/internal/modules/backup/domain"
	"studytracker/internal/modules/backup/dto"
	backupin "studytracker/internal/modules/backup/port/in"
	"studytracker/internal/modules/backup/service"
)

type Interactor struct {
	svc *service.BackupService
}

func NewInteractor(svc *service.BackupService) backupin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Export(ctx context.Context) (dto.ExportOutput, error) {
	snapshot, name, err := i.svc.Export(ctx)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	payload, err := domain.Encode(snapshot)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{
		Payload:  payload,
		FileName: name,
		Subjects: len(snapshot.Subjects),
		Sessions: len(snapshot.Sessions),
	}, nil
}

func (i *Interactor) Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error) {
	snapshot, err := i.svc.Import(ctx, input.Payload)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	return dto.ImportOutput{Subjects: len(snapshot.Subjects), Sessions: len(snapshot.Sessions)}, nil
}
