package in

import (
	"context"

	"studytracker/internal/modules/backup/dto"
)

type Usecase interface {
	Export(ctx context.Context) (dto.ExportOutput, error)
	Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error)
}
