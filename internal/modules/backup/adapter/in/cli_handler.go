package in

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"studytracker/internal/modules/backup/dto"
	backupin "studytracker/internal/modules/backup/port/in"
)

type CLIHandler struct {
	usecase backupin.Usecase
}

func NewCLIHandler(usecase backupin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Export(ctx context.Context) (dto.ExportOutput, error) {
	return h.usecase.Export(ctx)
}

// ExportTo writes the snapshot to path. A directory (or empty path for the
// current one) receives the default file name. It returns the file written.
func (h CLIHandler) ExportTo(ctx context.Context, path string) (string, dto.ExportOutput, error) {
	out, err := h.usecase.Export(ctx)
	if err != nil {
		return "", dto.ExportOutput{}, err
	}
	if path == "" {
		path = "."
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, out.FileName)
	}
	if err := os.WriteFile(path, out.Payload, 0o644); err != nil {
		return "", dto.ExportOutput{}, fmt.Errorf("write backup: %w", err)
	}
	return path, out, nil
}

func (h CLIHandler) Import(ctx context.Context, payload []byte) (dto.ImportOutput, error) {
	return h.usecase.Import(ctx, dto.ImportInput{Payload: payload})
}

func (h CLIHandler) ImportFrom(ctx context.Context, path string) (dto.ImportOutput, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return dto.ImportOutput{}, fmt.Errorf("read backup: %w", err)
	}
	return h.Import(ctx, payload)
}
