package out

import (
	"context"

	"studytracker/internal/modules/backup/domain"
)

type SnapshotStore interface {
	Dump(ctx context.Context) ([]domain.SubjectRecord, []domain.SessionRecord, error)
	// Replace clears both tables and writes the records with their ids, all
	// or nothing.
	Replace(ctx context.Context, subjects []domain.SubjectRecord, sessions []domain.SessionRecord) error
}
