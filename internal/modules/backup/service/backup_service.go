package service

import (
	"context"
	"log/slog"
	"time"

	"studytracker/internal/modules/backup/domain"
	backupout "studytracker/internal/modules/backup/port/out"
	"studytracker/internal/platform/clock"
)

type BackupService struct {
	store  backupout.SnapshotStore
	clock  clock.Clock
	loc    *time.Location
	logger *slog.Logger
}

func NewBackupService(store backupout.SnapshotStore, clk clock.Clock, loc *time.Location, logger *slog.Logger) *BackupService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupService{store: store, clock: clk, loc: loc, logger: logger}
}

// Export returns an unfiltered snapshot and its default file name.
func (s *BackupService) Export(ctx context.Context) (domain.Snapshot, string, error) {
	subjects, sessions, err := s.store.Dump(ctx)
	if err != nil {
		return domain.Snapshot{}, "", err
	}
	now := s.clock.Now()
	return domain.NewSnapshot(now, subjects, sessions), domain.FileName(now, s.loc), nil
}

// Import decodes payload fully before touching storage.
func (s *BackupService) Import(ctx context.Context, payload []byte) (domain.Snapshot, error) {
	snapshot, err := domain.Decode(payload)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.store.Replace(ctx, snapshot.Subjects, snapshot.Sessions); err != nil {
		return domain.Snapshot{}, err
	}
	s.logger.Info("backup imported",
		slog.Int("subjects", len(snapshot.Subjects)),
		slog.Int("sessions", len(snapshot.Sessions)))
	return snapshot, nil
}
