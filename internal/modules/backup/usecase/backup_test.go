package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	backupout "studytracker/internal/modules/backup/adapter/out"
	"studytracker/internal/modules/backup/domain"
	"studytracker/internal/modules/backup/dto"
	backupin "studytracker/internal/modules/backup/port/in"
	"studytracker/internal/modules/backup/service"
	"studytracker/internal/modules/backup/usecase"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/sqlitedb"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeStore struct {
	subjects []domain.SubjectRecord
	sessions []domain.SessionRecord
	replaced int
}

func (f *fakeStore) Dump(context.Context) ([]domain.SubjectRecord, []domain.SessionRecord, error) {
	return f.subjects, f.sessions, nil
}

func (f *fakeStore) Replace(_ context.Context, subjects []domain.SubjectRecord, sessions []domain.SessionRecord) error {
	f.replaced++
	f.subjects, f.sessions = subjects, sessions
	return nil
}

var exportTime = time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC)

func newUsecase(t *testing.T) (backupin.Usecase, *sqlitedb.DB) {
	t.Helper()
	db, err := sqlitedb.Open(context.Background(), filepath.Join(t.TempDir(), "study.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	svc := service.NewBackupService(backupout.NewSQLiteSnapshotStore(db), fixedClock{now: exportTime}, time.UTC, nil)
	return usecase.NewInteractor(svc), db
}

func seed(t *testing.T, db *sqlitedb.DB) {
	t.Helper()
	ctx := context.Background()
	q := db.Querier(ctx)
	for _, stmt := range []string{
		`INSERT INTO subjects (id, name) VALUES (1, 'Math'), (3, 'Art')`,
		`INSERT INTO subjects (id, name, archived) VALUES (4, 'Latin', 1)`,
		`INSERT INTO sessions (id, subject_id, start_time, planned_end_time, end_time, duration_min, start_day)
		 VALUES (1, 1, 1767225600000, 1767227100000, 1767227100000, 25, '2026-01-01'),
		        (2, 2, 1767312000000, 1767312600000, 1767312300000, 5, '2026-01-02')`,
		`INSERT INTO sessions (id, subject_id, start_time, planned_end_time, start_day)
		 VALUES (6, 3, 1767398400000, 1767399900000, '2026-01-03')`,
	} {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	source, db := newUsecase(t)
	seed(t, db)

	exported, err := source.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.FileName != "StudyTracker_backup_2026-08-15.json" || exported.Subjects != 3 || exported.Sessions != 3 {
		t.Fatalf("unexpected export output: %+v", exported)
	}

	target, _ := newUsecase(t)
	imported, err := target.Import(ctx, dto.ImportInput{Payload: exported.Payload})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.Subjects != 3 || imported.Sessions != 3 {
		t.Fatalf("unexpected import output: %+v", imported)
	}

	again, err := target.Export(ctx)
	if err != nil {
		t.Fatalf("export again: %v", err)
	}
	if !bytes.Equal(exported.Payload, again.Payload) {
		t.Fatalf("round trip changed the data:\n%s\n---\n%s", exported.Payload, again.Payload)
	}
}

func TestImportRejectsBadPayloadBeforeMutation(t *testing.T) {
	t.Parallel()
	store := &fakeStore{subjects: []domain.SubjectRecord{{ID: 1, Name: "Math"}}}
	uc := usecase.NewInteractor(service.NewBackupService(store, fixedClock{now: exportTime}, time.UTC, nil))

	for _, payload := range []string{`{"subjects": []}`, `{"version": 3, "subjects": [], "sessions": []}`, `garbage`} {
		_, err := uc.Import(context.Background(), dto.ImportInput{Payload: []byte(payload)})
		if !errors.Is(err, apperrors.ErrInvalidBackupFormat) {
			t.Fatalf("%s: expected invalid backup format, got %v", payload, err)
		}
	}
	if store.replaced != 0 {
		t.Fatalf("invalid payloads must not reach storage")
	}
	if len(store.subjects) != 1 {
		t.Fatalf("existing data must survive a rejected import")
	}
}

func TestImportEmptySnapshotClearsEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc, db := newUsecase(t)
	seed(t, db)

	if _, err := uc.Import(ctx, dto.ImportInput{Payload: []byte(`{"version": 1, "subjects": [], "sessions": []}`)}); err != nil {
		t.Fatalf("import: %v", err)
	}
	out, err := uc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.Subjects != 0 || out.Sessions != 0 {
		t.Fatalf("expected empty database, got %+v", out)
	}
}
