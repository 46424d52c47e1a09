package out

import (
	"context"
	"database/sql"

	"studytracker/internal/modules/backup/domain"
	backupout "studytracker/internal/modules/backup/port/out"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/sqlitedb"
)

type SQLiteSnapshotStore struct {
	db *sqlitedb.DB
}

func NewSQLiteSnapshotStore(db *sqlitedb.DB) backupout.SnapshotStore {
	return &SQLiteSnapshotStore{db: db}
}

func (s *SQLiteSnapshotStore) Dump(ctx context.Context) ([]domain.SubjectRecord, []domain.SessionRecord, error) {
	var (
		subjects []domain.SubjectRecord
		sessions []domain.SessionRecord
	)
	// One transaction so both tables come from the same moment.
	err := s.db.Within(ctx, func(ctx context.Context) error {
		var err error
		if subjects, err = s.dumpSubjects(ctx); err != nil {
			return err
		}
		sessions, err = s.dumpSessions(ctx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return subjects, sessions, nil
}

func (s *SQLiteSnapshotStore) dumpSubjects(ctx context.Context) ([]domain.SubjectRecord, error) {
	rows, err := s.db.Querier(ctx).QueryContext(ctx, `SELECT id, name, archived FROM subjects ORDER BY id`)
	if err != nil {
		return nil, apperrors.Storage("dump subjects", err)
	}
	defer rows.Close()

	subjects := []domain.SubjectRecord{}
	for rows.Next() {
		var r domain.SubjectRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Archived); err != nil {
			return nil, apperrors.Storage("dump subjects", err)
		}
		subjects = append(subjects, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("dump subjects", err)
	}
	return subjects, nil
}

func (s *SQLiteSnapshotStore) dumpSessions(ctx context.Context) ([]domain.SessionRecord, error) {
	rows, err := s.db.Querier(ctx).QueryContext(ctx, `
SELECT id, subject_id, start_time, planned_end_time, end_time, duration_min, start_day
FROM sessions ORDER BY id`)
	if err != nil {
		return nil, apperrors.Storage("dump sessions", err)
	}
	defer rows.Close()

	sessions := []domain.SessionRecord{}
	for rows.Next() {
		var (
			r              domain.SessionRecord
			start, planned int64
			end            sql.NullInt64
			duration       sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.SubjectID, &start, &planned, &end, &duration, &r.StartDay); err != nil {
			return nil, apperrors.Storage("dump sessions", err)
		}
		r.StartTime, r.PlannedEndTime = domain.Timestamp(start), domain.Timestamp(planned)
		if end.Valid {
			v := domain.Timestamp(end.Int64)
			r.EndTime = &v
		}
		if duration.Valid {
			v := int(duration.Int64)
			r.DurationMin = &v
		}
		sessions = append(sessions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("dump sessions", err)
	}
	return sessions, nil
}

func (s *SQLiteSnapshotStore) Replace(ctx context.Context, subjects []domain.SubjectRecord, sessions []domain.SessionRecord) error {
	return s.db.Within(ctx, func(ctx context.Context) error {
		q := s.db.Querier(ctx)
		for _, stmt := range []string{`DELETE FROM sessions`, `DELETE FROM subjects`} {
			if _, err := q.ExecContext(ctx, stmt); err != nil {
				return apperrors.Storage("clear tables", err)
			}
		}
		for _, r := range subjects {
			if _, err := q.ExecContext(ctx,
				`INSERT INTO subjects (id, name, archived) VALUES (?, ?, ?)`,
				r.ID, r.Name, r.Archived); err != nil {
				return apperrors.Storage("restore subject", err)
			}
		}
		for _, r := range sessions {
			if _, err := q.ExecContext(ctx, `
INSERT INTO sessions (id, subject_id, start_time, planned_end_time, end_time, duration_min, start_day)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
				r.ID, r.SubjectID, int64(r.StartTime), int64(r.PlannedEndTime), nullTimestamp(r.EndTime), nullInt(r.DurationMin), r.StartDay); err != nil {
				return apperrors.Storage("restore session", err)
			}
		}
		return nil
	})
}

func nullTimestamp(v *domain.Timestamp) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
