package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studytracker/internal/modules/session/domain"
	sessionout "studytracker/internal/modules/session/port/out"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/sqlitedb"
)

const sessionColumns = `id, subject_id, start_time, planned_end_time, end_time, duration_min, start_day`

type SQLiteSessionStore struct {
	db  *sqlitedb.DB
	loc *time.Location
}

func NewSQLiteSessionStore(db *sqlitedb.DB, loc *time.Location) sessionout.SessionStore {
	return &SQLiteSessionStore{db: db, loc: loc}
}

func (s *SQLiteSessionStore) Insert(ctx context.Context, session domain.Session) (domain.Session, error) {
	const stmt = `
INSERT INTO sessions (subject_id, start_time, planned_end_time, end_time, duration_min, start_day)
VALUES (?, ?, ?, ?, ?, ?)`
	endTime, duration := nullableEnd(session)
	res, err := s.db.Querier(ctx).ExecContext(ctx, stmt,
		session.SubjectID,
		sqlitedb.Millis(session.StartTime),
		sqlitedb.Millis(session.PlannedEndTime),
		endTime,
		duration,
		session.StartDay,
	)
	if err != nil {
		return domain.Session{}, apperrors.Storage("insert session", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Session{}, apperrors.Storage("insert session id", err)
	}
	session.ID = id
	return session, nil
}

func (s *SQLiteSessionStore) Update(ctx context.Context, session domain.Session) error {
	const stmt = `
UPDATE sessions SET
  subject_id = ?,
  start_time = ?,
  planned_end_time = ?,
  end_time = ?,
  duration_min = ?,
  start_day = ?
WHERE id = ?`
	endTime, duration := nullableEnd(session)
	res, err := s.db.Querier(ctx).ExecContext(ctx, stmt,
		session.SubjectID,
		sqlitedb.Millis(session.StartTime),
		sqlitedb.Millis(session.PlannedEndTime),
		endTime,
		duration,
		session.StartDay,
		session.ID,
	)
	if err != nil {
		return apperrors.Storage("update session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("update session", err)
	}
	if n == 0 {
		return fmt.Errorf("session %d: %w", session.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (s *SQLiteSessionStore) List(ctx context.Context) ([]domain.Session, error) {
	return s.query(ctx, "list sessions", `SELECT `+sessionColumns+` FROM sessions ORDER BY id`)
}

func (s *SQLiteSessionStore) ListActive(ctx context.Context) ([]domain.Session, error) {
	return s.query(ctx, "list active sessions",
		`SELECT `+sessionColumns+` FROM sessions WHERE end_time IS NULL ORDER BY start_time, id`)
}

func (s *SQLiteSessionStore) ListEnded(ctx context.Context) ([]domain.Session, error) {
	return s.query(ctx, "list ended sessions",
		`SELECT `+sessionColumns+` FROM sessions WHERE end_time IS NOT NULL ORDER BY id`)
}

func (s *SQLiteSessionStore) DeleteStartedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return s.exec(ctx, "delete sessions in range",
		`DELETE FROM sessions WHERE start_time >= ? AND start_time < ?`,
		sqlitedb.Millis(from), sqlitedb.Millis(to))
}

func (s *SQLiteSessionStore) DeleteAll(ctx context.Context) (int64, error) {
	return s.exec(ctx, "delete all sessions", `DELETE FROM sessions`)
}

func (s *SQLiteSessionStore) DeleteBySubject(ctx context.Context, subjectID int64) (int64, error) {
	return s.exec(ctx, "delete subject sessions", `DELETE FROM sessions WHERE subject_id = ?`, subjectID)
}

func (s *SQLiteSessionStore) exec(ctx context.Context, op, stmt string, args ...any) (int64, error) {
	res, err := s.db.Querier(ctx).ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, apperrors.Storage(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Storage(op, err)
	}
	return n, nil
}

func (s *SQLiteSessionStore) query(ctx context.Context, op, query string, args ...any) ([]domain.Session, error) {
	rows, err := s.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var (
			session        domain.Session
			start, planned int64
			end            sql.NullInt64
			duration       sql.NullInt64
		)
		if err := rows.Scan(&session.ID, &session.SubjectID, &start, &planned, &end, &duration, &session.StartDay); err != nil {
			return nil, apperrors.Storage(op, err)
		}
		session.StartTime = sqlitedb.FromMillis(start, s.loc)
		session.PlannedEndTime = sqlitedb.FromMillis(planned, s.loc)
		if end.Valid {
			t := sqlitedb.FromMillis(end.Int64, s.loc)
			session.EndTime = &t
		}
		if duration.Valid {
			d := int(duration.Int64)
			session.DurationMin = &d
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(op, err)
	}
	return sessions, nil
}

func nullableEnd(session domain.Session) (sql.NullInt64, sql.NullInt64) {
	var end, duration sql.NullInt64
	if session.EndTime != nil {
		end = sql.NullInt64{Int64: sqlitedb.Millis(*session.EndTime), Valid: true}
	}
	if session.DurationMin != nil {
		duration = sql.NullInt64{Int64: int64(*session.DurationMin), Valid: true}
	}
	return end, duration
}
