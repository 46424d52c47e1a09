package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studytracker/internal/modules/subject/domain"
	subjectout "studytracker/internal/modules/subject/port/out"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/sqlitedb"
)

type SQLiteSubjectStore struct {
	db *sqlitedb.DB
}

func NewSQLiteSubjectStore(db *sqlitedb.DB) subjectout.SubjectStore {
	return &SQLiteSubjectStore{db: db}
}

func (s *SQLiteSubjectStore) Insert(ctx context.Context, name string) (domain.Subject, error) {
	res, err := s.db.Querier(ctx).ExecContext(ctx, `INSERT INTO subjects (name) VALUES (?)`, name)
	if err != nil {
		return domain.Subject{}, mapWriteErr("insert subject", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Subject{}, apperrors.Storage("insert subject id", err)
	}
	return domain.Subject{ID: id, Name: name}, nil
}

func (s *SQLiteSubjectStore) Get(ctx context.Context, id int64) (domain.Subject, error) {
	row := s.db.Querier(ctx).QueryRowContext(ctx, `SELECT id, name, archived FROM subjects WHERE id = ?`, id)
	subject, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subject{}, fmt.Errorf("subject %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Subject{}, apperrors.Storage("get subject", err)
	}
	return subject, nil
}

func (s *SQLiteSubjectStore) FindByName(ctx context.Context, name string) (domain.Subject, error) {
	row := s.db.Querier(ctx).QueryRowContext(ctx, `SELECT id, name, archived FROM subjects WHERE name = ?`, name)
	subject, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Subject{}, fmt.Errorf("subject %q: %w", name, apperrors.ErrNotFound)
	}
	if err != nil {
		return domain.Subject{}, apperrors.Storage("find subject", err)
	}
	return subject, nil
}

func (s *SQLiteSubjectStore) List(ctx context.Context, includeArchived bool) ([]domain.Subject, error) {
	query := `SELECT id, name, archived FROM subjects WHERE archived = 0 ORDER BY id`
	if includeArchived {
		query = `SELECT id, name, archived FROM subjects ORDER BY id`
	}
	rows, err := s.db.Querier(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Storage("list subjects", err)
	}
	defer rows.Close()

	var subjects []domain.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, apperrors.Storage("scan subject", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list subjects", err)
	}
	return subjects, nil
}

func (s *SQLiteSubjectStore) Rename(ctx context.Context, id int64, name string) error {
	res, err := s.db.Querier(ctx).ExecContext(ctx, `UPDATE subjects SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return mapWriteErr("rename subject", name, err)
	}
	return requireAffected(res, id)
}

func (s *SQLiteSubjectStore) SetArchived(ctx context.Context, id int64, archived bool) error {
	res, err := s.db.Querier(ctx).ExecContext(ctx, `UPDATE subjects SET archived = ? WHERE id = ?`, archived, id)
	if err != nil {
		return apperrors.Storage("archive subject", err)
	}
	return requireAffected(res, id)
}

func (s *SQLiteSubjectStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.Querier(ctx).ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
	if err != nil {
		return apperrors.Storage("delete subject", err)
	}
	return requireAffected(res, id)
}

func (s *SQLiteSubjectStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.Querier(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&n); err != nil {
		return 0, apperrors.Storage("count subjects", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubject(row scanner) (domain.Subject, error) {
	var subject domain.Subject
	err := row.Scan(&subject.ID, &subject.Name, &subject.Archived)
	return subject, err
}

func mapWriteErr(op, name string, err error) error {
	if sqlitedb.IsUniqueViolation(err) {
		return fmt.Errorf("subject %q: %w", name, apperrors.ErrDuplicateName)
	}
	return apperrors.Storage(op, err)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("subject %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
