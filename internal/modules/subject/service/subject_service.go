package service

import (
	"context"
	"fmt"
	"log/slog"

	"studytracker/internal/modules/subject/domain"
	subjectout "studytracker/internal/modules/subject/port/out"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/tx"
)

type SubjectService struct {
	store         subjectout.SubjectStore
	purger        subjectout.SessionPurger
	tx            tx.Manager
	defaultPolicy domain.DeletePolicy
	logger        *slog.Logger
}

func NewSubjectService(store subjectout.SubjectStore, purger subjectout.SessionPurger, txm tx.Manager, defaultPolicy domain.DeletePolicy, logger *slog.Logger) *SubjectService {
	if txm == nil {
		txm = tx.NoopManager{}
	}
	if defaultPolicy == "" {
		defaultPolicy = domain.PolicyKeep
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubjectService{store: store, purger: purger, tx: txm, defaultPolicy: defaultPolicy, logger: logger}
}

func (s *SubjectService) Add(ctx context.Context, name string) (domain.Subject, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return domain.Subject{}, err
	}
	return s.store.Insert(ctx, name)
}

func (s *SubjectService) List(ctx context.Context, includeArchived bool) ([]domain.Subject, error) {
	return s.store.List(ctx, includeArchived)
}

func (s *SubjectService) Get(ctx context.Context, id int64) (domain.Subject, error) {
	return s.store.Get(ctx, id)
}

func (s *SubjectService) FindByName(ctx context.Context, name string) (domain.Subject, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return domain.Subject{}, err
	}
	return s.store.FindByName(ctx, name)
}

func (s *SubjectService) Rename(ctx context.Context, id int64, name string) (domain.Subject, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Subject{}, err
	}
	name, err = domain.NormalizeName(name)
	if err != nil {
		return domain.Subject{}, err
	}
	if name == current.Name {
		return current, nil
	}
	if err := s.store.Rename(ctx, id, name); err != nil {
		return domain.Subject{}, err
	}
	current.Name = name
	return current, nil
}

// Delete applies policy (or the configured default when empty) and reports
// how many sessions went with the subject.
func (s *SubjectService) Delete(ctx context.Context, id int64, policy domain.DeletePolicy) (domain.Subject, domain.DeletePolicy, int64, error) {
	if policy == "" {
		policy = s.defaultPolicy
	}
	var (
		subject domain.Subject
		purged  int64
	)
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		var err error
		subject, err = s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		switch policy {
		case domain.PolicyArchive:
			return s.store.SetArchived(ctx, id, true)
		case domain.PolicyCascade:
			if s.purger == nil {
				return fmt.Errorf("cascade delete: session purger is not configured")
			}
			if purged, err = s.purger.PurgeSubject(ctx, id); err != nil {
				return err
			}
			return s.store.Delete(ctx, id)
		case domain.PolicyKeep:
			return s.store.Delete(ctx, id)
		default:
			return fmt.Errorf("%w %q", apperrors.ErrInvalidPolicy, policy)
		}
	})
	if err != nil {
		return domain.Subject{}, policy, 0, err
	}
	s.logger.Info("subject deleted",
		slog.Int64("subject_id", id),
		slog.String("policy", string(policy)),
		slog.Int64("sessions_deleted", purged))
	return subject, policy, purged, nil
}

// EnsureDefault seeds one subject when none exist, archived ones included.
func (s *SubjectService) EnsureDefault(ctx context.Context, name string) (domain.Subject, bool, error) {
	var (
		subject domain.Subject
		created bool
	)
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		count, err := s.store.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		subject, err = s.Add(ctx, name)
		if err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return domain.Subject{}, false, err
	}
	if created {
		s.logger.Debug("seeded default subject", slog.String("name", subject.Name))
	}
	return subject, created, nil
}
