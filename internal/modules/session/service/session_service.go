package service

import (
	"context"
	"log/slog"
	"time"

	"studytracker/internal/modules/session/domain"
	sessionout "studytracker/internal/modules/session/port/out"
	"studytracker/internal/platform/clock"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/tx"
)

type SessionService struct {
	clock  clock.Clock
	loc    *time.Location
	store  sessionout.SessionStore
	tx     tx.Manager
	logger *slog.Logger
}

func NewSessionService(clock clock.Clock, loc *time.Location, store sessionout.SessionStore, txm tx.Manager, logger *slog.Logger) *SessionService {
	if loc == nil {
		loc = time.Local
	}
	if txm == nil {
		txm = tx.NoopManager{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{clock: clock, loc: loc, store: store, tx: txm, logger: logger}
}

// Start checks for an active session and inserts the new one in a single
// transaction, so two racing starts leave exactly one active session.
func (s *SessionService) Start(ctx context.Context, subjectID int64, minutes int) (domain.Session, error) {
	var started domain.Session
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		active, err := s.store.ListActive(ctx)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			s.reportAnomaly(active)
			return apperrors.ErrActiveSessionExists
		}
		started, err = s.store.Insert(ctx, domain.New(subjectID, minutes, s.clock.Now(), s.loc))
		return err
	})
	if err != nil {
		return domain.Session{}, err
	}
	s.logger.Info("session started",
		slog.Int64("session_id", started.ID),
		slog.Int64("subject_id", subjectID),
		slog.Int("minutes", minutes))
	return started, nil
}

func (s *SessionService) Active(ctx context.Context) (domain.Session, error) {
	active, err := s.store.ListActive(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	return s.pick(active)
}

func (s *SessionService) End(ctx context.Context) (domain.Session, error) {
	var ended domain.Session
	err := s.tx.Within(ctx, func(ctx context.Context) error {
		active, err := s.store.ListActive(ctx)
		if err != nil {
			return err
		}
		current, err := s.pick(active)
		if err != nil {
			return err
		}
		ended = current.Ended(s.clock.Now())
		return s.store.Update(ctx, ended)
	})
	if err != nil {
		return domain.Session{}, err
	}
	s.logger.Info("session ended",
		slog.Int64("session_id", ended.ID),
		slog.Int("duration_min", *ended.DurationMin))
	return ended, nil
}

func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	return s.store.List(ctx)
}

func (s *SessionService) ListEnded(ctx context.Context) ([]domain.Session, error) {
	return s.store.ListEnded(ctx)
}

// DeleteToday removes sessions that started between local midnight and the
// next midnight.
func (s *SessionService) DeleteToday(ctx context.Context) (int64, error) {
	from, to := clock.DayBounds(s.clock.Now(), s.loc)
	return s.store.DeleteStartedBetween(ctx, from, to)
}

func (s *SessionService) DeleteAll(ctx context.Context) (int64, error) {
	return s.store.DeleteAll(ctx)
}

func (s *SessionService) DeleteBySubject(ctx context.Context, subjectID int64) (int64, error) {
	return s.store.DeleteBySubject(ctx, subjectID)
}

func (s *SessionService) pick(active []domain.Session) (domain.Session, error) {
	current, count := domain.PickActive(active)
	if count == 0 {
		return domain.Session{}, apperrors.ErrNoActiveSession
	}
	if count > 1 {
		s.reportAnomaly(active)
	}
	return current, nil
}

func (s *SessionService) reportAnomaly(active []domain.Session) {
	if len(active) < 2 {
		return
	}
	ids := make([]int64, 0, len(active))
	for _, a := range active {
		ids = append(ids, a.ID)
	}
	s.logger.Warn("integrity anomaly: more than one active session",
		slog.Int("count", len(active)),
		slog.Any("session_ids", ids))
}
