package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	sessionout "studytracker/internal/modules/session/adapter/out"
	sessiondto "studytracker/internal/modules/session/dto"
	sessionin "studytracker/internal/modules/session/port/in"
	sessionservice "studytracker/internal/modules/session/service"
	"studytracker/internal/modules/session/usecase"
	subjectout "studytracker/internal/modules/subject/adapter/out"
	subjectdto "studytracker/internal/modules/subject/dto"
	subjectin "studytracker/internal/modules/subject/port/in"
	subjectservice "studytracker/internal/modules/subject/service"
	subjectusecase "studytracker/internal/modules/subject/usecase"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/sqlitedb"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type fixture struct {
	db       *sqlitedb.DB
	clock    *fakeClock
	sessions sessionin.Usecase
	subjects subjectin.Usecase
	dataDir  string
}

func newFixture(t *testing.T, start time.Time) fixture {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlitedb.Open(context.Background(), filepath.Join(dir, "study.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return newFixtureOn(t, db, dir, start)
}

func newFixtureOn(t *testing.T, db *sqlitedb.DB, dir string, start time.Time) fixture {
	t.Helper()
	clk := &fakeClock{now: start}
	purger := subjectout.NewSessionPurgerAdapter()
	subjects := subjectusecase.NewInteractor(subjectservice.NewSubjectService(
		subjectout.NewSQLiteSubjectStore(db), purger, db, "", nil))
	sessions := usecase.NewInteractor(
		sessionservice.NewSessionService(clk, time.UTC, sessionout.NewSQLiteSessionStore(db, time.UTC), db, nil),
		subjects,
		sessionout.NewFileLastStartStore(dir),
		nil,
	)
	purger.Bind(sessions)
	return fixture{db: db, clock: clk, sessions: sessions, subjects: subjects, dataDir: dir}
}

func (f fixture) addSubject(t *testing.T, name string) subjectdto.SubjectOutput {
	t.Helper()
	out, err := f.subjects.Add(context.Background(), subjectdto.AddInput{Name: name})
	if err != nil {
		t.Fatalf("add subject %s: %v", name, err)
	}
	return out
}

func countActive(t *testing.T, f fixture) int {
	t.Helper()
	all, err := f.sessions.List(context.Background())
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	n := 0
	for _, s := range all {
		if s.EndTime == nil {
			n++
		}
	}
	return n
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(t, start)
	math := f.addSubject(t, "Math")

	started, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: math.ID, Minutes: 25})
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if started.ID == 0 || started.SubjectName != "Math" {
		t.Fatalf("unexpected start output: %+v", started)
	}
	if !started.PlannedEndTime.Equal(start.Add(25*time.Minute)) || started.StartDay != "2026-03-01" {
		t.Fatalf("unexpected derived fields: %+v", started)
	}

	active, err := f.sessions.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.ID != started.ID {
		t.Fatalf("expected active %d, got %d", started.ID, active.ID)
	}

	f.clock.Advance(12*time.Minute + 10*time.Second)
	ended, err := f.sessions.End(ctx)
	if err != nil {
		t.Fatalf("end session: %v", err)
	}
	if ended.DurationMin == nil || *ended.DurationMin != 13 {
		t.Fatalf("expected ceil duration 13, got %v", ended.DurationMin)
	}
	if _, err := f.sessions.GetActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after end, got %v", err)
	}
	if _, err := f.sessions.End(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session on second end, got %v", err)
	}
}

func TestStartValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	math := f.addSubject(t, "Math")

	cases := []struct {
		name  string
		input sessiondto.StartInput
		want  error
	}{
		{"missing subject", sessiondto.StartInput{Minutes: 25}, apperrors.ErrMissingSelection},
		{"zero minutes", sessiondto.StartInput{SubjectID: math.ID}, apperrors.ErrInvalidMinutes},
		{"negative minutes", sessiondto.StartInput{SubjectID: math.ID, Minutes: -3}, apperrors.ErrInvalidMinutes},
		{"below one minute", sessiondto.StartInput{SubjectID: math.ID, Minutes: 0.5}, apperrors.ErrInvalidMinutes},
		{"unknown subject", sessiondto.StartInput{SubjectID: 999, Minutes: 25}, apperrors.ErrNotFound},
	}
	for _, tc := range cases {
		if _, err := f.sessions.Start(ctx, tc.input); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if countActive(t, f) != 0 {
		t.Fatalf("failed starts must not persist sessions")
	}

	out, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: math.ID, Minutes: 25.9})
	if err != nil {
		t.Fatalf("start with fractional minutes: %v", err)
	}
	if out.PlannedMinutes != 25 {
		t.Fatalf("expected truncated 25 minutes, got %d", out.PlannedMinutes)
	}
}

func TestStartFailsWhileActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	math := f.addSubject(t, "Math")
	art := f.addSubject(t, "Art")

	if _, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: math.ID, Minutes: 25}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: art.ID, Minutes: 10})
	if !errors.Is(err, apperrors.ErrActiveSessionExists) || !errors.Is(err, apperrors.ErrStateConflict) {
		t.Fatalf("expected active session conflict, got %v", err)
	}
	if countActive(t, f) != 1 {
		t.Fatalf("expected exactly one active session")
	}
}

func TestRacingStartsLeaveOneActiveSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "study.db")
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// Two handles on one file behave like two processes.
	var fixtures []fixture
	for i := 0; i < 2; i++ {
		db, err := sqlitedb.Open(ctx, path, nil)
		if err != nil {
			t.Fatalf("open db %d: %v", i, err)
		}
		t.Cleanup(func() { _ = db.Close() })
		fixtures = append(fixtures, newFixtureOn(t, db, dir, start))
	}
	math := fixtures[0].addSubject(t, "Math")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(f fixture) {
			defer wg.Done()
			_, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: math.ID, Minutes: 25})
			errs <- err
		}(fixtures[i%2])
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrActiveSessionExists):
		default:
			t.Fatalf("unexpected start error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful start, got %d", succeeded)
	}
	if countActive(t, fixtures[0]) != 1 {
		t.Fatalf("expected exactly one active session")
	}
}

func TestGetActivePicksEarliestWhenSeveralExist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	math := f.addSubject(t, "Math")

	// Corrupt the table behind the lifecycle manager's back.
	const stmt = `INSERT INTO sessions (id, subject_id, start_time, planned_end_time, start_day) VALUES (?, ?, ?, ?, '2026-03-01')`
	q := f.db.Querier(ctx)
	later := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli()
	earlier := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC).UnixMilli()
	if _, err := q.ExecContext(ctx, stmt, 10, math.ID, later, later+60_000); err != nil {
		t.Fatalf("seed later: %v", err)
	}
	if _, err := q.ExecContext(ctx, stmt, 11, math.ID, earlier, earlier+60_000); err != nil {
		t.Fatalf("seed earlier: %v", err)
	}

	active, err := f.sessions.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.ID != 11 {
		t.Fatalf("expected earliest active session 11, got %d", active.ID)
	}
	ended, err := f.sessions.End(ctx)
	if err != nil || ended.ID != 11 {
		t.Fatalf("expected end to close session 11, got %d, %v", ended.ID, err)
	}
}

func TestRepeatUsesLastStart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	if _, err := f.sessions.Repeat(ctx); !errors.Is(err, apperrors.ErrMissingSelection) {
		t.Fatalf("expected missing selection before any start, got %v", err)
	}
	last, err := f.sessions.LastStart(ctx)
	if err != nil || last.Available {
		t.Fatalf("expected no last start, got %+v, %v", last, err)
	}

	art := f.addSubject(t, "Art")
	if _, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: art.ID, Minutes: 40}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.sessions.Repeat(ctx); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected conflict while active, got %v", err)
	}
	f.clock.Advance(40 * time.Minute)
	if _, err := f.sessions.End(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}

	repeated, err := f.sessions.Repeat(ctx)
	if err != nil {
		t.Fatalf("repeat: %v", err)
	}
	if repeated.SubjectID != art.ID || repeated.PlannedMinutes != 40 {
		t.Fatalf("unexpected repeated session: %+v", repeated)
	}
	last, err = f.sessions.LastStart(ctx)
	if err != nil || !last.Available || last.SubjectName != "Art" || last.Minutes != 40 {
		t.Fatalf("unexpected last start: %+v, %v", last, err)
	}
}

func TestResetTodayEndsActiveAndDeletesOnlyToday(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC))
	math := f.addSubject(t, "Math")

	if _, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: math.ID, Minutes: 30}); err != nil {
		t.Fatalf("start yesterday: %v", err)
	}
	f.clock.Advance(30 * time.Minute)
	if _, err := f.sessions.End(ctx); err != nil {
		t.Fatalf("end yesterday: %v", err)
	}

	f.clock.Advance(10 * time.Hour) // 2026-03-02 09:30
	if _, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: math.ID, Minutes: 25}); err != nil {
		t.Fatalf("start today: %v", err)
	}
	f.clock.Advance(5 * time.Minute)

	out, err := f.sessions.ResetToday(ctx)
	if err != nil {
		t.Fatalf("reset today: %v", err)
	}
	if out.Deleted != 1 || !out.EndedActive {
		t.Fatalf("unexpected reset output: %+v", out)
	}
	all, err := f.sessions.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].StartDay != "2026-03-01" {
		t.Fatalf("expected only yesterday's session to remain, got %+v", all)
	}

	out, err = f.sessions.ResetToday(ctx)
	if err != nil {
		t.Fatalf("reset today without active session must succeed: %v", err)
	}
	if out.Deleted != 0 || out.EndedActive {
		t.Fatalf("unexpected second reset output: %+v", out)
	}
}

func TestResetAllAndResetSubject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	math := f.addSubject(t, "Math")
	art := f.addSubject(t, "Art")

	for _, id := range []int64{math.ID, art.ID, math.ID} {
		if _, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: id, Minutes: 10}); err != nil {
			t.Fatalf("start: %v", err)
		}
		f.clock.Advance(10 * time.Minute)
		if _, err := f.sessions.End(ctx); err != nil {
			t.Fatalf("end: %v", err)
		}
	}

	out, err := f.sessions.ResetSubject(ctx, math.ID)
	if err != nil || out.Deleted != 2 {
		t.Fatalf("reset subject: %+v, %v", out, err)
	}
	if _, err := f.sessions.ResetSubject(ctx, 0); !errors.Is(err, apperrors.ErrMissingSelection) {
		t.Fatalf("expected missing selection, got %v", err)
	}

	if _, err := f.sessions.Start(ctx, sessiondto.StartInput{SubjectID: art.ID, Minutes: 10}); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err = f.sessions.ResetAll(ctx)
	if err != nil {
		t.Fatalf("reset all: %v", err)
	}
	if out.Deleted != 2 || !out.EndedActive {
		t.Fatalf("unexpected reset all output: %+v", out)
	}
	if all, _ := f.sessions.List(ctx); len(all) != 0 {
		t.Fatalf("expected no sessions after reset all, got %d", len(all))
	}
}
