package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	backupinadapter "studytracker/internal/modules/backup/adapter/in"
	backupoutadapter "studytracker/internal/modules/backup/adapter/out"
	backupservice "studytracker/internal/modules/backup/service"
	backupusecase "studytracker/internal/modules/backup/usecase"
	sessioninadapter "studytracker/internal/modules/session/adapter/in"
	sessionoutadapter "studytracker/internal/modules/session/adapter/out"
	sessionservice "studytracker/internal/modules/session/service"
	sessionusecase "studytracker/internal/modules/session/usecase"
	statsinadapter "studytracker/internal/modules/stats/adapter/in"
	statsoutadapter "studytracker/internal/modules/stats/adapter/out"
	statsservice "studytracker/internal/modules/stats/service"
	statsusecase "studytracker/internal/modules/stats/usecase"
	subjectinadapter "studytracker/internal/modules/subject/adapter/in"
	subjectoutadapter "studytracker/internal/modules/subject/adapter/out"
	subjectdomain "studytracker/internal/modules/subject/domain"
	subjectservice "studytracker/internal/modules/subject/service"
	subjectusecase "studytracker/internal/modules/subject/usecase"
	timerinadapter "studytracker/internal/modules/timer/adapter/in"
	timeroutadapter "studytracker/internal/modules/timer/adapter/out"
	timerout "studytracker/internal/modules/timer/port/out"
	timerusecase "studytracker/internal/modules/timer/usecase"
	"studytracker/internal/platform/clock"
	"studytracker/internal/platform/config"
	"studytracker/internal/platform/schedule"
	"studytracker/internal/platform/sqlitedb"
	uiapp "studytracker/internal/ui/app"
)

type App struct {
	Config     config.Config
	SubjectCLI subjectinadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	StatsCLI   statsinadapter.CLIHandler
	BackupCLI  backupinadapter.CLIHandler
	TimerCLI   timerinadapter.CLIHandler

	db     *sqlitedb.DB
	logger *slog.Logger
}

type options struct {
	clock     clock.Clock
	scheduler schedule.Scheduler
	alarm     timerout.Alarm
}

type Option func(*options)

// WithClock replaces the wall clock; used by tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithScheduler replaces the ticker behind the countdown driver.
func WithScheduler(s schedule.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithAlarm replaces the end-of-session alarm.
func WithAlarm(a timerout.Alarm) Option {
	return func(o *options) { o.alarm = a }
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	o := options{clock: clock.SystemClock{Location: loc}, scheduler: schedule.TickerScheduler{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.alarm == nil {
		if cfg.Alarm {
			o.alarm = timeroutadapter.NewSoundAlarm()
		} else {
			o.alarm = timeroutadapter.NoopAlarm{}
		}
	}
	policy, err := subjectdomain.ParsePolicy(cfg.DeletePolicy)
	if err != nil {
		return nil, err
	}

	db, err := sqlitedb.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	purger := subjectoutadapter.NewSessionPurgerAdapter()
	subjectUC := subjectusecase.NewInteractor(subjectservice.NewSubjectService(
		subjectoutadapter.NewSQLiteSubjectStore(db),
		purger,
		db,
		policy,
		logger,
	))

	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewSessionService(o.clock, loc, sessionoutadapter.NewSQLiteSessionStore(db, loc), db, logger),
		subjectUC,
		sessionoutadapter.NewFileLastStartStore(cfg.DataDir),
		logger,
	)
	purger.Bind(sessionUC)

	statsUC := statsusecase.NewInteractor(statsservice.NewStatsService(
		statsoutadapter.NewSubjectSourceAdapter(subjectUC),
		statsoutadapter.NewSessionSourceAdapter(sessionUC),
		o.clock,
		loc,
	))

	backupUC := backupusecase.NewInteractor(backupservice.NewBackupService(
		backupoutadapter.NewSQLiteSnapshotStore(db),
		o.clock,
		loc,
		logger,
	))

	driver := timerusecase.NewDriver(timeroutadapter.NewSessionGatewayAdapter(sessionUC), timerusecase.Options{
		Alarm:     o.alarm,
		Scheduler: o.scheduler,
		Clock:     o.clock,
		Logger:    logger,
	})

	if seeded, err := subjectUC.EnsureDefault(ctx, cfg.DefaultSubject); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed default subject: %w", err)
	} else if seeded.Created {
		logger.Info("created default subject", slog.String("name", seeded.Subject.Name))
	}

	return &App{
		Config:     cfg,
		SubjectCLI: subjectinadapter.NewCLIHandler(subjectUC),
		SessionCLI: sessioninadapter.NewCLIHandler(sessionUC),
		StatsCLI:   statsinadapter.NewCLIHandler(statsUC),
		BackupCLI:  backupinadapter.NewCLIHandler(backupUC),
		TimerCLI:   timerinadapter.NewCLIHandler(driver),
		db:         db,
		logger:     logger,
	}, nil
}

// Close stops the countdown without ending the session and releases the
// database.
func (a *App) Close() error {
	a.TimerCLI.Detach()
	return a.db.Close()
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(uiapp.Ports{
		Subjects: app.SubjectCLI,
		Sessions: app.SessionCLI,
		Stats:    app.StatsCLI,
		Backup:   app.BackupCLI,
		Timer:    app.TimerCLI,
	}, uiapp.Settings{
		DefaultMinutes: app.Config.DefaultMinutes,
		Presets:        app.Config.Presets,
		DeletePolicy:   app.Config.DeletePolicy,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
