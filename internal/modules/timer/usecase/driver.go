package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"studytracker/internal/modules/timer/domain"
	"studytracker/internal/modules/timer/dto"
	timerin "studytracker/internal/modules/timer/port/in"
	timerout "studytracker/internal/modules/timer/port/out"
	"studytracker/internal/platform/clock"
	apperrors "studytracker/internal/platform/errors"
	"studytracker/internal/platform/schedule"
)

const TickInterval = time.Second

// maxCompletionAttempts bounds how many ticks retry a failing auto-completion
// before the driver gives up and reports an error event.
const maxCompletionAttempts = 3

// Driver runs the countdown of the active session. It is Idle or Running;
// while Running a scheduled task ticks once per interval and the first tick
// past the planned end completes the session exactly once.
type Driver struct {
	gateway   timerout.SessionGateway
	alarm     timerout.Alarm
	scheduler schedule.Scheduler
	clock     clock.Clock
	logger    *slog.Logger
	interval  time.Duration

	mu       sync.Mutex
	state    domain.State
	current  domain.Countdown
	task     schedule.Task
	listener timerin.Listener
	failures int

	completing atomic.Bool
}

type Options struct {
	// Alarm may be nil to stay silent.
	Alarm     timerout.Alarm
	Scheduler schedule.Scheduler
	Clock     clock.Clock
	Logger    *slog.Logger
	Interval  time.Duration
}

func NewDriver(gateway timerout.SessionGateway, opts Options) timerin.Usecase {
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.TickerScheduler{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Interval <= 0 {
		opts.Interval = TickInterval
	}
	return &Driver{
		gateway:   gateway,
		alarm:     opts.Alarm,
		scheduler: opts.Scheduler,
		clock:     opts.Clock,
		logger:    opts.Logger,
		interval:  opts.Interval,
		state:     domain.StateIdle,
	}
}

func (d *Driver) SetListener(listener timerin.Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listener = listener
}

func (d *Driver) Begin(ctx context.Context, input dto.BeginInput) (dto.StateOutput, error) {
	countdown, err := d.gateway.Start(ctx, input.SubjectID, input.Minutes)
	if err != nil {
		return dto.StateOutput{}, err
	}
	return d.run(countdown), nil
}

func (d *Driver) Repeat(ctx context.Context) (dto.StateOutput, error) {
	countdown, err := d.gateway.Repeat(ctx)
	if err != nil {
		return dto.StateOutput{}, err
	}
	return d.run(countdown), nil
}

func (d *Driver) Resume(ctx context.Context) (dto.StateOutput, error) {
	countdown, ok, err := d.gateway.Active(ctx)
	if err != nil {
		return dto.StateOutput{}, err
	}
	if !ok {
		d.Detach()
		return d.State(), nil
	}
	return d.run(countdown), nil
}

// EndNow ends the active session whatever the driver state and stops the
// tick unconditionally.
func (d *Driver) EndNow(ctx context.Context) (dto.CompletionOutput, error) {
	countdown, _ := d.idle()
	done, err := d.gateway.End(ctx)
	if err != nil {
		return dto.CompletionOutput{}, err
	}
	out := toCompletion(done)
	d.emit(dto.Event{Kind: dto.EventStopped, Countdown: toCountdown(countdown), Completion: out})
	return out, nil
}

func (d *Driver) Detach() {
	d.idle()
}

func (d *Driver) State() dto.StateOutput {
	d.mu.Lock()
	state, countdown := d.state, d.current
	d.mu.Unlock()
	if state != domain.StateRunning {
		return dto.StateOutput{}
	}
	return dto.StateOutput{
		Running:   true,
		Countdown: toCountdown(countdown),
		Progress:  toProgress(countdown.At(d.clock.Now())),
	}
}

func (d *Driver) run(countdown domain.Countdown) dto.StateOutput {
	d.mu.Lock()
	if d.task != nil {
		d.task.Stop()
	}
	d.state = domain.StateRunning
	d.current = countdown
	d.failures = 0
	d.task = d.scheduler.Every(d.interval, d.tick)
	d.mu.Unlock()

	d.logger.Debug("countdown running",
		slog.Int64("session_id", countdown.SessionID),
		slog.Time("planned_end_time", countdown.PlannedEndTime))
	// A resumed session may already be overdue.
	d.tick()
	return d.State()
}

// idle stops the tick and returns the countdown that was running, if any.
func (d *Driver) idle() (domain.Countdown, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.task != nil {
		d.task.Stop()
		d.task = nil
	}
	wasRunning := d.state == domain.StateRunning
	countdown := d.current
	d.state = domain.StateIdle
	d.current = domain.Countdown{}
	d.failures = 0
	return countdown, wasRunning
}

func (d *Driver) tick() {
	d.mu.Lock()
	running, countdown := d.state == domain.StateRunning, d.current
	d.mu.Unlock()
	if !running {
		return
	}

	progress := countdown.At(d.clock.Now())
	if !progress.Expired {
		d.emit(dto.Event{Kind: dto.EventTick, Countdown: toCountdown(countdown), Progress: toProgress(progress)})
		return
	}
	if !d.completing.CompareAndSwap(false, true) {
		return
	}
	defer d.completing.Store(false)
	d.complete(countdown, progress)
}

// complete ends the expired session, rings the alarm and notifies the
// listener. It runs under the completing flag. The driver stays Running
// until the session is really ended, so a failed End is retried by the next
// tick, up to maxCompletionAttempts.
func (d *Driver) complete(countdown domain.Countdown, progress domain.Progress) {
	d.mu.Lock()
	if d.state != domain.StateRunning || d.current.SessionID != countdown.SessionID {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	ctx := context.Background()
	event := dto.Event{Countdown: toCountdown(countdown), Progress: toProgress(progress)}

	active, ok, err := d.gateway.Active(ctx)
	if err == nil && (!ok || active.SessionID != countdown.SessionID) {
		// Ended elsewhere, e.g. by another process.
		d.stopped(countdown, event)
		return
	}
	var done domain.Completion
	if err == nil {
		done, err = d.gateway.End(ctx)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrNoActiveSession) {
			d.stopped(countdown, event)
			return
		}
		d.mu.Lock()
		d.failures++
		attempts := d.failures
		d.mu.Unlock()
		if attempts < maxCompletionAttempts {
			d.logger.Warn("auto-completion failed, retrying",
				slog.Int64("session_id", countdown.SessionID),
				slog.Int("attempt", attempts),
				slog.String("error", err.Error()))
			return
		}
		d.logger.Error("auto-completion failed",
			slog.Int64("session_id", countdown.SessionID),
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()))
		if d.release(countdown) {
			event.Kind, event.Err = dto.EventError, err
			d.emit(event)
		}
		return
	}

	// EndNow may have gone Idle meanwhile; the completion still happened here.
	d.release(countdown)
	d.logger.Info("session auto-completed",
		slog.Int64("session_id", done.SessionID),
		slog.Int("duration_min", done.DurationMin))
	if d.alarm != nil {
		if err := d.alarm.Ring(); err != nil {
			d.logger.Warn("alarm failed", slog.String("error", err.Error()))
		}
	}
	event.Kind, event.Completion = dto.EventCompleted, toCompletion(done)
	d.emit(event)
}

// stopped reports a session that ended without this driver ending it. If
// EndNow already released the countdown it reports the stop itself.
func (d *Driver) stopped(countdown domain.Countdown, event dto.Event) {
	if d.release(countdown) {
		event.Kind = dto.EventStopped
		d.emit(event)
	}
}

// release goes Idle if countdown is still the running one.
func (d *Driver) release(countdown domain.Countdown) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != domain.StateRunning || d.current.SessionID != countdown.SessionID {
		return false
	}
	if d.task != nil {
		d.task.Stop()
		d.task = nil
	}
	d.state = domain.StateIdle
	d.current = domain.Countdown{}
	d.failures = 0
	return true
}

func (d *Driver) emit(event dto.Event) {
	d.mu.Lock()
	listener := d.listener
	d.mu.Unlock()
	if listener != nil {
		listener.OnEvent(event)
	}
}

func toCountdown(c domain.Countdown) dto.CountdownOutput {
	return dto.CountdownOutput{
		SessionID:      c.SessionID,
		SubjectID:      c.SubjectID,
		SubjectName:    c.SubjectName,
		StartTime:      c.StartTime,
		PlannedEndTime: c.PlannedEndTime,
	}
}

func toProgress(p domain.Progress) dto.ProgressOutput {
	return dto.ProgressOutput{
		RemainSec: p.RemainSec,
		TotalSec:  p.TotalSec,
		Fraction:  p.Fraction,
		Remaining: domain.FormatRemaining(p.RemainSec),
	}
}

func toCompletion(c domain.Completion) dto.CompletionOutput {
	return dto.CompletionOutput{SessionID: c.SessionID, SubjectName: c.SubjectName, DurationMin: c.DurationMin}
}
