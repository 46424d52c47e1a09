package dto

import "time"

type EventKind string

const (
	EventTick      EventKind = "tick"
	EventCompleted EventKind = "completed"
	EventStopped   EventKind = "stopped"
	EventError     EventKind = "error"
)

type BeginInput struct {
	SubjectID int64
	Minutes   float64
}

type ProgressOutput struct {
	RemainSec int64
	TotalSec  int64
	Fraction  float64
	Remaining string
}

type CountdownOutput struct {
	SessionID      int64
	SubjectID      int64
	SubjectName    string
	StartTime      time.Time
	PlannedEndTime time.Time
}

type StateOutput struct {
	Running   bool
	Countdown CountdownOutput
	Progress  ProgressOutput
}

type CompletionOutput struct {
	SessionID   int64
	SubjectName string
	DurationMin int
}

type Event struct {
	Kind       EventKind
	Countdown  CountdownOutput
	Progress   ProgressOutput
	Completion CompletionOutput
	Err        error
}

// Terminal reports whether the event ends a countdown.
func (e Event) Terminal() bool {
	return e.Kind != EventTick
}
