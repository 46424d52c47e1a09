package in

import (
	"context"

	"studytracker/internal/modules/timer/dto"
)

// Listener receives driver events. OnEvent is called from the tick
// goroutine and must not block for long.
type Listener interface {
	OnEvent(event dto.Event)
}

type Usecase interface {
	// Begin starts a session and runs its countdown.
	Begin(ctx context.Context, input dto.BeginInput) (dto.StateOutput, error)
	// Repeat starts a session with the last used subject and minutes.
	Repeat(ctx context.Context) (dto.StateOutput, error)
	// Resume attaches to an already active session, if any.
	Resume(ctx context.Context) (dto.StateOutput, error)
	// EndNow ends the active session and forces the driver idle.
	EndNow(ctx context.Context) (dto.CompletionOutput, error)
	// Detach stops ticking without touching the session.
	Detach()
	State() dto.StateOutput
	SetListener(listener Listener)
}
