package in

import (
	"context"

	"studytracker/internal/modules/timer/dto"
	timerin "studytracker/internal/modules/timer/port/in"
)

type CLIHandler struct {
	usecase timerin.Usecase
}

func NewCLIHandler(usecase timerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Begin(ctx context.Context, subjectID int64, minutes float64) (dto.StateOutput, error) {
	return h.usecase.Begin(ctx, dto.BeginInput{SubjectID: subjectID, Minutes: minutes})
}

func (h CLIHandler) Repeat(ctx context.Context) (dto.StateOutput, error) {
	return h.usecase.Repeat(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (dto.StateOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) EndNow(ctx context.Context) (dto.CompletionOutput, error) {
	return h.usecase.EndNow(ctx)
}

func (h CLIHandler) Detach() {
	h.usecase.Detach()
}

func (h CLIHandler) State() dto.StateOutput {
	return h.usecase.State()
}

// Watch attaches a channel listener and returns its events. The driver keeps
// one listener, so a later Watch replaces an earlier one.
func (h CLIHandler) Watch(buffer int) <-chan dto.Event {
	listener := NewChannelListener(buffer)
	h.usecase.SetListener(listener)
	return listener.Events()
}

// Wait blocks until a terminal event arrives or ctx is done. onTick sees
// every tick that was not dropped.
func (h CLIHandler) Wait(ctx context.Context, events <-chan dto.Event, onTick func(dto.Event)) (dto.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return dto.Event{}, ctx.Err()
		case event := <-events:
			if event.Terminal() {
				return event, event.Err
			}
			if onTick != nil {
				onTick(event)
			}
		}
	}
}
