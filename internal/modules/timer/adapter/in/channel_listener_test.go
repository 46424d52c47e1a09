package in_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	timerin "studytracker/internal/modules/timer/adapter/in"
	"studytracker/internal/modules/timer/dto"
)

func TestChannelListenerDropsTicksButKeepsTerminalEvents(t *testing.T) {
	t.Parallel()
	l := timerin.NewChannelListener(2)

	for i := 0; i < 5; i++ {
		l.OnEvent(dto.Event{Kind: dto.EventTick, Progress: dto.ProgressOutput{RemainSec: int64(100 - i)}})
	}
	l.OnEvent(dto.Event{Kind: dto.EventCompleted})

	var got []dto.Event
	for len(l.Events()) > 0 {
		got = append(got, <-l.Events())
	}
	require.Len(t, got, 3)
	assert.Equal(t, int64(100), got[0].Progress.RemainSec)
	assert.Equal(t, int64(99), got[1].Progress.RemainSec)
	assert.Equal(t, dto.EventCompleted, got[2].Kind)
}

func TestChannelListenerKeepsEarlierTerminalEvents(t *testing.T) {
	t.Parallel()
	l := timerin.NewChannelListener(1)

	l.OnEvent(dto.Event{Kind: dto.EventTick})
	l.OnEvent(dto.Event{Kind: dto.EventStopped})
	l.OnEvent(dto.Event{Kind: dto.EventTick})
	l.OnEvent(dto.Event{Kind: dto.EventCompleted})

	var kinds []dto.EventKind
	for len(l.Events()) > 0 {
		kinds = append(kinds, (<-l.Events()).Kind)
	}
	assert.Equal(t, []dto.EventKind{dto.EventTick, dto.EventStopped, dto.EventCompleted}, kinds)
}

func TestChannelListenerEvictsTicksForTerminalEvents(t *testing.T) {
	t.Parallel()
	l := timerin.NewChannelListener(1)

	l.OnEvent(dto.Event{Kind: dto.EventTick, Progress: dto.ProgressOutput{RemainSec: 9}})
	l.OnEvent(dto.Event{Kind: dto.EventStopped})
	l.OnEvent(dto.Event{Kind: dto.EventCompleted})
	l.OnEvent(dto.Event{Kind: dto.EventError})

	var kinds []dto.EventKind
	for len(l.Events()) > 0 {
		kinds = append(kinds, (<-l.Events()).Kind)
	}
	assert.Equal(t, []dto.EventKind{dto.EventStopped, dto.EventCompleted, dto.EventError}, kinds)
}
