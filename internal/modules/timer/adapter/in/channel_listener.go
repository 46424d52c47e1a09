package in

import (
	"sync"

	"studytracker/internal/modules/timer/dto"
	timerin "studytracker/internal/modules/timer/port/in"
)

// terminalReserve is channel capacity that ticks never occupy.
const terminalReserve = 2

// ChannelListener forwards driver events to a buffered channel. Ticks are
// dropped when the reader falls behind. Terminal events are never dropped:
// they evict buffered ticks, and only block when the channel holds nothing
// but unread terminal events.
type ChannelListener struct {
	mu      sync.Mutex
	events  chan dto.Event
	tickCap int
}

var _ timerin.Listener = (*ChannelListener)(nil)

func NewChannelListener(buffer int) *ChannelListener {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelListener{events: make(chan dto.Event, buffer+terminalReserve), tickCap: buffer}
}

func (l *ChannelListener) Events() <-chan dto.Event {
	return l.events
}

func (l *ChannelListener) OnEvent(event dto.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !event.Terminal() {
		if len(l.events) < l.tickCap {
			l.events <- event
		}
		return
	}
	select {
	case l.events <- event:
		return
	default:
	}

	// Full: drop the oldest buffered tick and keep everything else in order.
	var kept []dto.Event
	evicted := false
	for drained := false; !drained; {
		select {
		case e := <-l.events:
			if !evicted && !e.Terminal() {
				evicted = true
				continue
			}
			kept = append(kept, e)
		default:
			drained = true
		}
	}
	for _, e := range kept {
		l.events <- e
	}
	l.events <- event
}
