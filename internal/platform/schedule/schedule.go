package schedule

import (
	"sync"
	"time"
)

// Task is a running periodic job. Stop is idempotent and safe to call from
// inside the job itself.
type Task interface {
	Stop()
}

// Scheduler starts periodic jobs.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Task
}

// TickerScheduler runs each job on its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) Task {
	t := &tickerTask{stopCh: make(chan struct{}), done: make(chan struct{})}
	go t.loop(interval, fn)
	return t
}

type tickerTask struct {
	stopCh chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTask) loop(interval time.Duration, fn func()) {
	defer close(t.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			select {
			case <-t.stopCh:
				return
			default:
			}
			fn()
		}
	}
}

func (t *tickerTask) Stop() {
	t.once.Do(func() { close(t.stopCh) })
}

// Done is closed once the job goroutine has exited.
func (t *tickerTask) Done() <-chan struct{} {
	return t.done
}
