package btmon

import (
	"sync"
	"time"

	"github.com/fako1024/btmon/bt"
)

const defaultInboxSize = 64

// Pump denotes the single suspension point of a discovery run. Adapters post
// events from arbitrary goroutines, Advance delivers them to the bound handler
// on the calling goroutine.
type Pump interface {
	bt.Inbox

	// Bind sets the handler all events are dispatched to
	Bind(handler func(bt.Event))

	// Advance blocks for at most max, dispatching queued events as they
	// arrive. It cannot be told to return early.
	Advance(max time.Duration)

	// Close releases the pump, subsequent posts are discarded
	Close()
}

// EventLoop is the default Pump, serializing events through a buffered
// channel
type EventLoop struct {
	inbox   chan bt.Event
	handler func(bt.Event)

	closeOnce sync.Once
	doneChan  chan struct{}
}

// NewEventLoop instantiates a new EventLoop with the given inbox capacity
func NewEventLoop(size int) *EventLoop {
	if size <= 0 {
		size = defaultInboxSize
	}
	return &EventLoop{
		inbox:    make(chan bt.Event, size),
		doneChan: make(chan struct{}),
	}
}

// Bind sets the handler all events are dispatched to
func (l *EventLoop) Bind(handler func(bt.Event)) {
	l.handler = handler
}

// Post queues an event for delivery. It blocks while the inbox is full and
// discards the event once the loop was closed.
func (l *EventLoop) Post(ev bt.Event) {
	select {
	case <-l.doneChan:
		return
	default:
	}

	select {
	case l.inbox <- ev:
	case <-l.doneChan:
	}
}

// Advance dispatches queued events until max has elapsed
func (l *EventLoop) Advance(max time.Duration) {
	timer := time.NewTimer(max)
	defer timer.Stop()

	for {
		select {
		case ev := <-l.inbox:
			if l.handler != nil {
				l.handler(ev)
			}
		case <-timer.C:
			return
		case <-l.doneChan:
			return
		}
	}
}

// Close terminates the loop, it is safe to call more than once
func (l *EventLoop) Close() {
	l.closeOnce.Do(func() {
		close(l.doneChan)
	})
}
