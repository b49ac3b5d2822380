package observability

import (
	"sync"
	"time"
)

// ChannelObserver publishes events on a buffered channel. Sends never block:
// when the buffer is full the event is dropped and counted.
type ChannelObserver struct {
	ch            chan Event
	contextFields map[string]string

	mu      *sync.Mutex
	dropped *int
}

// NewChannelObserver creates an observer with the given buffer size.
func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{
		ch:            make(chan Event, buffer),
		contextFields: map[string]string{},
		mu:            &sync.Mutex{},
		dropped:       new(int),
	}
}

// Events returns the receive side of the channel.
func (o *ChannelObserver) Events() <-chan Event {
	return o.ch
}

// Dropped returns how many events were discarded because the buffer was full.
func (o *ChannelObserver) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return *o.dropped
}

// Event implements Observer.
func (o *ChannelObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event = mergeFields(event, o.contextFields)
	select {
	case o.ch <- event:
	default:
		o.mu.Lock()
		*o.dropped++
		o.mu.Unlock()
	}
}

// WithFields implements Observer. The returned observer shares the channel.
func (o *ChannelObserver) WithFields(fields map[string]string) Observer {
	return &ChannelObserver{
		ch:            o.ch,
		contextFields: copyFields(o.contextFields, fields),
		mu:            o.mu,
		dropped:       o.dropped,
	}
}
