package in_memory

import (
	"sync"

	"dcaengine/internal/domain"
	"dcaengine/internal/port"
)

var _ port.Notifier = (*PubSub)(nil)

// PubSub fans lifecycle events out to subscribers. Publishing never blocks;
// a subscriber that falls behind loses events.
type PubSub struct {
	mu   sync.Mutex
	subs []chan domain.Event
}

func NewPubSub() *PubSub {
	return &PubSub{}
}

func (p *PubSub) Subscribe(buffer int) <-chan domain.Event {
	ch := make(chan domain.Event, buffer)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

func (p *PubSub) Publish(ev domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
