package service

import (
	"sync"

	"myblog/internal/models"
)

const subscriberBuffer = 16

// PostFeed is an in-process fan-out of post events. Publishing never blocks:
// a subscriber whose buffer is full misses the event.
type PostFeed struct {
	mu   sync.RWMutex
	subs map[chan models.PostEvent]struct{}
}

func NewFeed() *PostFeed {
	return &PostFeed{subs: make(map[chan models.PostEvent]struct{})}
}

// Subscribe returns an event channel and a func that unsubscribes and closes it.
func (f *PostFeed) Subscribe() (<-chan models.PostEvent, func()) {
	ch := make(chan models.PostEvent, subscriberBuffer)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *PostFeed) Publish(ev models.PostEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (f *PostFeed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
