// Package events fans the ledger's event messages out to subscribers, such
// as the websocket clients watching transactions, candidates and commits.
package events

import (
	"fmt"
	"sync"
)

// subscriberBuffer is how far a subscriber can fall behind before ledger
// events are dropped for it.
const subscriberBuffer = 100

// Events holds one buffered channel per subscriber, keyed by subscriber id.
type Events struct {
	subs map[string]chan string
	mu   sync.RWMutex
}

// New constructs an Events with no subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
	}
}

// Shutdown closes every subscriber channel, ending each websocket stream.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		close(ch)
	}
}

// Acquire returns the channel ledger events are delivered on for the
// subscriber. Acquiring an id twice returns the same channel.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subs[id]; exists {
		return ch
	}

	ch := make(chan string, subscriberBuffer)
	evt.subs[id] = ch
	return ch
}

// Release closes and removes the subscriber's channel.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subs, id)
	close(ch)
	return nil
}

// Send delivers a ledger event to every subscriber without blocking. A
// subscriber whose buffer is full misses the event.
func (evt *Events) Send(event string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
