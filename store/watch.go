/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import "sync"

// watcherBuffer is how many undelivered events a subscriber may lag
// behind before it is dropped.
const watcherBuffer = 16

// watchTable fans document change events out to per-game subscribers.
// All notifications happen under its lock, so a single subscriber always
// observes snapshots in the order the writes landed.
type watchTable struct {
	mu       sync.Mutex
	next     int
	watchers map[string]map[int]chan Event
}

func newWatchTable() *watchTable {
	return &watchTable{
		watchers: make(map[string]map[int]chan Event),
	}
}

// watch registers a subscriber for one game id. The returned cancel is
// idempotent, takes effect immediately, and closes the event channel.
func (t *watchTable) watch(id string) (<-chan Event, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan Event, watcherBuffer)
	key := t.next
	t.next++

	if t.watchers[id] == nil {
		t.watchers[id] = make(map[int]chan Event)
	}
	t.watchers[id][key] = ch

	cancel := func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		if _, ok := t.watchers[id][key]; !ok {
			return
		}
		delete(t.watchers[id], key)
		close(ch)
	}

	return ch, cancel
}

// notify delivers a change event to every subscriber of the game.
// Subscribers too slow to drain their buffer are dropped, the same way a
// hub drops clients whose send channel is full.
func (t *watchTable) notify(id string, ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, ch := range t.watchers[id] {
		select {
		case ch <- ev:
		default:
			delete(t.watchers[id], key)
			close(ch)
		}
	}
}

// gone delivers the terminal event to every subscriber of the game and
// closes their channels.
func (t *watchTable) gone(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, ch := range t.watchers[id] {
		select {
		case ch <- Event{Gone: true}:
		default:
		}
		delete(t.watchers[id], key)
		close(ch)
	}
	delete(t.watchers, id)
}

// closeAll closes every subscriber channel across all games.
func (t *watchTable) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, subs := range t.watchers {
		for key, ch := range subs {
			delete(subs, key)
			close(ch)
		}
		delete(t.watchers, id)
	}
}
