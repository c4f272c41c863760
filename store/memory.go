/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"sync"
	"time"

	"github.com/Seednode/petitbac/game"
)

// Memory is the in-process store used when no database path is
// configured. Documents are deep-copied on the way in and out, so
// callers can never mutate stored state except through Update.
type Memory struct {
	mu    sync.RWMutex
	games map[string]*game.Document
	watch *watchTable
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		games: make(map[string]*game.Document),
		watch: newWatchTable(),
	}
}

func (m *Memory) Get(_ context.Context, id string) (*game.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}

	return doc.Clone(), nil
}

func (m *Memory) Put(_ context.Context, doc *game.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[doc.ID]; ok {
		return ErrExists
	}

	stored := doc.Clone()
	stored.UpdatedAt = time.Now().UTC()
	m.games[doc.ID] = stored

	m.watch.notify(doc.ID, Event{Game: stored.Clone()})

	return nil
}

func (m *Memory) Update(_ context.Context, id string, mutate func(*game.Document) error) (*game.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}

	updated := doc.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	m.games[id] = updated

	snapshot := updated.Clone()
	m.watch.notify(id, Event{Game: snapshot})

	return snapshot, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[id]; !ok {
		return ErrNotFound
	}
	delete(m.games, id)

	m.watch.gone(id)

	return nil
}

func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}

	return ids, nil
}

func (m *Memory) Watch(id string) (<-chan Event, func()) {
	return m.watch.watch(id)
}

func (m *Memory) Close() error {
	m.watch.closeAll()
	return nil
}
