/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Seednode/petitbac/game"
)

func testDoc(id string) *game.Document {
	return game.NewDocument(id, "host", "Host", game.DefaultSettings())
}

func TestMemoryPutGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	if _, err := m.Get(ctx, "ABC123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store error = %v, want ErrNotFound", err)
	}

	if err := m.Put(ctx, testDoc("ABC123")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := m.Put(ctx, testDoc("ABC123")); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate Put error = %v, want ErrExists", err)
	}

	doc, err := m.Get(ctx, "ABC123")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if doc.ID != "ABC123" || doc.HostName != "Host" {
		t.Fatalf("Get returned %q hosted by %q", doc.ID, doc.HostName)
	}
	if doc.UpdatedAt.IsZero() {
		t.Fatal("Put should stamp updatedAt")
	}

	if err := m.Delete(ctx, "ABC123"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := m.Delete(ctx, "ABC123"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryCloneIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	original := testDoc("ABC123")
	if err := m.Put(ctx, original); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	// Mutating the document handed to Put must not reach the store.
	original.HostName = "Tampered"

	doc, err := m.Get(ctx, "ABC123")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if doc.HostName != "Host" {
		t.Fatal("Put should store a copy, not the caller's pointer")
	}

	// Mutating a Get result must not reach the store either.
	doc.Players[0].Name = "Tampered"
	again, err := m.Get(ctx, "ABC123")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if again.Players[0].Name != "Host" {
		t.Fatal("Get should return a copy, not the stored pointer")
	}
}

func TestMemoryUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	if err := m.Put(ctx, testDoc("ABC123")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	updated, err := m.Update(ctx, "ABC123", func(doc *game.Document) error {
		doc.Players = append(doc.Players, game.NewPlayer("", "Guest", false))
		return nil
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(updated.Players) != 2 {
		t.Fatalf("updated players = %d, want 2", len(updated.Players))
	}

	// A failing mutation leaves the document untouched.
	boom := errors.New("boom")
	if _, err := m.Update(ctx, "ABC123", func(doc *game.Document) error {
		doc.Players = nil
		return boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want the mutation error", err)
	}

	doc, err := m.Get(ctx, "ABC123")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(doc.Players) != 2 {
		t.Fatal("a failed mutation should not be persisted")
	}

	if _, err := m.Update(ctx, "XXXXXX", func(*game.Document) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update on missing id error = %v, want ErrNotFound", err)
	}
}

func TestMemoryList(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	for _, id := range []string{"AAA111", "BBB222"} {
		if err := m.Put(ctx, testDoc(id)); err != nil {
			t.Fatalf("Put %s returned error: %v", id, err)
		}
	}

	ids, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("List returned %d ids, want 2", len(ids))
	}
}

func waitEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()

	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("event channel closed unexpectedly")
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for an event")
	}

	return Event{}
}

func TestMemoryWatchDeliversUpdates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	events, cancel := m.Watch("ABC123")
	defer cancel()

	if err := m.Put(ctx, testDoc("ABC123")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	ev := waitEvent(t, events)
	if ev.Gone || ev.Game == nil || ev.Game.ID != "ABC123" {
		t.Fatalf("first event = %+v, want a snapshot of ABC123", ev)
	}

	if _, err := m.Update(ctx, "ABC123", func(doc *game.Document) error {
		doc.HostName = "Renamed"
		return nil
	}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	ev = waitEvent(t, events)
	if ev.Game == nil || ev.Game.HostName != "Renamed" {
		t.Fatalf("second event = %+v, want the updated snapshot", ev)
	}

	if err := m.Delete(ctx, "ABC123"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	ev = waitEvent(t, events)
	if !ev.Gone {
		t.Fatalf("final event = %+v, want gone", ev)
	}

	if _, ok := <-events; ok {
		t.Fatal("channel should be closed after the gone event")
	}
}

func TestMemoryWatchCancel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	events, cancel := m.Watch("ABC123")
	cancel()
	cancel() // idempotent

	if _, ok := <-events; ok {
		t.Fatal("cancel should close the event channel")
	}

	// Writes after cancel must not panic on the closed channel.
	if err := m.Put(ctx, testDoc("ABC123")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
}

func TestMemoryWatchDropsSlowSubscriber(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	defer m.Close()

	events, cancel := m.Watch("ABC123")
	defer cancel()

	if err := m.Put(ctx, testDoc("ABC123")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	// Never drain; overflow the buffer until the store drops us.
	for i := 0; i < watcherBuffer+1; i++ {
		if _, err := m.Update(ctx, "ABC123", func(doc *game.Document) error {
			doc.CurrentRound++
			return nil
		}); err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
	}

	drained := 0
	for range events {
		drained++
	}
	if drained != watcherBuffer {
		t.Fatalf("drained %d events before close, want %d", drained, watcherBuffer)
	}
}

func TestMemoryCloseClosesWatchers(t *testing.T) {
	m := NewMemory()

	events, cancel := m.Watch("ABC123")
	defer cancel()

	if err := m.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	if _, ok := <-events; ok {
		t.Fatal("Close should close every watcher channel")
	}
}
