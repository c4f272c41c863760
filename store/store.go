/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package store persists game documents and pushes every observed change
// to subscribed watchers. The game core depends on nothing beyond the
// five operations of the Store interface.
package store

import (
	"context"
	"errors"

	"github.com/Seednode/petitbac/game"
)

var (
	// ErrNotFound means no game exists under the requested code.
	ErrNotFound = errors.New("game not found")

	// ErrExists means a create collided with an existing game code.
	ErrExists = errors.New("game already exists")
)

// Event is one observed change to a stored document. Gone marks the
// terminal event delivered when the document is deleted.
type Event struct {
	Game *game.Document
	Gone bool
}

// Store is the document-level persistence contract. Update runs the
// mutation under the store's write lock, so each logical transition is a
// single read-modify-write cycle; if mutate returns an error nothing is
// written. Watch delivers a snapshot for every write in the order the
// writes landed, followed by a Gone event and channel close on delete.
type Store interface {
	Get(ctx context.Context, id string) (*game.Document, error)
	Put(ctx context.Context, doc *game.Document) error
	Update(ctx context.Context, id string, mutate func(*game.Document) error) (*game.Document, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Watch(id string) (<-chan Event, func())
	Close() error
}
