/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package multiplayer turns logical game actions into single
// read-modify-write cycles against a shared document store, and relays
// the store's change stream to local subscribers.
package multiplayer

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Seednode/petitbac/game"
	"github.com/Seednode/petitbac/store"
)

var (
	// ErrAlreadyStarted means a join was attempted after the game left
	// its waiting phase.
	ErrAlreadyStarted = errors.New("game already started")

	// ErrNameTaken means the requested player name is already in use
	// within the game (names compare case-sensitively).
	ErrNameTaken = errors.New("player name already taken")
)

// Action is a state-machine transition requested by a player.
type Action string

const (
	ActionStart       Action = "start"
	ActionFinishRound Action = "finishRound"
	ActionNextRound   Action = "nextRound"
)

const (
	gameCodeLength = 6
	gameCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// createAttempts bounds retries on game-code collisions. With 36^6
	// codes a second collision in a row already means something is wrong.
	createAttempts = 10
)

// newGameCode generates a short, human-shareable game code.
func newGameCode() string {
	buf := make([]byte, gameCodeLength)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}

	out := make([]byte, gameCodeLength)
	for i := range out {
		out[i] = gameCodeChars[int(buf[i])%len(gameCodeChars)]
	}

	return string(out)
}

// Coordinator mediates all reads and writes of shared game documents for
// its clients. It owns a table of active subscriptions, scoped to the
// coordinator's lifetime; there is no process-wide registry.
type Coordinator struct {
	store      store.Store
	minPlayers int

	// overridable for deterministic tests
	code   func() string
	letter func() string
	now    func() time.Time

	mu      sync.Mutex
	nextSub int
	subs    map[int]func()
}

// New wires a coordinator to its storage dependency. minPlayers below 1
// falls back to 2, the multiplayer minimum.
func New(st store.Store, minPlayers int) *Coordinator {
	if minPlayers < 1 {
		minPlayers = 2
	}

	return &Coordinator{
		store:      st,
		minPlayers: minPlayers,
		code:       newGameCode,
		letter:     game.RandomLetter,
		now:        time.Now,
		subs:       make(map[int]func()),
	}
}

// CreateGame allocates a fresh game code and writes the initial waiting
// document with the host as its only player. Code collisions are retried
// transparently with new codes and never surfaced.
func (c *Coordinator) CreateGame(ctx context.Context, hostID, hostName string, settings game.Settings) (*game.Document, error) {
	defaults := game.DefaultSettings()
	if settings.TotalRounds < 1 {
		settings.TotalRounds = defaults.TotalRounds
	}
	if settings.RoundDuration < 1 {
		settings.RoundDuration = defaults.RoundDuration
	}
	if len(settings.Categories) == 0 {
		settings.Categories = defaults.Categories
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		doc := game.NewDocument(c.code(), hostID, hostName, settings)

		err := c.store.Put(ctx, doc)
		if errors.Is(err, store.ErrExists) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return doc, nil
	}

	return nil, fmt.Errorf("could not allocate a free game code after %d attempts", createAttempts)
}

// JoinGame appends a new player to a waiting game. Joining again with a
// player id already present is a no-op, so a reconnecting client can
// safely re-join.
func (c *Coordinator) JoinGame(ctx context.Context, gameID, playerID, playerName string) (*game.Document, error) {
	return c.store.Update(ctx, gameID, func(doc *game.Document) error {
		if playerID != "" && doc.Player(playerID) != nil {
			return nil
		}

		if doc.Phase != game.PhaseWaiting {
			return ErrAlreadyStarted
		}

		if doc.PlayerNamed(playerName) != nil {
			return ErrNameTaken
		}

		doc.Players = append(doc.Players, game.NewPlayer(playerID, playerName, false))

		return nil
	})
}

// SubmitAnswers merges a player's answers into the round. Only the
// submitting player's own entry is touched, and the round is finished in
// the same write once every player has submitted, so no separate
// finish-round write can race with the final submission.
func (c *Coordinator) SubmitAnswers(ctx context.Context, gameID, playerID string, answers game.Answers) error {
	_, err := c.store.Update(ctx, gameID, func(doc *game.Document) error {
		if err := game.Submit(doc, playerID, answers); err != nil {
			return err
		}

		if game.AllSubmitted(doc) {
			_, err := game.FinishRound(doc)
			return err
		}

		return nil
	})

	return err
}

// Advance performs a phase transition on behalf of a player.
//
// Starting and moving to the next round are host-only. Finishing a round
// early is host-only too, but once the round clock has run out or every
// player has submitted, any participant's finishRound is accepted, so a
// departed host cannot wedge the game.
func (c *Coordinator) Advance(ctx context.Context, gameID, playerID string, action Action) (*game.Document, error) {
	return c.store.Update(ctx, gameID, func(doc *game.Document) error {
		switch action {
		case ActionStart:
			return game.Start(doc, playerID, c.minPlayers, c.letter(), c.now())

		case ActionFinishRound:
			caller := doc.Player(playerID)
			if caller == nil {
				return game.ErrInvalidTransition
			}
			if !caller.IsHost && !game.RoundExpired(doc, c.now()) && !game.AllSubmitted(doc) {
				return game.ErrInvalidTransition
			}
			_, err := game.FinishRound(doc)
			return err

		case ActionNextRound:
			caller := doc.Player(playerID)
			if caller == nil || !caller.IsHost {
				return game.ErrInvalidTransition
			}
			return game.NextRound(doc, c.letter(), c.now())

		default:
			return game.ErrInvalidTransition
		}
	})
}

// Leave removes a player. Host status transfers to the next remaining
// player in the same write; when the last player leaves, the document is
// deleted entirely.
func (c *Coordinator) Leave(ctx context.Context, gameID, playerID string) error {
	errEmpty := errors.New("last player left")

	_, err := c.store.Update(ctx, gameID, func(doc *game.Document) error {
		removed, empty := game.RemovePlayer(doc, playerID)
		if !removed {
			return nil
		}
		if empty {
			return errEmpty
		}
		return nil
	})

	if errors.Is(err, errEmpty) {
		return c.store.Delete(ctx, gameID)
	}

	return err
}

// Game returns the latest document snapshot.
func (c *Coordinator) Game(ctx context.Context, gameID string) (*game.Document, error) {
	return c.store.Get(ctx, gameID)
}

// Subscribe registers a push listener for one game. The channel yields a
// snapshot for every observed change and a terminal Gone event if the
// game is deleted. Cancelling is immediate: no further events are
// delivered, and the underlying watch is released.
func (c *Coordinator) Subscribe(gameID string) (<-chan store.Event, func()) {
	ch, cancel := c.store.Watch(gameID)

	c.mu.Lock()
	key := c.nextSub
	c.nextSub++
	c.subs[key] = cancel
	c.mu.Unlock()

	return ch, func() {
		c.mu.Lock()
		delete(c.subs, key)
		c.mu.Unlock()
		cancel()
	}
}

// Close releases every subscription still active on this coordinator.
func (c *Coordinator) Close() {
	c.mu.Lock()
	cancels := make([]func(), 0, len(c.subs))
	for key, cancel := range c.subs {
		cancels = append(cancels, cancel)
		delete(c.subs, key)
	}
	c.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
