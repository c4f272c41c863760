/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "time"

// Solo drives the same state machine and scoring engine as a multiplayer
// game, but entirely in local memory with a single player and no shared
// store.
type Solo struct {
	doc *Document

	// overridable for deterministic tests
	letter func() string
	now    func() time.Time
}

// NewSolo creates a waiting single-player game.
func NewSolo(playerName string, settings Settings) *Solo {
	return &Solo{
		doc:    NewDocument("local", "", playerName, settings),
		letter: RandomLetter,
		now:    time.Now,
	}
}

// Document returns a snapshot of the game state.
func (s *Solo) Document() *Document {
	return s.doc.Clone()
}

func (s *Solo) playerID() string {
	return s.doc.Players[0].ID
}

// Start begins the first round. A solo game needs only one player.
func (s *Solo) Start() error {
	return Start(s.doc, s.playerID(), 1, s.letter(), s.now())
}

// Submit records the player's answers for the round in progress.
func (s *Solo) Submit(answers Answers) error {
	return Submit(s.doc, s.playerID(), answers)
}

// FinishRound scores the round and returns the player's breakdown.
func (s *Solo) FinishRound() (RoundScore, error) {
	results, err := FinishRound(s.doc)
	if err != nil {
		return RoundScore{}, err
	}
	return results[s.playerID()], nil
}

// NextRound advances to the next round, or finishes the game when no
// rounds remain.
func (s *Solo) NextRound() error {
	return NextRound(s.doc, s.letter(), s.now())
}

// Finished reports whether the game has reached its terminal phase.
func (s *Solo) Finished() bool {
	return s.doc.Phase == PhaseFinished
}
