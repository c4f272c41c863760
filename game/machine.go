/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"crypto/rand"
	"errors"
	"time"
)

// ErrInvalidTransition is returned when an action is attempted from the
// wrong phase or by a player without the authority to perform it. It
// usually means the caller acted on a stale snapshot.
var ErrInvalidTransition = errors.New("invalid game transition")

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandomLetter picks a round letter uniformly from A-Z. Letters may
// repeat across rounds.
func RandomLetter() string {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return string(alphabet[int(b[0])%len(alphabet)])
}

// beginRound establishes the invariants of an entry into the playing
// phase: fresh letter, empty answers, stamped start time.
func beginRound(doc *Document, round int, letter string, now time.Time) {
	doc.Phase = PhasePlaying
	doc.CurrentRound = round
	doc.CurrentLetter = letter
	doc.RoundAnswers = make(map[string]Answers)
	start := now.UTC()
	doc.RoundStartTime = &start
}

// Start moves a waiting game into its first round. Only the host may
// start, and at least minPlayers players must be present.
func Start(doc *Document, callerID string, minPlayers int, letter string, now time.Time) error {
	if doc.Phase != PhaseWaiting {
		return ErrInvalidTransition
	}

	caller := doc.Player(callerID)
	if caller == nil || !caller.IsHost {
		return ErrInvalidTransition
	}

	if len(doc.Players) < minPlayers {
		return ErrInvalidTransition
	}

	beginRound(doc, 1, letter, now)

	return nil
}

// Submit records a player's answers for the current round. The first
// submission wins: repeat submissions from the same player in the same
// round are silent no-ops, so retrying a submit is always safe.
func Submit(doc *Document, playerID string, answers Answers) error {
	if doc.Phase != PhasePlaying {
		return ErrInvalidTransition
	}

	if doc.Player(playerID) == nil {
		return ErrInvalidTransition
	}

	if _, submitted := doc.RoundAnswers[playerID]; submitted {
		return nil
	}

	doc.RoundAnswers[playerID] = cloneAnswers(answers)

	return nil
}

// AllSubmitted reports whether every current player has an answers entry
// for the round in progress.
func AllSubmitted(doc *Document) bool {
	if doc.Phase != PhasePlaying {
		return false
	}

	for i := range doc.Players {
		if _, ok := doc.RoundAnswers[doc.Players[i].ID]; !ok {
			return false
		}
	}

	return true
}

// RoundExpired reports whether the round's wall-clock duration has
// elapsed. Every client computes this independently from the shared
// start time; by convention only the host acts on it.
func RoundExpired(doc *Document, now time.Time) bool {
	if doc.Phase != PhasePlaying || doc.RoundStartTime == nil {
		return false
	}
	deadline := doc.RoundStartTime.Add(time.Duration(doc.Settings.RoundDuration) * time.Second)
	return !now.Before(deadline)
}

// FinishRound scores the round in progress and folds the results into
// every player's running totals.
func FinishRound(doc *Document) (map[string]RoundScore, error) {
	if doc.Phase != PhasePlaying {
		return nil, ErrInvalidTransition
	}

	results := scoreCurrentRound(doc)

	for i := range doc.Players {
		player := &doc.Players[i]
		score := results[player.ID].Total
		player.TotalScore += score
		player.RoundScores = append(player.RoundScores, score)
	}

	doc.Phase = PhaseRoundResults

	return results, nil
}

// RoundResults re-derives the breakdown of the just-finished round, for
// display. The engine is deterministic, so this always matches what
// FinishRound folded into the totals.
func RoundResults(doc *Document) (map[string]RoundScore, error) {
	if doc.Phase != PhaseRoundResults {
		return nil, ErrInvalidTransition
	}
	return scoreCurrentRound(doc), nil
}

// scoreCurrentRound runs the engine over the round's answers, counting
// players who never submitted as having answered nothing.
func scoreCurrentRound(doc *Document) map[string]RoundScore {
	answers := make(map[string]Answers, len(doc.Players))
	for id, playerAnswers := range doc.RoundAnswers {
		answers[id] = playerAnswers
	}
	for i := range doc.Players {
		if _, ok := answers[doc.Players[i].ID]; !ok {
			answers[doc.Players[i].ID] = Answers{}
		}
	}

	return ScoreRound(answers, doc.Settings.Categories)
}

// NextRound either begins the next round or, when none remain, moves the
// game to its terminal finished phase.
func NextRound(doc *Document, letter string, now time.Time) error {
	if doc.Phase != PhaseRoundResults {
		return ErrInvalidTransition
	}

	if doc.CurrentRound >= doc.Settings.TotalRounds {
		doc.Phase = PhaseFinished
		doc.CurrentLetter = ""
		doc.RoundStartTime = nil
		return nil
	}

	beginRound(doc, doc.CurrentRound+1, letter, now)

	return nil
}

// RemovePlayer drops a player from the game. When the host leaves, host
// status passes to the next remaining player in list order within the
// same mutation, so no hostless state is ever observable. The second
// return value reports whether the game is now empty and should be
// deleted.
func RemovePlayer(doc *Document, playerID string) (removed, empty bool) {
	wasHost := false

	players := doc.Players[:0]
	for _, p := range doc.Players {
		if p.ID == playerID {
			removed = true
			wasHost = p.IsHost
			continue
		}
		players = append(players, p)
	}
	doc.Players = players

	if len(doc.Players) == 0 {
		return removed, true
	}

	if removed && wasHost {
		doc.Players[0].IsHost = true
		doc.HostName = doc.Players[0].Name
	}

	return removed, false
}
