/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the current state of a game document.
type Phase string

const (
	PhaseWaiting      Phase = "waiting"
	PhasePlaying      Phase = "playing"
	PhaseRoundResults Phase = "roundResults"
	PhaseFinished     Phase = "finished"
)

// Settings are fixed when a game is created.
type Settings struct {
	TotalRounds   int      `json:"totalRounds"`
	RoundDuration int      `json:"roundDuration"` // seconds
	Categories    []string `json:"categories"`
}

// DefaultSettings returns the classic ruleset.
func DefaultSettings() Settings {
	return Settings{
		TotalRounds:   10,
		RoundDuration: 180,
		Categories:    []string{"Prénom", "Ville", "Animal", "Objet", "Métier", "Nourriture"},
	}
}

// Player is one participant of a game. TotalScore and RoundScores are
// written only by the round transitions; IsReady belongs to the player.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsHost      bool   `json:"isHost"`
	TotalScore  int    `json:"totalScore"`
	RoundScores []int  `json:"roundScores"`
	IsReady     bool   `json:"isReady"`
}

// NewPlayer builds a fresh player. An empty id gets a generated one.
func NewPlayer(id, name string, isHost bool) Player {
	if id == "" {
		id = uuid.NewString()
	}
	return Player{
		ID:          id,
		Name:        name,
		IsHost:      isHost,
		RoundScores: []int{},
	}
}

// Answers maps category name to the raw text a player typed.
// Categories missing from the map count as "no answer".
type Answers map[string]string

// Document is the whole shared state of one game, addressed by its code.
// It is only ever mutated through whole-document read-modify-write cycles.
type Document struct {
	ID             string             `json:"id"`
	HostName       string             `json:"hostName"`
	Settings       Settings           `json:"gameSettings"`
	Players        []Player           `json:"players"`
	Phase          Phase              `json:"phase"`
	CurrentRound   int                `json:"currentRound"`
	CurrentLetter  string             `json:"currentLetter"`
	RoundAnswers   map[string]Answers `json:"roundAnswers"`
	RoundStartTime *time.Time         `json:"roundStartTime"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// NewDocument creates a waiting game with the host as its only player.
func NewDocument(id, hostID, hostName string, settings Settings) *Document {
	now := time.Now().UTC()

	return &Document{
		ID:           id,
		HostName:     hostName,
		Settings:     settings,
		Players:      []Player{NewPlayer(hostID, hostName, true)},
		Phase:        PhaseWaiting,
		CurrentRound: 0,
		RoundAnswers: make(map[string]Answers),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Player returns the player with the given id, or nil.
func (d *Document) Player(id string) *Player {
	for i := range d.Players {
		if d.Players[i].ID == id {
			return &d.Players[i]
		}
	}
	return nil
}

// PlayerNamed returns the player with the given name (case-sensitive), or nil.
func (d *Document) PlayerNamed(name string) *Player {
	for i := range d.Players {
		if d.Players[i].Name == name {
			return &d.Players[i]
		}
	}
	return nil
}

// Host returns the current host, or nil if the player list is empty.
func (d *Document) Host() *Player {
	for i := range d.Players {
		if d.Players[i].IsHost {
			return &d.Players[i]
		}
	}
	return nil
}

// Clone returns a deep copy, so callers can hand out snapshots without
// exposing the stored document to mutation.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	clone := *d

	clone.Players = make([]Player, len(d.Players))
	for i, p := range d.Players {
		scores := make([]int, len(p.RoundScores))
		copy(scores, p.RoundScores)
		p.RoundScores = scores
		clone.Players[i] = p
	}

	clone.Settings.Categories = append([]string(nil), d.Settings.Categories...)

	clone.RoundAnswers = make(map[string]Answers, len(d.RoundAnswers))
	for id, answers := range d.RoundAnswers {
		clone.RoundAnswers[id] = cloneAnswers(answers)
	}

	if d.RoundStartTime != nil {
		t := *d.RoundStartTime
		clone.RoundStartTime = &t
	}

	return &clone
}

func cloneAnswers(answers Answers) Answers {
	clone := make(Answers, len(answers))
	for category, word := range answers {
		clone[category] = word
	}
	return clone
}
