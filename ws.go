/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"

	"github.com/Seednode/petitbac/game"
	"github.com/Seednode/petitbac/multiplayer"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// snapshotFrame is what the server pushes to every connected client:
// the full document on each observed change, and a terminal "gone"
// frame when the game is deleted.
type snapshotFrame struct {
	Type string         `json:"type"` // "snapshot" or "gone"
	Game *game.Document `json:"game,omitempty"`
}

// serveGameSocket streams document snapshots for one game. Clients never
// poll; their view of the world is driven entirely by this stream.
func serveGameSocket(cfg *Config, coordinator *multiplayer.Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := gameID(ps)
		if id == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		// Subscribing before the initial read closes the window where a
		// write lands between the two; anything older that was already
		// buffered is filtered out below.
		events, cancel := coordinator.Subscribe(id)

		doc, err := coordinator.Game(r.Context(), id)
		if err != nil {
			cancel()
			http.Error(w, "no such game", http.StatusNotFound)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cancel()
			logf(cfg, "ERROR: websocket upgrade: %v", err)
			return
		}

		logf(cfg, "SERVE: Game stream for %s to %s", id, realIP(r))

		defer conn.Close()
		defer cancel()

		// Reader only notices the peer going away; intents arrive over
		// the JSON API, not this socket.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		if err := conn.WriteJSON(snapshotFrame{Type: "snapshot", Game: doc}); err != nil {
			return
		}
		lastUpdate := doc.UpdatedAt

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if event.Gone {
					_ = conn.WriteJSON(snapshotFrame{Type: "gone"})
					return
				}
				// Keep delivered snapshots monotonic in store update time.
				if event.Game.UpdatedAt.Before(lastUpdate) {
					continue
				}
				lastUpdate = event.Game.UpdatedAt
				if err := conn.WriteJSON(snapshotFrame{Type: "snapshot", Game: event.Game}); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}
}
