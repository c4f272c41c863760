/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Seednode/petitbac/game"
	"github.com/Seednode/petitbac/multiplayer"
	"github.com/Seednode/petitbac/store"
	"github.com/julienschmidt/httprouter"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &Config{port: 8080, minPlayers: 2}

	coordinator := multiplayer.New(store.NewMemory(), cfg.minPlayers)
	t.Cleanup(coordinator.Close)

	mux := httprouter.New()
	registerPetitbac(cfg, "/petitbac", mux, coordinator)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func postJSON(t *testing.T, srv *httptest.Server, path string, body any, out any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode request: %v", err)
	}

	res, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer res.Body.Close()

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil && res.StatusCode != http.StatusNoContent {
			t.Fatalf("decode response from %s: %v", path, err)
		}
	}

	return res
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	srv := testServer(t)

	// Create.
	var created gameResponse
	res := postJSON(t, srv, "/api/games", createGameRequest{
		HostName: "Host",
		Settings: game.Settings{TotalRounds: 1, RoundDuration: 60, Categories: []string{"Prénom", "Ville"}},
	}, &created)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", res.StatusCode)
	}
	if created.Game == nil || created.PlayerID == "" {
		t.Fatalf("create response = %+v, want a game and a player id", created)
	}
	code := created.Game.ID

	// Join.
	var joined gameResponse
	res = postJSON(t, srv, "/api/games/"+code+"/join", joinGameRequest{PlayerName: "Guest"}, &joined)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("join status = %d, want 200", res.StatusCode)
	}
	if len(joined.Game.Players) != 2 {
		t.Fatalf("players after join = %d, want 2", len(joined.Game.Players))
	}

	// Fetch; the path code is case-insensitive.
	res, err := http.Get(srv.URL + "/api/games/" + code)
	if err != nil {
		t.Fatalf("GET game: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", res.StatusCode)
	}

	// Start.
	var started gameResponse
	res = postJSON(t, srv, "/api/games/"+code+"/advance", advanceRequest{
		PlayerID: created.PlayerID,
		Action:   string(multiplayer.ActionStart),
	}, &started)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d, want 200", res.StatusCode)
	}
	if started.Game.Phase != game.PhasePlaying {
		t.Fatalf("phase after start = %s, want playing", started.Game.Phase)
	}

	// Both players submit; the second submission finishes the round.
	res = postJSON(t, srv, "/api/games/"+code+"/answers", submitAnswersRequest{
		PlayerID: created.PlayerID,
		Answers:  game.Answers{"Prénom": "Alice", "Ville": "Alger"},
	}, nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("first answers status = %d, want 204", res.StatusCode)
	}

	res = postJSON(t, srv, "/api/games/"+code+"/answers", submitAnswersRequest{
		PlayerID: joined.PlayerID,
		Answers:  game.Answers{"Prénom": "Alice", "Ville": "Athènes"},
	}, nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("second answers status = %d, want 204", res.StatusCode)
	}

	// Results.
	res, err = http.Get(srv.URL + "/api/games/" + code + "/results")
	if err != nil {
		t.Fatalf("GET results: %v", err)
	}
	var results resultsResponse
	if err := json.NewDecoder(res.Body).Decode(&results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("results status = %d, want 200", res.StatusCode)
	}
	if results.Results[created.PlayerID].Total != 6 {
		t.Fatalf("host round score = %d, want 6", results.Results[created.PlayerID].Total)
	}

	// Advancing past the only round finishes the game.
	var finished gameResponse
	res = postJSON(t, srv, "/api/games/"+code+"/advance", advanceRequest{
		PlayerID: created.PlayerID,
		Action:   string(multiplayer.ActionNextRound),
	}, &finished)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("nextRound status = %d, want 200", res.StatusCode)
	}
	if finished.Game.Phase != game.PhaseFinished {
		t.Fatalf("phase after last round = %s, want finished", finished.Game.Phase)
	}

	// Leave.
	res = postJSON(t, srv, "/api/games/"+code+"/leave", leaveRequest{PlayerID: joined.PlayerID}, nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("leave status = %d, want 204", res.StatusCode)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	srv := testServer(t)

	// Unknown game code.
	var errBody errorResponse
	res := postJSON(t, srv, "/api/games/NOPE00/join", joinGameRequest{PlayerName: "Guest"}, &errBody)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown code status = %d, want 404", res.StatusCode)
	}
	if errBody.Error == "" {
		t.Fatal("error responses should carry a message")
	}

	// Missing host name.
	res = postJSON(t, srv, "/api/games", createGameRequest{}, nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty host name status = %d, want 400", res.StatusCode)
	}

	// Duplicate player name.
	var created gameResponse
	postJSON(t, srv, "/api/games", createGameRequest{HostName: "Host"}, &created)
	res = postJSON(t, srv, "/api/games/"+created.Game.ID+"/join", joinGameRequest{PlayerName: "Host"}, nil)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate name status = %d, want 409", res.StatusCode)
	}

	// Premature state transition.
	res = postJSON(t, srv, "/api/games/"+created.Game.ID+"/advance", advanceRequest{
		PlayerID: created.PlayerID,
		Action:   string(multiplayer.ActionNextRound),
	}, nil)
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("invalid transition status = %d, want 409", res.StatusCode)
	}
}

func TestGameIDNormalization(t *testing.T) {
	srv := testServer(t)

	var created gameResponse
	postJSON(t, srv, "/api/games", createGameRequest{HostName: "Host"}, &created)

	// Lowercased codes reach the same game.
	res, err := http.Get(srv.URL + "/api/games/" + strings.ToLower(created.Game.ID))
	if err != nil {
		t.Fatalf("GET game: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("lowercased code status = %d, want 200", res.StatusCode)
	}
}
