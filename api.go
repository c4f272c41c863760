/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Seednode/petitbac/game"
	"github.com/Seednode/petitbac/multiplayer"
	"github.com/Seednode/petitbac/store"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const playerCookieName = "petitbac_id"

// getOrSetPlayerID identifies a browser by cookie, so a refresh keeps
// the same player across requests and reconnects.
func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

type createGameRequest struct {
	HostName string        `json:"hostName"`
	Settings game.Settings `json:"gameSettings"`
}

type joinGameRequest struct {
	PlayerName string `json:"playerName"`
}

type submitAnswersRequest struct {
	PlayerID string       `json:"playerId"`
	Answers  game.Answers `json:"answers"`
}

type advanceRequest struct {
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
}

type leaveRequest struct {
	PlayerID string `json:"playerId"`
}

type gameResponse struct {
	Game     *game.Document `json:"game"`
	PlayerID string         `json:"playerId,omitempty"`
}

type resultsResponse struct {
	Results map[string]game.RoundScore `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<16)).Decode(v)
}

// apiError maps the coordinator's error kinds onto HTTP statuses and the
// user-facing wording each one is surfaced with.
func apiError(cfg *Config, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(cfg, w, http.StatusNotFound, errorResponse{Error: "invalid code, try again"})
	case errors.Is(err, multiplayer.ErrAlreadyStarted):
		writeJSON(cfg, w, http.StatusConflict, errorResponse{Error: "game in progress"})
	case errors.Is(err, multiplayer.ErrNameTaken):
		writeJSON(cfg, w, http.StatusConflict, errorResponse{Error: "choose another name"})
	case errors.Is(err, game.ErrInvalidTransition):
		// Usually a stale local view racing a newer write; log and answer
		// as a no-op conflict.
		logf(cfg, "GAMES: Stale action from %s: %v", realIP(r), err)
		writeJSON(cfg, w, http.StatusConflict, errorResponse{Error: "action not available right now"})
	default:
		logf(cfg, "ERROR: %v", err)
		writeJSON(cfg, w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func handleCreateGame(cfg *Config, coordinator *multiplayer.Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req createGameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "malformed request"})
			return
		}

		hostName := strings.TrimSpace(req.HostName)
		if hostName == "" {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "a host name is required"})
			return
		}

		playerID := getOrSetPlayerID(w, r)

		doc, err := coordinator.CreateGame(r.Context(), playerID, hostName, req.Settings)
		if err != nil {
			apiError(cfg, w, r, err)
			return
		}

		logf(cfg, "GAMES: %q created game %s", hostName, doc.ID)

		writeJSON(cfg, w, http.StatusCreated, gameResponse{Game: doc, PlayerID: playerID})
	}
}

func handleGetGame(cfg *Config, coordinator *multiplayer.Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		doc, err := coordinator.Game(r.Context(), gameID(ps))
		if err != nil {
			apiError(cfg, w, r, err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, gameResponse{Game: doc})
	}
}

func handleJoinGame(cfg *Config, coordinator *multiplayer.Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req joinGameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "malformed request"})
			return
		}

		playerName := strings.TrimSpace(req.PlayerName)
		if playerName == "" {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "a player name is required"})
			return
		}

		playerID := getOrSetPlayerID(w, r)

		doc, err := coordinator.JoinGame(r.Context(), gameID(ps), playerID, playerName)
		if err != nil {
			apiError(cfg, w, r, err)
			return
		}

		logf(cfg, "GAMES: %q joined game %s", playerName, doc.ID)

		writeJSON(cfg, w, http.StatusOK, gameResponse{Game: doc, PlayerID: playerID})
	}
}

func handleSubmitAnswers(cfg *Config, coordinator *multiplayer.Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req submitAnswersRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "malformed request"})
			return
		}

		playerID := req.PlayerID
		if playerID == "" {
			playerID = getOrSetPlayerID(w, r)
		}

		if err := coordinator.SubmitAnswers(r.Context(), gameID(ps), playerID, req.Answers); err != nil {
			apiError(cfg, w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAdvance(cfg *Config, coordinator *multiplayer.Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req advanceRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "malformed request"})
			return
		}

		playerID := req.PlayerID
		if playerID == "" {
			playerID = getOrSetPlayerID(w, r)
		}

		doc, err := coordinator.Advance(r.Context(), gameID(ps), playerID, multiplayer.Action(req.Action))
		if err != nil {
			apiError(cfg, w, r, err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, gameResponse{Game: doc})
	}
}

func handleLeave(cfg *Config, coordinator *multiplayer.Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var req leaveRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(cfg, w, http.StatusBadRequest, errorResponse{Error: "malformed request"})
			return
		}

		playerID := req.PlayerID
		if playerID == "" {
			playerID = getOrSetPlayerID(w, r)
		}

		if err := coordinator.Leave(r.Context(), gameID(ps), playerID); err != nil {
			apiError(cfg, w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// handleRoundResults re-derives the just-finished round's breakdown with
// the scoring engine, for the results screen.
func handleRoundResults(cfg *Config, coordinator *multiplayer.Coordinator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		doc, err := coordinator.Game(r.Context(), gameID(ps))
		if err != nil {
			apiError(cfg, w, r, err)
			return
		}

		results, err := game.RoundResults(doc)
		if err != nil {
			apiError(cfg, w, r, err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, resultsResponse{Results: results})
	}
}

func gameID(ps httprouter.Params) string {
	return strings.ToUpper(strings.TrimSpace(ps.ByName("gameid")))
}

// registerPetitbac sets up routes so that:
//   - $path                      → browser client (menu)
//   - $path/:gameid              → browser client for one game
//   - $path/:gameid/ws           → websocket snapshot stream
//   - $path/:gameid/qr           → PNG QR code for that game URL
//   - /api/games/...             → JSON intents backed by the coordinator
func registerPetitbac(cfg *Config, path string, mux *httprouter.Router, coordinator *multiplayer.Coordinator) {
	mux.GET(cfg.prefix+path, getIndexHandler(cfg))
	mux.GET(cfg.prefix+path+"/:gameid", getIndexHandler(cfg))

	mux.GET(cfg.prefix+"/assets/petitbac/app.css", getCssHandler(cfg))
	mux.GET(cfg.prefix+"/assets/petitbac/app.js", getJsHandler(cfg))

	mux.GET(cfg.prefix+path+"/:gameid/ws", serveGameSocket(cfg, coordinator))
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)

	mux.POST(cfg.prefix+"/api/games", handleCreateGame(cfg, coordinator))
	mux.GET(cfg.prefix+"/api/games/:gameid", handleGetGame(cfg, coordinator))
	mux.GET(cfg.prefix+"/api/games/:gameid/results", handleRoundResults(cfg, coordinator))
	mux.POST(cfg.prefix+"/api/games/:gameid/join", handleJoinGame(cfg, coordinator))
	mux.POST(cfg.prefix+"/api/games/:gameid/answers", handleSubmitAnswers(cfg, coordinator))
	mux.POST(cfg.prefix+"/api/games/:gameid/advance", handleAdvance(cfg, coordinator))
	mux.POST(cfg.prefix+"/api/games/:gameid/leave", handleLeave(cfg, coordinator))
}
