// Package gateway exposes the operator surface over HTTP and mirrors
// every adopted snapshot to attached views over WebSocket.
package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Vishal-code-E/ipl/internal/auction"
)

// Handler routes operator actions to the auction app.
type Handler struct {
	app     *auction.App
	manager *ConnectionManager
}

// NewHandler creates a handler and registers the manager as a state
// listener so views mirror every adopted snapshot, local or broadcast.
func NewHandler(app *auction.App, manager *ConnectionManager) *Handler {
	h := &Handler{app: app, manager: manager}
	app.OnStateChange(manager.Broadcast)
	return h
}

type bidRequest struct {
	TeamID string `json:"team_id"`
	Amount int64  `json:"amount_lakh"`
}

type incrementRequest struct {
	Increment int64 `json:"increment_lakh"`
}

// RegisterRoutes attaches all gateway routes to mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auction/start", h.operation(func(r *http.Request) (any, error) {
		return h.app.Start(r.Context())
	}))
	mux.HandleFunc("POST /api/auction/pause", h.operation(func(r *http.Request) (any, error) {
		return h.app.TogglePause(r.Context())
	}))
	mux.HandleFunc("POST /api/auction/bid", h.operation(func(r *http.Request) (any, error) {
		var req bidRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, errBadRequest
		}
		return h.app.PlaceBid(r.Context(), req.TeamID, req.Amount)
	}))
	mux.HandleFunc("POST /api/auction/raise", h.operation(func(r *http.Request) (any, error) {
		return h.app.RaiseBid(r.Context())
	}))
	mux.HandleFunc("POST /api/auction/sell", h.operation(func(r *http.Request) (any, error) {
		return h.app.Sell(r.Context())
	}))
	mux.HandleFunc("POST /api/auction/unsold", h.operation(func(r *http.Request) (any, error) {
		return h.app.MarkUnsold(r.Context())
	}))
	mux.HandleFunc("POST /api/auction/undo", h.operation(func(r *http.Request) (any, error) {
		return h.app.Undo(r.Context())
	}))
	mux.HandleFunc("POST /api/auction/increment", h.operation(func(r *http.Request) (any, error) {
		var req incrementRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, errBadRequest
		}
		return h.app.SetBidIncrement(r.Context(), req.Increment)
	}))
	mux.HandleFunc("POST /api/auction/reset", h.operation(func(r *http.Request) (any, error) {
		return h.app.Reset(r.Context())
	}))

	mux.HandleFunc("GET /api/auction/state", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.app.State())
	})
	mux.HandleFunc("GET /api/teams", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.app.Teams())
	})
	mux.HandleFunc("GET /api/players", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, h.app.State().PlayerQueue)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"views":  h.manager.ConnectionCount(),
		})
	})
	mux.HandleFunc("/ws/auction", h.handleView)
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	h.manager.HandleConnection(w, r, h.app.State())
}

func (h *Handler) operation(fn func(*http.Request) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := fn(r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

var errBadRequest = errors.New("malformed request body")

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusConflict
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, auction.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, auction.ErrUnknownTeam):
		status = http.StatusNotFound
	case errors.Is(err, auction.ErrInsufficientPurse),
		errors.Is(err, auction.ErrNoActiveBidder),
		errors.Is(err, auction.ErrNothingToUndo),
		errors.Is(err, auction.ErrNoCurrentPlayer),
		errors.Is(err, auction.ErrAlreadyStarted),
		errors.Is(err, auction.ErrNotActive),
		errors.Is(err, auction.ErrPaused):
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		log.Error().Err(err).Msg("auction operation failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
