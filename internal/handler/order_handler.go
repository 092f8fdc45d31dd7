package handler

import (
	"net/http"

	"github.com/KaliBomaye/stratagem/internal/auth"
	"github.com/KaliBomaye/stratagem/internal/service"
	"github.com/KaliBomaye/stratagem/pkg/engine"
)

// OrderHandler handles order and diplomacy submission.
type OrderHandler struct {
	games *service.GameManager
	hub   service.Broadcaster
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(games *service.GameManager, hub service.Broadcaster) *OrderHandler {
	return &OrderHandler{games: games, hub: hub}
}

// SubmitOrders handles POST /games/{id}/orders.
func (h *OrderHandler) SubmitOrders(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	playerID, ok := auth.PlayerIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "missing player identity")
		return
	}

	var orders engine.OrderSet
	if err := decodeJSON(r, &orders); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.games.SubmitOrders(r.Context(), gameID, playerID, orders)
	if err != nil {
		writeGameManagerError(w, err)
		return
	}

	if processed, ok := result.(service.TurnProcessed); ok {
		h.hub.BroadcastGameEvent(gameID, "turn_processed", processed)
	} else {
		h.hub.BroadcastGameEvent(gameID, "player_submitted", map[string]int{"player_id": playerID})
	}
	writeJSON(w, http.StatusOK, result)
}

// diplomacyRequest is the shorthand body for POST /games/{id}/diplomacy:
// the diplomacy-only subset of a full order set.
type diplomacyRequest struct {
	Messages       []engine.MessageOrder  `json:"messages,omitempty"`
	Proposals      []engine.ProposalOrder `json:"proposals,omitempty"`
	AcceptTreaties []string               `json:"accept_treaties,omitempty"`
	RejectTreaties []string               `json:"reject_treaties,omitempty"`
	BreakTreaties  []string               `json:"break_treaties,omitempty"`
}

// SubmitDiplomacy handles POST /games/{id}/diplomacy, a shorthand for
// submitting an order set containing only diplomacy orders (§6). It goes
// through the same barrier as SubmitOrders — a diplomacy-only submission
// still counts as that player's turn.
func (h *OrderHandler) SubmitDiplomacy(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	playerID, ok := auth.PlayerIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "missing player identity")
		return
	}

	var req diplomacyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	orders := engine.OrderSet{
		Diplomacy: &engine.DiplomacyOrders{
			Messages:       req.Messages,
			Proposals:      req.Proposals,
			AcceptTreaties: req.AcceptTreaties,
			RejectTreaties: req.RejectTreaties,
			BreakTreaties:  req.BreakTreaties,
		},
	}

	result, err := h.games.SubmitOrders(r.Context(), gameID, playerID, orders)
	if err != nil {
		writeGameManagerError(w, err)
		return
	}

	if processed, ok := result.(service.TurnProcessed); ok {
		h.hub.BroadcastGameEvent(gameID, "turn_processed", processed)
	} else {
		h.hub.BroadcastGameEvent(gameID, "player_submitted", map[string]int{"player_id": playerID})
	}
	writeJSON(w, http.StatusOK, result)
}

// VoteDraw handles POST /games/{id}/draw — a supplemental endpoint (not
// in the distilled endpoint table) letting living players agree to end a
// game with no winner. Body: {"vote": true|false}.
func (h *OrderHandler) VoteDraw(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	playerID, ok := auth.PlayerIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "missing player identity")
		return
	}

	var req struct {
		Vote bool `json:"vote"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	drawn, err := h.games.VoteDraw(r.Context(), gameID, playerID, req.Vote)
	if err != nil {
		writeGameManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"drawn": drawn})
}
