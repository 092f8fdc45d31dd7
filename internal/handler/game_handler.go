package handler

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/KaliBomaye/stratagem/internal/auth"
	"github.com/KaliBomaye/stratagem/internal/repository"
	"github.com/KaliBomaye/stratagem/internal/service"
	"github.com/KaliBomaye/stratagem/pkg/engine"
)

// GameHandler handles game lifecycle and state-read endpoints.
type GameHandler struct {
	games   *service.GameManager
	replays repository.ReplayRepository
	jwtMgr  *auth.JWTManager
	tokens  *auth.TokenStore
}

// NewGameHandler creates a GameHandler.
func NewGameHandler(games *service.GameManager, replays repository.ReplayRepository, jwtMgr *auth.JWTManager, tokens *auth.TokenStore) *GameHandler {
	return &GameHandler{games: games, replays: replays, jwtMgr: jwtMgr, tokens: tokens}
}

type createGameRequest struct {
	NumPlayers int         `json:"num_players"`
	Seed       *int64      `json:"seed,omitempty"`
	MaxTurns   int         `json:"max_turns,omitempty"`
	Civs       []engine.Civ `json:"civs,omitempty"`
}

type createGameResponse struct {
	GameID       string         `json:"game_id"`
	PlayerKeys   map[string]string `json:"player_keys"`
	SpectatorKey string         `json:"spectator_key"`
	Players      []int          `json:"players"`
}

// CreateGame handles POST /games. Seed is accepted for forward
// compatibility with future map generators (§5: the tournament map is
// deterministic and ignores it today).
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NumPlayers < 1 || req.NumPlayers > 4 {
		writeError(w, http.StatusBadRequest, "num_players must be between 1 and 4")
		return
	}

	gameID := uuid.NewString()
	game, err := h.games.CreateGame(gameID, engine.NewGameOptions{
		NumPlayers: req.NumPlayers,
		Civs:       req.Civs,
		MaxTurns:   req.MaxTurns,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	playerKeys := make(map[string]string, len(game.Players))
	players := make([]int, 0, len(game.Players))
	for _, p := range game.Players {
		token, err := h.jwtMgr.GenerateToken(gameID, p.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to mint player token")
			return
		}
		h.tokens.Register(gameID, p.ID, token)
		playerKeys[strconv.Itoa(p.ID)] = token
		players = append(players, p.ID)
	}
	sort.Ints(players)

	writeJSON(w, http.StatusCreated, createGameResponse{
		GameID:       gameID,
		PlayerKeys:   playerKeys,
		SpectatorKey: uuid.NewString(),
		Players:      players,
	})
}

// ListGames handles GET /games.
func (h *GameHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.games.ListGames())
}

// GetState handles GET /games/{id}/state. The caller's player id comes
// from RequirePlayer's context injection, never from the path, so a
// player can never request another seat's projection.
func (h *GameHandler) GetState(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	playerID, ok := auth.PlayerIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "missing player identity")
		return
	}

	inst := h.games.Get(gameID)
	if inst == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	view := inst.ViewFor(playerID)
	if view == nil {
		writeError(w, http.StatusForbidden, "player not in this game")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetSpectator handles GET /games/{id}/spectator?mode=live|replay. Public
// per §6 — no bearer token is checked, even though CreateGame hands back
// a spectator_key; the key exists for client-side bookkeeping only.
func (h *GameHandler) GetSpectator(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "live"
	}
	if mode != "live" && mode != "replay" {
		writeError(w, http.StatusBadRequest, "mode must be live or replay")
		return
	}

	inst := h.games.Get(gameID)
	if inst == nil {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	diplomacy := inst.Diplomacy(mode == "live")
	writeJSON(w, http.StatusOK, spectatorView{
		FullStateView: inst.FullState(),
		Diplomacy:     diplomacy,
		Treaties:      inst.Treaties(),
	})
}

// spectatorView is the GET /games/{id}/spectator response shape: the full
// unrestricted board state plus the diplomacy ledger, filtered to public
// messages only in live mode.
type spectatorView struct {
	*engine.FullStateView
	Diplomacy []*engine.DiplomacyMessage `json:"diplomacy"`
	Treaties  []*engine.Treaty           `json:"treaties"`
}

// Process handles POST /games/{id}/process — force-resolve the current
// turn, substituting empty orders for any missing living player.
func (h *GameHandler) Process(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	result, err := h.games.ForceResolve(r.Context(), gameID)
	if err != nil {
		writeGameManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// replayDocument is the full per-game replay shape of §4.7.
type replayDocument struct {
	GameID    string                  `json:"game_id"`
	Players   []int                   `json:"players"`
	Civs      map[int]engine.Civ      `json:"civs"`
	Winner    *int                    `json:"winner"`
	Turns     []repository.ReplaySnapshot `json:"turns"`
	Diplomacy []*engine.DiplomacyMessage `json:"diplomacy"`
	Treaties  []*engine.Treaty        `json:"treaties"`
}

// GetReplay handles GET /games/{id}/replay.
func (h *GameHandler) GetReplay(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("id")
	snaps, err := h.replays.LoadGame(r.Context(), gameID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(snaps) == 0 {
		writeError(w, http.StatusNotFound, "no replay for this game")
		return
	}

	last := snaps[len(snaps)-1]
	doc := replayDocument{
		GameID: gameID,
		Turns:  snaps,
		Civs:   make(map[int]engine.Civ),
	}
	if last.State != nil {
		doc.Winner = last.State.Winner
		for _, p := range last.State.Players {
			doc.Players = append(doc.Players, p.ID)
			doc.Civs[p.ID] = p.Civ
		}
		sort.Ints(doc.Players)
	}

	if inst := h.games.Get(gameID); inst != nil {
		doc.Diplomacy, doc.Treaties = inst.DiplomacyLedger()
	}

	writeJSON(w, http.StatusOK, doc)
}

// writeGameManagerError maps GameManager sentinel errors onto the
// transport status codes of §7: an unknown game is 404, a frozen
// (already-won) game or an eliminated submitter is 400 — these are
// ineligible actions, not auth failures.
func writeGameManagerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrGameOver), errors.Is(err, service.ErrPlayerEliminated):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
