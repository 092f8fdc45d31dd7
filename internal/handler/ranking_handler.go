package handler

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/KaliBomaye/stratagem/internal/repository"
	"github.com/KaliBomaye/stratagem/internal/service"
)

// RankingHandler handles leaderboard, profile, and match-history reads.
type RankingHandler struct {
	ratings *service.RatingService
	matches repository.MatchRepository
}

// NewRankingHandler creates a RankingHandler.
func NewRankingHandler(ratings *service.RatingService, matches repository.MatchRepository) *RankingHandler {
	return &RankingHandler{ratings: ratings, matches: matches}
}

// Leaderboard handles GET /rankings?limit=.
func (h *RankingHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	list, err := h.ratings.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Profile handles GET /rankings/{agent_id}.
func (h *RankingHandler) Profile(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("agent_id")
	profile, err := h.ratings.Profile(r.Context(), agentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "unknown agent")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ListMatches handles GET /matches?limit=&offset=, newest first.
func (h *RankingHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	all, err := h.matches.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Repository implementations disagree on return order (the file
	// store returns records oldest-first, postgres sorts at query time), so sort
	// here by RFC3339 date — lexicographic order matches chronological
	// order for that format — to guarantee the newest-first contract.
	sort.Slice(all, func(i, j int) bool { return all[i].Date > all[j].Date })
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 0)

	if offset < 0 {
		offset = 0
	}
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	writeJSON(w, http.StatusOK, all)
}

// GetMatch handles GET /matches/{id}.
func (h *RankingHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID := r.PathValue("id")
	match, err := h.matches.FindByID(r.Context(), matchID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if match == nil {
		writeError(w, http.StatusNotFound, "unknown match")
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
