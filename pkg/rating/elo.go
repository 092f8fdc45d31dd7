// Package rating implements the multiplayer-Elo rating update used to
// score a completed game's placements.
package rating

import (
	"math"
)

// KFactor is the rating sensitivity constant.
const KFactor = 32

// StartingRating is the rating assigned to a profile on first sighting.
const StartingRating = 1000

// FloorRating is the minimum rating a profile may ever fall to.
const FloorRating = 100

// RatingEvent is one entry in a profile's rating history.
type RatingEvent struct {
	Rating int     `json:"rating"`
	Time   float64 `json:"time"`
}

// AgentProfile is one player/agent's persistent rating record.
type AgentProfile struct {
	AgentID       string        `json:"agent_id"`
	Rating        int           `json:"rating"`
	PeakRating    int           `json:"peak_rating"`
	Wins          int           `json:"wins"`
	Losses        int           `json:"losses"`
	Draws         int           `json:"draws"`
	GamesPlayed   int           `json:"games_played"`
	RatingHistory []RatingEvent `json:"rating_history"`
}

// WinRate returns wins/games_played, or 0 if no games have been played.
func (p *AgentProfile) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.Wins) / float64(p.GamesPlayed)
}

// NewAgentProfile creates a fresh profile at the starting rating.
func NewAgentProfile(agentID string) *AgentProfile {
	return &AgentProfile{AgentID: agentID, Rating: StartingRating, PeakRating: StartingRating}
}

func expectedScore(ra, rb int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(rb-ra)/400.0))
}

// UpdateMultiplayerElo applies one game's result to the given profiles.
// placements is ordered winner-first, then the remaining alive players
// (any order), then eliminated players in elimination order — each
// position plays a virtual pairwise match against every other position,
// earning a full point for every position below it and none for every
// position above (ties are not modeled by position; equal-placement ties
// are the caller's responsibility to pre-resolve into a single ordering).
// profiles must already contain an entry for every id in placements.
// Returns the new rating for each placed agent, keyed by agent id.
func UpdateMultiplayerElo(profiles map[string]*AgentProfile, placements []string, now float64) map[string]int {
	n := len(placements)
	if n < 2 {
		return map[string]int{}
	}

	ratings := make(map[string]int, n)
	for _, pid := range placements {
		ratings[pid] = profiles[pid].Rating
	}

	newRatings := make(map[string]int, n)
	for i, pid := range placements {
		ra := ratings[pid]
		totalExpected := 0.0
		totalActual := 0.0
		for j, opp := range placements {
			if i == j {
				continue
			}
			totalExpected += expectedScore(ra, ratings[opp])
			if i < j {
				totalActual += 1.0
			}
			// i > j: loss, contributes 0.
		}
		adjustment := KFactor * (totalActual - totalExpected) / float64(n-1)
		newRatings[pid] = maxInt(FloorRating, roundHalfAwayFromZero(float64(ra)+adjustment))
	}

	for i, pid := range placements {
		p := profiles[pid]
		p.Rating = newRatings[pid]
		if p.Rating > p.PeakRating {
			p.PeakRating = p.Rating
		}
		p.GamesPlayed++
		p.RatingHistory = append(p.RatingHistory, RatingEvent{Rating: p.Rating, Time: now})
		if i == 0 {
			p.Wins++
		} else {
			p.Losses++
		}
	}

	return newRatings
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func roundHalfAwayFromZero(v float64) int {
	if v >= 0 {
		return int(math.Floor(v + 0.5))
	}
	return int(math.Ceil(v - 0.5))
}

// MatchRecord is one completed game's persisted summary.
type MatchRecord struct {
	MatchID     string   `json:"match_id"`
	Players     []string `json:"players"`
	Placements  []string `json:"placements"`
	Winner      *string  `json:"winner"`
	TurnCount   int      `json:"turn_count"`
	Date        string   `json:"date"`
	ReplayFile  string   `json:"replay_file,omitempty"`
}
