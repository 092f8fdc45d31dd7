package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/KaliBomaye/stratagem/internal/repository"
	"github.com/KaliBomaye/stratagem/pkg/rating"
)

// RatingService serializes reads and writes of the shared rating store
// (§5: "updates must be serialized") and records finished-match history.
type RatingService struct {
	mu       sync.Mutex
	rankings repository.RankingsRepository
	matches  repository.MatchRepository
	now      func() string
}

// NewRatingService creates a RatingService. now supplies the current
// timestamp as an RFC3339 string for persisted match records; tests
// can substitute a fixed clock.
func NewRatingService(rankings repository.RankingsRepository, matches repository.MatchRepository, now func() string) *RatingService {
	return &RatingService{rankings: rankings, matches: matches, now: now}
}

// RecordMatch applies the §4.8 multiplayer Elo update for one finished
// game's placement order, persists the updated profiles, and appends a
// match history record.
func (s *RatingService) RecordMatch(ctx context.Context, gameID string, placements []string, winner *int, turnCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.rankings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load rankings: %w", err)
	}
	for _, id := range placements {
		if _, ok := profiles[id]; !ok {
			profiles[id] = rating.NewAgentProfile(id)
		}
	}

	rating.UpdateMultiplayerElo(profiles, placements, 0)

	var winnerKey *string
	if winner != nil && len(placements) > 0 {
		w := placements[0]
		winnerKey = &w
	}

	if err := s.rankings.Save(ctx, profiles); err != nil {
		return fmt.Errorf("save rankings: %w", err)
	}

	match := rating.MatchRecord{
		MatchID:    uuid.NewString(),
		Players:    placements,
		Placements: placements,
		Winner:     winnerKey,
		TurnCount:  turnCount,
		Date:       s.now(),
		ReplayFile: fmt.Sprintf("replays/%s.json", gameID),
	}
	if err := s.matches.Append(ctx, match); err != nil {
		return fmt.Errorf("append match: %w", err)
	}
	return nil
}

// Leaderboard returns every profile sorted by rating descending,
// truncated to limit (0 means unlimited).
func (s *RatingService) Leaderboard(ctx context.Context, limit int) ([]*rating.AgentProfile, error) {
	profiles, err := s.rankings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rankings: %w", err)
	}
	list := make([]*rating.AgentProfile, 0, len(profiles))
	for _, p := range profiles {
		list = append(list, p)
	}
	sortByRatingDesc(list)
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// Profile returns a single agent's profile, or nil if unknown.
func (s *RatingService) Profile(ctx context.Context, agentID string) (*rating.AgentProfile, error) {
	profiles, err := s.rankings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rankings: %w", err)
	}
	return profiles[agentID], nil
}

func sortByRatingDesc(list []*rating.AgentProfile) {
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].Rating > list[j-1].Rating; j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
}
