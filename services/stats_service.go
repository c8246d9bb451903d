package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/opencourt/rotation-system/models"
	"github.com/opencourt/rotation-system/repositories"
)

type LeaderboardEntry struct {
	Player            *models.Player      `json:"player"`
	Stats             *models.PlayerStats `json:"stats"`
	PointDifferential int                 `json:"point_differential"`
}

type StatsService interface {
	// SessionLeaderboard returns the session's cumulative stats joined
	// with directory entries, best point differential first.
	SessionLeaderboard(ctx context.Context, sessionID int) ([]LeaderboardEntry, error)

	PlayerStats(ctx context.Context, sessionID, playerID int) (*models.PlayerStats, error)
}

type statsService struct {
	sessionRepo repositories.SessionRepository
	playerRepo  repositories.PlayerRepository
}

func NewStatsService(sessionRepo repositories.SessionRepository, playerRepo repositories.PlayerRepository) StatsService {
	return &statsService{sessionRepo: sessionRepo, playerRepo: playerRepo}
}

func (s *statsService) SessionLeaderboard(ctx context.Context, sessionID int) ([]LeaderboardEntry, error) {
	stats, players, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	entries := make([]LeaderboardEntry, 0, len(stats))
	for id, ps := range stats {
		player, ok := byID[id]
		if !ok {
			// Player left the roster; keep their accumulated line with a
			// placeholder directory entry.
			player = &models.Player{ID: id}
		}
		enriched := ps.Clone()
		enriched.AverageRating = averageOpponentRating(ps, byID)
		entries = append(entries, LeaderboardEntry{
			Player:            player,
			Stats:             enriched,
			PointDifferential: enriched.PointDifferential(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].PointDifferential != entries[j].PointDifferential {
			return entries[i].PointDifferential > entries[j].PointDifferential
		}
		if entries[i].Stats.TotalScore != entries[j].Stats.TotalScore {
			return entries[i].Stats.TotalScore > entries[j].Stats.TotalScore
		}
		return entries[i].Player.Name < entries[j].Player.Name
	})
	return entries, nil
}

func (s *statsService) PlayerStats(ctx context.Context, sessionID, playerID int) (*models.PlayerStats, error) {
	stats, _, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ps, ok := stats[playerID]
	if !ok {
		return nil, ErrPlayerNotInSession
	}
	return ps.Clone(), nil
}

func (s *statsService) load(ctx context.Context, sessionID int) (map[int]*models.PlayerStats, []*models.Player, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, nil, ErrSessionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load session %d: %w", sessionID, err)
	}
	if session.LiveData == nil {
		return nil, nil, ErrSessionNotLive
	}
	players, err := s.playerRepo.ListByIDs(ctx, session.PlayerIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session players: %w", err)
	}
	return session.LiveData.PlayerStats, players, nil
}

// averageOpponentRating is the rating of the opposition a player has
// faced, weighted by how often each opponent was met. Unrated opponents
// are excluded; nil when no rated opponent was ever faced.
func averageOpponentRating(ps *models.PlayerStats, byID map[int]*models.Player) *float64 {
	var sum float64
	var n int
	for oid, count := range ps.Opponents {
		opp, ok := byID[oid]
		if !ok || opp.Rating == nil {
			continue
		}
		sum += *opp.Rating * float64(count)
		n += count
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}
