package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/opencourt/rotation-system/models"
	"github.com/opencourt/rotation-system/repositories"
)

var ErrPlayerNameConflict = errors.New("player name is already in use")

type PlayerInput struct {
	Name   string   `json:"name"`
	Rating *float64 `json:"rating,omitempty"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context, limit, offset int) ([]*models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, id int) error
}

type playerService struct {
	playerRepo repositories.PlayerRepository
}

func NewPlayerService(playerRepo repositories.PlayerRepository) PlayerService {
	return &playerService{playerRepo: playerRepo}
}

func (s *playerService) CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	player := &models.Player{Name: name, Rating: input.Rating}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, s.mapPlayerError(err)
	}
	return player, nil
}

func (s *playerService) GetPlayerByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapPlayerError(err)
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, limit, offset int) ([]*models.Player, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	players, err := s.playerRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	if players == nil {
		return []*models.Player{}, nil
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrPlayerNameRequired
	}
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapPlayerError(err)
	}
	player.Name = name
	player.Rating = input.Rating
	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, s.mapPlayerError(err)
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, id int) error {
	if err := s.playerRepo.Delete(ctx, id); err != nil {
		return s.mapPlayerError(err)
	}
	return nil
}

func (s *playerService) mapPlayerError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerNameConflict):
		return ErrPlayerNameConflict
	}
	return err
}
