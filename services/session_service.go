package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opencourt/rotation-system/live"
	"github.com/opencourt/rotation-system/models"
	"github.com/opencourt/rotation-system/repositories"
)

type CourtInput struct {
	Name          string   `json:"name"`
	IsActive      bool     `json:"is_active"`
	MinimumRating *float64 `json:"minimum_rating,omitempty"`
}

type CreateSessionInput struct {
	Name           string               `json:"name"`
	PlayerIDs      []int                `json:"player_ids"`
	Courts         []CourtInput         `json:"courts"`
	Partnerships   []models.Partnership `json:"partnerships,omitempty"`
	ScoringEnabled bool                 `json:"scoring_enabled"`
	ShowRatings    bool                 `json:"show_ratings"`
}

type SessionService interface {
	CreateSession(ctx context.Context, input CreateSessionInput) (*models.Session, error)
	GetSession(ctx context.Context, id int) (*models.Session, error)
	ListSessions(ctx context.Context, status *models.SessionStatus, limit, offset int) ([]*models.Session, error)
	DeleteSession(ctx context.Context, id int) error

	StartLiveSession(ctx context.Context, id int) (*models.Session, error)
	EndSession(ctx context.Context, id int) (*models.Session, error)
	ArchiveSession(ctx context.Context, id int) (*models.Session, error)
	RestoreSession(ctx context.Context, id int) (*models.Session, error)

	AddPlayer(ctx context.Context, sessionID, playerID int) (*models.Session, error)
	RemovePlayer(ctx context.Context, sessionID, playerID int) (*models.Session, error)
	PausePlayer(ctx context.Context, sessionID, playerID int) (*models.Session, error)
	ResumePlayer(ctx context.Context, sessionID, playerID int) (*models.Session, error)
	SetPartnerships(ctx context.Context, sessionID int, partnerships []models.Partnership) (*models.Session, error)

	AddCourt(ctx context.Context, sessionID int, input CourtInput) (*models.Session, error)
	UpdateCourt(ctx context.Context, sessionID, courtID int, input CourtInput) (*models.Session, error)
	RemoveCourt(ctx context.Context, sessionID, courtID int) (*models.Session, error)
}

type sessionService struct {
	sessionRepo repositories.SessionRepository
	playerRepo  repositories.PlayerRepository
	hub         *live.Hub
	logger      *slog.Logger
}

func NewSessionService(
	sessionRepo repositories.SessionRepository,
	playerRepo  repositories.PlayerRepository,
	hub *live.Hub,
	logger *slog.Logger,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		playerRepo:  playerRepo,
		hub:         hub,
		logger:      logger,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, input CreateSessionInput) (*models.Session, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrSessionNameRequired
	}
	for _, c := range input.Courts {
		if strings.TrimSpace(c.Name) == "" {
			return nil, ErrCourtNameRequired
		}
	}

	playerIDs, err := s.resolveRoster(ctx, input.PlayerIDs)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Name:           name,
		PlayerIDs:      playerIDs,
		Courts:         buildCourts(input.Courts),
		ScoringEnabled: input.ScoringEnabled,
		ShowRatings:    input.ShowRatings,
		Status:         models.SessionStatusNew,
	}
	if len(input.Partnerships) > 0 {
		if err := validatePartnerships(session, input.Partnerships); err != nil {
			return nil, err
		}
		session.Partnerships = &models.PartnershipConstraint{Partnerships: input.Partnerships}
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("session created", slog.Int("session_id", session.ID), slog.String("name", session.Name))
	return session, nil
}

func (s *sessionService) GetSession(ctx context.Context, id int) (*models.Session, error) {
	return s.loadSession(ctx, id)
}

func (s *sessionService) ListSessions(ctx context.Context, status *models.SessionStatus, limit, offset int) ([]*models.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	sessions, err := s.sessionRepo.List(ctx, repositories.ListSessionsFilter{Status: status, Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if sessions == nil {
		return []*models.Session{}, nil
	}
	return sessions, nil
}

func (s *sessionService) DeleteSession(ctx context.Context, id int) error {
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	return nil
}

// StartLiveSession transitions New -> Live, initializing the live data
// container. Requires at least four players and enough players to fill
// every active court.
func (s *sessionService) StartLiveSession(ctx context.Context, id int) (*models.Session, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusNew {
		return nil, fmt.Errorf("%w: cannot start live from %s", ErrSessionInvalidStatusTransition, session.Status)
	}
	if len(session.PlayerIDs) < 4 {
		return nil, ErrNotEnoughPlayers
	}
	if active := session.ActiveCourts(); len(session.PlayerIDs) < 4*len(active) {
		return nil, ErrNotEnoughPlayersForCourts
	}

	updated := session.Clone()
	updated.Status = models.SessionStatusLive
	stats := make(map[int]*models.PlayerStats, len(updated.PlayerIDs))
	for _, pid := range updated.PlayerIDs {
		stats[pid] = models.NewPlayerStats(pid)
	}
	updated.LiveData = &models.LiveData{Rounds: []models.Round{}, PlayerStats: stats}

	return s.save(ctx, updated, live.EventSessionUpdated)
}

// EndSession transitions Live -> Completed. Allowed mid-round: an
// unfinished round simply never completes.
func (s *sessionService) EndSession(ctx context.Context, id int) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionStatusLive, models.SessionStatusCompleted)
}

func (s *sessionService) ArchiveSession(ctx context.Context, id int) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionStatusCompleted, models.SessionStatusArchived)
}

// RestoreSession is the only path out of Archived, back to Completed.
func (s *sessionService) RestoreSession(ctx context.Context, id int) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionStatusArchived, models.SessionStatusCompleted)
}

// transition performs a pure status flip. Only the status column is
// written; the live data document stays untouched.
func (s *sessionService) transition(ctx context.Context, id int, from, to models.SessionStatus) (*models.Session, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != from {
		return nil, fmt.Errorf("%w: %s -> %s", ErrSessionInvalidStatusTransition, session.Status, to)
	}
	if err := s.sessionRepo.UpdateStatus(ctx, nil, id, to); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update session %d status: %w", id, err)
	}
	session.Status = to
	if s.hub != nil {
		s.hub.BroadcastToSession(session.ID, live.Message{Type: live.EventSessionUpdated, Payload: session})
	}
	return session, nil
}

func (s *sessionService) AddPlayer(ctx context.Context, sessionID, playerID int) (*models.Session, error) {
	session, err := s.loadEditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.HasPlayer(playerID) {
		return nil, ErrPlayerAlreadyInSession
	}
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	updated := session.Clone()
	updated.PlayerIDs = append(updated.PlayerIDs, playerID)
	if updated.LiveData != nil {
		if _, ok := updated.LiveData.PlayerStats[playerID]; !ok {
			updated.LiveData.PlayerStats[playerID] = models.NewPlayerStats(playerID)
		}
	}
	return s.save(ctx, updated, live.EventSessionUpdated)
}

// RemovePlayer drops a player from the roster. Rejected while the
// player is in a game of a started round; a pending round referencing
// them goes stale and should be regenerated by the caller.
func (s *sessionService) RemovePlayer(ctx context.Context, sessionID, playerID int) (*models.Session, error) {
	session, err := s.loadEditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasPlayer(playerID) {
		return nil, ErrPlayerNotInSession
	}
	if round := session.CurrentRound(); round != nil && round.Status == models.RoundStatusStarted {
		for _, g := range round.Games {
			if g.HasPlayer(playerID) {
				return nil, ErrRoundInProgress
			}
		}
	}

	updated := session.Clone()
	updated.PlayerIDs = removeID(updated.PlayerIDs, playerID)
	updated.PausedPlayerIDs = removeID(updated.PausedPlayerIDs, playerID)
	if updated.Partnerships != nil {
		kept := updated.Partnerships.Partnerships[:0]
		for _, p := range updated.Partnerships.Partnerships {
			if p.Player1ID != playerID && p.Player2ID != playerID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			updated.Partnerships = nil
		} else {
			updated.Partnerships.Partnerships = kept
		}
	}
	return s.save(ctx, updated, live.EventSessionUpdated)
}

func (s *sessionService) PausePlayer(ctx context.Context, sessionID, playerID int) (*models.Session, error) {
	session, err := s.loadEditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasPlayer(playerID) {
		return nil, ErrPlayerNotInSession
	}
	if session.IsPaused(playerID) {
		return session, nil
	}
	updated := session.Clone()
	updated.PausedPlayerIDs = append(updated.PausedPlayerIDs, playerID)
	return s.save(ctx, updated, live.EventSessionUpdated)
}

func (s *sessionService) ResumePlayer(ctx context.Context, sessionID, playerID int) (*models.Session, error) {
	session, err := s.loadEditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasPlayer(playerID) {
		return nil, ErrPlayerNotInSession
	}
	if !session.IsPaused(playerID) {
		return session, nil
	}
	updated := session.Clone()
	updated.PausedPlayerIDs = removeID(updated.PausedPlayerIDs, playerID)
	return s.save(ctx, updated, live.EventSessionUpdated)
}

func (s *sessionService) SetPartnerships(ctx context.Context, sessionID int, partnerships []models.Partnership) (*models.Session, error) {
	session, err := s.loadEditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := validatePartnerships(session, partnerships); err != nil {
		return nil, err
	}
	updated := session.Clone()
	if len(partnerships) == 0 {
		updated.Partnerships = nil
	} else {
		updated.Partnerships = &models.PartnershipConstraint{Partnerships: partnerships}
	}
	return s.save(ctx, updated, live.EventSessionUpdated)
}

func (s *sessionService) AddCourt(ctx context.Context, sessionID int, input CourtInput) (*models.Session, error) {
	session, err := s.loadEditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCourtNameRequired
	}

	updated := session.Clone()
	nextID := 1
	for _, c := range updated.Courts {
		if c.ID >= nextID {
			nextID = c.ID + 1
		}
	}
	updated.Courts = append(updated.Courts, models.Court{
		ID:            nextID,
		Name:          strings.TrimSpace(input.Name),
		IsActive:      input.IsActive,
		MinimumRating: input.MinimumRating,
	})
	return s.save(ctx, updated, live.EventSessionUpdated)
}

func (s *sessionService) UpdateCourt(ctx context.Context, sessionID, courtID int, input CourtInput) (*models.Session, error) {
	session, err := s.loadEditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrCourtNameRequired
	}

	updated := session.Clone()
	court, ok := updated.Court(courtID)
	if !ok {
		return nil, ErrCourtNotFound
	}
	court.Name = strings.TrimSpace(input.Name)
	court.IsActive = input.IsActive
	court.MinimumRating = input.MinimumRating
	return s.save(ctx, updated, live.EventSessionUpdated)
}

func (s *sessionService) RemoveCourt(ctx context.Context, sessionID, courtID int) (*models.Session, error) {
	session, err := s.loadEditableSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := session.Court(courtID); !ok {
		return nil, ErrCourtNotFound
	}
	if round := session.CurrentRound(); round != nil && round.Status == models.RoundStatusStarted {
		for _, g := range round.Games {
			if g.CourtID == courtID {
				return nil, ErrRoundInProgress
			}
		}
	}

	updated := session.Clone()
	kept := updated.Courts[:0]
	for _, c := range updated.Courts {
		if c.ID != courtID {
			kept = append(kept, c)
		}
	}
	updated.Courts = kept
	return s.save(ctx, updated, live.EventSessionUpdated)
}

func (s *sessionService) loadSession(ctx context.Context, id int) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %d: %w", id, err)
	}
	return session, nil
}

// loadEditableSession rejects roster/court mutations once a session has
// moved past its playable states.
func (s *sessionService) loadEditableSession(ctx context.Context, id int) (*models.Session, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusNew && session.Status != models.SessionStatusLive {
		return nil, ErrSessionNotEditable
	}
	return session, nil
}

// save persists the mutated session and notifies subscribers. The
// mutation is applied to a clone, so a failed write leaves no trace.
func (s *sessionService) save(ctx context.Context, session *models.Session, event string) (*models.Session, error) {
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to save session %d: %w", session.ID, err)
	}
	if s.hub != nil {
		s.hub.BroadcastToSession(session.ID, live.Message{Type: event, Payload: session})
	}
	return session, nil
}

func (s *sessionService) resolveRoster(ctx context.Context, playerIDs []int) ([]int, error) {
	unique := make([]int, 0, len(playerIDs))
	seen := make(map[int]bool, len(playerIDs))
	for _, id := range playerIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return unique, nil
	}
	players, err := s.playerRepo.ListByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session roster: %w", err)
	}
	if len(players) != len(unique) {
		return nil, ErrPlayerNotFound
	}
	return unique, nil
}

func buildCourts(inputs []CourtInput) []models.Court {
	courts := make([]models.Court, len(inputs))
	for i, c := range inputs {
		courts[i] = models.Court{
			ID:            i + 1,
			Name:          strings.TrimSpace(c.Name),
			IsActive:      c.IsActive,
			MinimumRating: c.MinimumRating,
		}
	}
	return courts
}

func validatePartnerships(session *models.Session, partnerships []models.Partnership) error {
	seen := make(map[int]bool)
	for _, p := range partnerships {
		if p.Player1ID == p.Player2ID {
			return ErrPartnershipInvalid
		}
		if !session.HasPlayer(p.Player1ID) || !session.HasPlayer(p.Player2ID) {
			return fmt.Errorf("%w: players must be in the session roster", ErrPartnershipInvalid)
		}
		if seen[p.Player1ID] || seen[p.Player2ID] {
			return fmt.Errorf("%w: a player may appear in only one partnership", ErrPartnershipInvalid)
		}
		seen[p.Player1ID] = true
		seen[p.Player2ID] = true
	}
	return nil
}

func removeID(ids []int, id int) []int {
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}
