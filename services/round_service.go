package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/opencourt/rotation-system/engine"
	"github.com/opencourt/rotation-system/live"
	"github.com/opencourt/rotation-system/models"
	"github.com/opencourt/rotation-system/repositories"
)

type RoundService interface {
	// GenerateRound creates the next pending round, or replaces the
	// current pending round when one exists (reshuffle).
	GenerateRound(ctx context.Context, sessionID int) (*models.Session, error)

	// RegeneratePendingRound re-runs generation after a configuration
	// change. It is a no-op when the current round is not pending.
	RegeneratePendingRound(ctx context.Context, sessionID int) (*models.Session, error)

	StartRound(ctx context.Context, sessionID int) (*models.Session, error)
	CompleteRound(ctx context.Context, sessionID int, results models.Results) (*models.Session, error)
	SwapPlayers(ctx context.Context, sessionID, playerID1, playerID2 int) (*models.Session, error)
}

type roundService struct {
	sessionRepo repositories.SessionRepository
	playerRepo  repositories.PlayerRepository
	generator   engine.RoundGenerator
	hub         *live.Hub
	logger      *slog.Logger
}

func NewRoundService(
	sessionRepo repositories.SessionRepository,
	playerRepo repositories.PlayerRepository,
	generator engine.RoundGenerator,
	hub *live.Hub,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		sessionRepo: sessionRepo,
		playerRepo:  playerRepo,
		generator:   generator,
		hub:         hub,
		logger:      logger,
	}
}

func (s *roundService) GenerateRound(ctx context.Context, sessionID int) (*models.Session, error) {
	session, err := s.loadLiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	current := session.CurrentRound()
	if current != nil && current.Status == models.RoundStatusStarted {
		return nil, ErrRoundInProgress
	}

	number := 1
	replace := false
	if current != nil {
		switch current.Status {
		case models.RoundStatusPending:
			number = current.Number
			replace = true
		case models.RoundStatusCompleted:
			number = current.Number + 1
		}
	}

	round, err := s.generate(ctx, session, number)
	if err != nil {
		return nil, err
	}

	updated := session.Clone()
	if replace {
		updated.LiveData.Rounds[len(updated.LiveData.Rounds)-1] = *round
	} else {
		updated.LiveData.Rounds = append(updated.LiveData.Rounds, *round)
	}
	return s.save(ctx, updated, live.EventRoundGenerated)
}

func (s *roundService) RegeneratePendingRound(ctx context.Context, sessionID int) (*models.Session, error) {
	session, err := s.loadLiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	current := session.CurrentRound()
	if current == nil || current.Status != models.RoundStatusPending {
		return session, nil
	}
	return s.GenerateRound(ctx, sessionID)
}

func (s *roundService) StartRound(ctx context.Context, sessionID int) (*models.Session, error) {
	session, err := s.loadLiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	current := session.CurrentRound()
	if current == nil {
		return nil, ErrNoCurrentRound
	}
	if current.Status != models.RoundStatusPending {
		return nil, fmt.Errorf("%w: round %d is %s", ErrRoundNotPending, current.Number, current.Status)
	}

	now := time.Now().UTC()
	updated := session.Clone()
	round := updated.CurrentRound()
	round.Status = models.RoundStatusStarted
	for i := range round.Games {
		t := now
		round.Games[i].StartedAt = &t
	}
	return s.save(ctx, updated, live.EventRoundStarted)
}

// CompleteRound applies results to the started round, folds the outcome
// into player stats, and opens the next pending round. A round only
// passes through here once, which keeps the stats aggregation
// idempotent per round. Failure to generate the follow-up round (for
// example, the roster shrank below a game) does not undo completion.
func (s *roundService) CompleteRound(ctx context.Context, sessionID int, results models.Results) (*models.Session, error) {
	session, err := s.loadLiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	current := session.CurrentRound()
	if current == nil {
		return nil, ErrNoCurrentRound
	}
	switch current.Status {
	case models.RoundStatusCompleted:
		return nil, ErrRoundAlreadyCompleted
	case models.RoundStatusPending:
		return nil, fmt.Errorf("%w: round %d", ErrRoundNotStarted, current.Number)
	}

	if err := validateResults(current, results); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated := session.Clone()
	round := updated.CurrentRound()
	for i := range round.Games {
		if score := results[round.Games[i].UID]; score != nil {
			sc := *score
			round.Games[i].Score = &sc
		}
		round.Games[i].IsCompleted = true
		t := now
		round.Games[i].CompletedAt = &t
	}
	round.Status = models.RoundStatusCompleted
	updated.LiveData.PlayerStats = engine.UpdateStatsForRound(*round, results, updated.LiveData.PlayerStats)

	if next, err := s.generate(ctx, updated, round.Number+1); err != nil {
		s.logger.Warn("next round not opened after completion",
			slog.Int("session_id", sessionID),
			slog.Int("completed_round", round.Number),
			slog.Any("error", err))
	} else {
		updated.LiveData.Rounds = append(updated.LiveData.Rounds, *next)
	}

	return s.save(ctx, updated, live.EventRoundCompleted)
}

// SwapPlayers exchanges two players' positions in the current round in
// place, without re-running the generator. Positions may be game slots
// or the sitting-out set. Allowed while the round is pending or started.
func (s *roundService) SwapPlayers(ctx context.Context, sessionID, playerID1, playerID2 int) (*models.Session, error) {
	session, err := s.loadLiveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	current := session.CurrentRound()
	if current == nil {
		return nil, ErrNoCurrentRound
	}
	if current.Status == models.RoundStatusCompleted {
		return nil, ErrRoundAlreadyCompleted
	}
	if playerID1 == playerID2 {
		return nil, ErrSwapInvalid
	}

	updated := session.Clone()
	round := updated.CurrentRound()

	slot1, ok := findRoundSlot(round, playerID1)
	if !ok {
		return nil, fmt.Errorf("%w: player %d", ErrPlayerNotInRound, playerID1)
	}
	slot2, ok := findRoundSlot(round, playerID2)
	if !ok {
		return nil, fmt.Errorf("%w: player %d", ErrPlayerNotInRound, playerID2)
	}
	// Swapping teammates rearranges nothing; reject as a no-op so the
	// caller learns the edit had no effect.
	if slot1.gameIndex >= 0 && slot1.gameIndex == slot2.gameIndex && slot1.team == slot2.team {
		return nil, ErrSwapInvalid
	}

	slot1.set(round, playerID2)
	slot2.set(round, playerID1)

	return s.save(ctx, updated, live.EventRoundGenerated)
}

// generate runs the assigner against the session snapshot and converts
// the assignment into a pending round.
func (s *roundService) generate(ctx context.Context, session *models.Session, number int) (*models.Round, error) {
	players, err := s.playerRepo.ListByIDs(ctx, session.PlayerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load session players: %w", err)
	}

	var stats map[int]*models.PlayerStats
	if session.LiveData != nil {
		stats = session.LiveData.PlayerStats
	}

	assignment, err := s.generator.GenerateRound(ctx, engine.GenerateRoundParams{
		Session:     session,
		Players:     players,
		Stats:       stats,
		RoundNumber: number,
	})
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrNotEnoughPlayers):
			return nil, ErrNotEnoughPlayers
		case errors.Is(err, engine.ErrNoActiveCourts):
			return nil, ErrNoActiveCourts
		case errors.Is(err, engine.ErrGenerationEmpty):
			return nil, ErrGenerationEmpty
		}
		return nil, fmt.Errorf("round generation failed for session %d: %w", session.ID, err)
	}

	round := &models.Round{
		Number:        assignment.RoundNumber,
		Status:        models.RoundStatusPending,
		Games:         make([]models.Game, len(assignment.Games)),
		SittingOutIDs: assignment.SittingOutIDs,
	}
	for i, g := range assignment.Games {
		round.Games[i] = models.Game{
			UID:         fmt.Sprintf("R%dG%d", assignment.RoundNumber, i+1),
			CourtID:     g.CourtID,
			ServeTeam:   g.ServeTeam,
			ReceiveTeam: g.ReceiveTeam,
		}
	}
	return round, nil
}

func (s *roundService) loadLiveSession(ctx context.Context, id int) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %d: %w", id, err)
	}
	if session.Status != models.SessionStatusLive || session.LiveData == nil {
		return nil, ErrSessionNotLive
	}
	return session, nil
}

func (s *roundService) save(ctx context.Context, session *models.Session, event string) (*models.Session, error) {
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to save session %d: %w", session.ID, err)
	}
	if s.hub != nil {
		s.hub.BroadcastToSession(session.ID, live.Message{Type: event, Payload: session.CurrentRound()})
	}
	return session, nil
}

func validateResults(round *models.Round, results models.Results) error {
	known := make(map[string]bool, len(round.Games))
	for _, g := range round.Games {
		known[g.UID] = true
	}
	for uid := range results {
		if !known[uid] {
			return fmt.Errorf("%w: %s", ErrGameNotFound, uid)
		}
	}
	return nil
}

// roundSlot addresses one player position in a round: a team slot of a
// game, or an index into the sitting-out set.
type roundSlot struct {
	gameIndex int // -1 when sitting out
	team      int // 0 serve, 1 receive
	pos       int // slot within the team, or sitting-out index
}

func findRoundSlot(round *models.Round, playerID int) (roundSlot, bool) {
	for gi, g := range round.Games {
		teams := [2]models.Team{g.ServeTeam, g.ReceiveTeam}
		for ti, team := range teams {
			if team.Player1ID == playerID {
				return roundSlot{gameIndex: gi, team: ti, pos: 0}, true
			}
			if team.Player2ID == playerID {
				return roundSlot{gameIndex: gi, team: ti, pos: 1}, true
			}
		}
	}
	for i, id := range round.SittingOutIDs {
		if id == playerID {
			return roundSlot{gameIndex: -1, pos: i}, true
		}
	}
	return roundSlot{}, false
}

func (sl roundSlot) set(round *models.Round, playerID int) {
	if sl.gameIndex < 0 {
		round.SittingOutIDs[sl.pos] = playerID
		return
	}
	game := &round.Games[sl.gameIndex]
	team := &game.ServeTeam
	if sl.team == 1 {
		team = &game.ReceiveTeam
	}
	if sl.pos == 0 {
		team.Player1ID = playerID
	} else {
		team.Player2ID = playerID
	}
}
