package services

import (
	"context"
	"errors"
	"testing"

	"github.com/opencourt/rotation-system/models"
)

func seedPlayers(n int) []*models.Player {
	players := make([]*models.Player, n)
	for i := range players {
		players[i] = &models.Player{ID: i + 1, Name: string(rune('A' + i))}
	}
	return players
}

func idsOf(players []*models.Player) []int {
	ids := make([]int, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}

func newSessionFixture(t *testing.T, n int, courts ...models.Court) (SessionService, *mockSessionRepo, []*models.Player) {
	t.Helper()
	players := seedPlayers(n)
	playerRepo := newMockPlayerRepo(players...)
	sessionRepo := newMockSessionRepo()
	svc := NewSessionService(sessionRepo, playerRepo, nil, testLogger())

	input := CreateSessionInput{Name: "Tuesday night", PlayerIDs: idsOf(players)}
	for _, c := range courts {
		input.Courts = append(input.Courts, CourtInput{Name: c.Name, IsActive: c.IsActive, MinimumRating: c.MinimumRating})
	}
	if _, err := svc.CreateSession(context.Background(), input); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	return svc, sessionRepo, players
}

func TestCreateSessionValidation(t *testing.T) {
	playerRepo := newMockPlayerRepo(seedPlayers(4)...)
	svc := NewSessionService(newMockSessionRepo(), playerRepo, nil, testLogger())

	if _, err := svc.CreateSession(context.Background(), CreateSessionInput{Name: "  "}); !errors.Is(err, ErrSessionNameRequired) {
		t.Fatalf("expected ErrSessionNameRequired, got %v", err)
	}
	if _, err := svc.CreateSession(context.Background(), CreateSessionInput{
		Name:   "x",
		Courts: []CourtInput{{Name: ""}},
	}); !errors.Is(err, ErrCourtNameRequired) {
		t.Fatalf("expected ErrCourtNameRequired, got %v", err)
	}
	if _, err := svc.CreateSession(context.Background(), CreateSessionInput{
		Name:      "x",
		PlayerIDs: []int{1, 99},
	}); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestCreateSessionDeduplicatesRoster(t *testing.T) {
	playerRepo := newMockPlayerRepo(seedPlayers(3)...)
	svc := NewSessionService(newMockSessionRepo(), playerRepo, nil, testLogger())

	session, err := svc.CreateSession(context.Background(), CreateSessionInput{
		Name:      "x",
		PlayerIDs: []int{1, 2, 1, 3, 2},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if len(session.PlayerIDs) != 3 {
		t.Fatalf("roster %v, want 3 unique players", session.PlayerIDs)
	}
}

func TestStartLiveSession(t *testing.T) {
	svc, _, players := newSessionFixture(t, 4, models.Court{Name: "Main", IsActive: true})

	session, err := svc.StartLiveSession(context.Background(), 1)
	if err != nil {
		t.Fatalf("StartLiveSession: %v", err)
	}
	if session.Status != models.SessionStatusLive {
		t.Fatalf("status %s, want live", session.Status)
	}
	if session.LiveData == nil || len(session.LiveData.PlayerStats) != len(players) {
		t.Fatal("live data not initialized with per-player stats")
	}

	// Starting twice is an illegal transition.
	if _, err := svc.StartLiveSession(context.Background(), 1); !errors.Is(err, ErrSessionInvalidStatusTransition) {
		t.Fatalf("expected ErrSessionInvalidStatusTransition, got %v", err)
	}
}

func TestStartLiveSessionRequiresEnoughPlayers(t *testing.T) {
	svc, _, _ := newSessionFixture(t, 3, models.Court{Name: "Main", IsActive: true})
	if _, err := svc.StartLiveSession(context.Background(), 1); !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
}

func TestStartLiveSessionRequiresPlayersForEveryCourt(t *testing.T) {
	svc, _, _ := newSessionFixture(t, 6,
		models.Court{Name: "One", IsActive: true},
		models.Court{Name: "Two", IsActive: true},
	)
	if _, err := svc.StartLiveSession(context.Background(), 1); !errors.Is(err, ErrNotEnoughPlayersForCourts) {
		t.Fatalf("expected ErrNotEnoughPlayersForCourts, got %v", err)
	}
}

func TestSessionLifecycleTransitions(t *testing.T) {
	svc, _, _ := newSessionFixture(t, 4, models.Court{Name: "Main", IsActive: true})
	ctx := context.Background()

	// End before Live is illegal.
	if _, err := svc.EndSession(ctx, 1); !errors.Is(err, ErrSessionInvalidStatusTransition) {
		t.Fatalf("expected ErrSessionInvalidStatusTransition, got %v", err)
	}

	if _, err := svc.StartLiveSession(ctx, 1); err != nil {
		t.Fatalf("StartLiveSession: %v", err)
	}
	session, err := svc.EndSession(ctx, 1)
	if err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	if session.Status != models.SessionStatusCompleted {
		t.Fatalf("status %s, want completed", session.Status)
	}

	session, err = svc.ArchiveSession(ctx, 1)
	if err != nil {
		t.Fatalf("ArchiveSession: %v", err)
	}
	if session.Status != models.SessionStatusArchived {
		t.Fatalf("status %s, want archived", session.Status)
	}

	session, err = svc.RestoreSession(ctx, 1)
	if err != nil {
		t.Fatalf("RestoreSession: %v", err)
	}
	if session.Status != models.SessionStatusCompleted {
		t.Fatalf("status %s, want completed after restore", session.Status)
	}
}

func TestPauseAndResumePlayer(t *testing.T) {
	svc, _, _ := newSessionFixture(t, 5, models.Court{Name: "Main", IsActive: true})
	ctx := context.Background()

	session, err := svc.PausePlayer(ctx, 1, 3)
	if err != nil {
		t.Fatalf("PausePlayer: %v", err)
	}
	if !session.IsPaused(3) {
		t.Fatal("player 3 not paused")
	}

	// Pausing again is a no-op, not an error.
	if _, err := svc.PausePlayer(ctx, 1, 3); err != nil {
		t.Fatalf("second PausePlayer: %v", err)
	}

	session, err = svc.ResumePlayer(ctx, 1, 3)
	if err != nil {
		t.Fatalf("ResumePlayer: %v", err)
	}
	if session.IsPaused(3) {
		t.Fatal("player 3 still paused after resume")
	}

	if _, err := svc.PausePlayer(ctx, 1, 99); !errors.Is(err, ErrPlayerNotInSession) {
		t.Fatalf("expected ErrPlayerNotInSession, got %v", err)
	}
}

func TestAddPlayer(t *testing.T) {
	players := seedPlayers(5)
	playerRepo := newMockPlayerRepo(players...)
	sessionRepo := newMockSessionRepo()
	svc := NewSessionService(sessionRepo, playerRepo, nil, testLogger())
	ctx := context.Background()

	if _, err := svc.CreateSession(ctx, CreateSessionInput{
		Name:      "x",
		PlayerIDs: []int{1, 2, 3, 4},
		Courts:    []CourtInput{{Name: "Main", IsActive: true}},
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := svc.StartLiveSession(ctx, 1); err != nil {
		t.Fatalf("StartLiveSession: %v", err)
	}

	session, err := svc.AddPlayer(ctx, 1, 5)
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if !session.HasPlayer(5) {
		t.Fatal("player 5 not on roster")
	}
	if _, ok := session.LiveData.PlayerStats[5]; !ok {
		t.Fatal("late joiner has no stats entry")
	}

	if _, err := svc.AddPlayer(ctx, 1, 5); !errors.Is(err, ErrPlayerAlreadyInSession) {
		t.Fatalf("expected ErrPlayerAlreadyInSession, got %v", err)
	}
	if _, err := svc.AddPlayer(ctx, 1, 99); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}
}

func TestRemovePlayerBlockedMidGame(t *testing.T) {
	svc, sessionRepo, _ := newSessionFixture(t, 5, models.Court{Name: "Main", IsActive: true})
	ctx := context.Background()

	if _, err := svc.StartLiveSession(ctx, 1); err != nil {
		t.Fatalf("StartLiveSession: %v", err)
	}

	// Simulate a started round with player 1 on court.
	session, _ := sessionRepo.GetByID(ctx, 1)
	session.LiveData.Rounds = []models.Round{{
		Number: 1,
		Status: models.RoundStatusStarted,
		Games: []models.Game{{
			UID:         "R1G1",
			CourtID:     1,
			ServeTeam:   models.Team{Player1ID: 1, Player2ID: 2},
			ReceiveTeam: models.Team{Player1ID: 3, Player2ID: 4},
		}},
		SittingOutIDs: []int{5},
	}}
	if err := sessionRepo.Update(ctx, session); err != nil {
		t.Fatalf("seed round: %v", err)
	}

	if _, err := svc.RemovePlayer(ctx, 1, 1); !errors.Is(err, ErrRoundInProgress) {
		t.Fatalf("expected ErrRoundInProgress, got %v", err)
	}

	// A player only sitting out may leave mid-round.
	updated, err := svc.RemovePlayer(ctx, 1, 5)
	if err != nil {
		t.Fatalf("RemovePlayer for benched player: %v", err)
	}
	if updated.HasPlayer(5) {
		t.Fatal("player 5 still on roster")
	}
}

func TestRemovePlayerDropsPartnership(t *testing.T) {
	players := seedPlayers(5)
	playerRepo := newMockPlayerRepo(players...)
	svc := NewSessionService(newMockSessionRepo(), playerRepo, nil, testLogger())
	ctx := context.Background()

	if _, err := svc.CreateSession(ctx, CreateSessionInput{
		Name:         "x",
		PlayerIDs:    idsOf(players),
		Courts:       []CourtInput{{Name: "Main", IsActive: true}},
		Partnerships: []models.Partnership{{Player1ID: 1, Player2ID: 2}},
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	session, err := svc.RemovePlayer(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if session.Partnerships != nil {
		t.Fatalf("partnership referencing a removed player kept: %+v", session.Partnerships)
	}
}

func TestSetPartnershipsValidation(t *testing.T) {
	svc, _, _ := newSessionFixture(t, 6, models.Court{Name: "Main", IsActive: true})
	ctx := context.Background()

	cases := []struct {
		name         string
		partnerships []models.Partnership
	}{
		{"self pair", []models.Partnership{{Player1ID: 1, Player2ID: 1}}},
		{"outside roster", []models.Partnership{{Player1ID: 1, Player2ID: 99}}},
		{"player in two pairs", []models.Partnership{{Player1ID: 1, Player2ID: 2}, {Player1ID: 2, Player2ID: 3}}},
	}
	for _, tc := range cases {
		if _, err := svc.SetPartnerships(ctx, 1, tc.partnerships); !errors.Is(err, ErrPartnershipInvalid) {
			t.Errorf("%s: expected ErrPartnershipInvalid, got %v", tc.name, err)
		}
	}

	session, err := svc.SetPartnerships(ctx, 1, []models.Partnership{{Player1ID: 1, Player2ID: 2}})
	if err != nil {
		t.Fatalf("SetPartnerships: %v", err)
	}
	if session.Partnerships == nil || len(session.Partnerships.Partnerships) != 1 {
		t.Fatal("valid partnership not stored")
	}

	// Clearing removes the constraint entirely.
	session, err = svc.SetPartnerships(ctx, 1, nil)
	if err != nil {
		t.Fatalf("clearing partnerships: %v", err)
	}
	if session.Partnerships != nil {
		t.Fatal("expected partnerships cleared")
	}
}

func TestCourtManagement(t *testing.T) {
	svc, _, _ := newSessionFixture(t, 8, models.Court{Name: "One", IsActive: true})
	ctx := context.Background()

	session, err := svc.AddCourt(ctx, 1, CourtInput{Name: "Two", IsActive: true})
	if err != nil {
		t.Fatalf("AddCourt: %v", err)
	}
	if len(session.Courts) != 2 || session.Courts[1].ID != 2 {
		t.Fatalf("unexpected courts: %+v", session.Courts)
	}

	session, err = svc.UpdateCourt(ctx, 1, 2, CourtInput{Name: "Two", IsActive: false, MinimumRating: nil})
	if err != nil {
		t.Fatalf("UpdateCourt: %v", err)
	}
	if c, _ := session.Court(2); c.IsActive {
		t.Fatal("court 2 still active after update")
	}

	if _, err := svc.UpdateCourt(ctx, 1, 99, CourtInput{Name: "x"}); !errors.Is(err, ErrCourtNotFound) {
		t.Fatalf("expected ErrCourtNotFound, got %v", err)
	}

	session, err = svc.RemoveCourt(ctx, 1, 2)
	if err != nil {
		t.Fatalf("RemoveCourt: %v", err)
	}
	if len(session.Courts) != 1 {
		t.Fatalf("expected 1 court left, got %d", len(session.Courts))
	}
}

func TestEditingLockedAfterCompletion(t *testing.T) {
	svc, _, _ := newSessionFixture(t, 4, models.Court{Name: "Main", IsActive: true})
	ctx := context.Background()

	if _, err := svc.StartLiveSession(ctx, 1); err != nil {
		t.Fatalf("StartLiveSession: %v", err)
	}
	if _, err := svc.EndSession(ctx, 1); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	if _, err := svc.PausePlayer(ctx, 1, 1); !errors.Is(err, ErrSessionNotEditable) {
		t.Fatalf("expected ErrSessionNotEditable, got %v", err)
	}
	if _, err := svc.AddCourt(ctx, 1, CourtInput{Name: "Late"}); !errors.Is(err, ErrSessionNotEditable) {
		t.Fatalf("expected ErrSessionNotEditable, got %v", err)
	}
}
