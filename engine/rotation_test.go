package engine

import (
	"math/rand"
	"testing"

	"github.com/opencourt/rotation-system/models"
)

func singleUnits(players []*models.Player) []unit {
	units := make([]unit, len(players))
	for i, p := range players {
		units[i] = unit{players: []*models.Player{p}}
	}
	return units
}

func TestSelectSittingOutLongestStreakFirst(t *testing.T) {
	players := testPlayers(5)
	stats := map[int]*models.PlayerStats{}
	for _, p := range players {
		stats[p.ID] = models.NewPlayerStats(p.ID)
	}
	stats[3].ConsecutiveGames = 4
	stats[3].GamesPlayed = 4

	rng := rand.New(rand.NewSource(7))
	benched, playing := selectSittingOut(singleUnits(players), 1, stats, rng)

	if len(benched) != 1 || benched[0].ID != 3 {
		t.Fatalf("expected player 3 benched, got %v", benched)
	}
	if len(playing) != 4 {
		t.Fatalf("expected 4 playing units, got %d", len(playing))
	}
}

func TestSelectSittingOutGamesPlayedBreaksTies(t *testing.T) {
	players := testPlayers(5)
	stats := map[int]*models.PlayerStats{}
	for _, p := range players {
		s := models.NewPlayerStats(p.ID)
		s.ConsecutiveGames = 2
		s.GamesPlayed = 2
		stats[p.ID] = s
	}
	stats[2].GamesPlayed = 6

	rng := rand.New(rand.NewSource(7))
	benched, _ := selectSittingOut(singleUnits(players), 1, stats, rng)

	if len(benched) != 1 || benched[0].ID != 2 {
		t.Fatalf("expected player 2 benched on games played, got %v", benched)
	}
}

func TestSelectSittingOutZeroCapacity(t *testing.T) {
	players := testPlayers(4)
	rng := rand.New(rand.NewSource(7))
	benched, playing := selectSittingOut(singleUnits(players), 0, nil, rng)

	if len(benched) != 0 {
		t.Fatalf("expected empty bench, got %v", benched)
	}
	if len(playing) != 4 {
		t.Fatalf("expected all units playing, got %d", len(playing))
	}
}

func TestSelectSittingOutPairNeverSplit(t *testing.T) {
	players := testPlayers(6)
	units := []unit{
		{players: []*models.Player{players[0], players[1]}, pair: true},
		{players: []*models.Player{players[2]}},
		{players: []*models.Player{players[3]}},
		{players: []*models.Player{players[4]}},
		{players: []*models.Player{players[5]}},
	}
	stats := map[int]*models.PlayerStats{}
	for _, p := range players {
		stats[p.ID] = models.NewPlayerStats(p.ID)
	}
	// The pair has the longest streak but only one seat is free.
	stats[1].ConsecutiveGames = 5
	stats[2].ConsecutiveGames = 5

	rng := rand.New(rand.NewSource(7))
	benched, playing := selectSittingOut(units, 1, stats, rng)

	if len(benched) != 1 {
		t.Fatalf("expected a single benched player, got %v", benched)
	}
	if benched[0].ID == 1 || benched[0].ID == 2 {
		t.Fatal("pair member benched alone")
	}
	total := 0
	for _, u := range playing {
		total += u.size()
	}
	if total != 5 {
		t.Fatalf("playing pool covers %d players, want 5", total)
	}
}

func TestSelectSittingOutPairBenchedWhole(t *testing.T) {
	players := testPlayers(6)
	units := []unit{
		{players: []*models.Player{players[0], players[1]}, pair: true},
		{players: []*models.Player{players[2]}},
		{players: []*models.Player{players[3]}},
		{players: []*models.Player{players[4]}},
		{players: []*models.Player{players[5]}},
	}
	stats := map[int]*models.PlayerStats{}
	for _, p := range players {
		stats[p.ID] = models.NewPlayerStats(p.ID)
	}
	stats[1].ConsecutiveGames = 5
	stats[2].ConsecutiveGames = 5

	rng := rand.New(rand.NewSource(7))
	benched, _ := selectSittingOut(units, 2, stats, rng)

	if len(benched) != 2 {
		t.Fatalf("expected the pair benched together, got %v", benched)
	}
	ids := map[int]bool{benched[0].ID: true, benched[1].ID: true}
	if !ids[1] || !ids[2] {
		t.Fatalf("expected players 1 and 2 benched, got %v", benched)
	}
}
