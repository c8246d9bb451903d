package engine

import (
	"testing"

	"github.com/opencourt/rotation-system/models"
)

func scoredRound() (models.Round, models.Results) {
	round := models.Round{
		Number: 1,
		Status: models.RoundStatusCompleted,
		Games: []models.Game{
			{
				UID:         "R1G1",
				CourtID:     1,
				ServeTeam:   models.Team{Player1ID: 1, Player2ID: 2},
				ReceiveTeam: models.Team{Player1ID: 3, Player2ID: 4},
			},
		},
		SittingOutIDs: []int{5},
	}
	results := models.Results{"R1G1": &models.Score{ServeScore: 11, ReceiveScore: 7}}
	return round, results
}

func TestUpdateStatsForRoundScoring(t *testing.T) {
	round, results := scoredRound()
	stats := UpdateStatsForRound(round, results, nil)

	winner := stats[1]
	if winner.GamesPlayed != 1 || winner.ConsecutiveGames != 1 {
		t.Fatalf("unexpected play counters: %+v", winner)
	}
	if winner.TotalScore != 11 || winner.TotalScoreAgainst != 7 {
		t.Fatalf("serve side scored %d/%d, want 11/7", winner.TotalScore, winner.TotalScoreAgainst)
	}
	if winner.PointDifferential() != 4 {
		t.Fatalf("point differential %d, want 4", winner.PointDifferential())
	}

	loser := stats[3]
	if loser.TotalScore != 7 || loser.TotalScoreAgainst != 11 {
		t.Fatalf("receive side scored %d/%d, want 7/11", loser.TotalScore, loser.TotalScoreAgainst)
	}

	if winner.Partners[2] != 1 {
		t.Errorf("player 1 partner tally for 2 = %d, want 1", winner.Partners[2])
	}
	if winner.Opponents[3] != 1 || winner.Opponents[4] != 1 {
		t.Errorf("player 1 opponent tallies = %v, want one each for 3 and 4", winner.Opponents)
	}

	bench := stats[5]
	if bench.GamesSatOut != 1 || bench.GamesPlayed != 0 {
		t.Fatalf("unexpected bench counters: %+v", bench)
	}
}

func TestUpdateStatsForRoundFallsBackToGameScore(t *testing.T) {
	round, _ := scoredRound()
	round.Games[0].Score = &models.Score{ServeScore: 9, ReceiveScore: 11}

	stats := UpdateStatsForRound(round, nil, nil)
	if stats[1].TotalScore != 9 || stats[1].TotalScoreAgainst != 11 {
		t.Fatalf("expected embedded game score applied, got %d/%d", stats[1].TotalScore, stats[1].TotalScoreAgainst)
	}
}

func TestUpdateStatsForRoundWithoutScores(t *testing.T) {
	round, _ := scoredRound()
	stats := UpdateStatsForRound(round, nil, nil)

	if stats[1].GamesPlayed != 1 {
		t.Fatalf("games played %d, want 1", stats[1].GamesPlayed)
	}
	if stats[1].TotalScore != 0 || stats[1].TotalScoreAgainst != 0 {
		t.Fatal("scoreless round should not accumulate points")
	}
}

func TestUpdateStatsForRoundResetsStreakOnBench(t *testing.T) {
	round, results := scoredRound()
	prior := map[int]*models.PlayerStats{
		5: {PlayerID: 5, GamesPlayed: 3, ConsecutiveGames: 3, Partners: map[int]int{}, Opponents: map[int]int{}},
	}

	stats := UpdateStatsForRound(round, results, prior)
	if stats[5].ConsecutiveGames != 0 {
		t.Fatalf("bench should reset the streak, got %d", stats[5].ConsecutiveGames)
	}
	if stats[5].GamesSatOut != 1 {
		t.Fatalf("games sat out %d, want 1", stats[5].GamesSatOut)
	}
}

func TestUpdateStatsForRoundDoesNotMutatePrior(t *testing.T) {
	round, results := scoredRound()
	prior := map[int]*models.PlayerStats{
		1: {PlayerID: 1, GamesPlayed: 2, ConsecutiveGames: 2, Partners: map[int]int{4: 1}, Opponents: map[int]int{}},
	}

	stats := UpdateStatsForRound(round, results, prior)

	if prior[1].GamesPlayed != 2 || prior[1].ConsecutiveGames != 2 {
		t.Fatal("prior stats mutated in place")
	}
	if len(prior[1].Partners) != 1 || prior[1].Partners[4] != 1 {
		t.Fatal("prior partner map mutated in place")
	}
	if stats[1].GamesPlayed != 3 || stats[1].ConsecutiveGames != 3 {
		t.Fatalf("accumulation wrong: %+v", stats[1])
	}
	if stats[1].Partners[2] != 1 || stats[1].Partners[4] != 1 {
		t.Fatalf("partner tallies wrong: %v", stats[1].Partners)
	}
}
