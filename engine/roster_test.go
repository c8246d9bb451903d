package engine

import (
	"errors"
	"testing"

	"github.com/opencourt/rotation-system/models"
)

func TestEligiblePlayersRosterOrder(t *testing.T) {
	players := testPlayers(6)
	session := testSession(players, activeCourt(1))
	session.PlayerIDs = []int{3, 1, 5, 2, 4, 6}
	session.PausedPlayerIDs = []int{5}

	eligible, err := EligiblePlayers(session, players)
	if err != nil {
		t.Fatalf("EligiblePlayers: %v", err)
	}
	want := []int{3, 1, 2, 4, 6}
	if len(eligible) != len(want) {
		t.Fatalf("expected %d eligible players, got %d", len(want), len(eligible))
	}
	for i, id := range want {
		if eligible[i].ID != id {
			t.Errorf("position %d: got player %d, want %d", i, eligible[i].ID, id)
		}
	}
}

func TestEligiblePlayersSkipsMissingDirectoryEntries(t *testing.T) {
	players := testPlayers(5)
	session := testSession(players, activeCourt(1))
	session.PlayerIDs = append(session.PlayerIDs, 99) // no directory entry

	eligible, err := EligiblePlayers(session, players)
	if err != nil {
		t.Fatalf("EligiblePlayers: %v", err)
	}
	for _, p := range eligible {
		if p.ID == 99 {
			t.Fatal("player without a directory entry treated as eligible")
		}
	}
}

func TestEligiblePlayersTooFew(t *testing.T) {
	players := testPlayers(4)
	session := testSession(players, activeCourt(1))
	session.PausedPlayerIDs = []int{4}

	_, err := EligiblePlayers(session, players)
	if !errors.Is(err, ErrNotEnoughPlayers) {
		t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
	}
}

func TestResolveForcedPairsBothEligible(t *testing.T) {
	players := testPlayers(6)
	constraint := &models.PartnershipConstraint{
		Partnerships: []models.Partnership{{Player1ID: 2, Player2ID: 5}},
	}

	units, forcedOut := resolveForcedPairs(players, constraint)
	if len(forcedOut) != 0 {
		t.Fatalf("expected nobody forced out, got %d", len(forcedOut))
	}

	pairCount := 0
	total := 0
	for _, u := range units {
		total += u.size()
		if u.pair {
			pairCount++
			if u.players[0].ID != 2 || u.players[1].ID != 5 {
				t.Errorf("unexpected pair members %d,%d", u.players[0].ID, u.players[1].ID)
			}
		}
	}
	if pairCount != 1 {
		t.Fatalf("expected exactly one pair unit, got %d", pairCount)
	}
	if total != 6 {
		t.Fatalf("units cover %d players, want 6", total)
	}
}

func TestResolveForcedPairsHalfMissing(t *testing.T) {
	players := testPlayers(5)
	constraint := &models.PartnershipConstraint{
		Partnerships: []models.Partnership{{Player1ID: 1, Player2ID: 99}},
	}

	units, forcedOut := resolveForcedPairs(players, constraint)
	if len(forcedOut) != 1 || forcedOut[0].ID != 1 {
		t.Fatalf("expected player 1 forced out, got %v", forcedOut)
	}
	for _, u := range units {
		for _, p := range u.players {
			if p.ID == 1 {
				t.Fatal("forced-out player still present in the playing pool")
			}
		}
	}
}

func TestResolveForcedPairsFirstDeclarationWins(t *testing.T) {
	players := testPlayers(6)
	constraint := &models.PartnershipConstraint{
		Partnerships: []models.Partnership{
			{Player1ID: 1, Player2ID: 2},
			{Player1ID: 2, Player2ID: 3}, // 2 already claimed
		},
	}

	units, forcedOut := resolveForcedPairs(players, constraint)
	if len(forcedOut) != 0 {
		t.Fatalf("expected nobody forced out, got %v", forcedOut)
	}
	for _, u := range units {
		if u.pair && (u.players[0].ID == 2 && u.players[1].ID == 3) {
			t.Fatal("second declaration for player 2 should have been ignored")
		}
		if !u.pair && len(u.players) == 1 && u.players[0].ID == 3 {
			return // 3 correctly left as a single
		}
	}
	t.Fatal("player 3 not found as a single unit")
}
