package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func sampleSession() *Session {
	started := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	minRating := 3.5
	return &Session{
		ID:              7,
		Name:            "Thursday open play",
		PlayerIDs:       []int{1, 2, 3, 4, 5},
		PausedPlayerIDs: []int{5},
		Courts: []Court{
			{ID: 1, Name: "Center", IsActive: true},
			{ID: 2, Name: "Back", IsActive: true, MinimumRating: &minRating},
		},
		Partnerships: &PartnershipConstraint{
			Partnerships: []Partnership{{Player1ID: 1, Player2ID: 2}},
		},
		ScoringEnabled: true,
		Status:         SessionStatusLive,
		LiveData: &LiveData{
			Rounds: []Round{{
				Number: 1,
				Status: RoundStatusStarted,
				Games: []Game{{
					UID:         "R1G1",
					CourtID:     1,
					ServeTeam:   Team{Player1ID: 1, Player2ID: 2},
					ReceiveTeam: Team{Player1ID: 3, Player2ID: 4},
					StartedAt:   &started,
				}},
				SittingOutIDs: []int{5},
			}},
			PlayerStats: map[int]*PlayerStats{
				1: {PlayerID: 1, GamesPlayed: 1, ConsecutiveGames: 1, TotalScore: 11, TotalScoreAgainst: 7, Partners: map[int]int{2: 1}, Opponents: map[int]int{3: 1, 4: 1}},
				5: {PlayerID: 5, GamesSatOut: 1, Partners: map[int]int{}, Opponents: map[int]int{}},
			},
		},
	}
}

// Sessions survive a JSON round trip unchanged; this is the property the
// database layer relies on to persist live state as JSONB.
func TestSessionJSONRoundTrip(t *testing.T) {
	original := sampleSession()

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var restored Session
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(original, &restored) {
		t.Fatalf("round trip changed the session:\noriginal: %+v\nrestored: %+v", original, &restored)
	}
}

func TestCurrentRound(t *testing.T) {
	s := sampleSession()
	if r := s.CurrentRound(); r == nil || r.Number != 1 {
		t.Fatalf("unexpected current round %+v", r)
	}

	s.LiveData.Rounds = append(s.LiveData.Rounds, Round{Number: 2, Status: RoundStatusPending})
	if r := s.CurrentRound(); r.Number != 2 {
		t.Fatalf("current round %d, want the latest", r.Number)
	}

	var empty Session
	if empty.CurrentRound() != nil {
		t.Fatal("expected nil current round for an empty session")
	}
}

func TestActiveCourts(t *testing.T) {
	s := sampleSession()
	s.Courts[1].IsActive = false
	active := s.ActiveCourts()
	if len(active) != 1 || active[0].ID != 1 {
		t.Fatalf("unexpected active courts %+v", active)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := sampleSession()
	c := s.Clone()

	c.PlayerIDs[0] = 99
	c.Courts[0].IsActive = false
	c.LiveData.Rounds[0].Games[0].ServeTeam.Player1ID = 99
	c.LiveData.PlayerStats[1].GamesPlayed = 50
	c.LiveData.PlayerStats[1].Partners[2] = 50

	if s.PlayerIDs[0] == 99 {
		t.Error("roster shared between clone and original")
	}
	if !s.Courts[0].IsActive {
		t.Error("courts shared between clone and original")
	}
	if s.LiveData.Rounds[0].Games[0].ServeTeam.Player1ID == 99 {
		t.Error("rounds shared between clone and original")
	}
	if s.LiveData.PlayerStats[1].GamesPlayed == 50 {
		t.Error("stats shared between clone and original")
	}
	if s.LiveData.PlayerStats[1].Partners[2] == 50 {
		t.Error("partner map shared between clone and original")
	}
}

func TestTeamHelpers(t *testing.T) {
	team := Team{Player1ID: 3, Player2ID: 8}
	if !team.Contains(3) || !team.Contains(8) || team.Contains(5) {
		t.Fatal("Contains misbehaved")
	}
	if team.Partner(3) != 8 || team.Partner(8) != 3 {
		t.Fatal("Partner misbehaved")
	}
}
