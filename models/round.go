package models

import "time"

// RoundStatus tracks the lifecycle of a round within a live session.
type RoundStatus string

const (
	RoundStatusPending   RoundStatus = "pending"
	RoundStatusStarted   RoundStatus = "started"
	RoundStatusCompleted RoundStatus = "completed"
)

// Team is an unordered pair of two distinct player ids.
type Team struct {
	Player1ID int `json:"player1_id"`
	Player2ID int `json:"player2_id"`
}

func (t Team) Contains(playerID int) bool {
	return t.Player1ID == playerID || t.Player2ID == playerID
}

// Partner returns the teammate of playerID, or 0 if playerID is not on the team.
func (t Team) Partner(playerID int) int {
	switch playerID {
	case t.Player1ID:
		return t.Player2ID
	case t.Player2ID:
		return t.Player1ID
	}
	return 0
}

func (t Team) PlayerIDs() []int {
	return []int{t.Player1ID, t.Player2ID}
}

// Score holds the final score of a game from the serve team's perspective.
type Score struct {
	ServeScore   int `json:"serve_score"`
	ReceiveScore int `json:"receive_score"`
}

// Game is a single doubles matchup on one court.
type Game struct {
	UID         string     `json:"uid"`
	CourtID     int        `json:"court_id"`
	ServeTeam   Team       `json:"serve_team"`
	ReceiveTeam Team       `json:"receive_team"`
	Score       *Score     `json:"score,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (g Game) PlayerIDs() []int {
	return []int{g.ServeTeam.Player1ID, g.ServeTeam.Player2ID, g.ReceiveTeam.Player1ID, g.ReceiveTeam.Player2ID}
}

func (g Game) HasPlayer(playerID int) bool {
	return g.ServeTeam.Contains(playerID) || g.ReceiveTeam.Contains(playerID)
}

// Round is one generation of games plus the players benched for it.
type Round struct {
	Number        int         `json:"number"`
	Status        RoundStatus `json:"status"`
	Games         []Game      `json:"games"`
	SittingOutIDs []int       `json:"sitting_out_ids"`
}

// HasPlayer reports whether playerID is placed anywhere in the round,
// either in a game or in the sitting-out set.
func (r Round) HasPlayer(playerID int) bool {
	for _, g := range r.Games {
		if g.HasPlayer(playerID) {
			return true
		}
	}
	for _, id := range r.SittingOutIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

// GameAssignment is one generated matchup before it becomes a Game.
type GameAssignment struct {
	CourtID     int  `json:"court_id"`
	ServeTeam   Team `json:"serve_team"`
	ReceiveTeam Team `json:"receive_team"`
}

// RoundAssignment is the output of the round generator.
type RoundAssignment struct {
	RoundNumber   int              `json:"round_number"`
	Games         []GameAssignment `json:"games"`
	SittingOutIDs []int            `json:"sitting_out_ids"`
}

// Results maps game UID to its final score. A nil entry means the game
// finished without a recorded score.
type Results map[string]*Score
