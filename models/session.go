package models

import "time"

// SessionStatus represents session lifecycle states, matching the ENUM in the DB.
type SessionStatus string

const (
	SessionStatusNew       SessionStatus = "new"
	SessionStatusLive      SessionStatus = "live"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusArchived  SessionStatus = "archived"
)

// Partnership is a configured fixed pair: both players are always
// teammates when playing, and both sit out when either cannot play.
type Partnership struct {
	Player1ID int `json:"player1_id"`
	Player2ID int `json:"player2_id"`
}

type PartnershipConstraint struct {
	Partnerships []Partnership `json:"partnerships"`
}

// LiveData is the running state of a live session: the round history and
// the cumulative per-player stats. It is persisted as a single JSONB
// value so the full history round-trips unchanged.
type LiveData struct {
	Rounds      []Round              `json:"rounds"`
	PlayerStats map[int]*PlayerStats `json:"player_stats"`
}

// Session is one organized play session: a roster of players, a set of
// courts, optional constraints, and (once live) the round history.
type Session struct {
	ID              int                    `json:"id" db:"id"`
	Name            string                 `json:"name" db:"name"`
	PlayerIDs       []int                  `json:"player_ids"`
	PausedPlayerIDs []int                  `json:"paused_player_ids"`
	Courts          []Court                `json:"courts"`
	Partnerships    *PartnershipConstraint `json:"partnership_constraint,omitempty"`
	ScoringEnabled  bool                   `json:"scoring_enabled"`
	ShowRatings     bool                   `json:"show_ratings"`
	Status          SessionStatus          `json:"status" db:"status"`
	LiveData        *LiveData              `json:"live_data,omitempty"`
	CreatedAt       time.Time              `json:"created_at" db:"created_at"`
}

func (s *Session) HasPlayer(playerID int) bool {
	for _, id := range s.PlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

func (s *Session) IsPaused(playerID int) bool {
	for _, id := range s.PausedPlayerIDs {
		if id == playerID {
			return true
		}
	}
	return false
}

func (s *Session) Court(courtID int) (*Court, bool) {
	for i := range s.Courts {
		if s.Courts[i].ID == courtID {
			return &s.Courts[i], true
		}
	}
	return nil, false
}

// ActiveCourts returns the active courts in declared order.
func (s *Session) ActiveCourts() []Court {
	var active []Court
	for _, c := range s.Courts {
		if c.IsActive {
			active = append(active, c)
		}
	}
	return active
}

// CurrentRound returns the most recent round, or nil before the first
// round is generated.
func (s *Session) CurrentRound() *Round {
	if s.LiveData == nil || len(s.LiveData.Rounds) == 0 {
		return nil
	}
	return &s.LiveData.Rounds[len(s.LiveData.Rounds)-1]
}

// Clone returns a deep copy. Core transforms operate on copies so a
// failed operation never leaves the caller's session half-mutated.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.PlayerIDs = append([]int(nil), s.PlayerIDs...)
	clone.PausedPlayerIDs = append([]int(nil), s.PausedPlayerIDs...)
	clone.Courts = make([]Court, len(s.Courts))
	for i, c := range s.Courts {
		clone.Courts[i] = c
		if c.MinimumRating != nil {
			r := *c.MinimumRating
			clone.Courts[i].MinimumRating = &r
		}
	}
	if s.Partnerships != nil {
		pc := PartnershipConstraint{Partnerships: append([]Partnership(nil), s.Partnerships.Partnerships...)}
		clone.Partnerships = &pc
	}
	if s.LiveData != nil {
		ld := LiveData{
			Rounds:      make([]Round, len(s.LiveData.Rounds)),
			PlayerStats: make(map[int]*PlayerStats, len(s.LiveData.PlayerStats)),
		}
		for i, r := range s.LiveData.Rounds {
			round := r
			round.Games = make([]Game, len(r.Games))
			for j, g := range r.Games {
				round.Games[j] = g
				if g.Score != nil {
					sc := *g.Score
					round.Games[j].Score = &sc
				}
				if g.StartedAt != nil {
					t := *g.StartedAt
					round.Games[j].StartedAt = &t
				}
				if g.CompletedAt != nil {
					t := *g.CompletedAt
					round.Games[j].CompletedAt = &t
				}
			}
			round.SittingOutIDs = append([]int(nil), r.SittingOutIDs...)
			ld.Rounds[i] = round
		}
		for id, ps := range s.LiveData.PlayerStats {
			ld.PlayerStats[id] = ps.Clone()
		}
		clone.LiveData = &ld
	}
	return &clone
}
