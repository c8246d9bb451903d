package models

// PlayerStats holds cumulative per-player participation and outcome
// counters for one session. All counters except ConsecutiveGames are
// monotonically non-decreasing across completed rounds.
type PlayerStats struct {
	PlayerID          int         `json:"player_id"`
	GamesPlayed       int         `json:"games_played"`
	GamesSatOut       int         `json:"games_sat_out"`
	ConsecutiveGames  int         `json:"consecutive_games"`
	TotalScore        int         `json:"total_score"`
	TotalScoreAgainst int         `json:"total_score_against"`
	Partners          map[int]int `json:"partners"`
	Opponents         map[int]int `json:"opponents"`
	AverageRating     *float64    `json:"average_rating,omitempty"`
}

func NewPlayerStats(playerID int) *PlayerStats {
	return &PlayerStats{
		PlayerID:  playerID,
		Partners:  make(map[int]int),
		Opponents: make(map[int]int),
	}
}

func (s *PlayerStats) Clone() *PlayerStats {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Partners = make(map[int]int, len(s.Partners))
	for id, n := range s.Partners {
		clone.Partners[id] = n
	}
	clone.Opponents = make(map[int]int, len(s.Opponents))
	for id, n := range s.Opponents {
		clone.Opponents[id] = n
	}
	if s.AverageRating != nil {
		r := *s.AverageRating
		clone.AverageRating = &r
	}
	return &clone
}

// PointDifferential is total points scored minus points conceded.
func (s *PlayerStats) PointDifferential() int {
	return s.TotalScore - s.TotalScoreAgainst
}
