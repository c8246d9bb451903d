package engine

import "github.com/opencourt/rotation-system/models"

// UpdateStatsForRound folds one round's outcome into per-player stats.
// It is pure: prior entries are cloned, never mutated, and players not
// yet tracked get fresh counters. Playing players gain a game, a
// consecutive-games tick, and partner/opponent tallies; when a score is
// present they also accumulate points for and against. Sitting-out
// players gain a sat-out game and have their streak reset.
//
// The aggregator itself is not re-entrancy safe per round: applying the
// same round twice double-counts. Callers guard via round status, which
// only ever passes through Completed once.
func UpdateStatsForRound(round models.Round, results models.Results, prior map[int]*models.PlayerStats) map[int]*models.PlayerStats {
	next := make(map[int]*models.PlayerStats, len(prior))
	for id, s := range prior {
		next[id] = s.Clone()
	}
	track := func(id int) *models.PlayerStats {
		if s, ok := next[id]; ok && s != nil {
			return s
		}
		s := models.NewPlayerStats(id)
		next[id] = s
		return s
	}

	for _, g := range round.Games {
		score := results[g.UID]
		if score == nil {
			score = g.Score
		}
		teams := [2]models.Team{g.ServeTeam, g.ReceiveTeam}
		for ti, team := range teams {
			opponents := teams[1-ti]
			for _, id := range team.PlayerIDs() {
				s := track(id)
				s.GamesPlayed++
				s.ConsecutiveGames++
				s.Partners[team.Partner(id)]++
				for _, oid := range opponents.PlayerIDs() {
					s.Opponents[oid]++
				}
				if score != nil {
					if ti == 0 {
						s.TotalScore += score.ServeScore
						s.TotalScoreAgainst += score.ReceiveScore
					} else {
						s.TotalScore += score.ReceiveScore
						s.TotalScoreAgainst += score.ServeScore
					}
				}
			}
		}
	}

	for _, id := range round.SittingOutIDs {
		s := track(id)
		s.GamesSatOut++
		s.ConsecutiveGames = 0
	}

	return next
}
