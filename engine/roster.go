package engine

import (
	"github.com/opencourt/rotation-system/models"
)

const playersPerGame = 4

// EligiblePlayers resolves the player pool for a round: session roster
// members that exist in the directory and are not paused, in roster
// order. Fewer than four eligible players is a generation failure.
func EligiblePlayers(session *models.Session, directory []*models.Player) ([]*models.Player, error) {
	byID := make(map[int]*models.Player, len(directory))
	for _, p := range directory {
		byID[p.ID] = p
	}

	var eligible []*models.Player
	for _, id := range session.PlayerIDs {
		p, ok := byID[id]
		if !ok || session.IsPaused(id) {
			continue
		}
		eligible = append(eligible, p)
	}

	if len(eligible) < playersPerGame {
		return nil, ErrNotEnoughPlayers
	}
	return eligible, nil
}

// unit is an atomic block of the playing pool: a single player, or a
// fixed partnership that plays and sits out together.
type unit struct {
	players []*models.Player
	pair    bool
}

func (u unit) size() int { return len(u.players) }

// resolveForcedPairs folds fixed partnerships into the pool as atomic
// units. A partnership whose members are both eligible becomes a pair
// unit. If exactly one member is eligible, that member is forced to sit
// out so the pair is never split. Players referenced by more than one
// partnership keep only the first declaration.
func resolveForcedPairs(eligible []*models.Player, constraint *models.PartnershipConstraint) (units []unit, forcedOut []*models.Player) {
	byID := make(map[int]*models.Player, len(eligible))
	for _, p := range eligible {
		byID[p.ID] = p
	}

	claimed := make(map[int]bool)
	if constraint != nil {
		for _, pt := range constraint.Partnerships {
			if pt.Player1ID == pt.Player2ID || claimed[pt.Player1ID] || claimed[pt.Player2ID] {
				continue
			}
			p1, ok1 := byID[pt.Player1ID]
			p2, ok2 := byID[pt.Player2ID]
			switch {
			case ok1 && ok2:
				units = append(units, unit{players: []*models.Player{p1, p2}, pair: true})
				claimed[pt.Player1ID] = true
				claimed[pt.Player2ID] = true
			case ok1:
				forcedOut = append(forcedOut, p1)
				claimed[pt.Player1ID] = true
			case ok2:
				forcedOut = append(forcedOut, p2)
				claimed[pt.Player2ID] = true
			}
		}
	}

	for _, p := range eligible {
		if !claimed[p.ID] {
			units = append(units, unit{players: []*models.Player{p}})
		}
	}
	return units, forcedOut
}
