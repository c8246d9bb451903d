package engine

import (
	"math/rand"
	"sort"

	"github.com/opencourt/rotation-system/models"
)

// selectSittingOut benches whole units totaling up to sitCount players.
// Units with the longest unbroken playing streak are benched first, then
// those with the most lifetime games; equals are ordered randomly. A
// unit larger than the remaining capacity is skipped rather than split;
// any resulting shortfall is resolved by the assigner, which benches the
// surplus players it cannot place.
func selectSittingOut(units []unit, sitCount int, stats map[int]*models.PlayerStats, rng *rand.Rand) (benched []*models.Player, playing []unit) {
	if sitCount <= 0 {
		return nil, units
	}

	order := make([]int, len(units))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	sort.SliceStable(order, func(i, j int) bool {
		ca, ga := benchPriority(units[order[i]], stats)
		cb, gb := benchPriority(units[order[j]], stats)
		if ca != cb {
			return ca > cb
		}
		return ga > gb
	})

	capacity := sitCount
	benchedUnits := make(map[int]bool, len(units))
	for _, idx := range order {
		if capacity == 0 {
			break
		}
		if units[idx].size() > capacity {
			continue
		}
		benchedUnits[idx] = true
		capacity -= units[idx].size()
		benched = append(benched, units[idx].players...)
	}

	for i, u := range units {
		if !benchedUnits[i] {
			playing = append(playing, u)
		}
	}
	return benched, playing
}

// benchPriority returns a unit's bench keys: the longest consecutive
// streak among its members, then the highest games-played count. Pairs
// inherit the worse of their two members so neither half overstays.
func benchPriority(u unit, stats map[int]*models.PlayerStats) (consecutive, played int) {
	for _, p := range u.players {
		s, ok := stats[p.ID]
		if !ok || s == nil {
			continue
		}
		if s.ConsecutiveGames > consecutive {
			consecutive = s.ConsecutiveGames
		}
		if s.GamesPlayed > played {
			played = s.GamesPlayed
		}
	}
	return consecutive, played
}
