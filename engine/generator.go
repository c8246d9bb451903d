package engine

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/opencourt/rotation-system/models"
)

// GenerateRoundParams carries the session snapshot a round is generated
// from. Players is the directory subset covering the session roster.
type GenerateRoundParams struct {
	Session     *models.Session
	Players     []*models.Player
	Stats       map[int]*models.PlayerStats
	RoundNumber int
}

type RoundGenerator interface {
	GenerateRound(ctx context.Context, params GenerateRoundParams) (*models.RoundAssignment, error)

	GetName() string
}

// doublesGenerator partitions the eligible pool into balanced doubles
// games across the active courts, minimizing repeat partnerships and
// repeat oppositions against the session's accumulated history.
type doublesGenerator struct {
	partnerWeight  float64
	opponentWeight float64
	newRand        func() *rand.Rand
}

type GeneratorOption func(*doublesGenerator)

// WithWeights tunes the relative cost of a repeat partnership versus a
// repeat opposition. Both default to 1.
func WithWeights(partner, opponent float64) GeneratorOption {
	return func(g *doublesGenerator) {
		g.partnerWeight = partner
		g.opponentWeight = opponent
	}
}

// WithRandSource replaces the per-invocation randomness. Tests use this
// to make generation deterministic; production keeps the time-seeded
// default so repeated reshuffles yield different layouts.
func WithRandSource(newRand func() *rand.Rand) GeneratorOption {
	return func(g *doublesGenerator) {
		g.newRand = newRand
	}
}

func NewDoublesGenerator(opts ...GeneratorOption) RoundGenerator {
	g := &doublesGenerator{
		partnerWeight:  1,
		opponentWeight: 1,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *doublesGenerator) GetName() string {
	return "DoublesRotation"
}

func (g *doublesGenerator) GenerateRound(ctx context.Context, params GenerateRoundParams) (*models.RoundAssignment, error) {
	eligible, err := EligiblePlayers(params.Session, params.Players)
	if err != nil {
		return nil, err
	}

	active := params.Session.ActiveCourts()
	if len(active) == 0 {
		return nil, ErrNoActiveCourts
	}

	units, forcedOut := resolveForcedPairs(eligible, params.Session.Partnerships)

	poolSize := 0
	for _, u := range units {
		poolSize += u.size()
	}
	// Forced sit-outs can shrink an otherwise sufficient pool below a game.
	if poolSize < playersPerGame {
		return nil, ErrGenerationEmpty
	}

	rng := g.newRand()

	maxGames := poolSize / playersPerGame
	if len(active) < maxGames {
		maxGames = len(active)
	}
	sitCount := poolSize - playersPerGame*maxGames

	benched, playing := selectSittingOut(units, sitCount, params.Stats, rng)

	// Pair members stay adjacent through the shuffle because units move whole.
	rng.Shuffle(len(playing), func(i, j int) { playing[i], playing[j] = playing[j], playing[i] })

	var games []models.GameAssignment
	remaining := playing
	for _, court := range active {
		split, rest, ok := g.pickGameForCourt(court, remaining, params.Stats, rng)
		if !ok {
			// Court skipped; its would-be players stay available for
			// later courts or the sit-out set.
			continue
		}
		games = append(games, models.GameAssignment{
			CourtID:     court.ID,
			ServeTeam:   split.serve,
			ReceiveTeam: split.receive,
		})
		remaining = rest
	}

	if len(games) == 0 {
		return nil, ErrGenerationEmpty
	}

	sittingOut := make([]int, 0, len(forcedOut)+len(benched))
	for _, p := range forcedOut {
		sittingOut = append(sittingOut, p.ID)
	}
	for _, p := range benched {
		sittingOut = append(sittingOut, p.ID)
	}
	for _, u := range remaining {
		for _, p := range u.players {
			sittingOut = append(sittingOut, p.ID)
		}
	}

	return &models.RoundAssignment{
		RoundNumber:   params.RoundNumber,
		Games:         games,
		SittingOutIDs: sittingOut,
	}, nil
}

type teamSplit struct {
	serve   models.Team
	receive models.Team
}

type candidateGame struct {
	combo []int
	split teamSplit
}

// pickGameForCourt selects the four players for one court from the
// remaining units: qualifying units are enumerated in every combination
// totaling four players, each combination is priced via its best team
// split, and one of the cheapest is chosen at random. Returns false when
// the court cannot field a game, leaving the pool untouched.
func (g *doublesGenerator) pickGameForCourt(court models.Court, units []unit, stats map[int]*models.PlayerStats, rng *rand.Rand) (teamSplit, []unit, bool) {
	var qual []int
	qualPlayers := 0
	for i, u := range units {
		if CourtUsableFor(court, u.players) {
			qual = append(qual, i)
			qualPlayers += u.size()
		}
	}
	if qualPlayers < playersPerGame {
		return teamSplit{}, units, false
	}

	var best []candidateGame
	bestCost := math.MaxFloat64
	for _, combo := range unitCombos(units, qual) {
		split, cost, ok := g.bestSplit(combo, units, stats, rng)
		if !ok {
			continue
		}
		switch {
		case cost < bestCost:
			bestCost = cost
			best = append(best[:0], candidateGame{combo: combo, split: split})
		case cost == bestCost:
			best = append(best, candidateGame{combo: combo, split: split})
		}
	}
	if len(best) == 0 {
		return teamSplit{}, units, false
	}
	pick := best[rng.Intn(len(best))]

	used := make(map[int]bool, len(pick.combo))
	for _, idx := range pick.combo {
		used[idx] = true
	}
	rest := make([]unit, 0, len(units)-len(pick.combo))
	for i, u := range units {
		if !used[i] {
			rest = append(rest, u)
		}
	}
	return pick.split, rest, true
}

// unitCombos enumerates every subset of the qualifying units whose
// members total exactly four players.
func unitCombos(units []unit, qual []int) [][]int {
	var combos [][]int
	var cur []int
	var walk func(start, size int)
	walk = func(start, size int) {
		if size == playersPerGame {
			combos = append(combos, append([]int(nil), cur...))
			return
		}
		for i := start; i < len(qual); i++ {
			next := size + units[qual[i]].size()
			if next > playersPerGame {
				continue
			}
			cur = append(cur, qual[i])
			walk(i+1, next)
			cur = cur[:len(cur)-1]
		}
	}
	walk(0, 0)
	return combos
}

// bestSplit forms the two teams for a candidate four-player group and
// prices it: repeat partnerships within either team plus repeat
// oppositions across them. A forced pair is always kept as one team;
// four singles try all three splits. Serve side is a coin flip.
func (g *doublesGenerator) bestSplit(combo []int, units []unit, stats map[int]*models.PlayerStats, rng *rand.Rand) (teamSplit, float64, bool) {
	var pairs []models.Team
	var singles []int
	for _, idx := range combo {
		u := units[idx]
		if u.pair {
			pairs = append(pairs, models.Team{Player1ID: u.players[0].ID, Player2ID: u.players[1].ID})
		} else {
			for _, p := range u.players {
				singles = append(singles, p.ID)
			}
		}
	}

	var candidates [][2]models.Team
	switch len(pairs) {
	case 2:
		candidates = [][2]models.Team{{pairs[0], pairs[1]}}
	case 1:
		candidates = [][2]models.Team{
			{pairs[0], {Player1ID: singles[0], Player2ID: singles[1]}},
		}
	case 0:
		a, b, c, d := singles[0], singles[1], singles[2], singles[3]
		candidates = [][2]models.Team{
			{{Player1ID: a, Player2ID: b}, {Player1ID: c, Player2ID: d}},
			{{Player1ID: a, Player2ID: c}, {Player1ID: b, Player2ID: d}},
			{{Player1ID: a, Player2ID: d}, {Player1ID: b, Player2ID: c}},
		}
	default:
		return teamSplit{}, 0, false
	}

	var best [][2]models.Team
	bestCost := math.MaxFloat64
	for _, cand := range candidates {
		cost := g.partnerWeight*float64(partnerCount(stats, cand[0])+partnerCount(stats, cand[1])) +
			g.opponentWeight*float64(oppositionCount(stats, cand[0], cand[1]))
		switch {
		case cost < bestCost:
			bestCost = cost
			best = append(best[:0], cand)
		case cost == bestCost:
			best = append(best, cand)
		}
	}

	pick := best[rng.Intn(len(best))]
	if rng.Intn(2) == 1 {
		pick[0], pick[1] = pick[1], pick[0]
	}
	return teamSplit{serve: pick[0], receive: pick[1]}, bestCost, true
}

func partnerCount(stats map[int]*models.PlayerStats, t models.Team) int {
	if s, ok := stats[t.Player1ID]; ok && s != nil {
		return s.Partners[t.Player2ID]
	}
	return 0
}

func oppositionCount(stats map[int]*models.PlayerStats, t1, t2 models.Team) int {
	total := 0
	for _, a := range t1.PlayerIDs() {
		s, ok := stats[a]
		if !ok || s == nil {
			continue
		}
		for _, b := range t2.PlayerIDs() {
			total += s.Opponents[b]
		}
	}
	return total
}
