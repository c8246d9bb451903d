package engine

import "errors"

var (
	ErrNotEnoughPlayers = errors.New("at least 4 eligible players are required to generate a round")
	ErrNoActiveCourts   = errors.New("no active courts available")
	ErrGenerationEmpty  = errors.New("round generation produced no games")
)
