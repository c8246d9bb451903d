package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	// Not found
	ErrNotFound        = errors.New("requested resource not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrCourtNotFound   = errors.New("court not found")
	ErrGameNotFound    = errors.New("game not found")

	// Validation and business rules
	ErrValidationFailed          = errors.New("validation failed")
	ErrSessionNameRequired       = errors.New("session name is required")
	ErrPlayerNameRequired        = errors.New("player name is required")
	ErrCourtNameRequired         = errors.New("court name is required")
	ErrNotEnoughPlayers          = errors.New("at least 4 eligible players are required")
	ErrNotEnoughPlayersForCourts = errors.New("not enough players to fill all active courts")
	ErrNoActiveCourts            = errors.New("session has no active courts")
	ErrPlayerAlreadyInSession    = errors.New("player is already in the session roster")
	ErrPlayerNotInSession        = errors.New("player is not in the session roster")
	ErrPartnershipInvalid        = errors.New("partnership must reference two distinct roster players")

	// Generation
	ErrGenerationEmpty = errors.New("round generation produced no games")

	// Lifecycle legality
	ErrSessionInvalidStatusTransition = errors.New("invalid session status transition")
	ErrSessionNotLive                 = errors.New("session is not live")
	ErrSessionNotEditable             = errors.New("session can no longer be modified")
	ErrNoCurrentRound                 = errors.New("session has no current round")
	ErrRoundNotPending                = errors.New("current round is not pending")
	ErrRoundNotStarted                = errors.New("current round has not been started")
	ErrRoundAlreadyCompleted          = errors.New("round has already been completed")
	ErrRoundInProgress                = errors.New("operation not allowed while a round is in progress")
	ErrPlayerNotInRound               = errors.New("player is not part of the current round")
	ErrSwapInvalid                    = errors.New("swap would not produce a valid round")

	// Export
	ErrExportNotConfigured = errors.New("snapshot export storage is not configured")
)
