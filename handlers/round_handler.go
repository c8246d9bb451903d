package handlers

import (
	"net/http"

	"github.com/opencourt/rotation-system/models"
	"github.com/opencourt/rotation-system/services"
)

type RoundHandler struct {
	roundService   services.RoundService
	sessionService services.SessionService
}

func NewRoundHandler(rs services.RoundService, ss services.SessionService) *RoundHandler {
	return &RoundHandler{roundService: rs, sessionService: ss}
}

// GenerateRound godoc
// @Summary Generate the next round, or reshuffle the pending one
// @Tags rounds
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /sessions/{sessionID}/rounds [post]
func (h *RoundHandler) GenerateRound(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.roundService.GenerateRound(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeRound(w, r, session)
}

func (h *RoundHandler) StartRound(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.roundService.StartRound(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeRound(w, r, session)
}

// CompleteRound godoc
// @Summary Complete the current round with optional game scores
// @Tags rounds
// @Accept json
// @Produce json
// @Param sessionID path int true "Session ID"
// @Param input body map[string]models.Score false "Scores keyed by game UID"
// @Success 200 {object} map[string]interface{}
// @Router /sessions/{sessionID}/rounds/complete [post]
func (h *RoundHandler) CompleteRound(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Results models.Results `json:"results"`
	}
	// Completing without scores is legal; the body may be omitted entirely.
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	session, err := h.roundService.CompleteRound(r.Context(), sessionID, input.Results)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) SwapPlayers(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerID1 int `json:"player_id_1"`
		PlayerID2 int `json:"player_id_2"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.roundService.SwapPlayers(r.Context(), sessionID, input.PlayerID1, input.PlayerID2)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeRound(w, r, session)
}

func (h *RoundHandler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.GetSession(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeRound(w, r, session)
}

func writeRound(w http.ResponseWriter, r *http.Request, session *models.Session) {
	round := session.CurrentRound()
	if round == nil {
		mapServiceErrorToHTTP(w, r, services.ErrNoCurrentRound)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
