package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/opencourt/rotation-system/models"
	"github.com/opencourt/rotation-system/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	roundService   services.RoundService
}

func NewSessionHandler(ss services.SessionService, rs services.RoundService) *SessionHandler {
	return &SessionHandler{
		sessionService: ss,
		roundService:   rs,
	}
}

// CreateSession godoc
// @Summary Create a play session
// @Tags sessions
// @Accept json
// @Produce json
// @Param input body services.CreateSessionInput true "Session attributes"
// @Success 201 {object} map[string]interface{}
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var input services.CreateSessionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.CreateSession(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
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

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	var status *models.SessionStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := models.SessionStatus(raw)
		switch st {
		case models.SessionStatusNew, models.SessionStatusLive, models.SessionStatusCompleted, models.SessionStatusArchived:
			status = &st
		default:
			errorResponse(w, r, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	sessions, err := h.sessionService.ListSessions(r.Context(), status, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sessions": sessions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.sessionService.DeleteSession(r.Context(), sessionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// StartLiveSession godoc
// @Summary Start a session and open round generation
// @Tags sessions
// @Produce json
// @Param sessionID path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /sessions/{sessionID}/start [post]
func (h *SessionHandler) StartLiveSession(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.sessionService.StartLiveSession)
}

func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.sessionService.EndSession)
}

func (h *SessionHandler) ArchiveSession(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.sessionService.ArchiveSession)
}

func (h *SessionHandler) RestoreSession(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.sessionService.RestoreSession)
}

func (h *SessionHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	h.rosterChange(w, r, h.sessionService.AddPlayer)
}

func (h *SessionHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	h.rosterChange(w, r, h.sessionService.RemovePlayer)
}

func (h *SessionHandler) PausePlayer(w http.ResponseWriter, r *http.Request) {
	h.rosterChange(w, r, h.sessionService.PausePlayer)
}

func (h *SessionHandler) ResumePlayer(w http.ResponseWriter, r *http.Request) {
	h.rosterChange(w, r, h.sessionService.ResumePlayer)
}

func (h *SessionHandler) SetPartnerships(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Partnerships []models.Partnership `json:"partnerships"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.SetPartnerships(r.Context(), sessionID, input.Partnerships)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	session = h.refreshPendingRound(r, session)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) AddCourt(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CourtInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.AddCourt(r.Context(), sessionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	session = h.refreshPendingRound(r, session)
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) UpdateCourt(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	courtID, err := getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CourtInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.UpdateCourt(r.Context(), sessionID, courtID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	session = h.refreshPendingRound(r, session)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) RemoveCourt(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	courtID, err := getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := h.sessionService.RemoveCourt(r.Context(), sessionID, courtID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	session = h.refreshPendingRound(r, session)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) lifecycle(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id int) (*models.Session, error)) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := op(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SessionHandler) rosterChange(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, sessionID, playerID int) (*models.Session, error)) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session, err := op(r.Context(), sessionID, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	session = h.refreshPendingRound(r, session)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// refreshPendingRound re-runs generation after a configuration change so
// a pending round never shows a stale layout. Failures keep the edit and
// surface only in the log.
func (h *SessionHandler) refreshPendingRound(r *http.Request, session *models.Session) *models.Session {
	if session.Status != models.SessionStatusLive {
		return session
	}
	refreshed, err := h.roundService.RegeneratePendingRound(r.Context(), session.ID)
	if err != nil {
		slog.Warn("pending round not regenerated after session edit",
			slog.Int("session_id", session.ID),
			slog.Any("error", err))
		return session
	}
	return refreshed
}
