package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/opencourt/rotation-system/live"
	"github.com/opencourt/rotation-system/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is deployed.
		return true
	},
}

type WebSocketHandler struct {
	hub            *live.Hub
	sessionService services.SessionService
}

func NewWebSocketHandler(hub *live.Hub, ss services.SessionService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		sessionService: ss,
	}
}

// ServeWs subscribes a client to a session's event stream. Clients
// connect to /ws/sessions/{sessionID}; the socket is push-only.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.sessionService.GetSession(r.Context(), sessionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", slog.Int("session_id", sessionID), slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.SessionRoom(sessionID),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
