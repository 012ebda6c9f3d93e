package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	apperrors "billetera/internal/errors"
	"billetera/internal/logger"
	"billetera/internal/middleware"
	"billetera/internal/realtime"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is token-authenticated; origin checks add nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler streams data-change events to connected clients over a
// websocket.
type EventsHandler struct {
	hub *realtime.Hub
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream upgrades the connection and forwards the user's change events
// @Summary     Subscribe to change events
// @Description Upgrade to a websocket and receive JSON change events for the authenticated user's data
// @Tags        events
// @Param       token query string true "JWT access token"
// @Success     101 {string} string "Switching protocols"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	// Browsers cannot set headers on websocket requests, so the token comes
	// in the query string.
	claims, err := middleware.ValidateAccessToken(c.Query("token"))
	if err != nil {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Get().Warnw("websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	events, unsubscribe := h.hub.Subscribe(claims.UserID)
	defer unsubscribe()

	// Reader goroutine: clients never send application data, but reading is
	// required to process control frames and detect closes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
