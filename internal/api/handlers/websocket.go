package handlers

import (
	"log/slog"
	"net/http"

	"wconnect-service/internal/api/middleware"
	ws "wconnect-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS layer; the upgrade itself is token-gated.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// HandleWebSocket godoc
// @Summary WebSocket connection
// @Description Upgrade to a WebSocket session joined to the caller's room and the global room
// @Tags websocket
// @Param token query string true "JWT"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} models.ErrorResponse "Missing or invalid token"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "userID", userID, "error", err)
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Join(client)

	slog.Info("websocket connected", "userID", userID)

	go client.WritePump()
	go client.ReadPump()
}
