package handlers

import (
	"net/http"

	"medibook/services/notification"

	"github.com/gin-gonic/gin"
	gorillawebsocket "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// RealtimeHandler upgrades HTTP connections to the event channel.
type RealtimeHandler struct {
	Hub    *notification.Hub
	Logger *zap.Logger
}

// NewRealtimeHandler creates a new RealtimeHandler bound to the given hub.
func NewRealtimeHandler(hub *notification.Hub, logger *zap.Logger) *RealtimeHandler {
	return &RealtimeHandler{Hub: hub, Logger: logger}
}

// HandleConnect handles GET /ws. The connection starts unauthenticated; the
// first client frame must carry a valid token or the hub drops it.
func (h *RealtimeHandler) HandleConnect(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := h.Hub.NewClient(ws)
	go h.Hub.WritePump(client, gorillawebsocket.TextMessage)
	go h.Hub.ReadPump(client)
}
