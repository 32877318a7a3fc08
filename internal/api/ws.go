package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/showdeck/showdeck/internal/hub"
	"github.com/showdeck/showdeck/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Operator UIs connect from arbitrary local origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades display connections and attaches them to the hub.
// There is no initial push: clients pull the state snapshot once right after
// connecting, which closes the register-after-last-push race.
type WSHandler struct {
	hub *hub.Hub
}

// NewWSHandler creates a new websocket handler instance
func NewWSHandler(broadcastHub *hub.Hub) *WSHandler {
	return &WSHandler{hub: broadcastHub}
}

// Connect handles GET /api/ws
func (h *WSHandler) Connect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	clientID := uuid.New().String()
	h.hub.Register(clientID, conn)

	logger.Log.Info().
		Str("client_id", clientID).
		Int("clients", h.hub.ClientCount()).
		Msg("Display client connected")

	// Inbound frames are ignored; the read loop only detects disconnects.
	go func() {
		defer h.hub.Unregister(clientID)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Log.Debug().
					Str("client_id", clientID).
					Msg("Display client disconnected")
				return
			}
		}
	}()
}

// SetupWSRoutes registers the websocket route
func SetupWSRoutes(apiGroup *gin.RouterGroup, broadcastHub *hub.Hub) {
	handler := NewWSHandler(broadcastHub)
	apiGroup.GET("/ws", handler.Connect)
}
