package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/villagefriends/network_backend/repository"
	"github.com/villagefriends/network_backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Handler upgrades authenticated connections and registers them with
// the hub.
type Handler struct {
	hub      *Hub
	profiles *repository.ProfileRepository
}

// NewHandler constructs the websocket connection handler.
func NewHandler(hub *Hub, profiles *repository.ProfileRepository) *Handler {
	return &Handler{hub: hub, profiles: profiles}
}

// HandleConnection handles websocket connections. Browsers cannot set an
// Authorization header on a websocket dial, so the JWT arrives as a
// query parameter instead.
func (h *Handler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}

	userID, err := utils.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	profile, err := h.profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil || profile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Family profile required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}

	client := &Client{
		hub:      h.hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   userID,
		familyID: profile.FamilyID,
	}

	client.hub.register <- client

	go client.readPump()
	go client.writePump()
}
