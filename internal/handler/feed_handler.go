package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/themestore/demoaccess/internal/ws"
	"github.com/themestore/demoaccess/pkg/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // In production, validate origin
	},
}

// FeedHandler upgrades dashboard sessions onto the live event feed
type FeedHandler struct {
	hub        *ws.Hub
	jwtManager *auth.JWTManager
}

func NewFeedHandler(hub *ws.Hub, jwtManager *auth.JWTManager) *FeedHandler {
	return &FeedHandler{
		hub:        hub,
		jwtManager: jwtManager,
	}
}

// HandleFeed upgrades HTTP to WebSocket and attaches the dashboard to the
// feed. Connect with: ws://host/api/admin/feed?token=<jwt_token>
func (h *FeedHandler) HandleFeed(c *gin.Context) {
	// Authenticate via query parameter (WebSocket can't use Authorization header)
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	claims, err := h.jwtManager.ValidateToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, claims.UserID, claims.Username)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
