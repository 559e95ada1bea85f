package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(h.AllowedOrigins) == 0 {
				return true
			}
			for _, allowed := range h.AllowedOrigins {
				if allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

//
// 🔌 GET /api/ws
//
// Notifications relaie en temps réel les événements panier et commandes de l'utilisateur.
func (h *Handler) Notifications(c *gin.Context) {
	if h.Stream == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Real-time notifications are unavailable"})
		return
	}
	userID := currentUser(c)

	up := h.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("❌ Erreur upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := h.Stream.Subscribe(ctx, userID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	// Lecture en tâche de fond : détecte la fermeture côté client.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"type": "connected", "message": "Notifications activées"}); err != nil {
		return
	}
	h.Logger.Debug("🔌 WebSocket connecté", zap.Uint("user_id", userID))

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.Logger.Debug("❌ Erreur envoi WebSocket", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
