package events

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WSHandler upgrades HTTP requests to websocket connections subscribed to a
// Hub. Each connected session receives every event published after it
// connected, as JSON text frames.
type WSHandler struct {
	hub      *Hub
	lg       *zap.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a WSHandler for the given hub. Origin checking is
// left to the CORS layer in front of the API; subscription itself carries no
// authentication, matching the admin-dashboard consumers that treat the
// stream as a refresh hint.
func NewWSHandler(hub *Hub, lg *zap.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		lg:  lg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and pumps hub frames until either side
// disconnects.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.lg.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.Subscribe()
	defer sub.Close()
	defer conn.Close()

	// Reader: observers never send application data; the read loop only
	// services pong frames and detects disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
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
		case frame, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
