package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexivanou/crwd-api/internal/redeem"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second
	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stream carries no credentials; any origin may display a code
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamRedemption handles GET /api/v1/redemptions/{id}/stream.
// It pushes one JSON tick per second until the client leaves or the session is swept.
func (h *Handler) StreamRedemption(w http.ResponseWriter, r *http.Request) {
	id, err := sessionVar(r)
	if err != nil {
		http.Error(w, "invalid redemption id", http.StatusBadRequest)
		return
	}

	// Check before upgrading so a missing session is a plain 404
	if _, err := h.service.CurrentRedemption(r.Context(), id); err != nil {
		if errors.Is(err, redeem.ErrSessionNotFound) {
			http.Error(w, "redemption not found", http.StatusNotFound)
			return
		}
		h.internalError(w, "Error getting redemption", err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade to websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ticks, err := h.service.WatchRedemption(ctx, id)
	if err != nil {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
		return
	}

	// Reader: only control frames are expected; a read error means the client left
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case tick, ok := <-ticks:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteJSON(tick); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
