package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-platformer/internal/ratelimit"
	"github.com/vovakirdan/tui-platformer/internal/spectate"
)

const (
	spectatorBuffer = 16
	writeWait       = 5 * time.Second
	pongWait        = 30 * time.Second
	pingPeriod      = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Spectating is read-only and public.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleSpectate streams frames of one session to a websocket client until
// the session ends or the client goes away.
func (h *handlers) handleSpectate(w http.ResponseWriter, r *http.Request) {
	id := spectate.SessionID(chi.URLParam(r, "id"))
	ip := ratelimit.ClientIP(r)

	if !h.conns.Acquire(ip) {
		h.metrics.RecordRejected("ws_ip_limit")
		h.logger.Warn("spectator rejected: per-IP limit", "ip", ip)
		writeError(w, "too many connections", http.StatusTooManyRequests)
		return
	}
	defer h.conns.Release(ip)

	sub, unsubscribe, err := h.hub.Subscribe(id, spectatorBuffer)
	if err != nil {
		if errors.Is(err, spectate.ErrUnknownSession) {
			writeError(w, "session not found", http.StatusNotFound)
			return
		}
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		h.logger.Debug("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	h.logger.Info("spectator connected", "session", id, "ip", ip)
	defer h.logger.Info("spectator disconnected", "session", id, "ip", ip)

	closed := make(chan struct{})
	go readPump(conn, closed)
	writePump(conn, sub, closed)
}

// readPump discards client messages and closes done when the peer goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
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
}

func writePump(conn *websocket.Conn, sub *spectate.Subscriber, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-sub.Frames():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-sub.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
