package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mark-c-hall/movie-search/internal/metrics"
	mw "github.com/mark-c-hall/movie-search/internal/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleWebSocket pushes the session's state snapshot once on connect and
// again after every change, until either side goes away.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctrl, id := h.controller(w, r)

	conn, err := upgrader.Upgrade(w, r, w.Header())
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			"error", err,
			"session_id", id,
			"request_id", mw.RequestID(r.Context()),
		)
		return
	}
	defer conn.Close()

	metrics.WebSocketConnections.Inc()
	defer metrics.WebSocketConnections.Dec()

	changes, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	// the client never sends data; reading surfaces close frames and pongs
	gone := make(chan struct{})
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(ctrl.Snapshot())
	}
	if err := send(); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return
		case _, ok := <-changes:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed")
				conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
			if err := send(); err != nil {
				h.logger.DebugContext(r.Context(), "websocket write failed", "error", err, "session_id", id)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
