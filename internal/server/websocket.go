package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Events queued per client before it is considered too slow
	sendQueueSize = 64
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// handleWebSocket upgrades the request and registers the observer
func (t *Tap) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	remoteAddr := conn.RemoteAddr().String()
	c := &client{conn: conn, send: make(chan []byte, sendQueueSize)}

	t.mu.Lock()
	t.clients[remoteAddr] = c
	t.mu.Unlock()
	logging.LogConnection(remoteAddr, "observer_connected")

	t.wg.Add(2)
	go func() {
		defer t.wg.Done()
		t.writePump(remoteAddr, c)
	}()
	go func() {
		defer t.wg.Done()
		t.readPump(remoteAddr, c)
	}()
}

// removeClient forgets c if it is still registered under addr
func (t *Tap) removeClient(addr string, c *client) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.clients[addr] == c {
		delete(t.clients, addr)
		close(c.send)
	}
}

// readPump drains the connection so control frames are processed, and
// notices when the observer goes away.
func (t *Tap) readPump(addr string, c *client) {
	defer t.removeClient(addr, c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Observer connection error",
					zap.String("remote_addr", addr),
					zap.Error(err),
				)
			}
			return
		}
		logging.Debug("Ignoring message from observer", zap.String("remote_addr", addr))
	}
}

// writePump sends queued events and keeps the connection alive with pings.
// It exits when the send queue is closed.
func (t *Tap) writePump(addr string, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		logging.LogConnection(addr, "observer_disconnected")
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Info("Failed to write to observer",
					zap.String("remote_addr", addr),
					zap.Error(err),
				)
				t.removeClient(addr, c)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				t.removeClient(addr, c)
				return
			}
		}
	}
}
