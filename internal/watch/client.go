package watch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/itpctl/internal/logging"
	"github.com/muurk/itpctl/internal/server"
	"go.uber.org/zap"
)

// DefaultDialTimeout bounds the WebSocket handshake
const DefaultDialTimeout = 10 * time.Second

// Conn is an observer connection to a tap
type Conn struct {
	url  string
	ws   *websocket.Conn
	once sync.Once
}

// DialOptions tunes how Dial connects
type DialOptions struct {
	Timeout  time.Duration
	Insecure bool // skip certificate verification for wss:// taps
}

// Dial connects to the tap at url (ws:// or wss://)
func Dial(ctx context.Context, url string, opts DialOptions) (*Conn, error) {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultDialTimeout
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: opts.Timeout,
	}
	if opts.Insecure {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	ws, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	logging.LogConnection(url, "connected")
	return &Conn{url: url, ws: ws}, nil
}

// URL returns the address the connection was dialled with
func (c *Conn) URL() string { return c.url }

// Next blocks for the next event. It returns io.EOF when the tap closes
// the connection normally.
func (c *Conn) Next() (server.Event, error) {
	var ev server.Event
	if err := c.ws.ReadJSON(&ev); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			logging.LogConnection(c.url, "closed by tap")
			return ev, io.EOF
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return ev, fmt.Errorf("tap closed the connection: %w", err)
		}
		return ev, fmt.Errorf("failed to read event: %w", err)
	}
	return ev, nil
}

// Close says goodbye to the tap and drops the connection
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); werr != nil {
			logging.Debug("Close handshake failed", zap.String("url", c.url), zap.Error(werr))
		}
		err = c.ws.Close()
		logging.LogConnection(c.url, "disconnected")
	})
	return err
}
