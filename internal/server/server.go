package server

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/itpctl/internal/logging"
	"github.com/muurk/itpctl/internal/protocol"
	"go.uber.org/zap"
)

// DefaultPort is the tap's listening port when none is configured
const DefaultPort = 8765

// Config holds the tap configuration
type Config struct {
	Host       string
	Port       int
	CertPath   string // serve wss:// when both CertPath and KeyPath are set
	KeyPath    string
	CaptureDir string // directory for JSON Lines captures (empty = disabled)
}

// Tap is a WebSocket server that broadcasts every published packet to all
// connected observers. Clients only listen; anything they send is ignored.
type Tap struct {
	config     *Config
	tlsConfig  *tls.Config
	listener   net.Listener
	httpServer *http.Server
	upgrader   websocket.Upgrader
	capture    *Capture

	wg        sync.WaitGroup
	mu        sync.Mutex
	clients   map[string]*client
	published atomic.Uint64
	started   time.Time
}

// New creates a Tap. Nothing listens until Start is called.
func New(config *Config) (*Tap, error) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}

	var tlsConfig *tls.Config
	if config.CertPath != "" || config.KeyPath != "" {
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	t := &Tap{
		config:    config,
		tlsConfig: tlsConfig,
		clients:   make(map[string]*client),
		started:   time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	if config.CaptureDir != "" {
		capture, err := OpenCapture(config.CaptureDir)
		if err != nil {
			return nil, err
		}
		t.capture = capture
	}

	return t, nil
}

// Handler returns the tap's HTTP routes: the WebSocket endpoint at /ws, a
// JSON status document at /status and a liveness check at /healthz.
func (t *Tap) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", t.handleWebSocket)
	mux.HandleFunc("/status", t.handleStatus)
	mux.HandleFunc("/healthz", handleHealth)
	return mux
}

// Listen binds the configured address. Start calls it when needed.
func (t *Tap) Listen() error {
	addr := net.JoinHostPort(t.config.Host, fmt.Sprint(t.config.Port))

	var (
		listener net.Listener
		err      error
	)
	if t.tlsConfig != nil {
		listener, err = tls.Listen("tcp", addr, t.tlsConfig)
	} else {
		listener, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	t.listener = listener

	logging.Info("Tap listening for observers",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("tls", t.tlsConfig != nil),
	)
	return nil
}

// Addr returns the bound address, or nil before Listen
func (t *Tap) Addr() net.Addr {
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

// TLS reports whether the tap serves wss://
func (t *Tap) TLS() bool { return t.tlsConfig != nil }

// Start serves until ctx is cancelled, then shuts down gracefully
func (t *Tap) Start(ctx context.Context) error {
	if t.listener == nil {
		if err := t.Listen(); err != nil {
			return err
		}
	}

	t.httpServer = &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- t.httpServer.Serve(t.listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping tap...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return t.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Publish broadcasts m to every connected client. Clients whose send queue
// is full are disconnected.
func (t *Tap) Publish(m protocol.Message) {
	ev := NewEvent(m)
	data, err := json.Marshal(ev)
	if err != nil {
		logging.Error("Failed to encode tap event", zap.Error(err))
		return
	}
	t.published.Add(1)

	if t.capture != nil {
		t.capture.Write(ev)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for addr, c := range t.clients {
		select {
		case c.send <- data:
		default:
			logging.Warn("Observer too slow, disconnecting", zap.String("remote_addr", addr))
			delete(t.clients, addr)
			close(c.send)
		}
	}
}

// Shutdown closes the listener and every client, waiting for their
// goroutines until ctx expires.
func (t *Tap) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down tap...")

	if t.httpServer != nil {
		if err := t.httpServer.Shutdown(ctx); err != nil {
			logging.Error("Error stopping HTTP server", zap.Error(err))
		}
	} else if t.listener != nil {
		if err := t.listener.Close(); err != nil {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}

	// hijacked websocket connections are not tracked by http.Server
	t.mu.Lock()
	for addr, c := range t.clients {
		logging.Info("Closing observer connection", zap.String("remote_addr", addr))
		delete(t.clients, addr)
		close(c.send)
	}
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All observers disconnected")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	if t.capture != nil {
		if err := t.capture.Close(); err != nil {
			logging.Error("Error closing capture file", zap.Error(err))
		}
	}

	logging.Sync()
	return nil
}

// ActiveClients returns the number of connected observers
func (t *Tap) ActiveClients() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}

// Published returns how many packets have been broadcast
func (t *Tap) Published() uint64 { return t.published.Load() }
