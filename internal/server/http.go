package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/muurk/itpctl/internal/logging"
	"github.com/muurk/itpctl/internal/version"
	"go.uber.org/zap"
)

// Status is served at /status
type Status struct {
	Version   string  `json:"version"`
	Clients   int     `json:"clients"`
	Published uint64  `json:"published"`
	Uptime    float64 `json:"uptime_seconds"`
	Capture   string  `json:"capture,omitempty"`
}

// Status reports the tap's current counters
func (t *Tap) Status() Status {
	st := Status{
		Version:   version.Version,
		Clients:   t.ActiveClients(),
		Published: t.Published(),
		Uptime:    time.Since(t.started).Seconds(),
	}
	if t.capture != nil {
		st.Capture = t.capture.Name()
	}
	return st
}

func (t *Tap) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, r, t.Status())
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok\n"))
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to write JSON response",
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}
