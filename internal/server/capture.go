package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/muurk/itpctl/internal/logging"
	"go.uber.org/zap"
)

// Capture appends every event it is given to a JSON Lines file, one object
// per line, so a session can be replayed or diffed later.
type Capture struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	n    int
}

// OpenCapture creates capture-<timestamp>.jsonl in dir
func OpenCapture(dir string) (*Capture, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("capture-%s.jsonl", time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}

	logging.Info("Capturing packets", zap.String("filename", name))
	return &Capture{file: f, enc: json.NewEncoder(f)}, nil
}

// Name returns the path of the capture file
func (c *Capture) Name() string { return c.file.Name() }

// Write appends ev. Failures are logged, not returned.
func (c *Capture) Write(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.enc.Encode(ev); err != nil {
		logging.Error("Failed to write capture record",
			zap.String("filename", c.file.Name()),
			zap.Error(err),
		)
		return
	}
	c.n++
}

// Count returns how many events have been written
func (c *Capture) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Close flushes and closes the file
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file.Close()
}

// ReadCapture calls fn for every event in a capture written by Capture.
// Blank lines are skipped. A line that is not an event stops the read with
// an error naming the line; so does an error from fn.
func ReadCapture(r io.Reader, fn func(line int, ev Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("line %d: invalid capture record: %w", line, err)
		}
		if err := fn(line, ev); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read capture: %w", err)
	}
	return nil
}
