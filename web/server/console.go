package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by collecting messages for the response of one request
type WebLogger struct {
	requestID string

	mu       sync.Mutex
	messages []ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific request
func NewWebLogger(requestID string) *WebLogger {
	return &WebLogger{requestID: requestID}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	// Also write to the server log
	glog.InfoDepth(1, fmt.Sprintf("[%s] %s", wl.requestID, strings.TrimSuffix(message, "\n")))

	level := "info"
	if strings.Contains(message, "depth limit") {
		level = "warning"
	}

	wl.mu.Lock()
	defer wl.mu.Unlock()
	wl.messages = append(wl.messages, ConsoleMessage{
		Message:   message,
		Timestamp: time.Now(),
		Level:     level,
	})
}

// Messages returns the collected messages in order
func (wl *WebLogger) Messages() []ConsoleMessage {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	out := make([]ConsoleMessage, len(wl.messages))
	copy(out, wl.messages)
	return out
}
