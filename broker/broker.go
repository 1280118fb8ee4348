package broker

import (
	"context"
	"encoding/json"
	"time"
)

// Event is an exported copy of a relay broadcast, published for downstream
// consumers (analytics, archival). The relay never consumes these itself;
// delivery between clients happens in-process.
type Event struct {
	SessionID string          `json:"session_id"`
	ServerID  string          `json:"server_id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// MarshalBinary implements encoding.BinaryMarshaler for Redis publishing.
func (e Event) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *Event) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}

// Publisher exports relay events to an external system.
type Publisher interface {
	// Publish sends one event. Implementations retry transient failures.
	Publish(ctx context.Context, event Event) error
	// Type identifies the backing system for logs and metrics.
	Type() string
	// Close releases the underlying resources.
	Close() error
}

// Noop discards every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Type() string                         { return "none" }
func (Noop) Close() error                         { return nil }
