package storage

import (
	"context"
	"errors"
	"time"
)

// ErrSettingsNotFound is returned when a session has no stored settings.
var ErrSettingsNotFound = errors.New("settings not found")

// Message is one persisted translated utterance. ID and CreatedAt are
// assigned by the store, never by the client.
type Message struct {
	ID               int64     `json:"id"`
	SessionID        string    `json:"sessionId"`
	SpeakerID        int       `json:"speakerId"`
	OriginalText     string    `json:"originalText"`
	TranslatedText   string    `json:"translatedText"`
	OriginalLanguage string    `json:"originalLanguage"`
	TargetLanguage   string    `json:"targetLanguage"`
	CreatedAt        time.Time `json:"timestamp"`
}

// Settings holds the per-session speaker preferences the UI persists.
type Settings struct {
	SessionID        string    `json:"sessionId"`
	Speaker1Language string    `json:"speaker1Language"`
	Speaker2Language string    `json:"speaker2Language"`
	AutoDetect       bool      `json:"autoDetect"`
	VoiceEnabled     bool      `json:"voiceEnabled"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// MessageStore persists conversation history per session.
type MessageStore interface {
	// CreateMessage stores msg, assigning its ID and CreatedAt, and returns
	// the stored record.
	CreateMessage(ctx context.Context, msg Message) (Message, error)
	// GetMessages returns the session's messages in creation order.
	GetMessages(ctx context.Context, sessionID string) ([]Message, error)
	// ClearMessages removes all messages for the session.
	ClearMessages(ctx context.Context, sessionID string) error
}

// SettingsStore persists per-session speaker settings.
type SettingsStore interface {
	// GetSettings returns the session's settings or ErrSettingsNotFound.
	GetSettings(ctx context.Context, sessionID string) (Settings, error)
	// CreateOrUpdateSettings upserts the settings, refreshing UpdatedAt, and
	// returns the stored record.
	CreateOrUpdateSettings(ctx context.Context, settings Settings) (Settings, error)
}

// Store is the combined storage surface consumed by the router and the
// HTTP API.
type Store interface {
	MessageStore
	SettingsStore
}
