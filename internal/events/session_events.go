package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "flashcard-service"
	EventVersion = "1.0"
)

// EventType represents the domain events emitted by the service
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "session.started"
	EventSessionCompleted EventType = "session.completed"

	// Deck engagement events
	EventDeckLiked     EventType = "deck.liked"
	EventDeckFavorited EventType = "deck.favorited"
	EventDeckDeleted   EventType = "deck.deleted"
)

// Event is the envelope for every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps data in an envelope with a fresh id
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    EventSource,
		Version:   EventVersion,
		Data:      data,
	}
}

type SessionStartedEvent struct {
	SessionID  string    `json:"session_id"`
	UserID     uint      `json:"user_id"`
	DeckID     uint      `json:"deck_id"`
	DeckTitle  string    `json:"deck_title"`
	TotalCards int       `json:"total_cards"`
	TimeLimit  int       `json:"time_limit_seconds"`
	StartedAt  time.Time `json:"started_at"`
}

type SessionCompletedEvent struct {
	SessionID      string    `json:"session_id"`
	UserID         uint      `json:"user_id"`
	DeckID         uint      `json:"deck_id"`
	Legacy         bool      `json:"legacy"`
	TotalCards     int       `json:"total_cards"`
	CorrectAnswers int       `json:"correct_answers"`
	Accuracy       float64   `json:"accuracy"`
	TotalTime      int       `json:"total_time"`
	FlagMismatches int       `json:"flag_mismatches"`
	CompletedAt    time.Time `json:"completed_at"`
}

type DeckEngagementEvent struct {
	DeckID  uint `json:"deck_id"`
	UserID  uint `json:"user_id"`
	OwnerID uint `json:"owner_id"`
}
