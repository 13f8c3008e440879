package repositories

import (
	"errors"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

const (
	DeckSortPopular = "popular"
	DeckSortNewest  = "newest"
	DeckSortTitle   = "title"
)

type DeckFilters struct {
	ViewerID       uint               `json:"viewer_id"`   // drives liked/favorited flags and private visibility
	OwnerID        *uint              `json:"owner_id"`    // only decks of this owner
	Visibility     *models.Visibility `json:"visibility"`  // exact visibility
	PublicOnly     bool               `json:"public_only"` // ignore the viewer's private decks
	ExcludeOwnerID *uint              `json:"exclude_owner_id"`
	FavoritedBy    *uint              `json:"favorited_by"`
	Search         string             `json:"search"`
	Tag            string             `json:"tag"`
	WithCardsOnly  bool               `json:"with_cards_only"`
	Limit          int                `json:"limit"`
	Offset         int                `json:"offset"`
	SortBy         string             `json:"sort_by"` // "popular", "newest", "title"
}

type SessionFilters struct {
	DeckID        *uint `json:"deck_id"`
	CompletedOnly bool  `json:"completed_only"`
	// VisibleTo keeps only sessions on public decks or decks owned by this user
	VisibleTo *uint `json:"visible_to"`
	Limit         int   `json:"limit"`
	Offset        int   `json:"offset"`
}

// ===== SHARED READ MODELS =====

// DeckSummary is a deck row joined with its derived counters
type DeckSummary struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Tags        string            `json:"tags"`
	Visibility  models.Visibility `json:"visibility"`
	OwnerID     uint              `json:"owner_id"`
	OwnerEmail  string            `json:"owner_email"`
	CardCount   int64             `json:"card_count"`
	LikeCount   int64             `json:"like_count"`
	Liked       bool              `json:"liked"`
	Favorited   bool              `json:"favorited"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// SessionCompletion carries the single authoritative write of a session
type SessionCompletion struct {
	CompletedAt    time.Time
	CorrectAnswers int
	TotalTime      int
	Answers        []models.AnswerRecord
}

type PlatformStats struct {
	TotalUsers        int64 `json:"total_users"`
	TotalDecks        int64 `json:"total_decks"`
	PublicDecks       int64 `json:"public_decks"`
	TotalCards        int64 `json:"total_cards"`
	CompletedSessions int64 `json:"completed_sessions"`
}

// IsNotFoundError reports whether err is gorm's record-not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
