package repositories

import (
	"context"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"gorm.io/gorm"
)

// DeckRepository interface for deck operations
type DeckRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, deck *models.Deck) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Deck, error)
	GetByIDWithOwner(ctx context.Context, tx *gorm.DB, id uint) (*models.Deck, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*models.Deck, error)
	Update(ctx context.Context, tx *gorm.DB, deck *models.Deck) error
	// Delete removes the deck with its cards, likes and favorites
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Read models
	List(ctx context.Context, tx *gorm.DB, filters DeckFilters) ([]*DeckSummary, int64, error)
	GetSummary(ctx context.Context, tx *gorm.DB, id uint, viewerID uint) (*DeckSummary, error)
	GetRandom(ctx context.Context, tx *gorm.DB, filters DeckFilters) (*models.Deck, error)

	// Aggregation inputs
	ListTags(ctx context.Context, tx *gorm.DB, publicOnly bool) ([]string, error)
	Count(ctx context.Context, tx *gorm.DB, visibility *models.Visibility) (int64, error)
}
