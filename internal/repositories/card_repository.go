package repositories

import (
	"context"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"gorm.io/gorm"
)

// CardRepository interface for card operations
type CardRepository interface {
	Create(ctx context.Context, tx *gorm.DB, card *models.Card) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Card, error)
	GetByDeckAndID(ctx context.Context, tx *gorm.DB, deckID, cardID uint) (*models.Card, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*models.Card, error)
	Update(ctx context.Context, tx *gorm.DB, card *models.Card) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	ListByDeck(ctx context.Context, tx *gorm.DB, deckID uint) ([]*models.Card, error)
	CountByDeck(ctx context.Context, tx *gorm.DB, deckID uint) (int64, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
