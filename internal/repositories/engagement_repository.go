package repositories

import (
	"context"

	"gorm.io/gorm"
)

// EngagementRepository manages the like and favorite membership sets.
// Add* and Remove* are idempotent and report whether a row changed.
type EngagementRepository interface {
	AddLike(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error)
	RemoveLike(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error)
	AddFavorite(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error)
	RemoveFavorite(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error)

	CountLikes(ctx context.Context, tx *gorm.DB, deckID uint) (int64, error)
	IsLiked(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error)
	IsFavorited(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error)
}
