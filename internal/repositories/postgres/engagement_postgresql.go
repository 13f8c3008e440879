package postgres

import (
	"context"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EngagementPostgreSQL struct {
	helpers *SharedHelpers
}

func NewEngagementPostgreSQL(db *gorm.DB) repositories.EngagementRepository {
	return &EngagementPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (e *EngagementPostgreSQL) AddLike(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error) {
	return e.insertIgnore(ctx, tx, &models.DeckLike{UserID: userID, DeckID: deckID})
}

func (e *EngagementPostgreSQL) RemoveLike(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error) {
	return e.remove(ctx, tx, &models.DeckLike{}, userID, deckID)
}

func (e *EngagementPostgreSQL) AddFavorite(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error) {
	return e.insertIgnore(ctx, tx, &models.DeckFavorite{UserID: userID, DeckID: deckID})
}

func (e *EngagementPostgreSQL) RemoveFavorite(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error) {
	return e.remove(ctx, tx, &models.DeckFavorite{}, userID, deckID)
}

func (e *EngagementPostgreSQL) CountLikes(ctx context.Context, tx *gorm.DB, deckID uint) (int64, error) {
	var count int64
	err := e.helpers.getDB(ctx, tx).Model(&models.DeckLike{}).Where("deck_id = ?", deckID).Count(&count).Error
	return count, err
}

func (e *EngagementPostgreSQL) IsLiked(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error) {
	return e.exists(ctx, tx, &models.DeckLike{}, userID, deckID)
}

func (e *EngagementPostgreSQL) IsFavorited(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error) {
	return e.exists(ctx, tx, &models.DeckFavorite{}, userID, deckID)
}

func (e *EngagementPostgreSQL) insertIgnore(ctx context.Context, tx *gorm.DB, row interface{}) (bool, error) {
	result := e.helpers.getDB(ctx, tx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (e *EngagementPostgreSQL) remove(ctx context.Context, tx *gorm.DB, model interface{}, userID, deckID uint) (bool, error) {
	result := e.helpers.getDB(ctx, tx).
		Where("user_id = ? AND deck_id = ?", userID, deckID).
		Delete(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (e *EngagementPostgreSQL) exists(ctx context.Context, tx *gorm.DB, model interface{}, userID, deckID uint) (bool, error) {
	var count int64
	err := e.helpers.getDB(ctx, tx).Model(model).
		Where("user_id = ? AND deck_id = ?", userID, deckID).
		Count(&count).Error
	return count > 0, err
}
