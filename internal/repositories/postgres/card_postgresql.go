package postgres

import (
	"context"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"gorm.io/gorm"
)

type CardPostgreSQL struct {
	helpers *SharedHelpers
}

func NewCardPostgreSQL(db *gorm.DB) repositories.CardRepository {
	return &CardPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (c *CardPostgreSQL) Create(ctx context.Context, tx *gorm.DB, card *models.Card) error {
	return c.helpers.getDB(ctx, tx).Create(card).Error
}

func (c *CardPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Card, error) {
	var card models.Card
	if err := c.helpers.getDB(ctx, tx).First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *CardPostgreSQL) GetByDeckAndID(ctx context.Context, tx *gorm.DB, deckID, cardID uint) (*models.Card, error) {
	var card models.Card
	if err := c.helpers.getDB(ctx, tx).
		Where("id = ? AND deck_id = ?", cardID, deckID).
		First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (c *CardPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*models.Card, error) {
	result := make(map[uint]*models.Card, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var cards []*models.Card
	if err := c.helpers.getDB(ctx, tx).Where("id IN ?", ids).Find(&cards).Error; err != nil {
		return nil, err
	}
	for _, card := range cards {
		result[card.ID] = card
	}
	return result, nil
}

func (c *CardPostgreSQL) Update(ctx context.Context, tx *gorm.DB, card *models.Card) error {
	return c.helpers.getDB(ctx, tx).Model(card).
		Select("question", "answer", "qtype", "options_json").
		Updates(card).Error
}

func (c *CardPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := c.helpers.getDB(ctx, tx).Delete(&models.Card{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c *CardPostgreSQL) ListByDeck(ctx context.Context, tx *gorm.DB, deckID uint) ([]*models.Card, error) {
	var cards []*models.Card
	if err := c.helpers.getDB(ctx, tx).
		Where("deck_id = ?", deckID).
		Order("id ASC").
		Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (c *CardPostgreSQL) CountByDeck(ctx context.Context, tx *gorm.DB, deckID uint) (int64, error) {
	var count int64
	err := c.helpers.getDB(ctx, tx).Model(&models.Card{}).Where("deck_id = ?", deckID).Count(&count).Error
	return count, err
}

func (c *CardPostgreSQL) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := c.helpers.getDB(ctx, tx).Model(&models.Card{}).Count(&count).Error
	return count, err
}
