package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"gorm.io/gorm"
)

const deckSummaryColumns = `decks.id, decks.title, decks.description, decks.tags, decks.visibility,
	decks.owner_id, decks.created_at, decks.updated_at,
	COALESCE(users.email, '') AS owner_email,
	(SELECT COUNT(*) FROM cards WHERE cards.deck_id = decks.id) AS card_count,
	(SELECT COUNT(*) FROM deck_likes WHERE deck_likes.deck_id = decks.id) AS like_count,
	(SELECT COUNT(*) FROM deck_likes WHERE deck_likes.deck_id = decks.id AND deck_likes.user_id = ?) AS viewer_likes,
	(SELECT COUNT(*) FROM deck_favorites WHERE deck_favorites.deck_id = decks.id AND deck_favorites.user_id = ?) AS viewer_favorites`

// deckSummaryRow is the scan target of deckSummaryColumns
type deckSummaryRow struct {
	repositories.DeckSummary
	ViewerLikes     int64
	ViewerFavorites int64
}

func (r deckSummaryRow) toSummary() *repositories.DeckSummary {
	summary := r.DeckSummary
	summary.Liked = r.ViewerLikes > 0
	summary.Favorited = r.ViewerFavorites > 0
	return &summary
}

type DeckPostgreSQL struct {
	helpers *SharedHelpers
}

func NewDeckPostgreSQL(db *gorm.DB) repositories.DeckRepository {
	return &DeckPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (d *DeckPostgreSQL) Create(ctx context.Context, tx *gorm.DB, deck *models.Deck) error {
	return d.helpers.getDB(ctx, tx).Omit("Owner").Create(deck).Error
}

func (d *DeckPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Deck, error) {
	var deck models.Deck
	if err := d.helpers.getDB(ctx, tx).First(&deck, id).Error; err != nil {
		return nil, err
	}
	return &deck, nil
}

func (d *DeckPostgreSQL) GetByIDWithOwner(ctx context.Context, tx *gorm.DB, id uint) (*models.Deck, error) {
	var deck models.Deck
	if err := d.helpers.getDB(ctx, tx).Preload("Owner").First(&deck, id).Error; err != nil {
		return nil, err
	}
	return &deck, nil
}

func (d *DeckPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*models.Deck, error) {
	result := make(map[uint]*models.Deck, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var decks []*models.Deck
	if err := d.helpers.getDB(ctx, tx).Preload("Owner").Where("id IN ?", ids).Find(&decks).Error; err != nil {
		return nil, err
	}
	for _, deck := range decks {
		result[deck.ID] = deck
	}
	return result, nil
}

func (d *DeckPostgreSQL) Update(ctx context.Context, tx *gorm.DB, deck *models.Deck) error {
	return d.helpers.getDB(ctx, tx).Model(deck).
		Select("title", "description", "tags", "visibility").
		Updates(deck).Error
}

// Delete removes dependent rows explicitly so it behaves the same whether or
// not the database enforces the cascade constraints.
func (d *DeckPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	run := func(db *gorm.DB) error {
		if err := db.Where("deck_id = ?", id).Delete(&models.Card{}).Error; err != nil {
			return fmt.Errorf("failed to delete cards: %w", err)
		}
		if err := db.Where("deck_id = ?", id).Delete(&models.DeckLike{}).Error; err != nil {
			return fmt.Errorf("failed to delete likes: %w", err)
		}
		if err := db.Where("deck_id = ?", id).Delete(&models.DeckFavorite{}).Error; err != nil {
			return fmt.Errorf("failed to delete favorites: %w", err)
		}

		result := db.Delete(&models.Deck{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	if tx != nil {
		return run(tx.WithContext(ctx))
	}
	return d.helpers.getDB(ctx, nil).Transaction(run)
}

func (d *DeckPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.DeckFilters) ([]*repositories.DeckSummary, int64, error) {
	db := d.helpers.getDB(ctx, tx)

	var total int64
	countQuery := d.helpers.ApplyDeckFilters(db.Model(&models.Deck{}), filters)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := d.summaryQuery(db, filters.ViewerID)
	query = d.helpers.ApplyDeckFilters(query, filters)
	query = d.helpers.ApplyDeckSort(query, filters.SortBy)
	query = d.helpers.ApplyPagination(query, filters.Limit, filters.Offset)

	var rows []deckSummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}

	summaries := make([]*repositories.DeckSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, row.toSummary())
	}
	return summaries, total, nil
}

func (d *DeckPostgreSQL) GetSummary(ctx context.Context, tx *gorm.DB, id uint, viewerID uint) (*repositories.DeckSummary, error) {
	var rows []deckSummaryRow
	err := d.summaryQuery(d.helpers.getDB(ctx, tx), viewerID).
		Where("decks.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return rows[0].toSummary(), nil
}

func (d *DeckPostgreSQL) GetRandom(ctx context.Context, tx *gorm.DB, filters repositories.DeckFilters) (*models.Deck, error) {
	query := d.helpers.ApplyDeckFilters(d.helpers.getDB(ctx, tx).Model(&models.Deck{}), filters)

	var deck models.Deck
	if err := query.Order("RANDOM()").Limit(1).Take(&deck).Error; err != nil {
		return nil, err
	}
	return &deck, nil
}

func (d *DeckPostgreSQL) ListTags(ctx context.Context, tx *gorm.DB, publicOnly bool) ([]string, error) {
	query := d.helpers.getDB(ctx, tx).Model(&models.Deck{}).Where("tags <> ''")
	if publicOnly {
		query = query.Where("visibility = ?", models.VisibilityPublic)
	}

	var tags []string
	if err := query.Pluck("tags", &tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (d *DeckPostgreSQL) Count(ctx context.Context, tx *gorm.DB, visibility *models.Visibility) (int64, error) {
	query := d.helpers.getDB(ctx, tx).Model(&models.Deck{})
	if visibility != nil {
		query = query.Where("visibility = ?", *visibility)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (d *DeckPostgreSQL) summaryQuery(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Table("decks").
		Select(deckSummaryColumns, viewerID, viewerID).
		Joins("LEFT JOIN users ON users.id = decks.owner_id")
}
