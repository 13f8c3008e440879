package postgres

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// SharedHelpers holds query helpers used by several repositories
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// getDB returns tx when the caller is inside a transaction
func (h *SharedHelpers) getDB(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return h.db.WithContext(ctx)
}

func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// ApplyDeckFilters expects a query rooted at the decks table
func (h *SharedHelpers) ApplyDeckFilters(query *gorm.DB, filters repositories.DeckFilters) *gorm.DB {
	switch {
	case filters.OwnerID != nil:
		query = query.Where("decks.owner_id = ?", *filters.OwnerID)
		if *filters.OwnerID != filters.ViewerID {
			query = query.Where("decks.visibility = ?", models.VisibilityPublic)
		}
	case filters.PublicOnly:
		query = query.Where("decks.visibility = ?", models.VisibilityPublic)
	default:
		query = query.Where("(decks.visibility = ? OR decks.owner_id = ?)", models.VisibilityPublic, filters.ViewerID)
	}

	if filters.Visibility != nil {
		query = query.Where("decks.visibility = ?", *filters.Visibility)
	}

	if filters.ExcludeOwnerID != nil {
		query = query.Where("decks.owner_id <> ?", *filters.ExcludeOwnerID)
	}

	if filters.FavoritedBy != nil {
		query = query.Where("decks.id IN (SELECT deck_id FROM deck_favorites WHERE user_id = ?)", *filters.FavoritedBy)
	}

	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := likePattern(search)
		query = query.Where(
			"(LOWER(decks.title) LIKE ? OR LOWER(COALESCE(decks.description, '')) LIKE ? OR LOWER(decks.tags) LIKE ?)",
			pattern, pattern, pattern,
		)
	}

	if tag := strings.TrimSpace(filters.Tag); tag != "" {
		query = query.Where("LOWER(decks.tags) LIKE ?", likePattern(tag))
	}

	if filters.WithCardsOnly {
		query = query.Where("EXISTS (SELECT 1 FROM cards WHERE cards.deck_id = decks.id)")
	}

	return query
}

func (h *SharedHelpers) ApplyDeckSort(query *gorm.DB, sortBy string) *gorm.DB {
	switch sortBy {
	case repositories.DeckSortNewest:
		return query.Order("decks.created_at DESC").Order("decks.id DESC")
	case repositories.DeckSortTitle:
		return query.Order("decks.title ASC").Order("decks.id ASC")
	default:
		return query.Order("like_count DESC").Order("decks.created_at DESC").Order("decks.id DESC")
	}
}

func (h *SharedHelpers) ApplySessionFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.DeckID != nil {
		query = query.Where("deck_id = ?", *filters.DeckID)
	}
	if filters.CompletedOnly {
		query = query.Where("completed_at IS NOT NULL")
	}
	if filters.VisibleTo != nil {
		query = query.Where("deck_id IN (?)",
			query.Session(&gorm.Session{NewDB: true}).Model(&models.Deck{}).Select("id").
				Where("visibility = ? OR owner_id = ?", models.VisibilityPublic, *filters.VisibleTo))
	}
	return query
}

func likePattern(term string) string {
	term = strings.ToLower(term)
	term = strings.NewReplacer("%", "", "_", "").Replace(term)
	return "%" + term + "%"
}
