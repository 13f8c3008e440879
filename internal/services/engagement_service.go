package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
	"gorm.io/gorm"
)

type engagementService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewEngagementService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) EngagementService {
	return &engagementService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// engagementChange is one of the idempotent membership writes
type engagementChange func(ctx context.Context, tx *gorm.DB, userID, deckID uint) (bool, error)

func (s *engagementService) Like(ctx context.Context, deckID uint, userID uint) (*EngagementResponse, error) {
	return s.apply(ctx, deckID, userID, "like", s.repo.Engagement().AddLike, events.EventDeckLiked)
}

func (s *engagementService) Unlike(ctx context.Context, deckID uint, userID uint) (*EngagementResponse, error) {
	return s.apply(ctx, deckID, userID, "unlike", s.repo.Engagement().RemoveLike, "")
}

func (s *engagementService) Favorite(ctx context.Context, deckID uint, userID uint) (*EngagementResponse, error) {
	return s.apply(ctx, deckID, userID, "favorite", s.repo.Engagement().AddFavorite, events.EventDeckFavorited)
}

func (s *engagementService) Unfavorite(ctx context.Context, deckID uint, userID uint) (*EngagementResponse, error) {
	return s.apply(ctx, deckID, userID, "unfavorite", s.repo.Engagement().RemoveFavorite, "")
}

func (s *engagementService) ListFavorites(ctx context.Context, req *DeckListRequest, userID uint) (*DeckListResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	filters := deckFilters(req, userID)
	filters.FavoritedBy = &userID
	filters.SortBy = repositories.DeckSortNewest
	return listDecks(ctx, s.repo, filters, req)
}

// apply runs change for a deck the user may see. A repeated call changes
// nothing and publishes nothing.
func (s *engagementService) apply(ctx context.Context, deckID, userID uint, action string, change engagementChange, eventType events.EventType) (*EngagementResponse, error) {
	deck, err := s.repo.Deck().GetByID(ctx, nil, deckID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	if !deck.CanAccess(userID) {
		return nil, NewPermissionError(userID, deckID, "deck", action, "deck is private")
	}

	changed, err := change(ctx, nil, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to %s deck: %w", action, err)
	}

	if changed {
		s.logger.Info("Deck engagement changed", "action", action, "deck_id", deckID, "user_id", userID)
		invalidateDashboard(ctx, s.cache, s.logger)
		if eventType != "" {
			publishEvent(ctx, s.publisher, s.logger, events.NewEvent(eventType, events.DeckEngagementEvent{
				DeckID:  deckID,
				UserID:  userID,
				OwnerID: deck.OwnerID,
			}))
		}
	}

	return s.state(ctx, deck, userID)
}

func (s *engagementService) state(ctx context.Context, deck *models.Deck, userID uint) (*EngagementResponse, error) {
	liked, err := s.repo.Engagement().IsLiked(ctx, nil, userID, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check like: %w", err)
	}
	favorited, err := s.repo.Engagement().IsFavorited(ctx, nil, userID, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check favorite: %w", err)
	}
	likes, err := s.repo.Engagement().CountLikes(ctx, nil, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	return &EngagementResponse{
		DeckID:    deck.ID,
		Liked:     liked,
		Favorited: favorited,
		LikeCount: likes,
	}, nil
}
