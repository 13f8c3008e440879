package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

const (
	defaultDeckPageSize = 20
	maxDeckPageSize     = 100
)

type deckService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator
}

func NewDeckService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) DeckService {
	return &deckService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "flashcard-service", Component: "decks"}),
		validator: validator,
	}
}

// ===== CORE DECK OPERATIONS =====

func (s *deckService) Create(ctx context.Context, req *CreateDeckRequest, ownerID uint) (*DeckResponse, error) {
	s.logger.Info("Creating deck", "title", req.Title, "owner_id", ownerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ValidationErrors{*NewValidationError("title", "is required", req.Title)}
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	deck := &models.Deck{
		Title:       title,
		Description: trimOptional(req.Description),
		Tags:        models.JoinTags(req.Tags),
		Visibility:  visibility,
		OwnerID:     ownerID,
	}

	if err := s.repo.Deck().Create(ctx, nil, deck); err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	if deck.IsPublic() {
		invalidateDashboard(ctx, s.cache, s.logger)
	}

	s.logger.Info("Deck created successfully", "deck_id", deck.ID, "owner_id", ownerID)

	return s.summary(ctx, deck.ID, ownerID)
}

func (s *deckService) GetByID(ctx context.Context, id uint, userID uint) (*DeckResponse, error) {
	summary, err := s.repo.Deck().GetSummary(ctx, nil, id, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	if summary.Visibility != models.VisibilityPublic && summary.OwnerID != userID {
		return nil, NewPermissionError(userID, id, "deck", "read", "deck is private")
	}

	return toDeckResponse(summary), nil
}

func (s *deckService) Update(ctx context.Context, id uint, req *UpdateDeckRequest, userID uint) (*DeckResponse, error) {
	s.logger.Info("Updating deck", "deck_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	deck, err := s.getOwnedDeck(ctx, id, userID, "update")
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ValidationErrors{*NewValidationError("title", "must not be blank", *req.Title)}
		}
		deck.Title = title
	}
	if req.Description != nil {
		deck.Description = trimOptional(req.Description)
	}
	if req.Tags != nil {
		deck.Tags = models.JoinTags(req.Tags)
	}
	if req.Visibility != nil {
		deck.Visibility = *req.Visibility
	}

	if err := s.repo.Deck().Update(ctx, nil, deck); err != nil {
		return nil, fmt.Errorf("failed to update deck: %w", err)
	}

	invalidateDashboard(ctx, s.cache, s.logger)

	return s.summary(ctx, deck.ID, userID)
}

func (s *deckService) Delete(ctx context.Context, id uint, userID uint) error {
	op := s.svcLogger.WithOperation(ctx, "delete_deck", userID)
	err := s.delete(ctx, op, id, userID)
	op.LogResult(strconv.FormatUint(uint64(id), 10), "deck", err)
	return err
}

func (s *deckService) delete(ctx context.Context, op *OperationLogger, id uint, userID uint) error {
	deck, err := s.getOwnedDeck(ctx, id, userID, "delete")
	if err != nil {
		return err
	}

	if err := s.repo.Deck().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrDeckNotFound
		}
		return fmt.Errorf("failed to delete deck: %w", err)
	}

	op.LogAudit(AuditEventDelete, strconv.FormatUint(uint64(id), 10), "deck", map[string]interface{}{
		"title":      deck.Title,
		"visibility": deck.Visibility,
	}, nil)

	invalidateDashboard(ctx, s.cache, s.logger)

	publishEvent(ctx, s.publisher, s.logger, events.NewEvent(events.EventDeckDeleted, events.DeckEngagementEvent{
		DeckID:  id,
		UserID:  userID,
		OwnerID: deck.OwnerID,
	}))

	return nil
}

// ===== LISTING =====

func (s *deckService) List(ctx context.Context, req *DeckListRequest, userID uint) (*DeckListResponse, error) {
	filters, err := s.listFilters(req, userID)
	if err != nil {
		return nil, err
	}
	filters.SortBy = repositories.DeckSortPopular
	return listDecks(ctx, s.repo, filters, req)
}

func (s *deckService) ListMine(ctx context.Context, req *DeckListRequest, userID uint) (*DeckListResponse, error) {
	filters, err := s.listFilters(req, userID)
	if err != nil {
		return nil, err
	}
	filters.OwnerID = &userID
	filters.SortBy = repositories.DeckSortNewest
	return listDecks(ctx, s.repo, filters, req)
}

func (s *deckService) ListPublic(ctx context.Context, req *DeckListRequest, userID uint) (*DeckListResponse, error) {
	filters, err := s.listFilters(req, userID)
	if err != nil {
		return nil, err
	}
	filters.PublicOnly = true
	filters.SortBy = repositories.DeckSortPopular
	return listDecks(ctx, s.repo, filters, req)
}

func (s *deckService) listFilters(req *DeckListRequest, userID uint) (repositories.DeckFilters, error) {
	if err := s.validator.Validate(req); err != nil {
		return repositories.DeckFilters{}, fmt.Errorf("validation failed: %w", err)
	}
	return deckFilters(req, userID), nil
}

// ===== HELPERS =====

func (s *deckService) getOwnedDeck(ctx context.Context, id uint, userID uint, action string) (*models.Deck, error) {
	deck, err := s.repo.Deck().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	if !deck.IsOwnedBy(userID) {
		return nil, NewPermissionError(userID, id, "deck", action, "not owned by user")
	}
	return deck, nil
}

func (s *deckService) summary(ctx context.Context, id uint, viewerID uint) (*DeckResponse, error) {
	summary, err := s.repo.Deck().GetSummary(ctx, nil, id, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck summary: %w", err)
	}
	return toDeckResponse(summary), nil
}

func deckFilters(req *DeckListRequest, userID uint) repositories.DeckFilters {
	size := pageSize(req.Size)
	filters := repositories.DeckFilters{
		ViewerID: userID,
		Search:   req.Search,
		Tag:      req.Tag,
		Limit:    size,
		Offset:   (pageNumber(req.Page) - 1) * size,
	}
	if req.Visibility != "" {
		visibility := models.Visibility(req.Visibility)
		filters.Visibility = &visibility
	}
	return filters
}

func listDecks(ctx context.Context, repo repositories.Repository, filters repositories.DeckFilters, req *DeckListRequest) (*DeckListResponse, error) {
	summaries, total, err := repo.Deck().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	decks := make([]*DeckResponse, 0, len(summaries))
	for _, summary := range summaries {
		decks = append(decks, toDeckResponse(summary))
	}

	size := pageSize(req.Size)
	return &DeckListResponse{
		Decks:      decks,
		Total:      total,
		Page:       pageNumber(req.Page),
		Size:       size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func pageNumber(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

func pageSize(size int) int {
	if size <= 0 {
		return defaultDeckPageSize
	}
	return min(size, maxDeckPageSize)
}

func toDeckResponse(summary *repositories.DeckSummary) *DeckResponse {
	tags := models.SplitTags(summary.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &DeckResponse{
		ID:          summary.ID,
		Title:       summary.Title,
		Description: summary.Description,
		Tags:        tags,
		Visibility:  summary.Visibility,
		OwnerID:     summary.OwnerID,
		Owner:       summary.OwnerEmail,
		CardCount:   summary.CardCount,
		LikeCount:   summary.LikeCount,
		Liked:       summary.Liked,
		Favorited:   summary.Favorited,
		CreatedAt:   summary.CreatedAt,
		UpdatedAt:   summary.UpdatedAt,
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
