package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
	"gorm.io/datatypes"
)

type cardService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCardService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *validator.Validator) CardService {
	return &cardService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

func (s *cardService) Create(ctx context.Context, deckID uint, req *CreateCardRequest, userID uint) (*CardResponse, error) {
	s.logger.Info("Creating card", "deck_id", deckID, "qtype", req.Type, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.getDeck(ctx, deckID, userID, true, "add_card"); err != nil {
		return nil, err
	}

	card := &models.Card{
		DeckID:   deckID,
		Question: strings.TrimSpace(req.Question),
		Answer:   strings.TrimSpace(req.Answer),
		Type:     req.Type,
	}
	if err := s.applyPayload(card, req.Options, req.Pairs); err != nil {
		return nil, err
	}

	if err := s.repo.Card().Create(ctx, nil, card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	invalidateDashboard(ctx, s.cache, s.logger)

	s.logger.Info("Card created successfully", "card_id", card.ID, "deck_id", deckID)

	return toCardResponse(card, true), nil
}

func (s *cardService) GetByID(ctx context.Context, deckID, cardID uint, userID uint) (*CardResponse, error) {
	deck, err := s.getDeck(ctx, deckID, userID, false, "read_card")
	if err != nil {
		return nil, err
	}

	card, err := s.getCard(ctx, deckID, cardID)
	if err != nil {
		return nil, err
	}
	return toCardResponse(card, deck.IsOwnedBy(userID)), nil
}

// ListByDeck returns answers only to the deck owner
func (s *cardService) ListByDeck(ctx context.Context, deckID uint, userID uint) ([]*CardResponse, error) {
	deck, err := s.getDeck(ctx, deckID, userID, false, "list_cards")
	if err != nil {
		return nil, err
	}

	cards, err := s.repo.Card().ListByDeck(ctx, nil, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	includeAnswer := deck.IsOwnedBy(userID)
	responses := make([]*CardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, toCardResponse(card, includeAnswer))
	}
	return responses, nil
}

func (s *cardService) Update(ctx context.Context, deckID, cardID uint, req *UpdateCardRequest, userID uint) (*CardResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.getDeck(ctx, deckID, userID, true, "update_card"); err != nil {
		return nil, err
	}

	card, err := s.getCard(ctx, deckID, cardID)
	if err != nil {
		return nil, err
	}

	typeChanged := req.Type != nil && *req.Type != card.Type
	options, pairs := card.Options(), card.Pairs()
	if typeChanged {
		options, pairs = nil, nil
		card.Type = *req.Type
	}
	if req.Options != nil {
		options = req.Options
	}
	if req.Pairs != nil {
		pairs = req.Pairs
	}

	if req.Question != nil {
		card.Question = strings.TrimSpace(*req.Question)
	}
	if req.Answer != nil {
		card.Answer = strings.TrimSpace(*req.Answer)
	}

	if err := s.applyPayload(card, options, pairs); err != nil {
		return nil, err
	}

	if err := s.repo.Card().Update(ctx, nil, card); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	return toCardResponse(card, true), nil
}

func (s *cardService) Delete(ctx context.Context, deckID, cardID uint, userID uint) error {
	if _, err := s.getDeck(ctx, deckID, userID, true, "delete_card"); err != nil {
		return err
	}

	if _, err := s.getCard(ctx, deckID, cardID); err != nil {
		return err
	}

	if err := s.repo.Card().Delete(ctx, nil, cardID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCardNotFound
		}
		return fmt.Errorf("failed to delete card: %w", err)
	}

	invalidateDashboard(ctx, s.cache, s.logger)

	s.logger.Info("Card deleted", "card_id", cardID, "deck_id", deckID, "user_id", userID)
	return nil
}

// ===== HELPERS =====

// getDeck loads the deck and checks that userID may read it, or own it when
// ownerOnly is set.
func (s *cardService) getDeck(ctx context.Context, deckID, userID uint, ownerOnly bool, action string) (*models.Deck, error) {
	deck, err := s.repo.Deck().GetByID(ctx, nil, deckID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	if ownerOnly && !deck.IsOwnedBy(userID) {
		return nil, NewPermissionError(userID, deckID, "deck", action, "not owned by user")
	}
	if !deck.CanAccess(userID) {
		return nil, NewPermissionError(userID, deckID, "deck", action, "deck is private")
	}
	return deck, nil
}

func (s *cardService) getCard(ctx context.Context, deckID, cardID uint) (*models.Card, error) {
	card, err := s.repo.Card().GetByDeckAndID(ctx, nil, deckID, cardID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

func (s *cardService) applyPayload(card *models.Card, options []string, pairs []models.MatchPair) error {
	if card.Question == "" {
		return ValidationErrors{*NewValidationError("question", "must not be blank", card.Question)}
	}
	if card.Answer == "" {
		return ValidationErrors{*NewValidationError("answer", "must not be blank", card.Answer)}
	}

	payload, err := s.validator.Card().ValidatePayload(card.Type, card.Answer, options, pairs)
	if err != nil {
		return err
	}
	card.OptionsJSON = datatypes.JSON(payload)
	return nil
}

func toCardResponse(card *models.Card, includeAnswer bool) *CardResponse {
	resp := &CardResponse{
		ID:       card.ID,
		DeckID:   card.DeckID,
		Question: card.Question,
		Type:     card.Type,
		Options:  card.Options(),
		Pairs:    card.Pairs(),
	}
	if includeAnswer {
		resp.Answer = card.Answer
	}
	return resp
}
