package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type CardHandler struct {
	BaseHandler
	cardService services.CardService
}

func NewCardHandler(cardService services.CardService, logger utils.Logger) *CardHandler {
	return &CardHandler{
		BaseHandler: NewBaseHandler(logger),
		cardService: cardService,
	}
}

// CreateCard adds a card to a deck
// @Summary Create card
// @Tags cards
// @Accept json
// @Produce json
// @Param id path uint true "Deck ID"
// @Param card body services.CreateCardRequest true "Card data"
// @Success 201 {object} services.CardResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /decks/{id}/cards [post]
func (h *CardHandler) CreateCard(c *gin.Context) {
	deckID := h.parseIDParam(c, "id")
	if deckID == 0 {
		return
	}

	var req services.CreateCardRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	card, err := h.cardService.Create(c.Request.Context(), deckID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, card)
}

// ListCards lists the cards of a deck
// @Summary List cards
// @Tags cards
// @Produce json
// @Param id path uint true "Deck ID"
// @Success 200 {array} services.CardResponse
// @Router /decks/{id}/cards [get]
func (h *CardHandler) ListCards(c *gin.Context) {
	deckID := h.parseIDParam(c, "id")
	if deckID == 0 {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	cards, err := h.cardService.ListByDeck(c.Request.Context(), deckID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cards)
}

// GetCard retrieves one card of a deck
// @Summary Get card
// @Tags cards
// @Produce json
// @Param id path uint true "Deck ID"
// @Param card_id path uint true "Card ID"
// @Success 200 {object} services.CardResponse
// @Failure 404 {object} ErrorResponse
// @Router /decks/{id}/cards/{card_id} [get]
func (h *CardHandler) GetCard(c *gin.Context) {
	deckID, cardID, ok := h.cardParams(c)
	if !ok {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	card, err := h.cardService.GetByID(c.Request.Context(), deckID, cardID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// UpdateCard applies a partial update to a card
// @Summary Update card
// @Tags cards
// @Accept json
// @Produce json
// @Param id path uint true "Deck ID"
// @Param card_id path uint true "Card ID"
// @Param card body services.UpdateCardRequest true "Fields to change"
// @Success 200 {object} services.CardResponse
// @Router /decks/{id}/cards/{card_id} [patch]
func (h *CardHandler) UpdateCard(c *gin.Context) {
	deckID, cardID, ok := h.cardParams(c)
	if !ok {
		return
	}

	var req services.UpdateCardRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	card, err := h.cardService.Update(c.Request.Context(), deckID, cardID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// DeleteCard removes a card from a deck
// @Summary Delete card
// @Tags cards
// @Param id path uint true "Deck ID"
// @Param card_id path uint true "Card ID"
// @Success 204
// @Router /decks/{id}/cards/{card_id} [delete]
func (h *CardHandler) DeleteCard(c *gin.Context) {
	deckID, cardID, ok := h.cardParams(c)
	if !ok {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	if err := h.cardService.Delete(c.Request.Context(), deckID, cardID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CardHandler) cardParams(c *gin.Context) (uint, uint, bool) {
	deckID := h.parseIDParam(c, "id")
	if deckID == 0 {
		return 0, 0, false
	}
	cardID := h.parseIDParam(c, "card_id")
	if cardID == 0 {
		return 0, 0, false
	}
	return deckID, cardID, true
}
