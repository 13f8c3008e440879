package handlers

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type DeckHandler struct {
	BaseHandler
	deckService       services.DeckService
	engagementService services.EngagementService
}

func NewDeckHandler(
	deckService services.DeckService,
	engagementService services.EngagementService,
	logger utils.Logger,
) *DeckHandler {
	return &DeckHandler{
		BaseHandler:       NewBaseHandler(logger),
		deckService:       deckService,
		engagementService: engagementService,
	}
}

// CreateDeck creates a new deck owned by the caller
// @Summary Create deck
// @Tags decks
// @Accept json
// @Produce json
// @Param deck body services.CreateDeckRequest true "Deck data"
// @Success 201 {object} services.DeckResponse
// @Failure 400 {object} ErrorResponse
// @Router /decks [post]
func (h *DeckHandler) CreateDeck(c *gin.Context) {
	var req services.CreateDeckRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	deck, err := h.deckService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, deck)
}

// GetDeck retrieves a deck by ID
// @Summary Get deck
// @Tags decks
// @Produce json
// @Param id path uint true "Deck ID"
// @Success 200 {object} services.DeckResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /decks/{id} [get]
func (h *DeckHandler) GetDeck(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	deck, err := h.deckService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, deck)
}

// UpdateDeck applies a partial update to a deck
// @Summary Update deck
// @Tags decks
// @Accept json
// @Produce json
// @Param id path uint true "Deck ID"
// @Param deck body services.UpdateDeckRequest true "Fields to change"
// @Success 200 {object} services.DeckResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /decks/{id} [patch]
func (h *DeckHandler) UpdateDeck(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateDeckRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Updating deck", "deck_id", id)

	deck, err := h.deckService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, deck)
}

// DeleteDeck deletes a deck and its cards
// @Summary Delete deck
// @Tags decks
// @Param id path uint true "Deck ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /decks/{id} [delete]
func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deleting deck", "deck_id", id)

	if err := h.deckService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListDecks lists decks visible to the caller
// @Summary List decks
// @Tags decks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Param search query string false "Title search"
// @Param tag query string false "Tag filter"
// @Success 200 {object} services.DeckListResponse
// @Router /decks [get]
func (h *DeckHandler) ListDecks(c *gin.Context) {
	h.listWith(c, h.deckService.List)
}

// ListMyDecks lists the caller's own decks
// @Summary List my decks
// @Tags decks
// @Produce json
// @Success 200 {object} services.DeckListResponse
// @Router /decks/my [get]
func (h *DeckHandler) ListMyDecks(c *gin.Context) {
	h.listWith(c, h.deckService.ListMine)
}

// ListPublicDecks lists public decks
// @Summary List public decks
// @Tags decks
// @Produce json
// @Success 200 {object} services.DeckListResponse
// @Router /decks/public [get]
func (h *DeckHandler) ListPublicDecks(c *gin.Context) {
	h.listWith(c, h.deckService.ListPublic)
}

// ListFavoriteDecks lists decks the caller favorited
// @Summary List favorite decks
// @Tags decks
// @Produce json
// @Success 200 {object} services.DeckListResponse
// @Router /decks/favorites [get]
func (h *DeckHandler) ListFavoriteDecks(c *gin.Context) {
	h.listWith(c, h.engagementService.ListFavorites)
}

// LikeDeck marks a deck as liked
// @Summary Like deck
// @Tags decks
// @Produce json
// @Param id path uint true "Deck ID"
// @Success 200 {object} services.EngagementResponse
// @Router /decks/{id}/like [post]
func (h *DeckHandler) LikeDeck(c *gin.Context) {
	h.engageWith(c, h.engagementService.Like)
}

// UnlikeDeck removes the caller's like
// @Summary Unlike deck
// @Tags decks
// @Produce json
// @Param id path uint true "Deck ID"
// @Success 200 {object} services.EngagementResponse
// @Router /decks/{id}/like [delete]
func (h *DeckHandler) UnlikeDeck(c *gin.Context) {
	h.engageWith(c, h.engagementService.Unlike)
}

// FavoriteDeck adds a deck to the caller's favorites
// @Summary Favorite deck
// @Tags decks
// @Produce json
// @Param id path uint true "Deck ID"
// @Success 200 {object} services.EngagementResponse
// @Router /decks/{id}/favorite [post]
func (h *DeckHandler) FavoriteDeck(c *gin.Context) {
	h.engageWith(c, h.engagementService.Favorite)
}

// UnfavoriteDeck removes a deck from the caller's favorites
// @Summary Unfavorite deck
// @Tags decks
// @Produce json
// @Param id path uint true "Deck ID"
// @Success 200 {object} services.EngagementResponse
// @Router /decks/{id}/favorite [delete]
func (h *DeckHandler) UnfavoriteDeck(c *gin.Context) {
	h.engageWith(c, h.engagementService.Unfavorite)
}

type deckLister func(ctx context.Context, req *services.DeckListRequest, userID uint) (*services.DeckListResponse, error)

type engagementAction func(ctx context.Context, deckID uint, userID uint) (*services.EngagementResponse, error)

func (h *DeckHandler) listWith(c *gin.Context, list deckLister) {
	var req services.DeckListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
			Code:    CodeInvalidInput,
		})
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	decks, err := list(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	setPaginationHeaders(c, decks.Total, decks.TotalPages)
	c.JSON(http.StatusOK, decks)
}

func (h *DeckHandler) engageWith(c *gin.Context, action engagementAction) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	result, err := action(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
