package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartTest starts a timed test session on a deck
// @Summary Start test
// @Description Creates a session and returns the shuffled cards without answers
// @Tags tests
// @Accept json
// @Produce json
// @Param request body services.StartSessionRequest true "Deck and timing"
// @Success 200 {object} services.StartSessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/start [post]
func (h *SessionHandler) StartTest(c *gin.Context) {
	var req services.StartSessionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting test session", "deck_id", req.DeckID)

	session, err := h.sessionService.Start(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SubmitAnswer checks a single answer without changing the session
// @Summary Submit answer
// @Tags tests
// @Accept json
// @Produce json
// @Param session_id query string true "Session ID"
// @Param request body services.SubmitAnswerRequest true "Answer"
// @Success 200 {object} services.SubmitAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/submit-answer [post]
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	var req services.SubmitAnswerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	result, err := h.sessionService.SubmitAnswer(c.Request.Context(), sessionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CompleteTest finalizes a session with the client's answer list
// @Summary Complete test
// @Description Accepts {answers, started_at} or a bare answer array
// @Tags tests
// @Accept json
// @Produce json
// @Param session_id query string true "Session ID"
// @Param started_at query string false "Session start time"
// @Success 200 {object} services.SessionResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tests/complete [post]
func (h *SessionHandler) CompleteTest(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
			Code:    CodeInvalidInput,
		})
		return
	}

	var req services.CompleteSessionRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
				Code:    CodeInvalidInput,
			})
			return
		}
	}
	if req.StartedAt == nil {
		if startedAt := strings.TrimSpace(c.Query("started_at")); startedAt != "" {
			req.StartedAt = &startedAt
		}
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Completing test session", "session_id", sessionID, "answers", len(req.Answers))

	result, err := h.sessionService.Complete(c.Request.Context(), sessionID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResults returns the full result of a completed session
// @Summary Get session results
// @Tags tests
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} services.SessionResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/sessions/{session_id}/results [get]
func (h *SessionHandler) GetResults(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Results(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSummary returns the score counts of a session
// @Summary Get session summary
// @Tags tests
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} services.SessionSummary
// @Failure 404 {object} ErrorResponse
// @Router /tests/sessions/{session_id}/summary [get]
func (h *SessionHandler) GetSummary(c *gin.Context) {
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	summary, err := h.sessionService.ResultSummary(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetHistory lists the caller's sessions, newest first
// @Summary Get test history
// @Tags tests
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} services.SessionHistoryResponse
// @Router /tests/history [get]
func (h *SessionHandler) GetHistory(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	page := h.parseIntQuery(c, "page", 1)
	size := h.parseIntQuery(c, "size", 10)

	history, err := h.sessionService.History(c.Request.Context(), userID, page, size)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	totalPages := 0
	if history.Size > 0 {
		totalPages = int((history.Total + int64(history.Size) - 1) / int64(history.Size))
	}
	setPaginationHeaders(c, history.Total, totalPages)

	c.JSON(http.StatusOK, history)
}

// GetStats returns the caller's aggregate test statistics
// @Summary Get test stats
// @Tags tests
// @Produce json
// @Success 200 {object} services.TestStats
// @Router /tests/stats [get]
func (h *SessionHandler) GetStats(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	stats, err := h.sessionService.Stats(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetLeaderboard ranks users by best accuracy
// @Summary Get leaderboard
// @Tags tests
// @Produce json
// @Param deck_id query int false "Restrict to one deck"
// @Param limit query int false "Max entries" default(10)
// @Success 200 {array} services.LeaderboardEntry
// @Router /tests/leaderboard [get]
func (h *SessionHandler) GetLeaderboard(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}
	deckID := h.parseUintQueryPtr(c, "deck_id")
	limit := h.parseIntQuery(c, "limit", 10)

	entries, err := h.sessionService.Leaderboard(c.Request.Context(), deckID, limit, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetRandomDeck picks a random public deck, optionally by subject
// @Summary Get random deck
// @Tags tests
// @Produce json
// @Param subject query string false "Subject tag"
// @Success 200 {object} services.DeckResponse
// @Failure 404 {object} ErrorResponse
// @Router /tests/random-deck [get]
func (h *SessionHandler) GetRandomDeck(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	deck, err := h.sessionService.RandomDeck(c.Request.Context(), c.Query("subject"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, deck)
}
