package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/SAP-F-2025/flashcard-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
	}
}

// quickTestRequest is optional; an empty body picks any subject
type quickTestRequest struct {
	Subject string `json:"subject"`
}

// GetDashboard returns popular decks, platform stats and recent activity
// @Summary Get dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.DashboardResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	overview, err := h.dashboardService.Overview(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// Discover lists public decks by subject and size
// @Summary Discover decks
// @Tags dashboard
// @Produce json
// @Param subject query string false "Subject tag"
// @Param min_cards query int false "Minimum card count"
// @Param limit query int false "Max decks" default(10)
// @Success 200 {array} services.DeckResponse
// @Router /dashboard/discover [get]
func (h *DashboardHandler) Discover(c *gin.Context) {
	var req services.DiscoverRequest
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

	decks, err := h.dashboardService.Discover(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, decks)
}

// GetSubjects lists subjects with at least one public deck
// @Summary Get subjects
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.SubjectsResponse
// @Router /dashboard/subjects [get]
func (h *DashboardHandler) GetSubjects(c *gin.Context) {
	subjects, err := h.dashboardService.Subjects(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// QuickTest starts a session on a random public deck
// @Summary Quick test
// @Tags dashboard
// @Accept json
// @Produce json
// @Param subject query string false "Subject tag"
// @Success 200 {object} services.StartSessionResponse
// @Failure 404 {object} ErrorResponse
// @Router /dashboard/quick-test [post]
func (h *DashboardHandler) QuickTest(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" && c.Request.ContentLength > 0 {
		var req quickTestRequest
		if !h.bindJSON(c, &req) {
			return
		}
		subject = req.Subject
	}

	userID, ok := h.getUserID(c)
	if !ok {
		return
	}

	session, err := h.dashboardService.QuickTest(c.Request.Context(), subject, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}
