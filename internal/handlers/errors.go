package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/SAP-F-2025/flashcard-service/internal/errors"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/gin-gonic/gin"
)

// handleServiceError maps service errors onto HTTP statuses and error codes.
// Unclassified errors are logged and answered with a generic 500.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs apperrors.ValidationErrors
	var validationErr *apperrors.ValidationError
	var permissionErr *services.PermissionError
	var businessErr *services.BusinessRuleError

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
			Code:    CodeInvalidInput,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: apperrors.ValidationErrors{*validationErr},
			Code:    CodeInvalidInput,
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
			Code:    CodeInvalidInput,
		})
	case services.IsInvalidState(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
			Code:    CodeInvalidState,
		})
	case services.IsUnauthorized(err):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: err.Error(),
			Code:    CodeUnauthorized,
		})
	case errors.As(err, &permissionErr):
		h.LogWarn(c, "Permission denied",
			"resource", permissionErr.Resource,
			"resource_id", permissionErr.ResourceID,
			"action", permissionErr.Action)
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: permissionErr.Reason,
			Code:    CodeForbidden,
		})
	case services.IsForbidden(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Code:    CodeForbidden,
		})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
			Code:    CodeNotFound,
		})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
			Code:    CodeConflict,
		})
	case errors.As(err, &businessErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessErr.Message,
			Details: businessErr.Context,
			Code:    businessErr.Rule,
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Code:    CodeInternal,
		})
	}
}
