package repositories

import (
	"context"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"gorm.io/gorm"
)

// SessionRepository interface for test session operations
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.TestSession) error
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*models.TestSession, error)

	// Complete finalizes an in-progress session. It returns false without
	// writing when the session is unknown or already completed.
	Complete(ctx context.Context, tx *gorm.DB, sessionID string, completion SessionCompletion) (bool, error)

	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters SessionFilters) ([]*models.TestSession, int64, error)
	// ListCompleted returns completed sessions oldest first, optionally narrowed to a user
	ListCompleted(ctx context.Context, tx *gorm.DB, userID *uint, filters SessionFilters) ([]*models.TestSession, error)
	CountCompleted(ctx context.Context, tx *gorm.DB) (int64, error)
}
