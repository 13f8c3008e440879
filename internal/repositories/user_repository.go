package repositories

import (
	"context"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"gorm.io/gorm"
)

// UserRepository interface for user account operations
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) (map[uint]*models.User, error)
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)

	// Refresh token rotation
	UpdateRefreshToken(ctx context.Context, tx *gorm.DB, id uint, token *string) error

	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}
