package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repository groups every repository behind one handle shared by services
type Repository interface {
	User() UserRepository
	Deck() DeckRepository
	Card() CardRepository
	Session() SessionRepository
	Engagement() EngagementRepository

	// WithTransaction runs fn in a database transaction. fn receives the
	// transaction handle to pass to repository methods.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
