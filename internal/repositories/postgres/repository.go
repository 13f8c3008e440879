package postgres

import (
	"context"

	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db         *gorm.DB
	user       repositories.UserRepository
	deck       repositories.DeckRepository
	card       repositories.CardRepository
	session    repositories.SessionRepository
	engagement repositories.EngagementRepository
}

// NewRepository wires every gorm repository onto one connection
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:         db,
		user:       NewUserPostgreSQL(db),
		deck:       NewDeckPostgreSQL(db),
		card:       NewCardPostgreSQL(db),
		session:    NewSessionPostgreSQL(db),
		engagement: NewEngagementPostgreSQL(db),
	}
}

func (r *repository) User() repositories.UserRepository             { return r.user }
func (r *repository) Deck() repositories.DeckRepository             { return r.deck }
func (r *repository) Card() repositories.CardRepository             { return r.card }
func (r *repository) Session() repositories.SessionRepository       { return r.session }
func (r *repository) Engagement() repositories.EngagementRepository { return r.engagement }

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
