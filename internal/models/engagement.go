package models

import "time"

type DeckLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_deck_like_user_deck"`
	DeckID    uint      `json:"deck_id" gorm:"not null;uniqueIndex:idx_deck_like_user_deck;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (DeckLike) TableName() string {
	return "deck_likes"
}

type DeckFavorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_deck_favorite_user_deck"`
	DeckID    uint      `json:"deck_id" gorm:"not null;uniqueIndex:idx_deck_favorite_user_deck;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (DeckFavorite) TableName() string {
	return "deck_favorites"
}
