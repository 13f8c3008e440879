package models

import (
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

func (v Visibility) IsValid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type Deck struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:200;index"`
	Description *string    `json:"description" gorm:"type:text"`
	Tags        string     `json:"tags" gorm:"size:500"`
	Visibility  Visibility `json:"visibility" gorm:"not null;default:private;size:10;index"`
	OwnerID     uint       `json:"owner_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner     User           `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Cards     []Card         `json:"-" gorm:"foreignKey:DeckID;constraint:OnDelete:CASCADE"`
	Likes     []DeckLike     `json:"-" gorm:"foreignKey:DeckID;constraint:OnDelete:CASCADE"`
	Favorites []DeckFavorite `json:"-" gorm:"foreignKey:DeckID;constraint:OnDelete:CASCADE"`
}

func (Deck) TableName() string {
	return "decks"
}

func (d *Deck) IsPublic() bool {
	return d.Visibility == VisibilityPublic
}

// CanAccess reports whether userID may read the deck and its cards.
func (d *Deck) CanAccess(userID uint) bool {
	return d.IsPublic() || d.OwnerID == userID
}

func (d *Deck) IsOwnedBy(userID uint) bool {
	return d.OwnerID == userID
}

// TagList splits the comma-joined tag column, dropping blanks.
func (d *Deck) TagList() []string {
	return SplitTags(d.Tags)
}

func SplitTags(tags string) []string {
	var out []string
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return strings.Join(cleaned, ",")
}
