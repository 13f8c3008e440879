package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type CardType string

const (
	CardTypeMCQ     CardType = "mcq"
	CardTypeFillups CardType = "fillups"
	CardTypeMatch   CardType = "match"
)

func (t CardType) IsValid() bool {
	switch t {
	case CardTypeMCQ, CardTypeFillups, CardTypeMatch:
		return true
	}
	return false
}

const (
	MinMCQOptions   = 4
	MatchPairsCount = 4
)

// MatchPair is one row of a matching card.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type Card struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	DeckID   uint     `json:"deck_id" gorm:"not null;index"`
	Question string   `json:"question" gorm:"type:text;not null"`
	Answer   string   `json:"answer" gorm:"type:text;not null"`
	Type     CardType `json:"qtype" gorm:"column:qtype;not null;default:fillups;size:20"`

	// mcq: []string, match: []MatchPair, fillups: empty
	OptionsJSON datatypes.JSON `json:"-" gorm:"column:options_json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Card) TableName() string {
	return "cards"
}

// Options decodes the mcq option list. A malformed payload yields nil.
func (c *Card) Options() []string {
	if c.Type != CardTypeMCQ || len(c.OptionsJSON) == 0 {
		return nil
	}
	var options []string
	if err := json.Unmarshal(c.OptionsJSON, &options); err != nil {
		return nil
	}
	return options
}

// Pairs decodes the match pairs. A malformed payload yields nil.
func (c *Card) Pairs() []MatchPair {
	if c.Type != CardTypeMatch || len(c.OptionsJSON) == 0 {
		return nil
	}
	var pairs []MatchPair
	if err := json.Unmarshal(c.OptionsJSON, &pairs); err != nil {
		return nil
	}
	return pairs
}

// RawOptions returns the stored payload when it is well-formed JSON.
func (c *Card) RawOptions() json.RawMessage {
	if len(c.OptionsJSON) == 0 || !json.Valid(c.OptionsJSON) {
		return nil
	}
	if string(c.OptionsJSON) == "null" {
		return nil
	}
	return json.RawMessage(c.OptionsJSON)
}
