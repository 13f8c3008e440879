package validator

import (
	"encoding/json"
	"testing"

	apperrors "github.com/SAP-F-2025/flashcard-service/internal/errors"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type deckRequest struct {
	Title      string   `json:"title" validate:"required,min=1,max=200"`
	Visibility string   `json:"visibility" validate:"required,visibility"`
	Tags       []string `json:"tags" validate:"deck_tags"`
	CardType   string   `json:"qtype" validate:"omitempty,card_type"`
}

func TestValidator_Validate(t *testing.T) {
	v := New()

	t.Run("valid request", func(t *testing.T) {
		err := v.Validate(&deckRequest{Title: "Capitals", Visibility: "public", Tags: []string{"geo"}, CardType: "mcq"})
		assert.NoError(t, err)
	})

	t.Run("uses json field names", func(t *testing.T) {
		err := v.Validate(&deckRequest{Visibility: "friends", CardType: "essay"})
		require.Error(t, err)

		var verrs apperrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)

		fields := map[string]string{}
		for _, e := range verrs {
			fields[e.Field] = e.Rule
		}
		assert.Equal(t, "required", fields["title"])
		assert.Equal(t, "visibility", fields["visibility"])
		assert.Equal(t, "card_type", fields["qtype"])
	})

	t.Run("too many tags", func(t *testing.T) {
		tags := make([]string, 21)
		for i := range tags {
			tags[i] = "t"
		}
		err := v.Validate(&deckRequest{Title: "x", Visibility: "private", Tags: tags})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tags")
	})
}

func TestCardValidator_ValidatePayload(t *testing.T) {
	cv := NewCardValidator()

	t.Run("mcq normalises options", func(t *testing.T) {
		raw, err := cv.ValidatePayload(models.CardTypeMCQ, "paris", []string{" Paris ", "Rome", "Berlin", "Madrid"}, nil)
		require.NoError(t, err)

		var options []string
		require.NoError(t, json.Unmarshal(raw, &options))
		assert.Equal(t, []string{"Paris", "Rome", "Berlin", "Madrid"}, options)
	})

	t.Run("mcq needs four options", func(t *testing.T) {
		_, err := cv.ValidatePayload(models.CardTypeMCQ, "Paris", []string{"Paris", "Rome", "Berlin"}, nil)
		assert.Error(t, err)
	})

	t.Run("mcq options must be distinct", func(t *testing.T) {
		_, err := cv.ValidatePayload(models.CardTypeMCQ, "Paris", []string{"Paris", "paris", "Berlin", "Madrid"}, nil)
		assert.Error(t, err)
	})

	t.Run("mcq rejects empty option", func(t *testing.T) {
		_, err := cv.ValidatePayload(models.CardTypeMCQ, "Paris", []string{"Paris", " ", "Berlin", "Madrid"}, nil)
		assert.Error(t, err)
	})

	t.Run("mcq answer must be an option", func(t *testing.T) {
		_, err := cv.ValidatePayload(models.CardTypeMCQ, "Lisbon", []string{"Paris", "Rome", "Berlin", "Madrid"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "answer")
	})

	t.Run("match needs exactly four pairs", func(t *testing.T) {
		pairs := []models.MatchPair{{Left: "a", Right: "1"}, {Left: "b", Right: "2"}, {Left: "c", Right: "3"}}
		_, err := cv.ValidatePayload(models.CardTypeMatch, "a1 b2 c3", nil, pairs)
		assert.Error(t, err)

		pairs = append(pairs, models.MatchPair{Left: "d", Right: "4"})
		raw, err := cv.ValidatePayload(models.CardTypeMatch, "a1 b2 c3 d4", nil, pairs)
		require.NoError(t, err)
		assert.NotEmpty(t, raw)
	})

	t.Run("match pairs need both sides", func(t *testing.T) {
		pairs := []models.MatchPair{{Left: "a", Right: "1"}, {Left: "b", Right: ""}, {Left: "c", Right: "3"}, {Left: "d", Right: "4"}}
		_, err := cv.ValidatePayload(models.CardTypeMatch, "x", nil, pairs)
		assert.Error(t, err)
	})

	t.Run("fillups carries no payload", func(t *testing.T) {
		raw, err := cv.ValidatePayload(models.CardTypeFillups, "answer", nil, nil)
		require.NoError(t, err)
		assert.Nil(t, raw)

		_, err = cv.ValidatePayload(models.CardTypeFillups, "answer", []string{"a"}, nil)
		assert.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := cv.ValidatePayload(models.CardType("essay"), "x", nil, nil)
		assert.Error(t, err)
	})
}

func TestCardValidator_ValidateCard(t *testing.T) {
	cv := NewCardValidator()

	card := &models.Card{
		Question:    "Capital of France?",
		Answer:      "Paris",
		Type:        models.CardTypeMCQ,
		OptionsJSON: datatypes.JSON(`["Paris","Rome","Berlin","Madrid"]`),
	}
	assert.NoError(t, cv.ValidateCard(card))

	card.OptionsJSON = datatypes.JSON(`{"not":"a list"}`)
	assert.Error(t, cv.ValidateCard(card))

	fill := &models.Card{Question: "2+2", Answer: "4", Type: models.CardTypeFillups}
	assert.NoError(t, cv.ValidateCard(fill))
}
