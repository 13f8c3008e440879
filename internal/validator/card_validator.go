package validator

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/SAP-F-2025/flashcard-service/internal/errors"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// CardValidator handles card-type specific payload validation
type CardValidator struct{}

// NewCardValidator creates a new card validator
func NewCardValidator() *CardValidator {
	return &CardValidator{}
}

// ValidatePayload checks that the option payload matches the card type and
// returns it normalised for storage. fillups cards carry no payload.
func (v *CardValidator) ValidatePayload(cardType models.CardType, answer string, options []string, pairs []models.MatchPair) (json.RawMessage, error) {
	switch cardType {
	case models.CardTypeMCQ:
		if len(pairs) > 0 {
			return nil, invalidPayload("pairs", "are not allowed for mcq cards")
		}
		return v.validateMCQ(answer, options)
	case models.CardTypeMatch:
		if len(options) > 0 {
			return nil, invalidPayload("options", "are not allowed for match cards")
		}
		return v.validateMatch(pairs)
	case models.CardTypeFillups:
		if len(options) > 0 || len(pairs) > 0 {
			return nil, invalidPayload("options", "are not allowed for fillups cards")
		}
		return nil, nil
	default:
		return nil, apperrors.NewValidationErrorWithRule("qtype", "must be a valid card type (mcq, fillups, match)", "card_type", cardType)
	}
}

// ValidateCard validates a complete card against its stored payload
func (v *CardValidator) ValidateCard(card *models.Card) error {
	if strings.TrimSpace(card.Question) == "" {
		return invalidPayload("question", "is required")
	}
	if strings.TrimSpace(card.Answer) == "" {
		return invalidPayload("answer", "is required")
	}

	var options []string
	var pairs []models.MatchPair
	if len(card.OptionsJSON) > 0 && string(card.OptionsJSON) != "null" {
		var err error
		switch card.Type {
		case models.CardTypeMCQ:
			err = json.Unmarshal(card.OptionsJSON, &options)
		case models.CardTypeMatch:
			err = json.Unmarshal(card.OptionsJSON, &pairs)
		default:
			return invalidPayload("options", "are not allowed for fillups cards")
		}
		if err != nil {
			return invalidPayload("options", fmt.Sprintf("has an invalid shape: %v", err))
		}
	}

	_, err := v.ValidatePayload(card.Type, card.Answer, options, pairs)
	return err
}

func (v *CardValidator) validateMCQ(answer string, options []string) (json.RawMessage, error) {
	if len(options) < models.MinMCQOptions {
		return nil, invalidPayload("options", fmt.Sprintf("must have at least %d options", models.MinMCQOptions))
	}

	seen := make(map[string]bool, len(options))
	cleaned := make([]string, 0, len(options))
	answerFound := false
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			return nil, invalidPayload("options", "option text cannot be empty")
		}

		key := strings.ToLower(option)
		if seen[key] {
			return nil, invalidPayload("options", fmt.Sprintf("duplicate option '%s'", option))
		}
		seen[key] = true

		if key == strings.ToLower(strings.TrimSpace(answer)) {
			answerFound = true
		}
		cleaned = append(cleaned, option)
	}

	if !answerFound {
		return nil, invalidPayload("answer", "must match one of the options")
	}

	return json.Marshal(cleaned)
}

func (v *CardValidator) validateMatch(pairs []models.MatchPair) (json.RawMessage, error) {
	if len(pairs) != models.MatchPairsCount {
		return nil, invalidPayload("pairs", fmt.Sprintf("must have exactly %d pairs", models.MatchPairsCount))
	}

	cleaned := make([]models.MatchPair, 0, len(pairs))
	for i, pair := range pairs {
		left := strings.TrimSpace(pair.Left)
		right := strings.TrimSpace(pair.Right)
		if left == "" || right == "" {
			return nil, invalidPayload("pairs", fmt.Sprintf("pair %d must have both left and right", i+1))
		}
		cleaned = append(cleaned, models.MatchPair{Left: left, Right: right})
	}

	return json.Marshal(cleaned)
}

func invalidPayload(field, message string) error {
	return apperrors.ValidationErrors{*apperrors.NewValidationErrorWithRule(field, message, "card_payload", nil)}
}
