package validator

import (
	"errors"
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/flashcard-service/internal/errors"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	maxDeckTags   = 20
	maxTagLength  = 50
	tagsSeparator = ","
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator *validator.Validate
	cardValidator   *CardValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator: structValidator,
		cardValidator:   NewCardValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures to ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return err
	}

	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

// Card returns the card payload validator
func (v *Validator) Card() *CardValidator {
	return v.cardValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("visibility", validateVisibility)
	validate.RegisterValidation("card_type", validateCardType)
	validate.RegisterValidation("deck_tags", validateDeckTags)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateVisibility(fl validator.FieldLevel) bool {
	return models.Visibility(fl.Field().String()).IsValid()
}

func validateCardType(fl validator.FieldLevel) bool {
	return models.CardType(fl.Field().String()).IsValid()
}

func validateDeckTags(fl validator.FieldLevel) bool {
	var tags []string
	switch fl.Field().Kind() {
	case reflect.String:
		tags = strings.Split(fl.Field().String(), tagsSeparator)
	case reflect.Slice:
		for i := 0; i < fl.Field().Len(); i++ {
			tags = append(tags, fl.Field().Index(i).String())
		}
	default:
		return false
	}

	if len(tags) > maxDeckTags {
		return false
	}
	for _, tag := range tags {
		if len(strings.TrimSpace(tag)) > maxTagLength {
			return false
		}
	}
	return true
}
