package validator

import (
	"strings"

	apperrors "github.com/SAP-F-2025/flashcard-service/internal/errors"
)

// forbiddenSubstrings is a denylist against injection-looking input. It also
// rejects harmless answers that contain these sequences.
var forbiddenSubstrings = []string{";", "--", "'", "\"", "/*", "*/", "xp_"}

// Sanitize checks a free-text value received from a client and returns it
// trimmed. value must be a string or *string.
func Sanitize(field string, value interface{}) (string, error) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return "", sanitizeError(field, "is required", "required", nil)
		}
		s = *v
	default:
		return "", sanitizeError(field, "must be a string", "string", value)
	}

	return SanitizeString(field, s)
}

// SanitizeString is Sanitize for values already known to be strings.
func SanitizeString(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)

	for _, r := range trimmed {
		if r < 32 {
			return "", sanitizeError(field, "must not contain control characters", "control_chars", nil)
		}
	}

	for _, bad := range forbiddenSubstrings {
		if strings.Contains(trimmed, bad) {
			return "", sanitizeError(field, "contains forbidden characters", "forbidden_substring", bad)
		}
	}

	return trimmed, nil
}

func sanitizeError(field, message, rule string, value interface{}) error {
	return apperrors.ValidationErrors{*apperrors.NewValidationErrorWithRule(field, message, rule, value)}
}
