package services

import (
	"math"
	"strings"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// startedAtLayouts are tried in order. Layouts without a zone are read as UTC.
var startedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeAnswer is the comparison form of an answer: trimmed and lowercased.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func IsCorrectAnswer(submitted, stored string) bool {
	return NormalizeAnswer(submitted) == NormalizeAnswer(stored)
}

// Accuracy returns correct/total as a percentage rounded to two decimals.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}

func CountCorrect(answers []models.AnswerRecord) int {
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	return correct
}

// TotalTime is the whole seconds elapsed since startedAt when it is known,
// otherwise the sum of the per-answer times. A startedAt in the future gives 0.
func TotalTime(answers []models.AnswerRecord, startedAt *time.Time, now time.Time) int {
	if startedAt != nil {
		elapsed := now.Sub(*startedAt)
		if elapsed < 0 {
			return 0
		}
		return int(elapsed / time.Second)
	}

	total := 0
	for _, a := range answers {
		if a.TimeTaken != nil {
			total += *a.TimeTaken
		}
	}
	return total
}

// ParseStartedAt parses a client supplied start timestamp.
func ParseStartedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range startedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}
