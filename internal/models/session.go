package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// TestSession is one timed run through a deck. A non-nil CompletedAt is terminal.
type TestSession struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	SessionID      string         `json:"session_id" gorm:"uniqueIndex;not null;size:64"`
	UserID         uint           `json:"user_id" gorm:"not null;index"`
	DeckID         uint           `json:"deck_id" gorm:"not null;index"`
	StartedAt      time.Time      `json:"started_at" gorm:"not null"`
	CompletedAt    *time.Time     `json:"completed_at" gorm:"index"`
	TotalCards     int            `json:"total_cards" gorm:"not null;default:0"`
	CorrectAnswers *int           `json:"correct_answers"`
	TotalTime      *int           `json:"total_time"`
	AnswersJSON    datatypes.JSON `json:"-" gorm:"column:answers_json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TestSession) TableName() string {
	return "test_sessions"
}

func (s *TestSession) IsCompleted() bool {
	return s.CompletedAt != nil
}

func (s *TestSession) IsOwnedBy(userID uint) bool {
	return s.UserID == userID
}

// Answers decodes the answer log. Corrupt or missing JSON yields an empty log.
func (s *TestSession) Answers() []AnswerRecord {
	answers, err := s.DecodeAnswers()
	if err != nil {
		return []AnswerRecord{}
	}
	return answers
}

// DecodeAnswers is Answers with the decode error exposed. A missing log is
// not an error.
func (s *TestSession) DecodeAnswers() ([]AnswerRecord, error) {
	if len(s.AnswersJSON) == 0 || string(s.AnswersJSON) == "null" {
		return []AnswerRecord{}, nil
	}
	var answers []AnswerRecord
	if err := json.Unmarshal(s.AnswersJSON, &answers); err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []AnswerRecord{}
	}
	return answers, nil
}

// AnswerRecord is one entry of a session's answer log.
type AnswerRecord struct {
	CardID     uint            `json:"card_id"`
	UserAnswer string          `json:"user_answer"`
	IsCorrect  bool            `json:"is_correct"`
	TimeTaken  *int            `json:"time_taken"`
	Options    json.RawMessage `json:"options"`
}

func EncodeAnswers(answers []AnswerRecord) (datatypes.JSON, error) {
	if answers == nil {
		answers = []AnswerRecord{}
	}
	data, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
