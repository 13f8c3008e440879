package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"gorm.io/gorm"
)

type SessionPostgreSQL struct {
	helpers *SharedHelpers
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{helpers: NewSharedHelpers(db)}
}

func (s *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.TestSession) error {
	return s.helpers.getDB(ctx, tx).Create(session).Error
}

func (s *SessionPostgreSQL) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID string) (*models.TestSession, error) {
	var session models.TestSession
	if err := s.helpers.getDB(ctx, tx).
		Where("session_id = ?", sessionID).
		First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// Complete is a conditional update guarded by completed_at IS NULL, so two
// racing completions cannot both succeed.
func (s *SessionPostgreSQL) Complete(ctx context.Context, tx *gorm.DB, sessionID string, completion repositories.SessionCompletion) (bool, error) {
	answers, err := models.EncodeAnswers(completion.Answers)
	if err != nil {
		return false, fmt.Errorf("failed to encode answers: %w", err)
	}

	result := s.helpers.getDB(ctx, tx).Model(&models.TestSession{}).
		Where("session_id = ? AND completed_at IS NULL", sessionID).
		Updates(map[string]interface{}{
			"completed_at":    completion.CompletedAt,
			"correct_answers": completion.CorrectAnswers,
			"total_time":      completion.TotalTime,
			"answers_json":    answers,
			"updated_at":      completion.CompletedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *SessionPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.SessionFilters) ([]*models.TestSession, int64, error) {
	db := s.helpers.getDB(ctx, tx)
	base := func() *gorm.DB {
		query := db.Model(&models.TestSession{}).Where("user_id = ?", userID)
		return s.helpers.ApplySessionFilters(query, filters)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sessions []*models.TestSession
	query := s.helpers.ApplyPagination(base().Order("started_at DESC").Order("id DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s *SessionPostgreSQL) ListCompleted(ctx context.Context, tx *gorm.DB, userID *uint, filters repositories.SessionFilters) ([]*models.TestSession, error) {
	query := s.helpers.getDB(ctx, tx).Model(&models.TestSession{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	filters.CompletedOnly = true
	query = s.helpers.ApplySessionFilters(query, filters)

	var sessions []*models.TestSession
	if err := query.Order("completed_at ASC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *SessionPostgreSQL) CountCompleted(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := s.helpers.getDB(ctx, tx).Model(&models.TestSession{}).
		Where("completed_at IS NOT NULL").
		Count(&count).Error
	return count, err
}
