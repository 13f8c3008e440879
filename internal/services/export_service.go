package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	historySheet = "Sessions"
	answersSheet = "Answers"
	summarySheet = "Summary"
	timeLayout   = "2006-01-02 15:04:05"
)

type exportService struct {
	repo     repositories.Repository
	sessions SessionService
	logger   *slog.Logger
}

func NewExportService(repo repositories.Repository, sessions SessionService, logger *slog.Logger) ExportService {
	return &exportService{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// ExportHistory writes one row per completed session of the user
func (s *exportService) ExportHistory(ctx context.Context, userID uint) ([]byte, error) {
	s.logger.Info("Exporting session history", "user_id", userID)

	sessions, err := s.repo.Session().ListCompleted(ctx, nil, &userID, repositories.SessionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	decks, err := s.repo.Deck().GetByIDs(ctx, nil, sessionDeckIDs(sessions))
	if err != nil {
		return nil, fmt.Errorf("failed to get decks: %w", err)
	}

	f, err := newWorkbook(historySheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers := []interface{}{
		"Session ID", "Deck", "Started At", "Completed At",
		"Total Cards", "Correct Answers", "Accuracy (%)", "Total Time (seconds)",
	}
	if err := writeRow(f, historySheet, 1, headers); err != nil {
		return nil, err
	}

	for i, session := range sessions {
		_, total, correct, _ := resultCounts(session)
		deckTitle := ""
		if deck, ok := decks[session.DeckID]; ok {
			deckTitle = deck.Title
		}
		totalTime := 0
		if session.TotalTime != nil {
			totalTime = *session.TotalTime
		}

		row := []interface{}{
			session.SessionID,
			deckTitle,
			session.StartedAt.UTC().Format(timeLayout),
			session.CompletedAt.UTC().Format(timeLayout),
			total,
			correct,
			Accuracy(correct, total),
			totalTime,
		}
		if err := writeRow(f, historySheet, i+2, row); err != nil {
			return nil, err
		}
	}

	return writeWorkbook(f)
}

// ExportSession writes the answer log of one completed session. Access rules
// are those of Results.
func (s *exportService) ExportSession(ctx context.Context, sessionID string, userID uint) ([]byte, error) {
	result, err := s.sessions.Results(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	cardIDs := make([]uint, 0, len(result.Answers))
	for _, a := range result.Answers {
		cardIDs = append(cardIDs, a.CardID)
	}
	cards, err := s.repo.Card().GetByIDs(ctx, nil, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}

	f, err := newWorkbook(answersSheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers := []interface{}{"Card ID", "Question", "Your Answer", "Correct Answer", "Correct", "Time Taken (seconds)"}
	if err := writeRow(f, answersSheet, 1, headers); err != nil {
		return nil, err
	}

	for i, answer := range result.Answers {
		if err := writeRow(f, answersSheet, i+2, answerRow(answer, cards[answer.CardID], result.DeckID)); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Session ID", result.SessionID},
		{"Deck", result.DeckTitle},
		{"Deck Owner", result.DeckOwner},
		{"Total Cards", result.TotalCards},
		{"Correct Answers", result.CorrectAnswers},
		{"Accuracy (%)", result.Accuracy},
		{"Total Time (seconds)", result.TotalTime},
		{"Completed At", result.CompletedAt.UTC().Format(timeLayout)},
	}
	for i, row := range summary {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	return writeWorkbook(f)
}

// answerRow only reveals the question and answer of cards from the session deck
func answerRow(answer models.AnswerRecord, card *models.Card, deckID uint) []interface{} {
	question, correctAnswer := "", ""
	if card != nil && card.DeckID == deckID {
		question = card.Question
		correctAnswer = card.Answer
	}

	verdict := "No"
	if answer.IsCorrect {
		verdict = "Yes"
	}

	var timeTaken interface{} = ""
	if answer.TimeTaken != nil {
		timeTaken = *answer.TimeTaken
	}

	return []interface{}{answer.CardID, question, answer.UserAnswer, correctAnswer, verdict, timeTaken}
}

// ===== WORKBOOK HELPERS =====

func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func writeWorkbook(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}
