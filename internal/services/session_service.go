package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultPerCardSeconds = 10

type SessionOptions struct {
	// VerifyAnswers recomputes correctness from the answer key at completion
	// instead of trusting the client supplied is_correct flags.
	VerifyAnswers bool
}

type sessionService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator
	opts      SessionOptions
	now       func() time.Time
}

func NewSessionService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator, opts SessionOptions) SessionService {
	return &sessionService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "flashcard-service", Component: "sessions"}),
		validator: validator,
		opts:      opts,
		now:       time.Now,
	}
}

// ===== CORE SESSION OPERATIONS =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest, userID uint) (*StartSessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.logger.Info("Starting test session",
		"deck_id", *req.DeckID,
		"user_id", userID)

	deck, err := s.repo.Deck().GetByIDWithOwner(ctx, nil, *req.DeckID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	if !deck.CanAccess(userID) {
		return nil, NewPermissionError(userID, deck.ID, "deck", "test", "deck is private")
	}

	cards, err := s.repo.Card().ListByDeck(ctx, nil, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, ErrDeckHasNoCards
	}

	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	testCards := make([]TestCard, 0, len(cards))
	for _, card := range cards {
		testCards = append(testCards, buildTestCard(card))
	}

	perCard := DefaultPerCardSeconds
	if req.PerCardSeconds != nil {
		perCard = *req.PerCardSeconds
	}
	timeLimit := perCard * len(cards)
	if req.TotalTimeSeconds != nil {
		timeLimit = *req.TotalTimeSeconds
	}

	session := &models.TestSession{
		SessionID:  uuid.NewString(),
		UserID:     userID,
		DeckID:     deck.ID,
		StartedAt:  s.now().UTC(),
		TotalCards: len(cards),
	}

	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventSessionStarted, events.SessionStartedEvent{
		SessionID:  session.SessionID,
		UserID:     userID,
		DeckID:     deck.ID,
		DeckTitle:  deck.Title,
		TotalCards: len(cards),
		TimeLimit:  timeLimit,
		StartedAt:  session.StartedAt,
	}))

	s.logger.Info("Test session started successfully",
		"session_id", session.SessionID,
		"deck_id", deck.ID,
		"user_id", userID,
		"total_cards", len(cards))

	return &StartSessionResponse{
		SessionID:        session.SessionID,
		DeckID:           deck.ID,
		DeckTitle:        deck.Title,
		DeckOwner:        deck.Owner.Email,
		TotalCards:       len(cards),
		Cards:            testCards,
		StartedAt:        session.StartedAt,
		PerCardSeconds:   perCard,
		TimeLimitSeconds: timeLimit,
		EndsAt:           session.StartedAt.Add(time.Duration(timeLimit) * time.Second),
	}, nil
}

func (s *sessionService) SubmitAnswer(ctx context.Context, sessionID string, req *SubmitAnswerRequest, userID uint) (*SubmitAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	userAnswer, err := validator.Sanitize("user_answer", req.UserAnswer)
	if err != nil {
		return nil, err
	}

	session, err := s.getOwnedSession(ctx, sessionID, userID, "submit_answer")
	if err != nil {
		return nil, err
	}

	card, err := s.repo.Card().GetByDeckAndID(ctx, nil, session.DeckID, *req.CardID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	return &SubmitAnswerResponse{
		CardID:        card.ID,
		IsCorrect:     IsCorrectAnswer(userAnswer, card.Answer),
		CorrectAnswer: card.Answer,
		UserAnswer:    userAnswer,
	}, nil
}

func (s *sessionService) Complete(ctx context.Context, sessionID string, req *CompleteSessionRequest, userID uint) (*SessionResult, error) {
	op := s.svcLogger.WithOperation(ctx, "complete_session", userID)
	result, err := s.complete(ctx, op, sessionID, req, userID)
	op.LogResult(sessionID, "test_session", err)
	return result, err
}

func (s *sessionService) complete(ctx context.Context, op *OperationLogger, sessionID string, req *CompleteSessionRequest, userID uint) (*SessionResult, error) {
	if req == nil {
		req = &CompleteSessionRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	submitted, err := sanitizeAnswers(req.Answers)
	if err != nil {
		return nil, err
	}

	var startedAt *time.Time
	if req.StartedAt != nil && strings.TrimSpace(*req.StartedAt) != "" {
		parsed, err := ParseStartedAt(*req.StartedAt)
		if err != nil {
			return nil, err
		}
		startedAt = &parsed
	}

	target, err := s.resolveCompletionTarget(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	records, mismatches, err := s.scoreAnswers(ctx, target.deckID(), submitted)
	if err != nil {
		return nil, err
	}

	completedAt := s.now().UTC()
	totalCards := len(records)
	correct := CountCorrect(records)
	totalTime := TotalTime(records, startedAt, completedAt)

	if !target.ref.IsLegacy() {
		err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
			ok, err := s.repo.Session().Complete(ctx, tx, target.session.SessionID, repositories.SessionCompletion{
				CompletedAt:    completedAt,
				CorrectAnswers: correct,
				TotalTime:      totalTime,
				Answers:        records,
			})
			if err != nil {
				return fmt.Errorf("failed to complete session: %w", err)
			}
			if !ok {
				return ErrSessionAlreadyCompleted
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		op.LogAudit(AuditEventUpdate, sessionID, "test_session", nil, map[string]interface{}{
			"total_cards":     totalCards,
			"correct_answers": correct,
			"total_time":      totalTime,
		})
	}

	if mismatches > 0 {
		op.LogSecurity(SecurityEventSuspiciousActivity, SecuritySeverityMedium,
			"client correctness flags disagree with the answer key",
			map[string]interface{}{
				"session_id":     sessionID,
				"mismatches":     mismatches,
				"verify_answers": s.opts.VerifyAnswers,
			})
	}

	accuracy := Accuracy(correct, totalCards)

	s.publishEvent(ctx, events.NewEvent(events.EventSessionCompleted, events.SessionCompletedEvent{
		SessionID:      sessionID,
		UserID:         userID,
		DeckID:         target.deckID(),
		Legacy:         target.ref.IsLegacy(),
		TotalCards:     totalCards,
		CorrectAnswers: correct,
		Accuracy:       accuracy,
		TotalTime:      totalTime,
		FlagMismatches: mismatches,
		CompletedAt:    completedAt,
	}))

	title, owner := deckLabels(target.deck)
	return &SessionResult{
		SessionID:      sessionID,
		DeckID:         target.deckID(),
		DeckTitle:      title,
		DeckOwner:      owner,
		TotalCards:     totalCards,
		CorrectAnswers: correct,
		Accuracy:       accuracy,
		TotalTime:      totalTime,
		CompletedAt:    completedAt,
		Answers:        records,
	}, nil
}

func (s *sessionService) Results(ctx context.Context, sessionID string, userID uint) (*SessionResult, error) {
	session, err := s.getOwnedSession(ctx, sessionID, userID, "read_results")
	if err != nil {
		return nil, err
	}

	if !session.IsCompleted() {
		return nil, ErrSessionNotCompleted
	}

	answers, totalCards, correct, corrupt := resultCounts(session)
	if corrupt {
		s.logger.Warn("Corrupt answer log, using snapshot totals",
			"session_id", session.SessionID)
	}

	totalTime := 0
	if session.TotalTime != nil {
		totalTime = *session.TotalTime
	}

	deck, err := s.lookupDeck(ctx, session.DeckID)
	if err != nil {
		return nil, err
	}
	title, owner := deckLabels(deck)

	return &SessionResult{
		SessionID:      session.SessionID,
		DeckID:         session.DeckID,
		DeckTitle:      title,
		DeckOwner:      owner,
		TotalCards:     totalCards,
		CorrectAnswers: correct,
		Accuracy:       Accuracy(correct, totalCards),
		TotalTime:      totalTime,
		CompletedAt:    *session.CompletedAt,
		Answers:        answers,
	}, nil
}

func (s *sessionService) ResultSummary(ctx context.Context, sessionID string, userID uint) (*SessionSummary, error) {
	session, err := s.getOwnedSession(ctx, sessionID, userID, "read_summary")
	if err != nil {
		return nil, err
	}

	total, correct := summaryCounts(session)

	return &SessionSummary{
		SessionID:      session.SessionID,
		TotalQuestions: total,
		CorrectCount:   correct,
		MistakeCount:   max(total-correct, 0),
		ScorePercent:   Accuracy(correct, total),
	}, nil
}
