package services

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

// submittedAnswer is a SessionAnswer after validation and sanitization
type submittedAnswer struct {
	CardID     uint
	UserAnswer string
	IsCorrect  bool
	TimeTaken  *int
}

// completionTarget is what a session id passed to complete resolved to
type completionTarget struct {
	ref     models.SessionRef
	session *models.TestSession // nil on the legacy path
	deck    *models.Deck        // nil when the deck was deleted after start
}

func (t *completionTarget) deckID() uint {
	if t.session != nil {
		return t.session.DeckID
	}
	return t.ref.DeckID
}

// ===== LOOKUPS =====

func (s *sessionService) getOwnedSession(ctx context.Context, sessionID string, userID uint, action string) (*models.TestSession, error) {
	session, err := s.repo.Session().GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if !session.IsOwnedBy(userID) {
		return nil, NewPermissionError(userID, session.ID, "test_session", action, "not owned by user")
	}
	return session, nil
}

// resolveCompletionTarget looks the id up as an opaque token first and only
// then tries the legacy "<user>_<deckId>_<timestamp>" form.
func (s *sessionService) resolveCompletionTarget(ctx context.Context, sessionID string, userID uint) (*completionTarget, error) {
	session, err := s.repo.Session().GetBySessionID(ctx, nil, sessionID)
	if err == nil {
		if !session.IsOwnedBy(userID) {
			return nil, NewPermissionError(userID, session.ID, "test_session", "complete", "not owned by user")
		}
		if session.IsCompleted() {
			return nil, ErrSessionAlreadyCompleted
		}
		deck, err := s.lookupDeck(ctx, session.DeckID)
		if err != nil {
			return nil, err
		}
		return &completionTarget{ref: models.OpaqueSessionRef(sessionID), session: session, deck: deck}, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	ref, ok := models.ParseLegacySessionID(sessionID)
	if !ok {
		return nil, ErrInvalidSessionID
	}

	deck, err := s.repo.Deck().GetByIDWithOwner(ctx, nil, ref.DeckID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	if !deck.CanAccess(userID) {
		return nil, NewPermissionError(userID, deck.ID, "deck", "complete", "deck is private")
	}

	s.logger.Info("Completing legacy session id",
		"session_id", sessionID,
		"deck_id", ref.DeckID,
		"user_id", userID)

	return &completionTarget{ref: ref, deck: deck}, nil
}

// lookupDeck returns nil without error when the deck no longer exists
func (s *sessionService) lookupDeck(ctx context.Context, deckID uint) (*models.Deck, error) {
	deck, err := s.repo.Deck().GetByIDWithOwner(ctx, nil, deckID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return deck, nil
}

func deckLabels(deck *models.Deck) (title, owner string) {
	if deck == nil {
		return "", ""
	}
	return deck.Title, deck.Owner.Email
}

// ===== SCORING HELPERS =====

func sanitizeAnswers(answers []SessionAnswer) ([]submittedAnswer, error) {
	submitted := make([]submittedAnswer, 0, len(answers))
	for i, a := range answers {
		userAnswer, err := validator.Sanitize(fmt.Sprintf("answers[%d].user_answer", i), a.UserAnswer)
		if err != nil {
			return nil, err
		}
		submitted = append(submitted, submittedAnswer{
			CardID:     *a.CardID,
			UserAnswer: userAnswer,
			IsCorrect:  *a.IsCorrect,
			TimeTaken:  a.TimeTaken,
		})
	}
	return submitted, nil
}

// scoreAnswers builds the answer log. It echoes the stored option payload of
// cards that belong to deckID and counts answers whose client flag disagrees
// with the answer key. With VerifyAnswers the answer key wins.
func (s *sessionService) scoreAnswers(ctx context.Context, deckID uint, submitted []submittedAnswer) ([]models.AnswerRecord, int, error) {
	records := make([]models.AnswerRecord, 0, len(submitted))
	if len(submitted) == 0 {
		return records, 0, nil
	}

	ids := make([]uint, 0, len(submitted))
	seen := make(map[uint]bool, len(submitted))
	for _, a := range submitted {
		if !seen[a.CardID] {
			seen[a.CardID] = true
			ids = append(ids, a.CardID)
		}
	}

	cards, err := s.repo.Card().GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get cards: %w", err)
	}

	mismatches := 0
	for _, a := range submitted {
		record := models.AnswerRecord{
			CardID:     a.CardID,
			UserAnswer: a.UserAnswer,
			IsCorrect:  a.IsCorrect,
			TimeTaken:  a.TimeTaken,
		}

		card, ok := cards[a.CardID]
		if ok && card.DeckID != deckID {
			ok = false
		}

		expected := false
		if ok {
			record.Options = card.RawOptions()
			expected = IsCorrectAnswer(a.UserAnswer, card.Answer)
		}
		if expected != a.IsCorrect {
			mismatches++
			if s.opts.VerifyAnswers {
				record.IsCorrect = expected
			}
		}

		records = append(records, record)
	}

	return records, mismatches, nil
}

// resultCounts replays a completed session. A corrupt answer log degrades to
// an empty list and the start snapshot of total_cards.
func resultCounts(session *models.TestSession) (answers []models.AnswerRecord, total, correct int, corrupt bool) {
	answers, err := session.DecodeAnswers()
	total = len(answers)
	if err != nil {
		answers = []models.AnswerRecord{}
		total = session.TotalCards
		corrupt = true
	}

	correct = CountCorrect(answers)
	if session.CorrectAnswers != nil {
		correct = *session.CorrectAnswers
	}
	return answers, total, correct, corrupt
}

// summaryCounts prefers the persisted counters and keeps
// correct + mistakes == total by clamping correct into [0, total].
func summaryCounts(session *models.TestSession) (total, correct int) {
	answers := session.Answers()

	total = session.TotalCards
	if total <= 0 {
		total = len(answers)
	}

	if session.CorrectAnswers != nil {
		correct = *session.CorrectAnswers
	} else {
		correct = CountCorrect(answers)
	}

	return total, min(max(correct, 0), total)
}

func sessionAccuracy(session *models.TestSession) float64 {
	_, total, correct, _ := resultCounts(session)
	return Accuracy(correct, total)
}

// ===== CARD PRESENTATION =====

// buildTestCard strips the answer. Match cards expose both columns with the
// right one shuffled on its own so the pairing is not revealed.
func buildTestCard(card *models.Card) TestCard {
	tc := TestCard{
		ID:       card.ID,
		Question: card.Question,
		Type:     card.Type,
	}

	switch card.Type {
	case models.CardTypeMCQ:
		tc.Options = card.Options()
	case models.CardTypeMatch:
		pairs := card.Pairs()
		if len(pairs) == 0 {
			break
		}
		columns := &MatchColumns{
			Left:  make([]string, 0, len(pairs)),
			Right: make([]string, 0, len(pairs)),
		}
		for _, p := range pairs {
			columns.Left = append(columns.Left, p.Left)
			columns.Right = append(columns.Right, p.Right)
		}
		rand.Shuffle(len(columns.Right), func(i, j int) {
			columns.Right[i], columns.Right[j] = columns.Right[j], columns.Right[i]
		})
		tc.Pairs = columns
	}

	return tc
}

// ===== EVENTS =====

func (s *sessionService) publishEvent(ctx context.Context, event *events.Event) {
	publishEvent(ctx, s.publisher, s.logger, event)
}
