package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sessionFixture struct {
	env     *testEnv
	svc     SessionService
	owner   *models.User
	other   *models.User
	deck    *models.Deck
	private *models.Deck
	cards   []*models.Card
}

func newSessionFixture(t *testing.T, opts SessionOptions) *sessionFixture {
	t.Helper()
	env := newTestEnv(t)

	owner := env.createUser(t, "owner@example.com")
	other := env.createUser(t, "other@example.com")

	deck := env.createDeck(t, owner, "Capitals", models.VisibilityPublic, "geography")
	cards := []*models.Card{
		env.createCard(t, deck, "Capital of France?", "Paris"),
		env.createCard(t, deck, "Capital of Spain?", "Madrid"),
		env.createMCQCard(t, deck, "Capital of Italy?", "Rome", "Rome", "Milan", "Turin", "Naples"),
	}

	private := env.createDeck(t, owner, "Secret", models.VisibilityPrivate)
	env.createCard(t, private, "Hidden?", "Yes")

	return &sessionFixture{
		env:     env,
		svc:     NewSessionService(env.repo, env.publisher, env.logger, env.validator, opts),
		owner:   owner,
		other:   other,
		deck:    deck,
		private: private,
		cards:   cards,
	}
}

func (f *sessionFixture) start(t *testing.T, deckID, userID uint) *StartSessionResponse {
	t.Helper()
	resp, err := f.svc.Start(context.Background(), &StartSessionRequest{DeckID: uintPtr(deckID)}, userID)
	require.NoError(t, err)
	return resp
}

func answer(cardID uint, userAnswer string, correct bool, timeTaken int) SessionAnswer {
	return SessionAnswer{
		CardID:     uintPtr(cardID),
		UserAnswer: strPtr(userAnswer),
		IsCorrect:  boolPtr(correct),
		TimeTaken:  intPtr(timeTaken),
	}
}

func TestSessionService_Start(t *testing.T) {
	f := newSessionFixture(t, SessionOptions{})
	ctx := context.Background()

	t.Run("returns every card without answers", func(t *testing.T) {
		resp, err := f.svc.Start(ctx, &StartSessionRequest{DeckID: uintPtr(f.deck.ID)}, f.other.ID)
		require.NoError(t, err)

		assert.NotEmpty(t, resp.SessionID)
		assert.Equal(t, "Capitals", resp.DeckTitle)
		assert.Equal(t, "owner@example.com", resp.DeckOwner)
		assert.Equal(t, 3, resp.TotalCards)
		assert.Len(t, resp.Cards, 3)
		assert.Equal(t, DefaultPerCardSeconds, resp.PerCardSeconds)
		assert.Equal(t, 30, resp.TimeLimitSeconds)
		assert.Equal(t, resp.StartedAt.Add(30*time.Second), resp.EndsAt)

		ids := make([]uint, 0, len(resp.Cards))
		for _, card := range resp.Cards {
			ids = append(ids, card.ID)
		}
		assert.ElementsMatch(t, []uint{f.cards[0].ID, f.cards[1].ID, f.cards[2].ID}, ids)

		data, err := json.Marshal(resp.Cards)
		require.NoError(t, err)
		assert.NotContains(t, string(data), `"answer"`)
		assert.NotContains(t, string(data), "Madrid")
	})

	t.Run("exposes mcq options", func(t *testing.T) {
		resp := f.start(t, f.deck.ID, f.other.ID)
		for _, card := range resp.Cards {
			if card.ID == f.cards[2].ID {
				assert.Equal(t, models.CardTypeMCQ, card.Type)
				assert.Equal(t, []string{"Rome", "Milan", "Turin", "Naples"}, card.Options)
			}
		}
	})

	t.Run("honours custom timing", func(t *testing.T) {
		resp, err := f.svc.Start(ctx, &StartSessionRequest{DeckID: uintPtr(f.deck.ID), PerCardSeconds: intPtr(20)}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, resp.PerCardSeconds)
		assert.Equal(t, 60, resp.TimeLimitSeconds)

		resp, err = f.svc.Start(ctx, &StartSessionRequest{DeckID: uintPtr(f.deck.ID), TotalTimeSeconds: intPtr(45)}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 45, resp.TimeLimitSeconds)
	})

	t.Run("persists the session and publishes an event", func(t *testing.T) {
		f.env.publisher.ClearEvents()
		resp := f.start(t, f.deck.ID, f.other.ID)

		session, err := f.env.repo.Session().GetBySessionID(ctx, nil, resp.SessionID)
		require.NoError(t, err)
		assert.Equal(t, f.other.ID, session.UserID)
		assert.Equal(t, 3, session.TotalCards)
		assert.False(t, session.IsCompleted())

		started := f.env.publisher.EventsOfType(events.EventSessionStarted)
		require.Len(t, started, 1)
		data, ok := started[0].Data.(events.SessionStartedEvent)
		require.True(t, ok)
		assert.Equal(t, resp.SessionID, data.SessionID)
	})

	t.Run("private deck of another user is forbidden", func(t *testing.T) {
		_, err := f.svc.Start(ctx, &StartSessionRequest{DeckID: uintPtr(f.private.ID)}, f.other.ID)
		require.Error(t, err)
		assert.True(t, IsForbidden(err))

		_, err = f.svc.Start(ctx, &StartSessionRequest{DeckID: uintPtr(f.private.ID)}, f.owner.ID)
		assert.NoError(t, err)
	})

	t.Run("empty deck is an invalid state", func(t *testing.T) {
		empty := f.env.createDeck(t, f.owner, "Empty", models.VisibilityPublic)
		_, err := f.svc.Start(ctx, &StartSessionRequest{DeckID: uintPtr(empty.ID)}, f.owner.ID)
		assert.ErrorIs(t, err, ErrDeckHasNoCards)
		assert.True(t, IsInvalidState(err))
	})

	t.Run("unknown deck", func(t *testing.T) {
		_, err := f.svc.Start(ctx, &StartSessionRequest{DeckID: uintPtr(99999)}, f.owner.ID)
		assert.ErrorIs(t, err, ErrDeckNotFound)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		cases := []*StartSessionRequest{
			{},
			{DeckID: uintPtr(0)},
			{DeckID: uintPtr(f.deck.ID), PerCardSeconds: intPtr(0)},
			{DeckID: uintPtr(f.deck.ID), TotalTimeSeconds: intPtr(-5)},
		}
		for i, req := range cases {
			_, err := f.svc.Start(ctx, req, f.owner.ID)
			assert.True(t, IsValidation(err), "case %d: %v", i, err)
		}
	})
}

func TestSessionService_StartShufflesMatchColumns(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner@example.com")
	deck := env.createDeck(t, owner, "Pairs", models.VisibilityPublic)
	env.createMatchCard(t, deck, "Match the capitals",
		models.MatchPair{Left: "France", Right: "Paris"},
		models.MatchPair{Left: "Spain", Right: "Madrid"},
		models.MatchPair{Left: "Italy", Right: "Rome"},
		models.MatchPair{Left: "Germany", Right: "Berlin"},
	)
	svc := NewSessionService(env.repo, env.publisher, env.logger, env.validator, SessionOptions{})

	resp, err := svc.Start(context.Background(), &StartSessionRequest{DeckID: uintPtr(deck.ID)}, owner.ID)
	require.NoError(t, err)
	require.Len(t, resp.Cards, 1)

	card := resp.Cards[0]
	require.NotNil(t, card.Pairs)
	assert.Equal(t, []string{"France", "Spain", "Italy", "Germany"}, card.Pairs.Left)
	assert.ElementsMatch(t, []string{"Paris", "Madrid", "Rome", "Berlin"}, card.Pairs.Right)
	assert.Nil(t, card.Options)
}

func TestSessionService_SubmitAnswer(t *testing.T) {
	f := newSessionFixture(t, SessionOptions{})
	ctx := context.Background()
	session := f.start(t, f.deck.ID, f.other.ID)

	t.Run("is case and whitespace insensitive", func(t *testing.T) {
		resp, err := f.svc.SubmitAnswer(ctx, session.SessionID, &SubmitAnswerRequest{
			CardID:     uintPtr(f.cards[0].ID),
			UserAnswer: strPtr(" paris "),
		}, f.other.ID)
		require.NoError(t, err)
		assert.True(t, resp.IsCorrect)
		assert.Equal(t, "Paris", resp.CorrectAnswer)
		assert.Equal(t, "paris", resp.UserAnswer)
	})

	t.Run("wrong answer", func(t *testing.T) {
		resp, err := f.svc.SubmitAnswer(ctx, session.SessionID, &SubmitAnswerRequest{
			CardID:     uintPtr(f.cards[1].ID),
			UserAnswer: strPtr("Barcelona"),
		}, f.other.ID)
		require.NoError(t, err)
		assert.False(t, resp.IsCorrect)
		assert.Equal(t, "Madrid", resp.CorrectAnswer)
	})

	t.Run("does not touch the session", func(t *testing.T) {
		stored, err := f.env.repo.Session().GetBySessionID(ctx, nil, session.SessionID)
		require.NoError(t, err)
		assert.False(t, stored.IsCompleted())
		assert.Empty(t, stored.Answers())
	})

	t.Run("card from another deck", func(t *testing.T) {
		cards, err := f.env.repo.Card().ListByDeck(ctx, nil, f.private.ID)
		require.NoError(t, err)
		_, err = f.svc.SubmitAnswer(ctx, session.SessionID, &SubmitAnswerRequest{
			CardID:     uintPtr(cards[0].ID),
			UserAnswer: strPtr("Yes"),
		}, f.other.ID)
		assert.ErrorIs(t, err, ErrCardNotFound)
	})

	t.Run("session owned by someone else", func(t *testing.T) {
		_, err := f.svc.SubmitAnswer(ctx, session.SessionID, &SubmitAnswerRequest{
			CardID:     uintPtr(f.cards[0].ID),
			UserAnswer: strPtr("Paris"),
		}, f.owner.ID)
		assert.True(t, IsForbidden(err))
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := f.svc.SubmitAnswer(ctx, "missing", &SubmitAnswerRequest{
			CardID:     uintPtr(f.cards[0].ID),
			UserAnswer: strPtr("Paris"),
		}, f.other.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("rejects unsafe or missing input", func(t *testing.T) {
		cases := []*SubmitAnswerRequest{
			{CardID: uintPtr(f.cards[0].ID), UserAnswer: strPtr("Paris; DROP TABLE cards")},
			{CardID: uintPtr(f.cards[0].ID), UserAnswer: strPtr("Par\x00is")},
			{CardID: uintPtr(f.cards[0].ID), UserAnswer: strPtr("Paris -- comment")},
			{CardID: uintPtr(f.cards[0].ID)},
			{UserAnswer: strPtr("Paris")},
			{CardID: uintPtr(f.cards[0].ID), UserAnswer: strPtr("Paris"), TimeTaken: intPtr(-1)},
		}
		for i, req := range cases {
			_, err := f.svc.SubmitAnswer(ctx, session.SessionID, req, f.other.ID)
			assert.True(t, IsValidation(err), "case %d: %v", i, err)
		}
	})
}

func TestSessionService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates client flags", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)
		f.env.publisher.ClearEvents()

		result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
			Answers: []SessionAnswer{
				answer(f.cards[0].ID, "Paris", true, 2),
				answer(f.cards[1].ID, "Barcelona", false, 5),
			},
		}, f.other.ID)
		require.NoError(t, err)

		assert.Equal(t, 2, result.TotalCards)
		assert.Equal(t, 1, result.CorrectAnswers)
		assert.Equal(t, 7, result.TotalTime)
		assert.Equal(t, 50.0, result.Accuracy)
		assert.Equal(t, "Capitals", result.DeckTitle)
		assert.Len(t, result.Answers, 2)

		stored, err := f.env.repo.Session().GetBySessionID(ctx, nil, session.SessionID)
		require.NoError(t, err)
		require.True(t, stored.IsCompleted())
		require.NotNil(t, stored.CorrectAnswers)
		assert.Equal(t, 1, *stored.CorrectAnswers)
		require.NotNil(t, stored.TotalTime)
		assert.Equal(t, 7, *stored.TotalTime)
		assert.Len(t, stored.Answers(), 2)

		completed := f.env.publisher.EventsOfType(events.EventSessionCompleted)
		require.Len(t, completed, 1)
		data := completed[0].Data.(events.SessionCompletedEvent)
		assert.Equal(t, 0, data.FlagMismatches)
		assert.False(t, data.Legacy)
	})

	t.Run("zero answers", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)

		result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalCards)
		assert.Equal(t, 0, result.CorrectAnswers)
		assert.Equal(t, 0.0, result.Accuracy)
		assert.Equal(t, 0, result.TotalTime)
		assert.Empty(t, result.Answers)
	})

	t.Run("echoes stored options", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)

		result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
			Answers: []SessionAnswer{answer(f.cards[2].ID, "Rome", true, 1)},
		}, f.other.ID)
		require.NoError(t, err)
		require.Len(t, result.Answers, 1)
		assert.JSONEq(t, `["Rome","Milan","Turin","Naples"]`, string(result.Answers[0].Options))
	})

	t.Run("uses started_at for total time", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)

		now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		f.svc.(*sessionService).now = func() time.Time { return now }

		result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
			Answers:   []SessionAnswer{answer(f.cards[0].ID, "Paris", true, 2)},
			StartedAt: strPtr("2024-05-01T11:58:30Z"),
		}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 90, result.TotalTime)
		assert.Equal(t, now, result.CompletedAt)
	})

	t.Run("future started_at yields zero time", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)

		result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
			Answers:   []SessionAnswer{answer(f.cards[0].ID, "Paris", true, 2)},
			StartedAt: strPtr(time.Now().Add(time.Hour).UTC().Format(time.RFC3339)),
		}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalTime)
	})

	t.Run("unparseable started_at", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)

		_, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
			StartedAt: strPtr("yesterday"),
		}, f.other.ID)
		assert.ErrorIs(t, err, ErrInvalidTimestamp)

		stored, err := f.env.repo.Session().GetBySessionID(ctx, nil, session.SessionID)
		require.NoError(t, err)
		assert.False(t, stored.IsCompleted())
	})

	t.Run("second completion conflicts and keeps the record", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)

		_, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
			Answers: []SessionAnswer{answer(f.cards[0].ID, "Paris", true, 3)},
		}, f.other.ID)
		require.NoError(t, err)

		_, err = f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
			Answers: []SessionAnswer{
				answer(f.cards[0].ID, "Paris", true, 1),
				answer(f.cards[1].ID, "Madrid", true, 1),
			},
		}, f.other.ID)
		assert.ErrorIs(t, err, ErrSessionAlreadyCompleted)
		assert.True(t, IsConflict(err))

		stored, err := f.env.repo.Session().GetBySessionID(ctx, nil, session.SessionID)
		require.NoError(t, err)
		assert.Equal(t, 1, *stored.CorrectAnswers)
		assert.Equal(t, 3, *stored.TotalTime)
		assert.Len(t, stored.Answers(), 1)
	})

	t.Run("session of another user", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)

		_, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{}, f.owner.ID)
		assert.True(t, IsForbidden(err))
	})

	t.Run("session ids", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})

		_, err := f.svc.Complete(ctx, "6a1f1a52-2a58-4b5e-9c38-b0e7d3b6f1a1", &CompleteSessionRequest{}, f.other.ID)
		assert.ErrorIs(t, err, ErrInvalidSessionID)
		assert.True(t, IsValidation(err))

		_, err = f.svc.Complete(ctx, "bad_format", &CompleteSessionRequest{}, f.other.ID)
		assert.ErrorIs(t, err, ErrInvalidSessionID)

		_, err = f.svc.Complete(ctx, "0_999999_0", &CompleteSessionRequest{}, f.other.ID)
		assert.ErrorIs(t, err, ErrDeckNotFound)
		assert.True(t, IsNotFound(err))

		result, err := f.svc.Complete(ctx, fmt.Sprintf("7_%d_abc", f.deck.ID), &CompleteSessionRequest{}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, f.deck.ID, result.DeckID)
	})

	t.Run("legacy id scores without writing", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		before := f.env.countSessions(t)
		f.env.publisher.ClearEvents()

		legacyID := fmt.Sprintf("alice_%d_1700000000", f.deck.ID)
		result, err := f.svc.Complete(ctx, legacyID, &CompleteSessionRequest{
			Answers: []SessionAnswer{
				answer(f.cards[0].ID, "Paris", true, 4),
				answer(f.cards[1].ID, "Madrid", true, 4),
			},
		}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, legacyID, result.SessionID)
		assert.Equal(t, f.deck.ID, result.DeckID)
		assert.Equal(t, 2, result.CorrectAnswers)
		assert.Equal(t, 100.0, result.Accuracy)
		assert.Equal(t, before, f.env.countSessions(t))

		completed := f.env.publisher.EventsOfType(events.EventSessionCompleted)
		require.Len(t, completed, 1)
		assert.True(t, completed[0].Data.(events.SessionCompletedEvent).Legacy)
	})

	t.Run("legacy id on a private deck", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		_, err := f.svc.Complete(ctx, fmt.Sprintf("bob_%d_1", f.private.ID), &CompleteSessionRequest{}, f.other.ID)
		assert.True(t, IsForbidden(err))
	})

	t.Run("rejects malformed answers", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)

		cases := [][]SessionAnswer{
			{{CardID: uintPtr(f.cards[0].ID), UserAnswer: strPtr("Paris")}},
			{{UserAnswer: strPtr("Paris"), IsCorrect: boolPtr(true)}},
			{{CardID: uintPtr(f.cards[0].ID), IsCorrect: boolPtr(true)}},
			{answer(f.cards[0].ID, "Pa'ris", true, 1)},
			{answer(f.cards[0].ID, "Paris /* x */", true, 1)},
			{{CardID: uintPtr(f.cards[0].ID), UserAnswer: strPtr("Paris"), IsCorrect: boolPtr(true), TimeTaken: intPtr(-2)}},
		}
		for i, answers := range cases {
			_, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{Answers: answers}, f.other.ID)
			assert.True(t, IsValidation(err), "case %d: %v", i, err)
		}

		stored, err := f.env.repo.Session().GetBySessionID(ctx, nil, session.SessionID)
		require.NoError(t, err)
		assert.False(t, stored.IsCompleted())
	})

	t.Run("tolerates a deleted deck", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)
		require.NoError(t, f.env.repo.Deck().Delete(ctx, nil, f.deck.ID))

		result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
			Answers: []SessionAnswer{answer(f.cards[0].ID, "Paris", true, 1)},
		}, f.other.ID)
		require.NoError(t, err)
		assert.Empty(t, result.DeckTitle)
		assert.Empty(t, result.DeckOwner)
		assert.Equal(t, 1, result.CorrectAnswers)
		assert.Nil(t, result.Answers[0].Options)
	})
}

func TestSessionService_CompleteVerification(t *testing.T) {
	ctx := context.Background()
	submitted := func(f *sessionFixture) []SessionAnswer {
		return []SessionAnswer{
			answer(f.cards[0].ID, "Paris", false, 1),
			answer(f.cards[1].ID, "Barcelona", true, 1),
			answer(f.cards[2].ID, "Rome", true, 1),
		}
	}

	t.Run("trusts client flags by default", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{})
		session := f.start(t, f.deck.ID, f.other.ID)
		f.env.publisher.ClearEvents()

		result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{Answers: submitted(f)}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, result.CorrectAnswers)
		assert.False(t, result.Answers[0].IsCorrect)
		assert.True(t, result.Answers[1].IsCorrect)

		data := f.env.publisher.EventsOfType(events.EventSessionCompleted)[0].Data.(events.SessionCompletedEvent)
		assert.Equal(t, 2, data.FlagMismatches)
	})

	t.Run("recomputes from the answer key", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{VerifyAnswers: true})
		session := f.start(t, f.deck.ID, f.other.ID)
		f.env.publisher.ClearEvents()

		result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{Answers: submitted(f)}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, result.CorrectAnswers)
		assert.True(t, result.Answers[0].IsCorrect)
		assert.False(t, result.Answers[1].IsCorrect)
		assert.True(t, result.Answers[2].IsCorrect)

		data := f.env.publisher.EventsOfType(events.EventSessionCompleted)[0].Data.(events.SessionCompletedEvent)
		assert.Equal(t, 2, data.FlagMismatches)
	})

	t.Run("cards outside the deck never count", func(t *testing.T) {
		f := newSessionFixture(t, SessionOptions{VerifyAnswers: true})
		session := f.start(t, f.deck.ID, f.other.ID)
		cards, err := f.env.repo.Card().ListByDeck(ctx, nil, f.private.ID)
		require.NoError(t, err)

		result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
			Answers: []SessionAnswer{answer(cards[0].ID, "Yes", true, 1)},
		}, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, result.CorrectAnswers)
		assert.Nil(t, result.Answers[0].Options)
	})
}

// failingRepository writes the completion inside the transaction and then
// fails, so the caller has to roll the write back.
type failingRepository struct {
	repositories.Repository
}

func (r failingRepository) Session() repositories.SessionRepository {
	return failingSessionRepository{SessionRepository: r.Repository.Session()}
}

type failingSessionRepository struct {
	repositories.SessionRepository
}

func (r failingSessionRepository) Complete(ctx context.Context, tx *gorm.DB, sessionID string, completion repositories.SessionCompletion) (bool, error) {
	if _, err := r.SessionRepository.Complete(ctx, tx, sessionID, completion); err != nil {
		return false, err
	}
	return false, errors.New("disk I/O error")
}

func TestSessionService_CompleteRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t, SessionOptions{})
	session := f.start(t, f.deck.ID, f.other.ID)
	f.env.publisher.ClearEvents()

	svc := NewSessionService(failingRepository{Repository: f.env.repo}, f.env.publisher, f.env.logger, f.env.validator, SessionOptions{})
	_, err := svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
		Answers: []SessionAnswer{answer(f.cards[0].ID, "Paris", true, 2)},
	}, f.other.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to complete session")
	assert.False(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.False(t, IsConflict(err))
	assert.False(t, IsForbidden(err))
	assert.False(t, IsInvalidState(err))

	stored, err := f.env.repo.Session().GetBySessionID(ctx, nil, session.SessionID)
	require.NoError(t, err)
	assert.Nil(t, stored.CompletedAt)
	assert.Nil(t, stored.CorrectAnswers)
	assert.Nil(t, stored.TotalTime)
	assert.Empty(t, stored.Answers())
	assert.Empty(t, f.env.publisher.EventsOfType(events.EventSessionCompleted))

	result, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
		Answers: []SessionAnswer{answer(f.cards[0].ID, "Paris", true, 2)},
	}, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CorrectAnswers)
}

func TestCompleteSessionRequest_UnmarshalJSON(t *testing.T) {
	var bare CompleteSessionRequest
	require.NoError(t, json.Unmarshal([]byte(`[{"card_id":1,"user_answer":"a","is_correct":true,"time_taken":2}]`), &bare))
	require.Len(t, bare.Answers, 1)
	assert.Equal(t, uint(1), *bare.Answers[0].CardID)
	assert.Nil(t, bare.StartedAt)

	var wrapped CompleteSessionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"answers":[{"card_id":2,"user_answer":"b","is_correct":false}],"started_at":"2024-01-01T00:00:00"}`), &wrapped))
	require.Len(t, wrapped.Answers, 1)
	assert.False(t, *wrapped.Answers[0].IsCorrect)
	assert.Equal(t, "2024-01-01T00:00:00", *wrapped.StartedAt)

	var invalid CompleteSessionRequest
	assert.Error(t, json.Unmarshal([]byte(`[{"card_id":1,"user_answer":"a","is_correct":"yes"}]`), &invalid))
}

func TestSessionService_Results(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t, SessionOptions{})

	session := f.start(t, f.deck.ID, f.other.ID)

	t.Run("in progress is an invalid state", func(t *testing.T) {
		_, err := f.svc.Results(ctx, session.SessionID, f.other.ID)
		assert.ErrorIs(t, err, ErrSessionNotCompleted)
		assert.True(t, IsInvalidState(err))
	})

	_, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
		Answers: []SessionAnswer{
			answer(f.cards[0].ID, "Paris", true, 2),
			answer(f.cards[1].ID, "Barcelona", false, 5),
		},
	}, f.other.ID)
	require.NoError(t, err)

	t.Run("replays the stored log", func(t *testing.T) {
		result, err := f.svc.Results(ctx, session.SessionID, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCards)
		assert.Equal(t, 1, result.CorrectAnswers)
		assert.Equal(t, 50.0, result.Accuracy)
		assert.Equal(t, 7, result.TotalTime)
		assert.Equal(t, "Capitals", result.DeckTitle)
		require.Len(t, result.Answers, 2)
		assert.Equal(t, "Barcelona", result.Answers[1].UserAnswer)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		_, err := f.svc.Results(ctx, session.SessionID, f.owner.ID)
		assert.True(t, IsForbidden(err))
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := f.svc.Results(ctx, "missing", f.other.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("corrupt log degrades to an empty list", func(t *testing.T) {
		require.NoError(t, f.env.db.Exec("UPDATE test_sessions SET answers_json = ? WHERE session_id = ?", "{not json", session.SessionID).Error)

		result, err := f.svc.Results(ctx, session.SessionID, f.other.ID)
		require.NoError(t, err)
		assert.Empty(t, result.Answers)
		assert.Equal(t, 3, result.TotalCards)
		assert.Equal(t, 1, result.CorrectAnswers)
	})
}

func TestSessionService_ResultSummary(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t, SessionOptions{})
	session := f.start(t, f.deck.ID, f.other.ID)

	_, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{
		Answers: []SessionAnswer{
			answer(f.cards[0].ID, "Paris", true, 2),
			answer(f.cards[1].ID, "Madrid", true, 2),
		},
	}, f.other.ID)
	require.NoError(t, err)

	summary, err := f.svc.ResultSummary(ctx, session.SessionID, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalQuestions)
	assert.Equal(t, 2, summary.CorrectCount)
	assert.Equal(t, 1, summary.MistakeCount)
	assert.Equal(t, summary.TotalQuestions, summary.CorrectCount+summary.MistakeCount)
	assert.Equal(t, 66.67, summary.ScorePercent)

	t.Run("clamps an inflated correct count", func(t *testing.T) {
		require.NoError(t, f.env.db.Exec("UPDATE test_sessions SET correct_answers = 10 WHERE session_id = ?", session.SessionID).Error)

		summary, err := f.svc.ResultSummary(ctx, session.SessionID, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.CorrectCount)
		assert.Equal(t, 0, summary.MistakeCount)
		assert.Equal(t, summary.TotalQuestions, summary.CorrectCount+summary.MistakeCount)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		_, err := f.svc.ResultSummary(ctx, session.SessionID, f.owner.ID)
		assert.True(t, IsForbidden(err))
	})
}

func TestSessionService_StatsAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t, SessionOptions{})
	history := f.env.createDeck(t, f.owner, "Dates", models.VisibilityPublic, "History", "geography")
	historyCard := f.env.createCard(t, history, "Year of the moon landing?", "1969")

	complete := func(deckID, userID uint, answers ...SessionAnswer) {
		t.Helper()
		session := f.start(t, deckID, userID)
		_, err := f.svc.Complete(ctx, session.SessionID, &CompleteSessionRequest{Answers: answers}, userID)
		require.NoError(t, err)
	}

	complete(f.deck.ID, f.other.ID,
		answer(f.cards[0].ID, "Paris", true, 2),
		answer(f.cards[1].ID, "Lisbon", false, 2))
	complete(history.ID, f.other.ID, answer(historyCard.ID, "1969", true, 3))
	complete(f.deck.ID, f.owner.ID, answer(f.cards[0].ID, "Paris", true, 1))

	t.Run("stats", func(t *testing.T) {
		stats, err := f.svc.Stats(ctx, f.other.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalTestsTaken)
		assert.Equal(t, 2, stats.TotalDecksTested)
		assert.Equal(t, 75.0, stats.AverageAccuracy)
		assert.Equal(t, []string{"geography", "history"}, stats.FavoriteSubjects)
		require.Len(t, stats.RecentTests, 2)
		assert.Equal(t, "Dates", stats.RecentTests[0].DeckTitle)
	})

	t.Run("stats without sessions", func(t *testing.T) {
		newcomer := f.env.createUser(t, "new@example.com")
		stats, err := f.svc.Stats(ctx, newcomer.ID)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalTestsTaken)
		assert.Zero(t, stats.AverageAccuracy)
		assert.Empty(t, stats.RecentTests)
	})

	t.Run("leaderboard keeps each user's best run", func(t *testing.T) {
		board, err := f.svc.Leaderboard(ctx, nil, 0, f.other.ID)
		require.NoError(t, err)
		require.Len(t, board, 2)

		assert.Equal(t, 1, board[0].Rank)
		assert.Equal(t, f.owner.ID, board[0].UserID)
		assert.Equal(t, "owner@example.com", board[0].UserEmail)
		assert.Equal(t, 100.0, board[0].BestAccuracy)
		assert.Equal(t, 1, board[0].BestTime)

		assert.Equal(t, 2, board[1].Rank)
		assert.Equal(t, f.other.ID, board[1].UserID)
		assert.Equal(t, 2, board[1].TestsTaken)
		assert.Equal(t, 100.0, board[1].BestAccuracy)
		assert.Equal(t, 3, board[1].BestTime)
	})

	t.Run("leaderboard per deck", func(t *testing.T) {
		board, err := f.svc.Leaderboard(ctx, &history.ID, 10, f.other.ID)
		require.NoError(t, err)
		require.Len(t, board, 1)
		assert.Equal(t, f.other.ID, board[0].UserID)
	})

	t.Run("leaderboard limit", func(t *testing.T) {
		board, err := f.svc.Leaderboard(ctx, nil, 1, f.other.ID)
		require.NoError(t, err)
		assert.Len(t, board, 1)
	})

	t.Run("history lists in-progress and completed sessions", func(t *testing.T) {
		f.start(t, f.deck.ID, f.other.ID)

		page1, err := f.svc.History(ctx, f.other.ID, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), page1.Total)
		require.Len(t, page1.Sessions, 2)
		assert.Nil(t, page1.Sessions[0].CompletedAt)
		assert.Nil(t, page1.Sessions[0].Accuracy)

		page2, err := f.svc.History(ctx, f.other.ID, 2, 2)
		require.NoError(t, err)
		require.Len(t, page2.Sessions, 1)
		require.NotNil(t, page2.Sessions[0].Accuracy)
	})

	t.Run("leaderboard hides private decks from other users", func(t *testing.T) {
		private := f.env.createDeck(t, f.owner, "Notes", models.VisibilityPrivate, "geography")
		privateCard := f.env.createCard(t, private, "Capital of Peru?", "Lima")
		complete(private.ID, f.owner.ID, answer(privateCard.ID, "Lima", true, 5))

		_, err := f.svc.Leaderboard(ctx, &private.ID, 10, f.other.ID)
		assert.True(t, IsForbidden(err))

		board, err := f.svc.Leaderboard(ctx, &private.ID, 10, f.owner.ID)
		require.NoError(t, err)
		require.Len(t, board, 1)
		assert.Equal(t, f.owner.ID, board[0].UserID)

		board, err = f.svc.Leaderboard(ctx, nil, 10, f.other.ID)
		require.NoError(t, err)
		require.Len(t, board, 2)
		assert.Equal(t, f.owner.ID, board[0].UserID)
		assert.Equal(t, 1, board[0].TestsTaken)

		board, err = f.svc.Leaderboard(ctx, nil, 10, f.owner.ID)
		require.NoError(t, err)
		require.Len(t, board, 2)
		assert.Equal(t, f.owner.ID, board[0].UserID)
		assert.Equal(t, 2, board[0].TestsTaken)
		assert.Equal(t, 1, board[0].BestTime)
	})

	t.Run("leaderboard for missing deck", func(t *testing.T) {
		missing := uint(999999)
		_, err := f.svc.Leaderboard(ctx, &missing, 10, f.other.ID)
		assert.ErrorIs(t, err, ErrDeckNotFound)
	})
}

func TestSessionService_RandomDeck(t *testing.T) {
	ctx := context.Background()
	f := newSessionFixture(t, SessionOptions{})

	deck, err := f.svc.RandomDeck(ctx, "geography", f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, f.deck.ID, deck.ID)
	assert.Equal(t, int64(3), deck.CardCount)

	_, err = f.svc.RandomDeck(ctx, "astronomy", f.other.ID)
	assert.ErrorIs(t, err, ErrNoPublicDecks)
	assert.True(t, IsNotFound(err))
}
