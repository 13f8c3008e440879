package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
	"github.com/SAP-F-2025/flashcard-service/pkg"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	publisher *events.MockEventPublisher
	validator *validator.Validator
	logger    *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, pkg.Migrate(db))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &testEnv{
		db:        db,
		repo:      postgres.NewRepository(db),
		publisher: events.NewMockEventPublisher(log),
		validator: validator.New(),
		logger:    log,
	}
}

func (e *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, AuthProvider: models.AuthProviderLocal}
	require.NoError(t, e.repo.User().Create(context.Background(), nil, user))
	return user
}

func (e *testEnv) createDeck(t *testing.T, owner *models.User, title string, visibility models.Visibility, tags ...string) *models.Deck {
	t.Helper()
	deck := &models.Deck{
		Title:      title,
		Visibility: visibility,
		Tags:       models.JoinTags(tags),
		OwnerID:    owner.ID,
	}
	require.NoError(t, e.repo.Deck().Create(context.Background(), nil, deck))
	return deck
}

func (e *testEnv) createCard(t *testing.T, deck *models.Deck, question, answer string) *models.Card {
	t.Helper()
	card := &models.Card{DeckID: deck.ID, Question: question, Answer: answer, Type: models.CardTypeFillups}
	require.NoError(t, e.repo.Card().Create(context.Background(), nil, card))
	return card
}

func (e *testEnv) createMCQCard(t *testing.T, deck *models.Deck, question, answer string, options ...string) *models.Card {
	t.Helper()
	payload, err := validator.NewCardValidator().ValidatePayload(models.CardTypeMCQ, answer, options, nil)
	require.NoError(t, err)
	card := &models.Card{
		DeckID:      deck.ID,
		Question:    question,
		Answer:      answer,
		Type:        models.CardTypeMCQ,
		OptionsJSON: datatypes.JSON(payload),
	}
	require.NoError(t, e.repo.Card().Create(context.Background(), nil, card))
	return card
}

func (e *testEnv) createMatchCard(t *testing.T, deck *models.Deck, question string, pairs ...models.MatchPair) *models.Card {
	t.Helper()
	payload, err := validator.NewCardValidator().ValidatePayload(models.CardTypeMatch, "pairs", nil, pairs)
	require.NoError(t, err)
	card := &models.Card{
		DeckID:      deck.ID,
		Question:    question,
		Answer:      "pairs",
		Type:        models.CardTypeMatch,
		OptionsJSON: datatypes.JSON(payload),
	}
	require.NoError(t, e.repo.Card().Create(context.Background(), nil, card))
	return card
}

func (e *testEnv) countSessions(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.TestSession{}).Count(&count).Error)
	return count
}

func uintPtr(v uint) *uint    { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

// memoryCache is an in-process CacheService that records what it was asked to do
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	gets        map[string]int
	invalidated []string
}

var _ cache.CacheService = (*memoryCache)(nil)

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}, gets: map[string]int{}}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets[key]++
	data, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, pattern)
	for key := range c.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *memoryCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.invalidated)
}
