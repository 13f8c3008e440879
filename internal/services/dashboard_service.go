package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

const (
	dashboardCachePattern = "dashboard:*"
	dashboardStatsKey     = "dashboard:stats"
	dashboardSubjectsKey  = "dashboard:subjects"

	popularDeckLimit    = 10
	popularSubjectLimit = 10
	recentActivityLimit = 5
	defaultDiscoverLen  = 20
)

type dashboardService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	sessions  SessionService
	logger    *slog.Logger
	validator *validator.Validator
	cacheTTL  time.Duration
}

func NewDashboardService(repo repositories.Repository, cacheService cache.CacheService, sessions SessionService, logger *slog.Logger, validator *validator.Validator, cacheTTL time.Duration) DashboardService {
	return &dashboardService{
		repo:      repo,
		cache:     cacheService,
		sessions:  sessions,
		logger:    logger,
		validator: validator,
		cacheTTL:  cacheTTL,
	}
}

func (s *dashboardService) Overview(ctx context.Context, userID uint) (*DashboardResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	popular, _, err := s.repo.Deck().List(ctx, nil, repositories.DeckFilters{
		ViewerID:   userID,
		PublicOnly: true,
		SortBy:     repositories.DeckSortPopular,
		Limit:      popularDeckLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list popular decks: %w", err)
	}

	stats, err := s.stats(ctx)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.repo.Deck().List(ctx, nil, repositories.DeckFilters{
		ViewerID:   userID,
		PublicOnly: true,
		SortBy:     repositories.DeckSortNewest,
		Limit:      recentActivityLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent decks: %w", err)
	}

	activities := make([]RecentActivity, 0, len(recent))
	for _, deck := range recent {
		activities = append(activities, RecentActivity{
			Type:      "deck_created",
			Message:   fmt.Sprintf("%s created deck '%s'", deck.OwnerEmail, deck.Title),
			Timestamp: deck.CreatedAt,
			DeckID:    deck.ID,
		})
	}

	popularDecks := make([]*DeckResponse, 0, len(popular))
	for _, deck := range popular {
		popularDecks = append(popularDecks, toDeckResponse(deck))
	}

	return &DashboardResponse{
		PopularDecks:     popularDecks,
		Stats:            *stats,
		RecentActivities: activities,
		UserInfo:         toUserResponse(user),
	}, nil
}

// Discover lists public decks of other users, newest first
func (s *dashboardService) Discover(ctx context.Context, req *DiscoverRequest, userID uint) ([]*DeckResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	minCards := req.MinCards
	if minCards <= 0 {
		minCards = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultDiscoverLen
	}

	summaries, _, err := s.repo.Deck().List(ctx, nil, repositories.DeckFilters{
		ViewerID:       userID,
		PublicOnly:     true,
		ExcludeOwnerID: &userID,
		Tag:            req.Subject,
		WithCardsOnly:  true,
		SortBy:         repositories.DeckSortNewest,
		Limit:          limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover decks: %w", err)
	}

	decks := make([]*DeckResponse, 0, len(summaries))
	for _, summary := range summaries {
		if summary.CardCount >= int64(minCards) {
			decks = append(decks, toDeckResponse(summary))
		}
	}
	return decks, nil
}

func (s *dashboardService) Subjects(ctx context.Context) (*SubjectsResponse, error) {
	var cached SubjectsResponse
	if s.readCache(ctx, dashboardSubjectsKey, &cached) {
		return &cached, nil
	}

	counts, err := s.subjectCounts(ctx)
	if err != nil {
		return nil, err
	}

	subjects := make([]string, 0, len(counts))
	for subject := range counts {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	resp := &SubjectsResponse{Subjects: subjects, TotalSubjects: len(subjects)}
	s.writeCache(ctx, dashboardSubjectsKey, resp)
	return resp, nil
}

// QuickTest starts a session on a random public deck of another user
func (s *dashboardService) QuickTest(ctx context.Context, subject string, userID uint) (*StartSessionResponse, error) {
	deck, err := s.repo.Deck().GetRandom(ctx, nil, repositories.DeckFilters{
		ViewerID:       userID,
		PublicOnly:     true,
		ExcludeOwnerID: &userID,
		Tag:            subject,
		WithCardsOnly:  true,
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoPublicDecks
		}
		return nil, fmt.Errorf("failed to pick deck: %w", err)
	}

	perCard := DefaultPerCardSeconds
	return s.sessions.Start(ctx, &StartSessionRequest{DeckID: &deck.ID, PerCardSeconds: &perCard}, userID)
}

// ===== AGGREGATES =====

func (s *dashboardService) stats(ctx context.Context) (*DashboardStats, error) {
	var cached DashboardStats
	if s.readCache(ctx, dashboardStatsKey, &cached) {
		return &cached, nil
	}

	var stats DashboardStats
	var err error
	public := models.VisibilityPublic

	if stats.TotalUsers, err = s.repo.User().Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.TotalDecks, err = s.repo.Deck().Count(ctx, nil, nil); err != nil {
		return nil, fmt.Errorf("failed to count decks: %w", err)
	}
	if stats.PublicDecks, err = s.repo.Deck().Count(ctx, nil, &public); err != nil {
		return nil, fmt.Errorf("failed to count public decks: %w", err)
	}
	if stats.TotalCards, err = s.repo.Card().Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count cards: %w", err)
	}
	if stats.CompletedSessions, err = s.repo.Session().CountCompleted(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	counts, err := s.subjectCounts(ctx)
	if err != nil {
		return nil, err
	}
	ranked := rankSubjects(counts)
	if len(ranked) > popularSubjectLimit {
		ranked = ranked[:popularSubjectLimit]
	}
	stats.PopularSubjects = ranked

	s.writeCache(ctx, dashboardStatsKey, &stats)
	return &stats, nil
}

// subjectCounts counts lowercased tags across public decks
func (s *dashboardService) subjectCounts(ctx context.Context) (map[string]int, error) {
	tagColumns, err := s.repo.Deck().ListTags(ctx, nil, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	counts := make(map[string]int)
	for _, tags := range tagColumns {
		for _, tag := range models.SplitTags(tags) {
			counts[strings.ToLower(tag)]++
		}
	}
	return counts, nil
}

func (s *dashboardService) readCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Dashboard cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *dashboardService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("Dashboard cache write failed", "key", key, "error", err)
	}
}
