package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
)

const (
	statsSubjectLimit     = 5
	statsRecentLimit      = 5
	defaultLeaderboardLen = 10
	maxLeaderboardLen     = 100
	defaultHistorySize    = 20
	maxHistorySize        = 100
)

func (s *sessionService) Stats(ctx context.Context, userID uint) (*TestStats, error) {
	sessions, err := s.repo.Session().ListCompleted(ctx, nil, &userID, repositories.SessionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	stats := &TestStats{
		TotalTestsTaken:  len(sessions),
		FavoriteSubjects: []string{},
		RecentTests:      []RecentTest{},
	}
	if len(sessions) == 0 {
		return stats, nil
	}

	decks, err := s.repo.Deck().GetByIDs(ctx, nil, sessionDeckIDs(sessions))
	if err != nil {
		return nil, fmt.Errorf("failed to get decks: %w", err)
	}

	testedDecks := make(map[uint]bool)
	subjectCounts := make(map[string]int)
	accuracySum := 0.0
	for _, session := range sessions {
		accuracySum += sessionAccuracy(session)
		testedDecks[session.DeckID] = true
		if deck, ok := decks[session.DeckID]; ok {
			for _, tag := range deck.TagList() {
				subjectCounts[strings.ToLower(tag)]++
			}
		}
	}

	stats.TotalDecksTested = len(testedDecks)
	stats.AverageAccuracy = math.Round(accuracySum/float64(len(sessions))*100) / 100
	stats.FavoriteSubjects = topSubjectNames(subjectCounts, statsSubjectLimit)

	// sessions are ordered oldest first
	for i := len(sessions) - 1; i >= 0 && len(stats.RecentTests) < statsRecentLimit; i-- {
		session := sessions[i]
		recent := RecentTest{
			SessionID:   session.SessionID,
			DeckID:      session.DeckID,
			Accuracy:    sessionAccuracy(session),
			CompletedAt: *session.CompletedAt,
		}
		if deck, ok := decks[session.DeckID]; ok {
			recent.DeckTitle = deck.Title
		}
		if session.TotalTime != nil {
			recent.TotalTime = *session.TotalTime
		}
		stats.RecentTests = append(stats.RecentTests, recent)
	}

	return stats, nil
}

// Leaderboard ranks users on one deck, or on every deck the viewer can see
// when deckID is nil.
func (s *sessionService) Leaderboard(ctx context.Context, deckID *uint, limit int, userID uint) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLen
	}
	limit = min(limit, maxLeaderboardLen)

	if deckID != nil {
		deck, err := s.repo.Deck().GetByID(ctx, nil, *deckID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrDeckNotFound
			}
			return nil, fmt.Errorf("failed to get deck: %w", err)
		}
		if !deck.CanAccess(userID) {
			return nil, NewPermissionError(userID, deck.ID, "deck", "leaderboard", "deck is private")
		}
	}

	sessions, err := s.repo.Session().ListCompleted(ctx, nil, nil, repositories.SessionFilters{
		DeckID:    deckID,
		VisibleTo: &userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	byUser := make(map[uint]*LeaderboardEntry)
	for _, session := range sessions {
		accuracy := sessionAccuracy(session)
		totalTime := 0
		if session.TotalTime != nil {
			totalTime = *session.TotalTime
		}

		entry, ok := byUser[session.UserID]
		if !ok {
			byUser[session.UserID] = &LeaderboardEntry{
				UserID:       session.UserID,
				BestAccuracy: accuracy,
				BestTime:     totalTime,
				TestsTaken:   1,
			}
			continue
		}

		entry.TestsTaken++
		if accuracy > entry.BestAccuracy || (accuracy == entry.BestAccuracy && totalTime < entry.BestTime) {
			entry.BestAccuracy = accuracy
			entry.BestTime = totalTime
		}
	}

	entries := make([]LeaderboardEntry, 0, len(byUser))
	userIDs := make([]uint, 0, len(byUser))
	for _, entry := range byUser {
		entries = append(entries, *entry)
		userIDs = append(userIDs, entry.UserID)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BestAccuracy != entries[j].BestAccuracy {
			return entries[i].BestAccuracy > entries[j].BestAccuracy
		}
		if entries[i].BestTime != entries[j].BestTime {
			return entries[i].BestTime < entries[j].BestTime
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	users, err := s.repo.User().GetByIDs(ctx, nil, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
		if user, ok := users[entries[i].UserID]; ok {
			entries[i].UserEmail = user.Email
		}
	}

	return entries, nil
}

func (s *sessionService) RandomDeck(ctx context.Context, subject string, userID uint) (*DeckResponse, error) {
	deck, err := s.repo.Deck().GetRandom(ctx, nil, repositories.DeckFilters{
		ViewerID:      userID,
		PublicOnly:    true,
		Tag:           subject,
		WithCardsOnly: true,
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNoPublicDecks
		}
		return nil, fmt.Errorf("failed to get random deck: %w", err)
	}

	summary, err := s.repo.Deck().GetSummary(ctx, nil, deck.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deck summary: %w", err)
	}
	return toDeckResponse(summary), nil
}

func (s *sessionService) History(ctx context.Context, userID uint, page, size int) (*SessionHistoryResponse, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultHistorySize
	}
	size = min(size, maxHistorySize)

	sessions, total, err := s.repo.Session().ListByUser(ctx, nil, userID, repositories.SessionFilters{
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	decks, err := s.repo.Deck().GetByIDs(ctx, nil, sessionDeckIDs(sessions))
	if err != nil {
		return nil, fmt.Errorf("failed to get decks: %w", err)
	}

	items := make([]SessionHistoryItem, 0, len(sessions))
	for _, session := range sessions {
		item := SessionHistoryItem{
			SessionID:      session.SessionID,
			DeckID:         session.DeckID,
			StartedAt:      session.StartedAt,
			CompletedAt:    session.CompletedAt,
			TotalCards:     session.TotalCards,
			CorrectAnswers: session.CorrectAnswers,
			TotalTime:      session.TotalTime,
		}
		if deck, ok := decks[session.DeckID]; ok {
			item.DeckTitle = deck.Title
		}
		if session.IsCompleted() {
			accuracy := sessionAccuracy(session)
			item.Accuracy = &accuracy
		}
		items = append(items, item)
	}

	return &SessionHistoryResponse{
		Sessions: items,
		Total:    total,
		Page:     page,
		Size:     size,
	}, nil
}

func sessionDeckIDs(sessions []*models.TestSession) []uint {
	seen := make(map[uint]bool)
	ids := make([]uint, 0, len(sessions))
	for _, session := range sessions {
		if !seen[session.DeckID] {
			seen[session.DeckID] = true
			ids = append(ids, session.DeckID)
		}
	}
	return ids
}

// topSubjectNames orders subjects by count, then name
func topSubjectNames(counts map[string]int, limit int) []string {
	ranked := rankSubjects(counts)
	names := make([]string, 0, min(limit, len(ranked)))
	for i := 0; i < len(ranked) && i < limit; i++ {
		names = append(names, ranked[i].Subject)
	}
	return names
}

func rankSubjects(counts map[string]int) []SubjectCount {
	ranked := make([]SubjectCount, 0, len(counts))
	for subject, count := range counts {
		ranked = append(ranked, SubjectCount{Subject: subject, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Subject < ranked[j].Subject
	})
	return ranked
}
