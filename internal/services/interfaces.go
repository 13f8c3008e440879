package services

import (
	"context"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
)

// SessionService runs timed test sessions and scores them
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest, userID uint) (*StartSessionResponse, error)
	SubmitAnswer(ctx context.Context, sessionID string, req *SubmitAnswerRequest, userID uint) (*SubmitAnswerResponse, error)
	Complete(ctx context.Context, sessionID string, req *CompleteSessionRequest, userID uint) (*SessionResult, error)
	Results(ctx context.Context, sessionID string, userID uint) (*SessionResult, error)
	ResultSummary(ctx context.Context, sessionID string, userID uint) (*SessionSummary, error)

	Stats(ctx context.Context, userID uint) (*TestStats, error)
	Leaderboard(ctx context.Context, deckID *uint, limit int, userID uint) ([]LeaderboardEntry, error)
	RandomDeck(ctx context.Context, subject string, userID uint) (*DeckResponse, error)
	History(ctx context.Context, userID uint, page, size int) (*SessionHistoryResponse, error)
}

type DeckService interface {
	Create(ctx context.Context, req *CreateDeckRequest, ownerID uint) (*DeckResponse, error)
	GetByID(ctx context.Context, id uint, userID uint) (*DeckResponse, error)
	Update(ctx context.Context, id uint, req *UpdateDeckRequest, userID uint) (*DeckResponse, error)
	Delete(ctx context.Context, id uint, userID uint) error

	List(ctx context.Context, req *DeckListRequest, userID uint) (*DeckListResponse, error)
	ListMine(ctx context.Context, req *DeckListRequest, userID uint) (*DeckListResponse, error)
	ListPublic(ctx context.Context, req *DeckListRequest, userID uint) (*DeckListResponse, error)
}

type CardService interface {
	Create(ctx context.Context, deckID uint, req *CreateCardRequest, userID uint) (*CardResponse, error)
	GetByID(ctx context.Context, deckID, cardID uint, userID uint) (*CardResponse, error)
	ListByDeck(ctx context.Context, deckID uint, userID uint) ([]*CardResponse, error)
	Update(ctx context.Context, deckID, cardID uint, req *UpdateCardRequest, userID uint) (*CardResponse, error)
	Delete(ctx context.Context, deckID, cardID uint, userID uint) error
}

type EngagementService interface {
	Like(ctx context.Context, deckID uint, userID uint) (*EngagementResponse, error)
	Unlike(ctx context.Context, deckID uint, userID uint) (*EngagementResponse, error)
	Favorite(ctx context.Context, deckID uint, userID uint) (*EngagementResponse, error)
	Unfavorite(ctx context.Context, deckID uint, userID uint) (*EngagementResponse, error)
	ListFavorites(ctx context.Context, req *DeckListRequest, userID uint) (*DeckListResponse, error)
}

type DashboardService interface {
	Overview(ctx context.Context, userID uint) (*DashboardResponse, error)
	Discover(ctx context.Context, req *DiscoverRequest, userID uint) ([]*DeckResponse, error)
	Subjects(ctx context.Context) (*SubjectsResponse, error)
	QuickTest(ctx context.Context, subject string, userID uint) (*StartSessionResponse, error)
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req *RefreshRequest) (*TokenResponse, error)
	Me(ctx context.Context, userID uint) (*UserResponse, error)

	// Authenticate resolves a bearer token to a local user
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type ExportService interface {
	ExportHistory(ctx context.Context, userID uint) ([]byte, error)
	ExportSession(ctx context.Context, sessionID string, userID uint) ([]byte, error)
}

// ServiceManager hands out every service to the transport layer
type ServiceManager interface {
	Session() SessionService
	Deck() DeckService
	Card() CardService
	Engagement() EngagementService
	Dashboard() DashboardService
	Auth() AuthService
	Export() ExportService
}
