package handlers

import (
	"context"

	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/services"
	"github.com/stretchr/testify/mock"
)

type mockSessionService struct{ mock.Mock }

func (m *mockSessionService) Start(ctx context.Context, req *services.StartSessionRequest, userID uint) (*services.StartSessionResponse, error) {
	args := m.Called(ctx, req, userID)
	resp, _ := args.Get(0).(*services.StartSessionResponse)
	return resp, args.Error(1)
}

func (m *mockSessionService) SubmitAnswer(ctx context.Context, sessionID string, req *services.SubmitAnswerRequest, userID uint) (*services.SubmitAnswerResponse, error) {
	args := m.Called(ctx, sessionID, req, userID)
	resp, _ := args.Get(0).(*services.SubmitAnswerResponse)
	return resp, args.Error(1)
}

func (m *mockSessionService) Complete(ctx context.Context, sessionID string, req *services.CompleteSessionRequest, userID uint) (*services.SessionResult, error) {
	args := m.Called(ctx, sessionID, req, userID)
	resp, _ := args.Get(0).(*services.SessionResult)
	return resp, args.Error(1)
}

func (m *mockSessionService) Results(ctx context.Context, sessionID string, userID uint) (*services.SessionResult, error) {
	args := m.Called(ctx, sessionID, userID)
	resp, _ := args.Get(0).(*services.SessionResult)
	return resp, args.Error(1)
}

func (m *mockSessionService) ResultSummary(ctx context.Context, sessionID string, userID uint) (*services.SessionSummary, error) {
	args := m.Called(ctx, sessionID, userID)
	resp, _ := args.Get(0).(*services.SessionSummary)
	return resp, args.Error(1)
}

func (m *mockSessionService) Stats(ctx context.Context, userID uint) (*services.TestStats, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*services.TestStats)
	return resp, args.Error(1)
}

func (m *mockSessionService) Leaderboard(ctx context.Context, deckID *uint, limit int, userID uint) ([]services.LeaderboardEntry, error) {
	args := m.Called(ctx, deckID, limit, userID)
	resp, _ := args.Get(0).([]services.LeaderboardEntry)
	return resp, args.Error(1)
}

func (m *mockSessionService) RandomDeck(ctx context.Context, subject string, userID uint) (*services.DeckResponse, error) {
	args := m.Called(ctx, subject, userID)
	resp, _ := args.Get(0).(*services.DeckResponse)
	return resp, args.Error(1)
}

func (m *mockSessionService) History(ctx context.Context, userID uint, page, size int) (*services.SessionHistoryResponse, error) {
	args := m.Called(ctx, userID, page, size)
	resp, _ := args.Get(0).(*services.SessionHistoryResponse)
	return resp, args.Error(1)
}

type mockDeckService struct{ mock.Mock }

func (m *mockDeckService) Create(ctx context.Context, req *services.CreateDeckRequest, ownerID uint) (*services.DeckResponse, error) {
	args := m.Called(ctx, req, ownerID)
	resp, _ := args.Get(0).(*services.DeckResponse)
	return resp, args.Error(1)
}

func (m *mockDeckService) GetByID(ctx context.Context, id uint, userID uint) (*services.DeckResponse, error) {
	args := m.Called(ctx, id, userID)
	resp, _ := args.Get(0).(*services.DeckResponse)
	return resp, args.Error(1)
}

func (m *mockDeckService) Update(ctx context.Context, id uint, req *services.UpdateDeckRequest, userID uint) (*services.DeckResponse, error) {
	args := m.Called(ctx, id, req, userID)
	resp, _ := args.Get(0).(*services.DeckResponse)
	return resp, args.Error(1)
}

func (m *mockDeckService) Delete(ctx context.Context, id uint, userID uint) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockDeckService) List(ctx context.Context, req *services.DeckListRequest, userID uint) (*services.DeckListResponse, error) {
	args := m.Called(ctx, req, userID)
	resp, _ := args.Get(0).(*services.DeckListResponse)
	return resp, args.Error(1)
}

func (m *mockDeckService) ListMine(ctx context.Context, req *services.DeckListRequest, userID uint) (*services.DeckListResponse, error) {
	args := m.Called(ctx, req, userID)
	resp, _ := args.Get(0).(*services.DeckListResponse)
	return resp, args.Error(1)
}

func (m *mockDeckService) ListPublic(ctx context.Context, req *services.DeckListRequest, userID uint) (*services.DeckListResponse, error) {
	args := m.Called(ctx, req, userID)
	resp, _ := args.Get(0).(*services.DeckListResponse)
	return resp, args.Error(1)
}

type mockCardService struct{ mock.Mock }

func (m *mockCardService) Create(ctx context.Context, deckID uint, req *services.CreateCardRequest, userID uint) (*services.CardResponse, error) {
	args := m.Called(ctx, deckID, req, userID)
	resp, _ := args.Get(0).(*services.CardResponse)
	return resp, args.Error(1)
}

func (m *mockCardService) GetByID(ctx context.Context, deckID, cardID uint, userID uint) (*services.CardResponse, error) {
	args := m.Called(ctx, deckID, cardID, userID)
	resp, _ := args.Get(0).(*services.CardResponse)
	return resp, args.Error(1)
}

func (m *mockCardService) ListByDeck(ctx context.Context, deckID uint, userID uint) ([]*services.CardResponse, error) {
	args := m.Called(ctx, deckID, userID)
	resp, _ := args.Get(0).([]*services.CardResponse)
	return resp, args.Error(1)
}

func (m *mockCardService) Update(ctx context.Context, deckID, cardID uint, req *services.UpdateCardRequest, userID uint) (*services.CardResponse, error) {
	args := m.Called(ctx, deckID, cardID, req, userID)
	resp, _ := args.Get(0).(*services.CardResponse)
	return resp, args.Error(1)
}

func (m *mockCardService) Delete(ctx context.Context, deckID, cardID uint, userID uint) error {
	return m.Called(ctx, deckID, cardID, userID).Error(0)
}

type mockEngagementService struct{ mock.Mock }

func (m *mockEngagementService) Like(ctx context.Context, deckID uint, userID uint) (*services.EngagementResponse, error) {
	args := m.Called(ctx, deckID, userID)
	resp, _ := args.Get(0).(*services.EngagementResponse)
	return resp, args.Error(1)
}

func (m *mockEngagementService) Unlike(ctx context.Context, deckID uint, userID uint) (*services.EngagementResponse, error) {
	args := m.Called(ctx, deckID, userID)
	resp, _ := args.Get(0).(*services.EngagementResponse)
	return resp, args.Error(1)
}

func (m *mockEngagementService) Favorite(ctx context.Context, deckID uint, userID uint) (*services.EngagementResponse, error) {
	args := m.Called(ctx, deckID, userID)
	resp, _ := args.Get(0).(*services.EngagementResponse)
	return resp, args.Error(1)
}

func (m *mockEngagementService) Unfavorite(ctx context.Context, deckID uint, userID uint) (*services.EngagementResponse, error) {
	args := m.Called(ctx, deckID, userID)
	resp, _ := args.Get(0).(*services.EngagementResponse)
	return resp, args.Error(1)
}

func (m *mockEngagementService) ListFavorites(ctx context.Context, req *services.DeckListRequest, userID uint) (*services.DeckListResponse, error) {
	args := m.Called(ctx, req, userID)
	resp, _ := args.Get(0).(*services.DeckListResponse)
	return resp, args.Error(1)
}

type mockDashboardService struct{ mock.Mock }

func (m *mockDashboardService) Overview(ctx context.Context, userID uint) (*services.DashboardResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*services.DashboardResponse)
	return resp, args.Error(1)
}

func (m *mockDashboardService) Discover(ctx context.Context, req *services.DiscoverRequest, userID uint) ([]*services.DeckResponse, error) {
	args := m.Called(ctx, req, userID)
	resp, _ := args.Get(0).([]*services.DeckResponse)
	return resp, args.Error(1)
}

func (m *mockDashboardService) Subjects(ctx context.Context) (*services.SubjectsResponse, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).(*services.SubjectsResponse)
	return resp, args.Error(1)
}

func (m *mockDashboardService) QuickTest(ctx context.Context, subject string, userID uint) (*services.StartSessionResponse, error) {
	args := m.Called(ctx, subject, userID)
	resp, _ := args.Get(0).(*services.StartSessionResponse)
	return resp, args.Error(1)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Register(ctx context.Context, req *services.RegisterRequest) (*services.UserResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*services.UserResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.TokenResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*services.TokenResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, req *services.RefreshRequest) (*services.TokenResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*services.TokenResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, userID uint) (*services.UserResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).(*services.UserResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	resp, _ := args.Get(0).(*models.User)
	return resp, args.Error(1)
}

type mockExportService struct{ mock.Mock }

func (m *mockExportService) ExportHistory(ctx context.Context, userID uint) ([]byte, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).([]byte)
	return resp, args.Error(1)
}

func (m *mockExportService) ExportSession(ctx context.Context, sessionID string, userID uint) ([]byte, error) {
	args := m.Called(ctx, sessionID, userID)
	resp, _ := args.Get(0).([]byte)
	return resp, args.Error(1)
}

type mockServiceManager struct {
	session    *mockSessionService
	deck       *mockDeckService
	card       *mockCardService
	engagement *mockEngagementService
	dashboard  *mockDashboardService
	auth       *mockAuthService
	export     *mockExportService
}

func newMockServiceManager() *mockServiceManager {
	return &mockServiceManager{
		session:    &mockSessionService{},
		deck:       &mockDeckService{},
		card:       &mockCardService{},
		engagement: &mockEngagementService{},
		dashboard:  &mockDashboardService{},
		auth:       &mockAuthService{},
		export:     &mockExportService{},
	}
}

func (m *mockServiceManager) Session() services.SessionService       { return m.session }
func (m *mockServiceManager) Deck() services.DeckService             { return m.deck }
func (m *mockServiceManager) Card() services.CardService             { return m.card }
func (m *mockServiceManager) Engagement() services.EngagementService { return m.engagement }
func (m *mockServiceManager) Dashboard() services.DashboardService   { return m.dashboard }
func (m *mockServiceManager) Auth() services.AuthService             { return m.auth }
func (m *mockServiceManager) Export() services.ExportService         { return m.export }
