package services

import (
	"log/slog"
	"time"

	"github.com/SAP-F-2025/flashcard-service/internal/auth"
	"github.com/SAP-F-2025/flashcard-service/internal/cache"
	"github.com/SAP-F-2025/flashcard-service/internal/events"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
)

// Dependencies are the collaborators shared by every service
type Dependencies struct {
	Repo      repositories.Repository
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Tokens    *auth.TokenManager
	Verifier  auth.Verifier
	Validator *validator.Validator
	Logger    *slog.Logger

	VerifyAnswers bool
	CacheTTL      time.Duration
}

type serviceManager struct {
	session    SessionService
	deck       DeckService
	card       CardService
	engagement EngagementService
	dashboard  DashboardService
	auth       AuthService
	export     ExportService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopCache()
	}

	session := NewSessionService(deps.Repo, deps.Publisher, deps.Logger, deps.Validator, SessionOptions{
		VerifyAnswers: deps.VerifyAnswers,
	})

	return &serviceManager{
		session:    session,
		deck:       NewDeckService(deps.Repo, deps.Cache, deps.Publisher, deps.Logger, deps.Validator),
		card:       NewCardService(deps.Repo, deps.Cache, deps.Logger, deps.Validator),
		engagement: NewEngagementService(deps.Repo, deps.Cache, deps.Publisher, deps.Logger, deps.Validator),
		dashboard:  NewDashboardService(deps.Repo, deps.Cache, session, deps.Logger, deps.Validator, deps.CacheTTL),
		auth:       NewAuthService(deps.Repo, deps.Tokens, deps.Verifier, deps.Logger, deps.Validator),
		export:     NewExportService(deps.Repo, session, deps.Logger),
	}
}

func (m *serviceManager) Session() SessionService       { return m.session }
func (m *serviceManager) Deck() DeckService             { return m.deck }
func (m *serviceManager) Card() CardService             { return m.card }
func (m *serviceManager) Engagement() EngagementService { return m.engagement }
func (m *serviceManager) Dashboard() DashboardService   { return m.dashboard }
func (m *serviceManager) Auth() AuthService             { return m.auth }
func (m *serviceManager) Export() ExportService         { return m.export }
