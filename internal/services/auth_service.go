package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/flashcard-service/internal/auth"
	"github.com/SAP-F-2025/flashcard-service/internal/models"
	"github.com/SAP-F-2025/flashcard-service/internal/repositories"
	"github.com/SAP-F-2025/flashcard-service/internal/validator"
	"golang.org/x/crypto/bcrypt"
)

const tokenTypeBearer = "bearer"

type authService struct {
	repo      repositories.Repository
	tokens    *auth.TokenManager
	verifier  auth.Verifier
	logger    *slog.Logger
	svcLogger *ServiceLogger
	validator *validator.Validator
}

func NewAuthService(repo repositories.Repository, tokens *auth.TokenManager, verifier auth.Verifier, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		tokens:    tokens,
		verifier:  verifier,
		logger:    logger,
		svcLogger: NewServiceLogger(logger, LogConfig{Service: "flashcard-service", Component: "auth"}),
		validator: validator,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	email := normalizeEmail(req.Email)
	exists, err := s.repo.User().ExistsByEmail(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          email,
		HashedPassword: string(hashed),
		AuthProvider:   models.AuthProviderLocal,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID)

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.repo.User().GetByEmail(ctx, nil, normalizeEmail(req.Email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.HashedPassword == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		s.svcLogger.LogSecurityEvent(ctx, SecurityEvent{
			Type:        SecurityEventUnauthorizedAccess,
			Severity:    SecuritySeverityLow,
			UserID:      user.ID,
			Description: "password mismatch",
		})
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user)
}

// Refresh rotates the token pair. Only the most recently issued refresh token
// is accepted.
func (s *authService) Refresh(ctx context.Context, req *RefreshRequest) (*TokenResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	userID, err := s.tokens.Parse(req.RefreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != req.RefreshToken {
		s.svcLogger.LogSecurityEvent(ctx, SecurityEvent{
			Type:        SecurityEventInvalidToken,
			Severity:    SecuritySeverityMedium,
			UserID:      user.ID,
			Description: "refresh token is not the current one",
		})
		return nil, ErrInvalidToken
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) Me(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Authenticate verifies the bearer token. Identities from an external
// provider are matched by email and created locally on first sight.
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	principal, err := s.verifier.Verify(ctx, token)
	if err != nil {
		s.logger.Debug("Token verification failed", "error", err)
		return nil, ErrInvalidToken
	}

	if principal.UserID != 0 {
		user, err := s.repo.User().GetByID(ctx, nil, principal.UserID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrInvalidToken
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		return user, nil
	}

	return s.findOrCreateExternal(ctx, normalizeEmail(principal.Email))
}

func (s *authService) findOrCreateExternal(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user = &models.User{Email: email, AuthProvider: models.AuthProviderCasdoor}
	if createErr := s.repo.User().Create(ctx, nil, user); createErr != nil {
		// another request may have created the user first
		existing, err := s.repo.User().GetByEmail(ctx, nil, email)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", errors.Join(createErr, err))
		}
		return existing, nil
	}

	s.logger.Info("Created user for external identity", "user_id", user.ID, "provider", models.AuthProviderCasdoor)
	return user, nil
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*TokenResponse, error) {
	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.User().UpdateRefreshToken(ctx, nil, user.ID, &refresh); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Email:        user.Email,
		AuthProvider: user.AuthProvider,
		CreatedAt:    user.CreatedAt,
	}
}
