package auth

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/flashcard-service/internal/config"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
)

// Principal is the identity behind a verified bearer token. Local tokens
// carry a UserID; external ones only an Email to be mapped to a local user.
type Principal struct {
	UserID uint
	Email  string
}

// Verifier checks a bearer token
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

var (
	_ Verifier = (*LocalVerifier)(nil)
	_ Verifier = (*CasdoorVerifier)(nil)
)

// LocalVerifier accepts access tokens issued by this service
type LocalVerifier struct {
	tokens *TokenManager
}

func NewLocalVerifier(tokens *TokenManager) *LocalVerifier {
	return &LocalVerifier{tokens: tokens}
}

func (v *LocalVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	userID, err := v.tokens.Parse(token, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: userID}, nil
}

// CasdoorVerifier accepts tokens signed by a Casdoor instance
type CasdoorVerifier struct {
	client *casdoorsdk.Client
}

func NewCasdoorVerifier(cfg config.AuthConfig) *CasdoorVerifier {
	client := casdoorsdk.NewClient(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
	return &CasdoorVerifier{client: client}
}

func (v *CasdoorVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.User.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", ErrInvalidToken)
	}
	return &Principal{Email: claims.User.Email}, nil
}

// NewVerifier picks the verifier configured by AUTH_PROVIDER
func NewVerifier(cfg config.AuthConfig, tokens *TokenManager) Verifier {
	if cfg.UseCasdoor() {
		return NewCasdoorVerifier(cfg)
	}
	return NewLocalVerifier(tokens)
}
