package app

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

type (
	// TokenVerifier checks a bearer credential and yields the identity of
	// the user it was issued to.
	TokenVerifier interface {
		Verify(ctx context.Context, rawToken string) (uint, error)
	}

	// OIDCVerifier validates ID tokens against the configured provider.
	OIDCVerifier struct {
		verifier *oidc.IDTokenVerifier
	}
)

func NewOIDCVerifier(host, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(oauth2.NoContext, host)
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider: %w", err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (uint, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return 0, fmt.Errorf("verify token: %w", err)
	}

	var claims struct {
		UserID uint `json:"uid"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return 0, fmt.Errorf("parse token claims: %w", err)
	}
	if claims.UserID == 0 {
		return 0, fmt.Errorf("token carries no user id")
	}
	return claims.UserID, nil
}
