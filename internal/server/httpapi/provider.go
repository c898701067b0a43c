package httpapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dmitrijs2005/orbit/internal/server/services"
	"golang.org/x/oauth2"
)

// Provider is an OAuth identity provider.
type Provider interface {
	// AuthCodeURL is where the browser is sent to sign in.
	AuthCodeURL(state string) string
	// Identify exchanges the authorization code and returns who signed in.
	Identify(ctx context.Context, code string) (*services.ProviderIdentity, error)
}

const googleIssuer = "https://accounts.google.com"

type oidcProvider struct {
	name     string
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleProvider discovers Google's OpenID configuration and returns a
// provider that trusts ID tokens issued for clientID.
func NewGoogleProvider(ctx context.Context, clientID, clientSecret, redirectURL string) (Provider, error) {
	return newOIDCProvider(ctx, "google", googleIssuer, clientID, clientSecret, redirectURL)
}

func newOIDCProvider(ctx context.Context, name, issuer, clientID, clientSecret, redirectURL string) (*oidcProvider, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	return &oidcProvider{
		name: name,
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (p *oidcProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

func (p *oidcProvider) Identify(ctx context.Context, code string) (*services.ProviderIdentity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("no id_token field in oauth2 token")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("id token claims: %w", err)
	}
	if !claims.EmailVerified {
		claims.Email = ""
	}

	return &services.ProviderIdentity{Provider: p.name, Email: claims.Email, Name: claims.Name}, nil
}
