package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/netx"
	"github.com/dmitrijs2005/orbit/internal/server/services"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPI = "https://api.github.com"

type githubProvider struct {
	oauth   oauth2.Config
	apiBase string
}

func NewGitHubProvider(clientID, clientSecret, redirectURL string) Provider {
	return &githubProvider{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
		apiBase: githubAPI,
	}
}

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

type githubUser struct {
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *githubProvider) Identify(ctx context.Context, code string) (*services.ProviderIdentity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	client := p.oauth.Client(ctx, token)

	var u githubUser
	if err := p.get(ctx, client, "/user", &u); err != nil {
		return nil, err
	}

	// the public profile e-mail is often hidden
	email := u.Email
	if email == "" {
		var emails []githubEmail
		if err := p.get(ctx, client, "/user/emails", &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}

	name := u.Name
	if name == "" {
		name = u.Login
	}
	return &services.ProviderIdentity{Provider: "github", Email: email, Name: name}, nil
}

func (p *githubProvider) get(ctx context.Context, client *http.Client, path string, out any) error {
	url := strings.TrimRight(p.apiBase, "/") + path
	if err := netx.GetJSON(ctx, client, url, "application/vnd.github+json", out); err != nil {
		return fmt.Errorf("github %s: %w", path, err)
	}
	return nil
}
