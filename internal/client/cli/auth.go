package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/client/client"
	"github.com/dmitrijs2005/orbit/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var oauthProviders = map[string]bool{"google": true, "github": true}

// Register prompts for name, email and password and creates an account.
// The new session drives the routing (usually to onboarding).
func (a *App) Register(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.sessions.SignUp(ctx, email, string(password), strings.TrimSpace(fullName)); err != nil {
		return signInError(err)
	}
	a.ctrl.Flush()
	a.println("Account created")
	return nil
}

// Login prompts for credentials and signs in with email and password.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.sessions.SignInWithPassword(ctx, email, string(password)); err != nil {
		a.logger.Info(ctx, "sign in failed", "error", err)
		return signInError(err)
	}
	a.ctrl.Flush()
	a.println("Signed in")
	return nil
}

// OAuth prints the provider sign-in URL. The browser ends on the redirect
// URL carrying the tokens, which the user passes to "callback".
func (a *App) OAuth(_ context.Context, args []string) error {
	if len(args) != 1 || !oauthProviders[strings.ToLower(args[0])] {
		a.println("Usage: oauth google|github")
		return nil
	}
	a.println("Open this URL in a browser, then run 'callback <final URL>':")
	a.println(a.authorizeURL(strings.ToLower(args[0])))
	return nil
}

func (a *App) authorizeURL(provider string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", a.config.RedirectURL)
	return strings.TrimRight(a.config.ServerHTTPURL, "/") + "/auth/v1/authorize?" + q.Encode()
}

// Callback completes an OAuth sign-in from the redirect URL.
func (a *App) Callback(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: callback <url>")
		return nil
	}
	if _, err := a.sessions.ExchangeCallbackURL(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to sign in: %w", err)
	}
	a.ctrl.Flush()
	a.println("Signed in")
	return nil
}

// Logout ends the session. Local state is cleared even if the server
// cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if !confirm(a.reader, "Are you sure you want to sign out?", a.out) {
		return nil
	}
	a.stopWatching()
	if err := a.sessions.SignOut(ctx); err != nil {
		return err
	}
	a.ctrl.Flush()
	a.println("Signed out")
	return nil
}

func signInError(err error) error {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return errors.New("server unavailable, try again later")
	case errors.Is(err, common.ErrorUnauthorized):
		return errors.New("invalid email or password")
	}
	return err
}
