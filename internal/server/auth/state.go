package auth

import (
	"time"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateValidity = 10 * time.Minute

// State is the round-tripped OAuth state: which provider was asked and where
// the browser goes once the sign-in finishes.
type State struct {
	jwt.RegisteredClaims
	Provider   string `json:"provider"`
	RedirectTo string `json:"redirect_to"`
}

func SignState(provider, redirectTo string, secretKey []byte) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, State{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateValidity)),
		},
		Provider:   provider,
		RedirectTo: redirectTo,
	})
	return token.SignedString(secretKey)
}

func ParseState(s string, secretKey []byte) (*State, error) {
	st := &State{}
	token, err := jwt.ParseWithClaims(s, st, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || st.Provider == "" {
		return nil, common.ErrInvalidToken
	}
	return st, nil
}
