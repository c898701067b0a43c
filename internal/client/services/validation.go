// Package services contains the application services behind the Orbit
// screens: profile and onboarding, projects, tasks, team members and
// realtime list refresh.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/session"
	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/go-playground/validator/v10"
)

// ErrNotSignedIn is returned when an operation needs a session and there is none.
var ErrNotSignedIn = errors.New("you must be logged in")

// ValidationError lists the offending fields of an input. It matches
// common.ErrorValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, n := range names {
		msgs = append(msgs, e.Fields[n])
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return common.ErrorValidation }

// messages maps "Struct.Field" (or "Field") and tag to a user-facing text.
type messages map[string]string

type inputValidator struct {
	v *validator.Validate
}

func newInputValidator() *inputValidator {
	return &inputValidator{v: validator.New()}
}

// check validates s and converts validator errors into a ValidationError
// using msgs, falling back to a generic text per tag.
func (iv *inputValidator) check(s any, msgs messages) error {
	err := iv.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
			out.Fields[fe.Field()] = m
			continue
		}
		out.Fields[fe.Field()] = fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
	}
	return out
}

// optional returns nil for blank strings so the backend stores null.
func optional(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func currentUser(ctx context.Context, store session.Store) (*models.User, error) {
	s, err := store.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNotSignedIn
	}
	return &s.User, nil
}

// PermissionError carries a user-facing denial message and matches
// common.ErrorForbidden with errors.Is.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string { return e.Msg }
func (e *PermissionError) Unwrap() error { return common.ErrorForbidden }

func forbidden(msg string) error { return &PermissionError{Msg: msg} }
