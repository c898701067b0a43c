package biometric

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/cryptox"
)

// DisabledDevice has no authentication hardware.
type DisabledDevice struct{}

func (DisabledDevice) HasHardware(context.Context) (bool, error)      { return false, nil }
func (DisabledDevice) IsEnrolled(context.Context) (bool, error)       { return false, nil }
func (DisabledDevice) SupportedKinds(context.Context) ([]Kind, error) { return nil, nil }
func (DisabledDevice) Authenticate(context.Context, Prompt) (Result, error) {
	return Result{Error: ErrNotEnrolled}, nil
}

const (
	KeyPasscodeSalt     = "passcode.salt"
	KeyPasscodeVerifier = "passcode.verifier"

	MinPasscodeLength = 4
)

var ErrPasscodeTooShort = fmt.Errorf("passcode must be at least %d characters", MinPasscodeLength)

// KV is the local store holding the passcode verifier.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// PromptFunc reads a secret from the user. An empty answer cancels.
type PromptFunc func(label string) ([]byte, error)

// PasscodeDevice authenticates with a device passcode typed on the
// terminal. Only a salted argon2id verifier is stored.
type PasscodeDevice struct {
	kv     KV
	prompt PromptFunc
}

func NewPasscodeDevice(kv KV, prompt PromptFunc) *PasscodeDevice {
	return &PasscodeDevice{kv: kv, prompt: prompt}
}

func (d *PasscodeDevice) HasHardware(context.Context) (bool, error) { return true, nil }

func (d *PasscodeDevice) IsEnrolled(ctx context.Context) (bool, error) {
	v, err := d.kv.Get(ctx, KeyPasscodeVerifier)
	if err != nil {
		return false, err
	}
	return len(v) > 0, nil
}

// SupportedKinds is empty: a passcode is a generic method.
func (d *PasscodeDevice) SupportedKinds(context.Context) ([]Kind, error) { return nil, nil }

func (d *PasscodeDevice) Authenticate(ctx context.Context, p Prompt) (Result, error) {
	salt, err := d.kv.Get(ctx, KeyPasscodeSalt)
	if err != nil {
		return Result{}, err
	}
	verifier, err := d.kv.Get(ctx, KeyPasscodeVerifier)
	if err != nil {
		return Result{}, err
	}
	if len(salt) == 0 || len(verifier) == 0 {
		return Result{Error: ErrNotEnrolled}, nil
	}

	label := p.Message
	if p.CancelLabel != "" {
		label = fmt.Sprintf("%s (empty to %s)", label, strings.ToLower(p.CancelLabel))
	}
	input, err := d.prompt(label + ": ")
	if err != nil {
		return Result{}, err
	}
	defer common.WipeByteArray(input)

	if len(input) == 0 {
		return Result{Error: ErrUserCancel}, nil
	}
	if !cryptox.CheckPasscode(input, salt, verifier) {
		return Result{Error: ErrAuthenticationFailed}, nil
	}
	return Result{Success: true}, nil
}

// Enroll stores a verifier for passcode, replacing any previous one.
func (d *PasscodeDevice) Enroll(ctx context.Context, passcode []byte) error {
	if len(passcode) < MinPasscodeLength {
		return ErrPasscodeTooShort
	}
	salt, verifier := cryptox.NewPasscodeVerifier(passcode)
	return d.kv.SetMany(ctx, map[string][]byte{
		KeyPasscodeSalt:     salt,
		KeyPasscodeVerifier: verifier,
	})
}

// Remove deletes the stored verifier.
func (d *PasscodeDevice) Remove(ctx context.Context) error {
	return d.kv.DeleteMany(ctx, KeyPasscodeVerifier, KeyPasscodeSalt)
}
