// Package applock implements the optional app lock: a persisted on/off
// preference plus an in-memory locked flag that is re-armed on every return
// to the foreground and cleared by a successful device challenge.
package applock

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/orbit/internal/client/biometric"
	"github.com/dmitrijs2005/orbit/internal/client/events"
	"github.com/dmitrijs2005/orbit/internal/logging"
)

// SettingKey is the local store key of the preference ("true" / "false").
const SettingKey = "@app_lock_enabled"

var ChallengePrompt = biometric.Prompt{
	Message:               "Authenticate to access the app",
	FallbackLabel:         "Use passcode",
	CancelLabel:           "Cancel",
	DisableDeviceFallback: false,
}

const (
	msgAuthFailed = "Authentication failed"
	msgAuthError  = "Authentication error"
)

// Settings is the persisted key/value store holding the preference.
type Settings interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// State is a snapshot of the policy.
type State struct {
	Enabled    bool
	Locked     bool
	Capability biometric.Capability
}

// Policy is safe for concurrent use. Locked is only ever true while
// Enabled is true.
type Policy struct {
	settings Settings
	device   biometric.Device
	checker  *biometric.Checker
	logger   logging.Logger

	mu      sync.Mutex
	enabled bool
	locked  bool
	support biometric.Support
	lastErr string

	changes *events.Stream[State]
}

func New(settings Settings, device biometric.Device, logger logging.Logger) *Policy {
	return &Policy{
		settings: settings,
		device:   device,
		checker:  biometric.NewChecker(device, logger),
		logger:   logger,
		changes:  events.NewStream[State](),
	}
}

// Initialize loads the preference and checks device support. With the lock
// enabled the app starts locked. It must finish before the first screen is
// shown.
func (p *Policy) Initialize(ctx context.Context) {
	enabled := p.loadEnabled(ctx)
	support := p.checker.CheckSupport(ctx)

	p.mu.Lock()
	p.enabled = enabled
	p.locked = enabled
	p.support = support
	st := p.stateLocked()
	p.mu.Unlock()

	p.logger.Info(ctx, "app lock initialized",
		"enabled", st.Enabled, "capability", st.Capability.String())
	p.changes.Publish(st)
}

func (p *Policy) loadEnabled(ctx context.Context) bool {
	v, err := p.settings.Get(ctx, SettingKey)
	if err != nil {
		p.logger.Error(ctx, "error loading app lock settings", "error", err)
		return false
	}
	return string(v) == "true"
}

// Recheck refreshes device support after enrollment changed. The lock
// state is left as is.
func (p *Policy) Recheck(ctx context.Context) {
	support := p.checker.CheckSupport(ctx)

	p.mu.Lock()
	changed := support != p.support
	p.support = support
	st := p.stateLocked()
	p.mu.Unlock()

	if changed {
		p.changes.Publish(st)
	}
}

// OnAppForeground re-arms the lock when it is enabled, even while a
// challenge is in flight.
func (p *Policy) OnAppForeground() {
	p.mu.Lock()
	if !p.enabled || p.locked {
		p.mu.Unlock()
		return
	}
	p.locked = true
	st := p.stateLocked()
	p.mu.Unlock()

	p.changes.Publish(st)
}

// SetEnabled turns the lock on or off and reports success. Enabling needs a
// supported capability and a successful challenge; nothing is stored
// otherwise. Disabling always succeeds and unlocks immediately.
func (p *Policy) SetEnabled(ctx context.Context, enabled bool) bool {
	if !enabled {
		p.disable(ctx)
		return true
	}

	if !p.Capability().Supported() {
		p.logger.Info(ctx, "app lock not enabled: no biometric capability")
		return false
	}

	if !p.Challenge(ctx) {
		return false
	}

	if err := p.settings.Set(ctx, SettingKey, []byte("true")); err != nil {
		p.logger.Error(ctx, "error toggling app lock", "error", err)
		return false
	}

	p.mu.Lock()
	p.enabled = true
	st := p.stateLocked()
	p.mu.Unlock()

	p.changes.Publish(st)
	return true
}

func (p *Policy) disable(ctx context.Context) {
	if err := p.settings.Set(ctx, SettingKey, []byte("false")); err != nil {
		p.logger.Error(ctx, "error toggling app lock", "error", err)
	}

	p.mu.Lock()
	p.enabled = false
	p.locked = false
	st := p.stateLocked()
	p.mu.Unlock()

	p.changes.Publish(st)
}

// Challenge prompts the device. Success unlocks; failure or cancellation
// keeps the current lock state and records the reason in LastError.
func (p *Policy) Challenge(ctx context.Context) bool {
	res, err := p.device.Authenticate(ctx, ChallengePrompt)
	if err != nil {
		p.logger.Error(ctx, "biometric authentication error", "error", err)
		p.setLastError(msgAuthError)
		return false
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = msgAuthFailed
		}
		p.logger.Info(ctx, "biometric authentication failed", "reason", msg)
		p.setLastError(msg)
		return false
	}

	p.mu.Lock()
	p.lastErr = ""
	changed := p.locked
	p.locked = false
	st := p.stateLocked()
	p.mu.Unlock()

	if changed {
		p.changes.Publish(st)
	}
	return true
}

func (p *Policy) setLastError(msg string) {
	p.mu.Lock()
	p.lastErr = msg
	p.mu.Unlock()
}

func (p *Policy) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *Policy) Locked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locked
}

func (p *Policy) Capability() biometric.Capability {
	return p.Support().Capability
}

func (p *Policy) Support() biometric.Support {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.support
}

// LastError is the reason of the last failed challenge, empty after a
// success.
func (p *Policy) LastError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Policy) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Policy) stateLocked() State {
	return State{Enabled: p.enabled, Locked: p.locked, Capability: p.support.Capability}
}

// Changes registers fn for lock state changes.
func (p *Policy) Changes(fn func(State)) events.Subscription {
	return p.changes.Subscribe(fn)
}

// Flush waits until pending change notifications have been delivered.
func (p *Policy) Flush() { p.changes.Flush() }

func (p *Policy) Dispose() { p.changes.Close() }

// UnlockHint is the text shown on the lock overlay.
func UnlockHint(c biometric.Capability) string {
	switch c {
	case biometric.FaceID:
		return "Use Face ID to unlock"
	case biometric.TouchID:
		return "Use Touch ID to unlock"
	}
	return "Authenticate to unlock"
}
