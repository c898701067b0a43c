// Package biometric classifies the device authentication method available
// to the app lock and exposes the devices the terminal client can use.
package biometric

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/orbit/internal/logging"
)

type Capability int

const (
	None Capability = iota
	FaceID
	TouchID
	Iris
	GenericBiometric
)

func (c Capability) String() string {
	switch c {
	case FaceID:
		return "Face ID"
	case TouchID:
		return "Touch ID"
	case Iris:
		return "Iris"
	case GenericBiometric:
		return "Biometric"
	}
	return ""
}

func (c Capability) Supported() bool { return c != None }

// Kind is an authentication method reported by the device.
type Kind int

const (
	KindFingerprint Kind = iota + 1
	KindFacial
	KindIris
)

// Prompt configures the authentication dialog.
type Prompt struct {
	Message               string
	FallbackLabel         string
	CancelLabel           string
	DisableDeviceFallback bool
}

// Result is the outcome of Device.Authenticate. Error holds a short
// machine-readable reason when Success is false.
type Result struct {
	Success bool
	Error   string
}

// Failure reasons reported in Result.Error.
const (
	ErrUserCancel           = "user_cancel"
	ErrAuthenticationFailed = "authentication_failed"
	ErrNotEnrolled          = "not_enrolled"
)

// Device is the platform authentication API.
type Device interface {
	HasHardware(ctx context.Context) (bool, error)
	IsEnrolled(ctx context.Context) (bool, error)
	SupportedKinds(ctx context.Context) ([]Kind, error)
	Authenticate(ctx context.Context, p Prompt) (Result, error)
}

// Reason explains a Capability.
type Reason int

const (
	ReasonAvailable Reason = iota
	ReasonNoHardware
	ReasonNotEnrolled
	ReasonError
)

func (r Reason) Message() string {
	switch r {
	case ReasonNoHardware:
		return "This device does not support biometric authentication"
	case ReasonNotEnrolled:
		return "No biometrics enrolled. Set up a passcode first"
	case ReasonError:
		return "Biometric authentication is unavailable"
	}
	return ""
}

type Support struct {
	Capability Capability
	Reason     Reason
}

type Checker struct {
	device Device
	logger logging.Logger
}

func NewChecker(device Device, logger logging.Logger) *Checker {
	return &Checker{device: device, logger: logger}
}

// CheckSupport queries the device once, without retries. Any query error
// yields None.
func (c *Checker) CheckSupport(ctx context.Context) Support {
	ok, err := c.device.HasHardware(ctx)
	if err != nil {
		return c.failed(ctx, "hardware", err)
	}
	if !ok {
		return Support{Capability: None, Reason: ReasonNoHardware}
	}

	ok, err = c.device.IsEnrolled(ctx)
	if err != nil {
		return c.failed(ctx, "enrollment", err)
	}
	if !ok {
		return Support{Capability: None, Reason: ReasonNotEnrolled}
	}

	kinds, err := c.device.SupportedKinds(ctx)
	if err != nil {
		return c.failed(ctx, "kinds", err)
	}

	return Support{Capability: classify(kinds), Reason: ReasonAvailable}
}

func (c *Checker) failed(ctx context.Context, query string, err error) Support {
	c.logger.Warn(ctx, "biometric support check failed", "query", query, "error", err)
	return Support{Capability: None, Reason: ReasonError}
}

func classify(kinds []Kind) Capability {
	switch {
	case slices.Contains(kinds, KindFacial):
		return FaceID
	case slices.Contains(kinds, KindFingerprint):
		return TouchID
	case slices.Contains(kinds, KindIris):
		return Iris
	}
	return GenericBiometric
}
