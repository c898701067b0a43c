package biometric

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/stretchr/testify/assert"
)

type fakeDevice struct {
	hardware    bool
	hardwareErr error
	enrolled    bool
	enrollErr   error
	kinds       []Kind
	kindsErr    error

	enrollCalls int
	kindsCalls  int
}

func (f *fakeDevice) HasHardware(context.Context) (bool, error) { return f.hardware, f.hardwareErr }
func (f *fakeDevice) IsEnrolled(context.Context) (bool, error) {
	f.enrollCalls++
	return f.enrolled, f.enrollErr
}
func (f *fakeDevice) SupportedKinds(context.Context) ([]Kind, error) {
	f.kindsCalls++
	return f.kinds, f.kindsErr
}
func (f *fakeDevice) Authenticate(context.Context, Prompt) (Result, error) {
	return Result{}, nil
}

func TestCheckSupport(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		dev    *fakeDevice
		want   Capability
		reason Reason
	}{
		{"no hardware", &fakeDevice{}, None, ReasonNoHardware},
		{"not enrolled", &fakeDevice{hardware: true}, None, ReasonNotEnrolled},
		{"facial wins", &fakeDevice{hardware: true, enrolled: true, kinds: []Kind{KindFingerprint, KindIris, KindFacial}}, FaceID, ReasonAvailable},
		{"fingerprint over iris", &fakeDevice{hardware: true, enrolled: true, kinds: []Kind{KindIris, KindFingerprint}}, TouchID, ReasonAvailable},
		{"iris", &fakeDevice{hardware: true, enrolled: true, kinds: []Kind{KindIris}}, Iris, ReasonAvailable},
		{"generic", &fakeDevice{hardware: true, enrolled: true}, GenericBiometric, ReasonAvailable},
		{"hardware error", &fakeDevice{hardwareErr: boom}, None, ReasonError},
		{"enrollment error", &fakeDevice{hardware: true, enrollErr: boom}, None, ReasonError},
		{"kinds error", &fakeDevice{hardware: true, enrolled: true, kindsErr: boom}, None, ReasonError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewChecker(tt.dev, logging.Nop()).CheckSupport(context.Background())
			assert.Equal(t, tt.want, got.Capability)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestCheckSupport_StopsAtFirstNegativeAnswer(t *testing.T) {
	dev := &fakeDevice{}
	NewChecker(dev, logging.Nop()).CheckSupport(context.Background())
	assert.Zero(t, dev.enrollCalls)
	assert.Zero(t, dev.kindsCalls)

	dev = &fakeDevice{hardware: true}
	NewChecker(dev, logging.Nop()).CheckSupport(context.Background())
	assert.Equal(t, 1, dev.enrollCalls)
	assert.Zero(t, dev.kindsCalls)
}

func TestCapability_String(t *testing.T) {
	assert.Equal(t, "", None.String())
	assert.Equal(t, "Face ID", FaceID.String())
	assert.Equal(t, "Touch ID", TouchID.String())
	assert.Equal(t, "Iris", Iris.String())
	assert.Equal(t, "Biometric", GenericBiometric.String())
	assert.False(t, None.Supported())
	assert.True(t, Iris.Supported())
}

func TestReason_Message(t *testing.T) {
	assert.Empty(t, ReasonAvailable.Message())
	assert.NotEmpty(t, ReasonNoHardware.Message())
	assert.NotEqual(t, ReasonNoHardware.Message(), ReasonNotEnrolled.Message())
}
