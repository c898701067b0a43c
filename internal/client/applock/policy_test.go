package applock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/orbit/internal/client/biometric"
	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
	setErr error
	sets   []string
}

func newSettings(kv map[string]string) *fakeSettings {
	if kv == nil {
		kv = map[string]string{}
	}
	return &fakeSettings{data: kv}
}

func (f *fakeSettings) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (f *fakeSettings) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, string(value))
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = string(value)
	return nil
}

type fakeDevice struct {
	hardware bool
	enrolled bool
	kinds    []biometric.Kind

	results []biometric.Result
	authErr error
	prompts []biometric.Prompt
}

func (f *fakeDevice) HasHardware(context.Context) (bool, error) { return f.hardware, nil }
func (f *fakeDevice) IsEnrolled(context.Context) (bool, error)  { return f.enrolled, nil }
func (f *fakeDevice) SupportedKinds(context.Context) ([]biometric.Kind, error) {
	return f.kinds, nil
}
func (f *fakeDevice) Authenticate(_ context.Context, p biometric.Prompt) (biometric.Result, error) {
	f.prompts = append(f.prompts, p)
	if f.authErr != nil {
		return biometric.Result{}, f.authErr
	}
	if len(f.results) == 0 {
		return biometric.Result{Success: true}, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

func faceDevice() *fakeDevice {
	return &fakeDevice{hardware: true, enrolled: true, kinds: []biometric.Kind{biometric.KindFacial}}
}

func newPolicy(t *testing.T, s *fakeSettings, d *fakeDevice) *Policy {
	t.Helper()
	p := New(s, d, logging.Nop())
	t.Cleanup(p.Dispose)
	p.Initialize(context.Background())
	return p
}

func TestInitialize_EnabledStartsLocked(t *testing.T) {
	p := newPolicy(t, newSettings(map[string]string{SettingKey: "true"}), faceDevice())

	assert.True(t, p.Enabled())
	assert.True(t, p.Locked())
	assert.Equal(t, biometric.FaceID, p.Capability())

	require.True(t, p.Challenge(context.Background()))
	assert.False(t, p.Locked())
	assert.True(t, p.Enabled())
}

func TestInitialize_AbsentOrUnreadableMeansDisabled(t *testing.T) {
	p := newPolicy(t, newSettings(nil), faceDevice())
	assert.False(t, p.Enabled())
	assert.False(t, p.Locked())

	s := newSettings(map[string]string{SettingKey: "true"})
	s.getErr = errors.New("disk")
	p = newPolicy(t, s, faceDevice())
	assert.False(t, p.Enabled())
	assert.False(t, p.Locked())

	p = newPolicy(t, newSettings(map[string]string{SettingKey: "yes"}), faceDevice())
	assert.False(t, p.Enabled())
}

func TestOnAppForeground(t *testing.T) {
	p := newPolicy(t, newSettings(nil), faceDevice())
	p.OnAppForeground()
	assert.False(t, p.Locked(), "disabled lock must never lock")

	p = newPolicy(t, newSettings(map[string]string{SettingKey: "true"}), faceDevice())
	require.True(t, p.Challenge(context.Background()))
	p.OnAppForeground()
	assert.True(t, p.Locked())
	p.OnAppForeground()
	assert.True(t, p.Locked())
}

func TestSetEnabled_TrueRequiresCapability(t *testing.T) {
	d := &fakeDevice{hardware: true}
	s := newSettings(nil)
	p := newPolicy(t, s, d)

	assert.False(t, p.SetEnabled(context.Background(), true))
	assert.False(t, p.Enabled())
	assert.Empty(t, d.prompts)
	assert.Empty(t, s.sets)
}

func TestSetEnabled_TrueWithoutCapabilityKeepsState(t *testing.T) {
	s := newSettings(map[string]string{SettingKey: "true"})
	p := newPolicy(t, s, &fakeDevice{})

	before := p.State()
	assert.False(t, p.SetEnabled(context.Background(), true))
	assert.Equal(t, before, p.State())
	assert.Empty(t, s.sets)
}

func TestSetEnabled_TrueOnlyPersistsAfterSuccessfulChallenge(t *testing.T) {
	d := faceDevice()
	d.results = []biometric.Result{{Error: biometric.ErrUserCancel}}
	s := newSettings(nil)
	p := newPolicy(t, s, d)
	ctx := context.Background()

	assert.False(t, p.SetEnabled(ctx, true))
	assert.False(t, p.Enabled())
	assert.Empty(t, s.sets)
	assert.Equal(t, biometric.ErrUserCancel, p.LastError())

	assert.True(t, p.SetEnabled(ctx, true))
	assert.True(t, p.Enabled())
	assert.False(t, p.Locked())
	assert.Equal(t, []string{"true"}, s.sets)
	assert.Empty(t, p.LastError())
	require.Len(t, d.prompts, 2)
	assert.Equal(t, ChallengePrompt, d.prompts[1])
}

func TestSetEnabled_PersistFailureLeavesStateUnchanged(t *testing.T) {
	s := newSettings(nil)
	s.setErr = errors.New("disk full")
	p := newPolicy(t, s, faceDevice())

	assert.False(t, p.SetEnabled(context.Background(), true))
	assert.False(t, p.Enabled())
}

func TestSetEnabled_FalseAlwaysUnlocks(t *testing.T) {
	s := newSettings(map[string]string{SettingKey: "true"})
	p := newPolicy(t, s, faceDevice())
	require.True(t, p.Locked())

	assert.True(t, p.SetEnabled(context.Background(), false))
	assert.False(t, p.Locked())
	assert.False(t, p.Enabled())
	assert.Equal(t, "false", s.data[SettingKey])

	s.setErr = errors.New("disk full")
	assert.True(t, p.SetEnabled(context.Background(), false))
	assert.False(t, p.Locked())
}

func TestChallenge_FailureKeepsLocked(t *testing.T) {
	d := faceDevice()
	d.results = []biometric.Result{{}}
	p := newPolicy(t, newSettings(map[string]string{SettingKey: "true"}), d)
	ctx := context.Background()

	assert.False(t, p.Challenge(ctx))
	assert.True(t, p.Locked())
	assert.Equal(t, "Authentication failed", p.LastError())

	d.authErr = errors.New("sensor")
	assert.False(t, p.Challenge(ctx))
	assert.True(t, p.Locked())
	assert.Equal(t, "Authentication error", p.LastError())
}

func TestChanges_NotifiedOnLockTransitions(t *testing.T) {
	p := New(newSettings(map[string]string{SettingKey: "true"}), faceDevice(), logging.Nop())
	defer p.Dispose()

	var got []State
	p.Changes(func(s State) { got = append(got, s) })

	ctx := context.Background()
	p.Initialize(ctx)
	p.Challenge(ctx)
	p.OnAppForeground()
	p.SetEnabled(ctx, false)
	p.Flush()

	require.Len(t, got, 4)
	assert.True(t, got[0].Locked)
	assert.False(t, got[1].Locked)
	assert.True(t, got[2].Locked)
	assert.Equal(t, State{Enabled: false, Locked: false, Capability: biometric.FaceID}, got[3])
	for _, s := range got {
		assert.False(t, s.Locked && !s.Enabled, "locked implies enabled")
	}
}

func TestUnlockHint(t *testing.T) {
	assert.Equal(t, "Use Face ID to unlock", UnlockHint(biometric.FaceID))
	assert.Equal(t, "Use Touch ID to unlock", UnlockHint(biometric.TouchID))
	assert.Equal(t, "Authenticate to unlock", UnlockHint(biometric.Iris))
	assert.Equal(t, "Authenticate to unlock", UnlockHint(biometric.GenericBiometric))
}

func TestRecheck_PicksUpEnrollment(t *testing.T) {
	d := &fakeDevice{hardware: true}
	p := newPolicy(t, newSettings(nil), d)
	require.Equal(t, biometric.None, p.Capability())
	require.False(t, p.SetEnabled(context.Background(), true))

	d.enrolled = true
	p.Recheck(context.Background())
	assert.Equal(t, biometric.GenericBiometric, p.Capability())
	assert.False(t, p.Locked())

	require.True(t, p.SetEnabled(context.Background(), true))
	assert.True(t, p.Enabled())
}
