package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/orbit/internal/client/applock"
	"github.com/dmitrijs2005/orbit/internal/client/biometric"
	"github.com/dmitrijs2005/orbit/internal/client/events"
	"github.com/dmitrijs2005/orbit/internal/client/lifecycle"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/routing"
	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	initial *models.Session
	getErr  error
	stream  *events.Stream[*models.Session]
}

func newStore(initial *models.Session) *fakeStore {
	return &fakeStore{initial: initial, stream: events.NewStream[*models.Session]()}
}

func (f *fakeStore) GetSession(context.Context) (*models.Session, error) {
	return f.initial, f.getErr
}
func (f *fakeStore) OnSessionChange(fn func(*models.Session)) events.Subscription {
	return f.stream.Subscribe(fn)
}
func (f *fakeStore) SignOut(context.Context) error {
	f.stream.Publish(nil)
	return nil
}
func (f *fakeStore) UpdateUserMetadata(context.Context, map[string]any) (*models.Session, error) {
	return nil, errors.New("not used")
}

func (f *fakeStore) emit(s *models.Session) {
	f.stream.Publish(s)
	f.stream.Flush()
}

type memSettings struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memSettings) Get(_ context.Context, k string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[k], nil
}
func (m *memSettings) Set(_ context.Context, k string, v []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[k] = v
	return nil
}

type scriptedDevice struct {
	mu      sync.Mutex
	results []bool
	calls   int
}

func (d *scriptedDevice) HasHardware(context.Context) (bool, error) { return true, nil }
func (d *scriptedDevice) IsEnrolled(context.Context) (bool, error)  { return true, nil }
func (d *scriptedDevice) SupportedKinds(context.Context) ([]biometric.Kind, error) {
	return []biometric.Kind{biometric.KindFingerprint}, nil
}
func (d *scriptedDevice) Authenticate(context.Context, biometric.Prompt) (biometric.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	ok := true
	if len(d.results) > 0 {
		ok = d.results[0]
		d.results = d.results[1:]
	}
	if !ok {
		return biometric.Result{Error: biometric.ErrUserCancel}, nil
	}
	return biometric.Result{Success: true}, nil
}

type harness struct {
	ctrl   *Controller
	store  *fakeStore
	policy *applock.Policy
	device *scriptedDevice
	lc     *lifecycle.Emitter
	routes *[]string
}

func onboarded() *models.Session {
	return &models.Session{AccessToken: "A", User: models.User{ID: "u1", Metadata: models.UserMetadata{
		models.MetaOnboardingCompleted: true,
	}}}
}

func newHarness(t *testing.T, initial *models.Session, lockEnabled bool, start string) *harness {
	t.Helper()

	settings := &memSettings{data: map[string][]byte{}}
	if lockEnabled {
		settings.data[applock.SettingKey] = []byte("true")
	}
	dev := &scriptedDevice{}
	policy := applock.New(settings, dev, logging.Nop())
	store := newStore(initial)
	lc := lifecycle.NewEmitter()

	var routes []string
	nav := routing.NewNavigator(routing.RouterFunc(func(r string) { routes = append(routes, r) }), start)

	ctrl := New(store, policy, nav, lc, logging.Nop())
	t.Cleanup(func() {
		ctrl.Stop()
		policy.Dispose()
		lc.Close()
	})

	return &harness{ctrl: ctrl, store: store, policy: policy, device: dev, lc: lc, routes: &routes}
}

func (h *harness) settle() {
	h.store.stream.Flush()
	h.lc.Flush()
	h.ctrl.Flush()
	h.policy.Flush()
	h.ctrl.Flush()
}

func TestStart_SignedOutGoesToLogin(t *testing.T) {
	h := newHarness(t, nil, false, routing.RouteTabs)
	h.ctrl.Start(context.Background())

	assert.Equal(t, []string{routing.RouteLogin}, *h.routes)
	assert.False(t, h.ctrl.OverlayVisible())
}

func TestStart_SessionLoadErrorTreatedAsSignedOut(t *testing.T) {
	h := newHarness(t, onboarded(), false, routing.RouteTabs)
	h.store.getErr = errors.New("offline")
	h.ctrl.Start(context.Background())

	assert.Nil(t, h.ctrl.Session())
	assert.Equal(t, []string{routing.RouteLogin}, *h.routes)
}

func TestStart_LockedBeforeFirstScreen(t *testing.T) {
	h := newHarness(t, onboarded(), true, routing.RouteTabs)

	var first []Overlay
	h.ctrl.OnOverlayChange(func(o Overlay) { first = append(first, o) })
	h.ctrl.Start(context.Background())
	h.settle()

	assert.Empty(t, *h.routes)
	require.True(t, h.ctrl.OverlayVisible())
	assert.Equal(t, "Use Touch ID to unlock", h.ctrl.Overlay().Hint)
	require.NotEmpty(t, first)
	assert.True(t, first[0].Visible)
}

func TestOverlay_AutoChallengeOncePerMount(t *testing.T) {
	h := newHarness(t, onboarded(), true, routing.RouteTabs)
	h.device.results = []bool{false}
	ctx := context.Background()
	h.ctrl.Start(ctx)
	h.settle()

	assert.False(t, h.ctrl.AutoUnlock(ctx))
	assert.False(t, h.ctrl.AutoUnlock(ctx), "second call must not prompt again")
	assert.Equal(t, 1, h.device.calls)
	assert.True(t, h.ctrl.OverlayVisible())
	assert.Equal(t, biometric.ErrUserCancel, h.ctrl.Overlay().Error)

	assert.True(t, h.ctrl.Unlock(ctx))
	h.settle()
	assert.False(t, h.ctrl.OverlayVisible())
	assert.Equal(t, 2, h.device.calls)

	// background and back: a new mount arms a new automatic challenge
	h.lc.Set(lifecycle.Background)
	h.lc.Set(lifecycle.Active)
	h.settle()
	require.True(t, h.ctrl.OverlayVisible())
	assert.True(t, h.ctrl.AutoUnlock(ctx))
	assert.Equal(t, 3, h.device.calls)
}

func TestOverlay_NeverShownWithoutSession(t *testing.T) {
	h := newHarness(t, nil, true, routing.RouteLogin)
	h.ctrl.Start(context.Background())
	h.settle()

	assert.True(t, h.policy.Locked())
	assert.False(t, h.ctrl.OverlayVisible())
	assert.False(t, h.ctrl.AutoUnlock(context.Background()))
	assert.Zero(t, h.device.calls)

	h.store.emit(onboarded())
	h.settle()
	assert.True(t, h.ctrl.OverlayVisible())
	assert.Equal(t, []string{routing.RouteTabs}, *h.routes)

	h.store.emit(nil)
	h.settle()
	assert.False(t, h.ctrl.OverlayVisible())
}

func TestForeground_DisabledLockDoesNothing(t *testing.T) {
	h := newHarness(t, onboarded(), false, routing.RouteTabs)
	h.ctrl.Start(context.Background())

	h.lc.Set(lifecycle.Inactive)
	h.lc.Set(lifecycle.Active)
	h.settle()

	assert.False(t, h.policy.Locked())
	assert.False(t, h.ctrl.OverlayVisible())
}

func TestSessionChanges_RouteInEmissionOrder(t *testing.T) {
	h := newHarness(t, nil, false, routing.RouteTabs)
	h.ctrl.Start(context.Background())

	pending := &models.Session{AccessToken: "A", User: models.User{ID: "u1"}}
	h.store.stream.Publish(pending)
	h.store.stream.Publish(pending)
	h.store.stream.Publish(nil)
	h.settle()

	// signing out on the onboarding screen stays in the auth group
	assert.Equal(t, []string{routing.RouteLogin, routing.RouteOnboarding}, *h.routes)
	assert.Nil(t, h.ctrl.Session())
}

func TestNavigate_ReappliesRules(t *testing.T) {
	h := newHarness(t, &models.Session{User: models.User{ID: "u1"}}, false, routing.RouteOnboarding)
	ctx := context.Background()
	h.ctrl.Start(ctx)
	assert.Empty(t, *h.routes)

	h.ctrl.Navigate(ctx, "/(tabs)/members")
	assert.Equal(t, []string{"/(tabs)/members", routing.RouteOnboarding}, *h.routes)
}

func TestStop_UnsubscribesEverything(t *testing.T) {
	h := newHarness(t, nil, false, routing.RouteLogin)
	h.ctrl.Start(context.Background())
	h.ctrl.Stop()

	h.store.emit(onboarded())
	assert.Empty(t, *h.routes)
	assert.Nil(t, h.ctrl.Session())
}
