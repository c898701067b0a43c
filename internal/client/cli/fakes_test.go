package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/orbit/internal/client/biometric"
	"github.com/dmitrijs2005/orbit/internal/client/config"
	"github.com/dmitrijs2005/orbit/internal/client/controller"
	"github.com/dmitrijs2005/orbit/internal/client/lifecycle"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/routing"
	"github.com/dmitrijs2005/orbit/internal/client/services"
	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/logging"
)

// ------------ helpers ------------

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

type testEnv struct {
	app      *App
	out      *bytes.Buffer
	sessions *fakeSessions
	lock     *fakeLock
	passcode *fakePasscode
	ctrl     *fakeCtrl
	lc       *fakeLC
	watcher  *fakeWatcher
	profiles *fakeProfiles
	projects *fakeProjects
	tasks    *fakeTasks
	members  *fakeMembers
}

func newTestApp(t *testing.T, sess *models.Session, input ...string) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	env := &testEnv{
		out:      &bytes.Buffer{},
		sessions: &fakeSessions{},
		lock:     &fakeLock{},
		passcode: &fakePasscode{},
		ctrl:     &fakeCtrl{session: sess, loc: routing.ParseLocation(routing.RouteTabs)},
		lc:       &fakeLC{},
		watcher:  &fakeWatcher{},
		profiles: &fakeProfiles{},
		projects: &fakeProjects{},
		tasks:    &fakeTasks{},
		members:  &fakeMembers{},
	}
	if sess == nil {
		env.ctrl.loc = routing.ParseLocation(routing.RouteLogin)
	}
	env.sessions.ctrl = env.ctrl
	env.app = &App{
		config:   cfg,
		logger:   logging.Nop(),
		reader:   readerFromLines(input...),
		out:      env.out,
		sessions: env.sessions,
		lock:     env.lock,
		passcode: env.passcode,
		ctrl:     env.ctrl,
		lc:       env.lc,
		watcher:  env.watcher,
		profiles: env.profiles,
		projects: env.projects,
		tasks:    env.tasks,
		members:  env.members,
	}
	return env
}

func onboarded(id string) *models.Session {
	return &models.Session{User: models.User{
		ID:       id,
		Email:    "me@example.com",
		Metadata: models.UserMetadata{"onboarding_completed": true, "full_name": "Ada"},
	}}
}

// ------------ fakes ------------

type fakeSessions struct {
	ctrl *fakeCtrl

	email, password, fullName string
	callbackURL               string
	signedOut                 bool
	err                       error
}

func (f *fakeSessions) GetSession(context.Context) (*models.Session, error) {
	return f.ctrl.session, nil
}
func (f *fakeSessions) SignInWithPassword(_ context.Context, email, password string) (*models.Session, error) {
	f.email, f.password = email, password
	if f.err != nil {
		return nil, f.err
	}
	f.ctrl.setSession(onboarded("u1"))
	return f.ctrl.session, nil
}
func (f *fakeSessions) SignUp(_ context.Context, email, password, fullName string) (*models.Session, error) {
	f.email, f.password, f.fullName = email, password, fullName
	if f.err != nil {
		return nil, f.err
	}
	f.ctrl.setSession(&models.Session{User: models.User{ID: "u1", Email: email, Metadata: models.UserMetadata{}}})
	return f.ctrl.session, nil
}
func (f *fakeSessions) ExchangeCallbackURL(_ context.Context, rawURL string) (*models.Session, error) {
	f.callbackURL = rawURL
	if f.err != nil {
		return nil, f.err
	}
	f.ctrl.setSession(onboarded("u1"))
	return f.ctrl.session, nil
}
func (f *fakeSessions) SignOut(context.Context) error {
	f.signedOut = true
	f.ctrl.setSession(nil)
	return f.err
}

type fakeLock struct {
	enabled    bool
	capability biometric.Capability
	setResult  bool
	setCalls   []bool
	rechecks   int
	lastErr    string
}

func (f *fakeLock) SetEnabled(_ context.Context, enabled bool) bool {
	f.setCalls = append(f.setCalls, enabled)
	if !enabled {
		f.enabled = false
		return true
	}
	if f.setResult {
		f.enabled = true
	}
	return f.setResult
}
func (f *fakeLock) Enabled() bool                    { return f.enabled }
func (f *fakeLock) Capability() biometric.Capability { return f.capability }
func (f *fakeLock) Recheck(context.Context)          { f.rechecks++ }
func (f *fakeLock) LastError() string                { return f.lastErr }
func (f *fakeLock) Flush()                           {}

type fakePasscode struct {
	enrolled []byte
	removed  bool
	err      error
}

func (f *fakePasscode) IsEnrolled(context.Context) (bool, error) { return f.enrolled != nil, nil }
func (f *fakePasscode) Enroll(_ context.Context, p []byte) error {
	if f.err != nil {
		return f.err
	}
	f.enrolled = append([]byte(nil), p...)
	return nil
}
func (f *fakePasscode) Remove(context.Context) error { f.removed = true; f.enrolled = nil; return nil }

// fakeCtrl applies the real routing rules to an in-memory location.
type fakeCtrl struct {
	session    *models.Session
	loc        routing.Location
	overlay    controller.Overlay
	navigated  []string
	autoResult bool
	autoCalls  int
	unlockOK   bool
	unlocks    int
}

func (f *fakeCtrl) setSession(s *models.Session) {
	f.session = s
	f.evaluate()
}

func (f *fakeCtrl) evaluate() {
	if t := routing.Decide(f.session, f.loc.Group, f.loc.SubRoute); t.Redirect {
		f.loc = routing.ParseLocation(t.Route)
	}
}

func (f *fakeCtrl) Session() *models.Session   { return f.session }
func (f *fakeCtrl) Location() routing.Location { return f.loc }
func (f *fakeCtrl) Navigate(_ context.Context, route string) {
	f.navigated = append(f.navigated, route)
	f.loc = routing.ParseLocation(route)
	f.evaluate()
}
func (f *fakeCtrl) Overlay() controller.Overlay { return f.overlay }
func (f *fakeCtrl) AutoUnlock(ctx context.Context) bool {
	f.autoCalls++
	if f.autoCalls > 1 {
		return false
	}
	if f.autoResult {
		f.overlay = controller.Overlay{}
	}
	return f.autoResult
}
func (f *fakeCtrl) Unlock(context.Context) bool {
	f.unlocks++
	if f.unlockOK {
		f.overlay = controller.Overlay{}
	}
	return f.unlockOK
}
func (f *fakeCtrl) Flush() {}

type fakeLC struct {
	states []lifecycle.State
}

func (f *fakeLC) Set(next lifecycle.State) { f.states = append(f.states, next) }
func (f *fakeLC) Flush()                   {}

type fakeWatcher struct {
	tables  []string
	stopped int
	fn      func(models.ChangeEvent)
}

func (f *fakeWatcher) Watch(_ context.Context, table, recordID string, fn func(models.ChangeEvent)) (func(), error) {
	f.tables = append(f.tables, table+"/"+recordID)
	f.fn = fn
	return func() { f.stopped++ }, nil
}

type fakeProfiles struct {
	onboarding *services.OnboardingInput
	profile    *services.ProfileInput
	account    *services.AccountInput
	onDone     func()
	err        error
}

func (f *fakeProfiles) CompleteOnboarding(_ context.Context, in services.OnboardingInput) (*models.Session, error) {
	f.onboarding = &in
	if f.err == nil && f.onDone != nil {
		f.onDone()
	}
	return nil, f.err
}
func (f *fakeProfiles) UpdateProfile(_ context.Context, in services.ProfileInput) (*models.Session, error) {
	f.profile = &in
	return nil, f.err
}
func (f *fakeProfiles) UpdateAccountInfo(_ context.Context, in services.AccountInput) (*models.Session, error) {
	f.account = &in
	return nil, f.err
}
func (f *fakeProfiles) SavePushToken(context.Context, string) error { return nil }

type fakeProjects struct {
	services.ProjectService

	items     []*models.Project
	listCalls int
	created   *services.ProjectInput
	updated   *services.ProjectInput
	deleted   []string
	status    map[string]models.ProjectStatus
	dashboard *services.Dashboard
	err       error
}

func (f *fakeProjects) List(context.Context, models.ProjectStatus) ([]*models.Project, error) {
	f.listCalls++
	return f.items, f.err
}
func (f *fakeProjects) Get(_ context.Context, id string) (*models.Project, error) {
	for _, p := range f.items {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, common.ErrorNotFound
}
func (f *fakeProjects) Update(_ context.Context, id string, in services.ProjectInput) (*models.Project, error) {
	f.updated = &in
	return &models.Project{ID: id, Name: in.Name}, f.err
}
func (f *fakeProjects) Create(_ context.Context, in services.ProjectInput) (*models.Project, error) {
	f.created = &in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Project{ID: "p-new", Name: in.Name}, nil
}
func (f *fakeProjects) SetStatus(_ context.Context, id string, st models.ProjectStatus) (*models.Project, error) {
	if f.status == nil {
		f.status = map[string]models.ProjectStatus{}
	}
	f.status[id] = st
	return &models.Project{ID: id, Status: st}, f.err
}
func (f *fakeProjects) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}
func (f *fakeProjects) Dashboard(context.Context) (*services.Dashboard, error) {
	if f.dashboard == nil {
		return &services.Dashboard{}, f.err
	}
	return f.dashboard, f.err
}

type fakeTasks struct {
	services.TaskService

	items   []*models.Task
	created *services.TaskInput
	deleted []string
	err     error
}

func (f *fakeTasks) List(context.Context) ([]*models.Task, error) { return f.items, f.err }
func (f *fakeTasks) Create(_ context.Context, in services.TaskInput) (*models.Task, error) {
	f.created = &in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Task{ID: "t-new"}, nil
}
func (f *fakeTasks) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

type fakeMembers struct {
	items []*models.Member
}

func (f *fakeMembers) List(context.Context) ([]*models.Member, error) { return f.items, nil }
