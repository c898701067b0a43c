package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/dbx"
	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/dmitrijs2005/orbit/internal/server/config"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/dmitrijs2005/orbit/internal/server/realtime"
	profilesrepo "github.com/dmitrijs2005/orbit/internal/server/repositories/profiles"
	projectsrepo "github.com/dmitrijs2005/orbit/internal/server/repositories/projects"
	refreshtokensrepo "github.com/dmitrijs2005/orbit/internal/server/repositories/refreshtokens"
	tasksrepo "github.com/dmitrijs2005/orbit/internal/server/repositories/tasks"
	usersrepo "github.com/dmitrijs2005/orbit/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	byID      map[string]*models.User
	createErr error
	updateErr error
	getErr    error
	seq       int
}

func newFakeUsers(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{byID: map[string]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.seq++
	out := *u
	out.ID = fmt.Sprintf("u-%d", f.seq)
	out.CreatedAt = time.Now()
	f.byID[out.ID] = &out
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) UpdateMetadata(ctx context.Context, id string, metadata map[string]any) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	out.Metadata = metadata
	f.byID[id] = &out
	return &out, nil
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	tokens      map[string]*models.RefreshToken
	created     []string
	deletedUser string
	purged      []string

	consumeErr error
	delErr     error
	createErr  error
	purgeErr   error
}

func newFakeRefresh() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Issue(ctx context.Context, userID, token string, expiresAt time.Time) (*models.RefreshToken, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, token)
	t := &models.RefreshToken{UserID: userID, Token: token, Expires: expiresAt}
	f.tokens[token] = t
	return t, nil
}

func (f *fakeRefreshRepo) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.tokens, token)
	return t, nil
}

func (f *fakeRefreshRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if f.delErr != nil {
		return 0, f.delErr
	}
	f.deletedUser = userID
	var n int64
	for k, t := range f.tokens {
		if t.UserID == userID {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeRefreshRepo) PurgeExpired(ctx context.Context, userID string, now time.Time) error {
	if f.purgeErr != nil {
		return f.purgeErr
	}
	f.purged = append(f.purged, userID)
	return nil
}

// --- profiles ---

type fakeProfilesRepo struct {
	byID      map[string]*models.Profile
	upsertErr error
	pushToken map[string]string
}

func newFakeProfiles(ps ...*models.Profile) *fakeProfilesRepo {
	f := &fakeProfilesRepo{byID: map[string]*models.Profile{}, pushToken: map[string]string{}}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProfilesRepo) Upsert(ctx context.Context, p *models.Profile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProfilesRepo) Get(ctx context.Context, id string) (*models.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProfilesRepo) ListByOrganization(ctx context.Context, organization string) ([]*models.Profile, error) {
	var out []*models.Profile
	for _, p := range f.byID {
		if p.Organization == organization {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProfilesRepo) SetPushToken(ctx context.Context, id, token string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	f.pushToken[id] = token
	return nil
}

// --- projects ---

type fakeProjectsRepo struct {
	items     map[string]*models.Project
	lastPatch *models.ProjectPatch
	listArgs  []string
}

func newFakeProjects(ps ...*models.Project) *fakeProjectsRepo {
	f := &fakeProjectsRepo{items: map[string]*models.Project{}}
	for _, p := range ps {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProjectsRepo) List(ctx context.Context, userID, status string) ([]*models.Project, error) {
	f.listArgs = []string{userID, status}
	var out []*models.Project
	for _, p := range f.items {
		if p.UserID == userID && (status == "" || p.Status == status) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectsRepo) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	p, ok := f.items[id]
	if !ok || p.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakeProjectsRepo) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	out := *p
	out.ID = "p-new"
	f.items[out.ID] = &out
	return &out, nil
}

func (f *fakeProjectsRepo) Update(ctx context.Context, userID, id string, patch models.ProjectPatch) (*models.Project, error) {
	f.lastPatch = &patch
	p, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	return p, nil
}

func (f *fakeProjectsRepo) Delete(ctx context.Context, userID, id string) error {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(f.items, id)
	return nil
}

// --- tasks ---

// fakeTasksRepo applies the same visibility rules as the SQL statements.
type fakeTasksRepo struct {
	items map[string]*models.Task
	calls []string
}

func newFakeTasks(ts ...*models.Task) *fakeTasksRepo {
	f := &fakeTasksRepo{items: map[string]*models.Task{}}
	for _, t := range ts {
		f.items[t.ID] = t
	}
	return f
}

func visible(t *models.Task, userID string) bool {
	return t.UserID == userID || t.AssigneeID == userID
}

func (f *fakeTasksRepo) ListVisible(ctx context.Context, userID string) ([]*models.Task, error) {
	var out []*models.Task
	for _, t := range f.items {
		if visible(t, userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasksRepo) GetVisible(ctx context.Context, userID, id string) (*models.Task, error) {
	t, ok := f.items[id]
	if !ok || !visible(t, userID) {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasksRepo) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	f.calls = append(f.calls, "create")
	out := *t
	out.ID = "t-new"
	f.items[out.ID] = &out
	return &out, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	f.calls = append(f.calls, "update")
	t, ok := f.items[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.AssigneeID != nil {
		t.AssigneeID = *patch.AssigneeID
	}
	return t, nil
}

func (f *fakeTasksRepo) SetStatus(ctx context.Context, userID, id, status string) (*models.Task, error) {
	f.calls = append(f.calls, "status")
	t, ok := f.items[id]
	if !ok || !visible(t, userID) {
		return nil, common.ErrorNotFound
	}
	t.Status = status
	return t, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, userID, id string) error {
	f.calls = append(f.calls, "delete")
	t, ok := f.items[id]
	if !ok || t.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.items, id)
	return nil
}

// --- manager and broker ---

type fakeRepoManager struct {
	users    *fakeUsersRepo
	refresh  *fakeRefreshRepo
	profiles *fakeProfilesRepo
	projects *fakeProjectsRepo
	tasks    *fakeTasksRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.refresh }
func (m *fakeRepoManager) Profiles(db dbx.DBTX) profilesrepo.Repository           { return m.profiles }
func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository           { return m.projects }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository                 { return m.tasks }

type recBroker struct {
	events []models.ChangeEvent
	err    error
}

func (b *recBroker) Publish(ctx context.Context, ev models.ChangeEvent) error {
	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, ev)
	return nil
}

func (b *recBroker) Subscribe(ctx context.Context, table string, filter realtime.Filter) (<-chan models.ChangeEvent, func()) {
	ch := make(chan models.ChangeEvent)
	close(ch)
	return ch, func() {}
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
}

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager, b *recBroker) *UserService {
	t.Helper()
	return NewUserService(db, rm, b, logging.Nop(), testConfig())
}
