package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/orbit/internal/client/client"
	"github.com/dmitrijs2005/orbit/internal/client/events"
	"github.com/dmitrijs2005/orbit/internal/client/models"
)

const (
	meID    = "11111111-1111-1111-1111-111111111111"
	otherID = "22222222-2222-2222-2222-222222222222"
)

type fakeStore struct {
	sess      *models.Session
	updateErr error
	patches   []map[string]any
}

func signedIn(md models.UserMetadata) *fakeStore {
	if md == nil {
		md = models.UserMetadata{}
	}
	return &fakeStore{sess: &models.Session{
		AccessToken: "a",
		User:        models.User{ID: meID, Email: "me@example.com", Metadata: md},
	}}
}

func (f *fakeStore) GetSession(context.Context) (*models.Session, error) { return f.sess, nil }
func (f *fakeStore) OnSessionChange(func(*models.Session)) events.Subscription {
	return events.SubscriptionFunc(func() {})
}
func (f *fakeStore) SignOut(context.Context) error { f.sess = nil; return nil }
func (f *fakeStore) UpdateUserMetadata(_ context.Context, patch map[string]any) (*models.Session, error) {
	f.patches = append(f.patches, patch)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.sess = f.sess.WithUser(models.User{
		ID:       f.sess.User.ID,
		Email:    f.sess.User.Email,
		Metadata: f.sess.User.Metadata.Merge(patch),
	})
	return f.sess, nil
}

type fakeClient struct {
	client.Client

	projects []*models.Project
	tasks    []*models.Task
	members  []*models.Member

	listErr error

	createdProject *models.Project
	createdTask    *models.Task
	projectUpdates []models.ProjectUpdate
	taskUpdates    []models.TaskUpdate
	deleted        []string
	pushTokens     []string
	memberCalls    int

	mu     sync.Mutex
	stream chan models.ChangeEvent
	subErr error
	subs   []string
}

func (f *fakeClient) ListProjects(_ context.Context, status string) ([]*models.Project, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.Project, 0, len(f.projects))
	for _, p := range f.projects {
		if status == "" || string(p.Status) == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeClient) GetProject(_ context.Context, id string) (*models.Project, error) {
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeClient) CreateProject(_ context.Context, p *models.Project) (*models.Project, error) {
	f.createdProject = p
	c := *p
	c.ID = "new"
	return &c, nil
}

func (f *fakeClient) UpdateProject(_ context.Context, id string, u models.ProjectUpdate) (*models.Project, error) {
	f.projectUpdates = append(f.projectUpdates, u)
	return &models.Project{ID: id}, nil
}

func (f *fakeClient) DeleteProject(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) ListTasks(context.Context) ([]*models.Task, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*models.Task(nil), f.tasks...), nil
}

func (f *fakeClient) CreateTask(_ context.Context, t *models.Task) (*models.Task, error) {
	f.createdTask = t
	return t, nil
}

func (f *fakeClient) UpdateTask(_ context.Context, id string, u models.TaskUpdate) (*models.Task, error) {
	f.taskUpdates = append(f.taskUpdates, u)
	return &models.Task{ID: id}, nil
}

func (f *fakeClient) DeleteTask(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeClient) ListMembers(context.Context) ([]*models.Member, error) {
	f.memberCalls++
	return f.members, nil
}

func (f *fakeClient) UpdatePushToken(_ context.Context, token string) error {
	f.pushTokens = append(f.pushTokens, token)
	return nil
}

func (f *fakeClient) Subscribe(ctx context.Context, table, recordID string) (<-chan models.ChangeEvent, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.mu.Lock()
	f.subs = append(f.subs, table+"/"+recordID)
	f.mu.Unlock()

	out := make(chan models.ChangeEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-f.stream:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
