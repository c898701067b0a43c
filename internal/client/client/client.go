package client

import (
	"context"

	"github.com/dmitrijs2005/orbit/internal/client/models"
)

// TokenListener is called after the client replaced its tokens on its own,
// i.e. after a transparent refresh. A nil session means the refresh token
// was rejected and the session is over.
type TokenListener func(*models.Session)

type Client interface {
	Close() error
	Ping(ctx context.Context) error

	SignUp(ctx context.Context, email, password string, data map[string]any) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
	SetTokens(accessToken, refreshToken string)
	OnTokensRefreshed(fn TokenListener)
	GetUser(ctx context.Context) (*models.User, error)
	UpdateUser(ctx context.Context, patch map[string]any) (*models.User, error)
	SignOut(ctx context.Context) error

	ListProjects(ctx context.Context, status string) ([]*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, u models.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error

	ListTasks(ctx context.Context) ([]*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, u models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error

	ListMembers(ctx context.Context) ([]*models.Member, error)
	UpdatePushToken(ctx context.Context, token string) error

	// Subscribe streams change notifications for table (optionally a single
	// record). The channel is closed when ctx ends or the stream fails.
	Subscribe(ctx context.Context, table, recordID string) (<-chan models.ChangeEvent, error)
}
