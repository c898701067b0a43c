package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/orbit/internal/client/applock"
	"github.com/dmitrijs2005/orbit/internal/client/biometric"
	"github.com/dmitrijs2005/orbit/internal/client/client"
	"github.com/dmitrijs2005/orbit/internal/client/config"
	"github.com/dmitrijs2005/orbit/internal/client/controller"
	"github.com/dmitrijs2005/orbit/internal/client/lifecycle"
	"github.com/dmitrijs2005/orbit/internal/client/models"
	"github.com/dmitrijs2005/orbit/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/orbit/internal/client/routing"
	"github.com/dmitrijs2005/orbit/internal/client/services"
	"github.com/dmitrijs2005/orbit/internal/client/session"
	"github.com/dmitrijs2005/orbit/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type sessionAPI interface {
	GetSession(ctx context.Context) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password, fullName string) (*models.Session, error)
	ExchangeCallbackURL(ctx context.Context, rawURL string) (*models.Session, error)
	SignOut(ctx context.Context) error
}

type lockAPI interface {
	SetEnabled(ctx context.Context, enabled bool) bool
	Enabled() bool
	Capability() biometric.Capability
	Recheck(ctx context.Context)
	LastError() string
	Flush()
}

type passcodeAPI interface {
	IsEnrolled(ctx context.Context) (bool, error)
	Enroll(ctx context.Context, passcode []byte) error
	Remove(ctx context.Context) error
}

type controllerAPI interface {
	Session() *models.Session
	Location() routing.Location
	Navigate(ctx context.Context, route string)
	Overlay() controller.Overlay
	AutoUnlock(ctx context.Context) bool
	Unlock(ctx context.Context) bool
	Flush()
}

type lifecycleAPI interface {
	Set(next lifecycle.State)
	Flush()
}

type watchAPI interface {
	Watch(ctx context.Context, table, recordID string, fn func(models.ChangeEvent)) (func(), error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// App is the terminal front end. Every screen of the mobile app is a
// command; navigation goes through the root controller so the routing and
// lock rules apply exactly as they do on a device.
type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	api      pinger
	sessions sessionAPI
	lock     lockAPI
	passcode passcodeAPI
	ctrl     controllerAPI
	lc       lifecycleAPI
	watcher  watchAPI

	profiles services.ProfileService
	projects services.ProjectService
	tasks    services.TaskService
	members  services.MemberService

	mu        sync.Mutex
	Mode      Mode
	stopWatch func()

	closers []func() error
}

// NewApp wires storage, the backend client, the session store, the app lock
// and the root controller.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, logCloser := logging.NewFileLogger(c.LogFile, slog.LevelInfo)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		_ = logCloser.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewOrbitClientService(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		_ = logCloser.Close()
		return nil, err
	}

	a := &App{
		config: c,
		logger: logger,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		api:    apiClient,
	}

	kv := metadata.NewSQLiteRepository(db)
	sessions := session.NewManager(apiClient, kv, logger)
	device := biometric.NewPasscodeDevice(kv, func(label string) ([]byte, error) {
		return getPassword(a.out, label)
	})
	policy := applock.New(kv, device, logger)
	lc := lifecycle.NewEmitter()
	nav := routing.NewNavigator(routing.RouterFunc(a.showRoute), routing.RouteLogin)
	ctrl := controller.New(sessions, policy, nav, lc, logger)
	ctrl.Start(ctx)

	a.sessions = sessions
	a.lock = policy
	a.passcode = device
	a.ctrl = ctrl
	a.lc = lc
	a.watcher = services.NewWatcher(apiClient, logger)
	a.profiles = services.NewProfileService(sessions, apiClient)
	a.projects = services.NewProjectService(apiClient, sessions)
	a.tasks = services.NewTaskService(apiClient, sessions)
	a.members = services.NewMemberService(apiClient, sessions)

	a.closers = []func() error{
		func() error { ctrl.Stop(); return nil },
		func() error { policy.Dispose(); lc.Close(); sessions.Close(); return nil },
		apiClient.Close,
		db.Close,
		logCloser.Close,
	}
	return a, nil
}

// Close releases everything NewApp acquired, in reverse dependency order.
func (a *App) Close() error {
	a.stopWatching()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	a.println("Welcome to Orbit CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) showRoute(route string) {
	a.printf("-> %s\n", route)
}

func (a *App) isLoggedIn() bool {
	return a.ctrl.Session() != nil
}

func (a *App) isLocked() bool {
	return a.ctrl.Overlay().Visible
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

func (a *App) getStatus() string {
	s := a.ctrl.Location().Path()
	if sess := a.ctrl.Session(); sess != nil {
		s += " " + sess.User.Email
	}
	if m := a.mode(); m != "" {
		s += " " + string(m)
	}
	if a.isLocked() {
		s += " locked"
	}
	return s
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.api.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
