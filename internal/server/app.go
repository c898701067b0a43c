// Package server wires the backend together: PostgreSQL repositories and
// migrations, the realtime broker, business services, and the gRPC and HTTP
// servers, and runs them until the context is cancelled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"sync"

	"github.com/dmitrijs2005/orbit/internal/logging"
	"github.com/dmitrijs2005/orbit/internal/server/config"
	"github.com/dmitrijs2005/orbit/internal/server/httpapi"
	"github.com/dmitrijs2005/orbit/internal/server/realtime"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/orbit/internal/server/services"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap/zapcore"

	gs "github.com/dmitrijs2005/orbit/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   *logging.ZapLogger
	db       *sql.DB
	redis    *redis.Client
	broker   realtime.Broker
	users    *services.UserService
	projects *services.ProjectService
	tasks    *services.TaskService
	profiles *services.ProfileService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONZapLogger(os.Stdout, zapcore.InfoLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("redis ping error: %w", err)
		}
		app.broker = realtime.NewRedisBroker(app.redis, logger)
	} else {
		app.broker = realtime.NewMemoryBroker()
	}

	app.users = services.NewUserService(db, rm, app.broker, logger, c)
	app.projects = services.NewProjectService(db, rm, app.broker, logger)
	app.tasks = services.NewTaskService(db, rm, app.broker, logger)
	app.profiles = services.NewProfileService(db, rm)

	return app, nil
}

// oauthProviders returns the providers that have credentials configured.
// A provider that cannot be set up is left out and logged.
func (app *App) oauthProviders(ctx context.Context) map[string]httpapi.Provider {
	callback, err := url.JoinPath(app.config.PublicBaseURL, httpapi.CallbackPath)
	if err != nil {
		app.logger.Error(ctx, "bad public base url", "error", err)
		return nil
	}

	providers := map[string]httpapi.Provider{}
	if app.config.GoogleClientID != "" {
		p, err := httpapi.NewGoogleProvider(ctx, app.config.GoogleClientID, app.config.GoogleClientSecret, callback)
		if err != nil {
			app.logger.Error(ctx, "google sign-in disabled", "error", err)
		} else {
			providers["google"] = p
		}
	}
	if app.config.GitHubClientID != "" {
		providers["github"] = httpapi.NewGitHubProvider(app.config.GitHubClientID, app.config.GitHubClientSecret, callback)
	}
	return providers
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, gs.Services{
		Users:    app.users,
		Projects: app.projects,
		Tasks:    app.tasks,
		Profiles: app.profiles,
	}, app.broker, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	h, err := httpapi.NewHandler(app.oauthProviders(ctx), app.users, app.config.PublicBaseURL, app.config.SecretKey, app.logger)
	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, h.Router(), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or one of the servers fails, then
// releases the database and Redis connections.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
	_ = app.logger.Sync()
}
