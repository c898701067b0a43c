package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/orbit/internal/server/migrations"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/projects"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/orbit/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func stubGoose(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func TestFactories_ReturnPostgresRepos(t *testing.T) {
	db := newDB(t)
	var m RepositoryManager = NewPostgresRepositoryManager()

	assert.IsType(t, &users.PostgresRepository{}, m.Users(db))
	assert.IsType(t, &refreshtokens.PostgresRepository{}, m.RefreshTokens(db))
	assert.IsType(t, &profiles.PostgresRepository{}, m.Profiles(db))
	assert.IsType(t, &projects.PostgresRepository{}, m.Projects(db))
	assert.IsType(t, &tasks.PostgresRepository{}, m.Tasks(db))
}

func TestRunMigrations_UsesEmbeddedRoot(t *testing.T) {
	var gotDir string
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	})

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), newDB(t)))
	assert.Equal(t, ".", gotDir)
}

func TestRunMigrations_Error(t *testing.T) {
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	})

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), newDB(t))
	require.EqualError(t, err, "boom")
}

func TestEmbeddedMigrations_CreateEveryTable(t *testing.T) {
	files, err := fs.Glob(migrations.Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	var all strings.Builder
	for _, f := range files {
		b, err := fs.ReadFile(migrations.Migrations, f)
		require.NoError(t, err)
		body := string(b)
		assert.Contains(t, body, "-- +goose Up", f)
		assert.Contains(t, body, "-- +goose Down", f)
		all.WriteString(body)
	}

	for _, table := range []string{"users", "refresh_tokens", "profiles", "projects", "tasks"} {
		assert.Contains(t, all.String(), "CREATE TABLE "+table+" (", table)
	}
}
