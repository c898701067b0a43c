package projects

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

var projectColumns = []string{"id", "user_id", "name", "description", "color", "icon", "status", "created_at", "updated_at"}

func projectRow(rows *sqlmock.Rows, id, name, status string, updated time.Time) *sqlmock.Rows {
	return rows.AddRow(id, "u1", name, "", "#007AFF", "", status, updated.Add(-time.Hour), updated)
}

func TestList_FiltersByOwnerAndStatus(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows(projectColumns)
	projectRow(rows, "p2", "Newer", "active", now)
	projectRow(rows, "p1", "Older", "active", now.Add(-time.Hour))

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+\(\$2\s*=\s*''\s+OR\s+status\s*=\s*\$2\)\s+ORDER\s+BY\s+updated_at\s+DESC\s*$`).
		WithArgs("u1", "active").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), "u1", "active")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p2", got[0].ID)
	assert.Equal(t, "#007AFF", got[1].Color)
}

func TestGet_OtherOwnerIsNotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+projects\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`).
		WithArgs("p1", "intruder").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "intruder", "p1")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows(projectColumns)
	projectRow(rows, "p1", "Apollo", "active", now)
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+projects\s*\(user_id,\s*name,\s*description,\s*color,\s*icon,\s*status\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id,.*$`).
		WithArgs("u1", "Apollo", "", "#007AFF", "", "active").
		WillReturnRows(rows)

	got, err := repo.Create(context.Background(), &models.Project{UserID: "u1", Name: "Apollo", Color: "#007AFF", Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
}

func TestUpdate_PassesNilForUnchangedFields(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	rows := sqlmock.NewRows(projectColumns)
	projectRow(rows, "p1", "Apollo", "archived", now)
	mock.ExpectQuery(`(?s)^UPDATE\s+projects\s+SET\b.*COALESCE.*WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s+RETURNING\b.*$`).
		WithArgs("p1", "u1", nil, nil, nil, nil, "archived").
		WillReturnRows(rows)

	status := "archived"
	got, err := repo.Update(context.Background(), "u1", "p1", models.ProjectPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "archived", got.Status)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^DELETE\s+FROM\s+projects\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2\s*$`
	mock.ExpectExec(q).WithArgs("p1", "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("p1", "u2").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u1", "p1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "u2", "p1"), common.ErrorNotFound)
}
