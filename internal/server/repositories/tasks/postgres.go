package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/dbx"
	"github.com/dmitrijs2005/orbit/internal/server/models"
)

const columns = `id, user_id, title, description, status, priority, due_date, project_id, assignee_id, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Task, error) {
	t := &models.Task{}
	var (
		due       sql.NullTime
		projectID sql.NullString
		assignee  sql.NullString
	)
	err := s.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &due, &projectID, &assignee, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	t.ProjectID = projectID.String
	t.AssigneeID = assignee.String
	return t, nil
}

// nullable maps "" to NULL for optional references.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresRepository) ListVisible(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `
		SELECT ` + columns + `
		FROM tasks
		WHERE user_id = $1 OR assignee_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetVisible(ctx context.Context, userID, id string) (*models.Task, error) {
	query := `
		SELECT ` + columns + `
		FROM tasks
		WHERE id = $1 AND (user_id = $2 OR assignee_id = $2)
	`
	return scan(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, status, priority, due_date, project_id, assignee_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, t.UserID, t.Title, t.Description, t.Status, t.Priority,
		t.DueDate, nullable(t.ProjectID), nullable(t.AssigneeID)))
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	query := `
		UPDATE tasks SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			status = COALESCE($5, status),
			priority = COALESCE($6, priority),
			due_date = COALESCE($7, due_date),
			project_id = CASE WHEN $8::text IS NULL THEN project_id ELSE NULLIF($8::text, '')::uuid END,
			assignee_id = CASE WHEN $9::text IS NULL THEN assignee_id ELSE NULLIF($9::text, '')::uuid END
		WHERE id = $1 AND user_id = $2
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, id, userID,
		patch.Title, patch.Description, patch.Status, patch.Priority, patch.DueDate, patch.ProjectID, patch.AssigneeID))
}

func (r *PostgresRepository) SetStatus(ctx context.Context, userID, id, status string) (*models.Task, error) {
	query := `
		UPDATE tasks SET status = $3
		WHERE id = $1 AND (user_id = $2 OR assignee_id = $2)
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, id, userID, status))
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
