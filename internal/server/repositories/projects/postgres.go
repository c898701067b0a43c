package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/dbx"
	"github.com/dmitrijs2005/orbit/internal/server/models"
)

const columns = `id, user_id, name, description, color, icon, status, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (*models.Project, error) {
	p := &models.Project{}
	err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.Color, &p.Icon, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID, status string) ([]*models.Project, error) {
	query := `
		SELECT ` + columns + `
		FROM projects
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, status)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	query := `
		SELECT ` + columns + `
		FROM projects
		WHERE id = $1 AND user_id = $2
	`
	return scan(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	query := `
		INSERT INTO projects (user_id, name, description, color, icon, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, p.UserID, p.Name, p.Description, p.Color, p.Icon, p.Status))
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.ProjectPatch) (*models.Project, error) {
	query := `
		UPDATE projects SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			color = COALESCE($5, color),
			icon = COALESCE($6, icon),
			status = COALESCE($7, status),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + columns
	return scan(r.db.QueryRowContext(ctx, query, id, userID,
		patch.Name, patch.Description, patch.Color, patch.Icon, patch.Status))
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	query := `
		DELETE FROM projects
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
