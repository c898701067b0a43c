package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orbit/internal/common"
	"github.com/dmitrijs2005/orbit/internal/dbx"
	"github.com/dmitrijs2005/orbit/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, full_name, role, organization, phone_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			role = EXCLUDED.role,
			organization = EXCLUDED.organization,
			phone_number = EXCLUDED.phone_number
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.Email, p.FullName, p.Role, p.Organization, p.PhoneNumber)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, email, full_name, role, organization, phone_number, push_token, created_at
		FROM profiles
		WHERE id = $1
	`
	p := &models.Profile{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.Organization, &p.PhoneNumber, &p.PushToken, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByOrganization(ctx context.Context, organization string) ([]*models.Profile, error) {
	query := `
		SELECT id, email, full_name, role, organization, phone_number, push_token, created_at
		FROM profiles
		WHERE organization = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, organization)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Profile
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.Organization, &p.PhoneNumber, &p.PushToken, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) SetPushToken(ctx context.Context, id, token string) error {
	query := `
		UPDATE profiles SET push_token = $2
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
