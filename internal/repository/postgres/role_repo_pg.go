package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/foodieland/foodieland-api/internal/domain"
	"github.com/foodieland/foodieland-api/internal/repository/ports"
)

type RoleRepository struct {
	db *sqlx.DB
}

func NewRoleRepo(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetOrCreateRole(ctx context.Context, name, description string) (*domain.Role, error) {
	const query = `
        INSERT INTO roles (name, description)
        VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE
        SET description = COALESCE(roles.description, EXCLUDED.description)
        RETURNING id, name, description, created_at
    `
	row := r.db.QueryRowxContext(ctx, query, name, description)
	var role domain.Role
	if err := row.StructScan(&role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) AssignUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	const query = `
        INSERT INTO user_roles (user_id, role_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, role_id) DO NOTHING
    `
	_, err := r.db.ExecContext(ctx, query, userID, roleID)
	return err
}

func (r *RoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	const query = `
        SELECT r.id, r.name, r.description, r.created_at
        FROM roles r
        JOIN user_roles ur ON ur.role_id = r.id
        WHERE ur.user_id = $1
        ORDER BY r.name
    `
	roles := make([]domain.Role, 0)
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, err
	}
	return roles, nil
}

var _ ports.RoleRepository = (*RoleRepository)(nil)
