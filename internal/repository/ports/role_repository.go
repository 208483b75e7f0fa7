package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/foodieland/foodieland-api/internal/domain"
)

type RoleRepository interface {
	GetOrCreateRole(ctx context.Context, name, description string) (*domain.Role, error)
	AssignUserRole(ctx context.Context, userID, roleID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error)
}
