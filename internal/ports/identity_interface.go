package ports

import (
	"context"
	"magic-villa-api/internal/model"
)

// IdentityProvider : учетные записи и роли пользователей.
// Методы поиска возвращают (nil, nil), если пользователь не найден.
type IdentityProvider interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, userID string) (*model.User, error)
	CheckPassword(user *model.User, password string) bool
	GetRoles(ctx context.Context, user *model.User) ([]string, error)

	IsUniqueUser(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *model.User, password string) (*model.User, error)
	RoleExists(ctx context.Context, role string) (bool, error)
	CreateRole(ctx context.Context, role string) error
	AddToRole(ctx context.Context, user *model.User, role string) error
}
