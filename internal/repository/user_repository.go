package repository

import (
	"context"
	"database/sql"
	"errors"
	"magic-villa-api/config"
	"magic-villa-api/internal/model"
	"magic-villa-api/internal/security"
	"magic-villa-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userColumns = `id, username, name, password_hash, created_at`

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// FindByUsername : ищет пользователя по логину без учета регистра
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE upper(username) = upper($1)`
	return r.findUser(ctx, query, username)
}

// FindByID : ищет пользователя по id
func (r *UserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.findUser(ctx, query, userID)
}

func (r *UserRepository) findUser(ctx context.Context, query string, arg string) (*model.User, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var user model.User
	err := r.DB.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

func (r *UserRepository) CheckPassword(user *model.User, password string) bool {
	return security.CheckPassword(password, user.PasswordHash)
}

// GetRoles : роли пользователя в порядке назначения
func (r *UserRepository) GetRoles(ctx context.Context, user *model.User) ([]string, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	query := `
		SELECT roles.name
		FROM user_roles
		JOIN roles ON roles.id = user_roles.role_id
		WHERE user_roles.user_id = $1
		ORDER BY user_roles.assigned_at, roles.name
	`

	var roles []string
	if err := r.DB.SelectContext(ctx, &roles, query, user.ID); err != nil {
		return nil, util.LogError("[UserRepo] не удалось получить роли пользователя", err)
	}
	return roles, nil
}

// IsUniqueUser : true, если логин еще не занят
func (r *UserRepository) IsUniqueUser(ctx context.Context, username string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE upper(username) = upper($1))`
	if err := r.DB.GetContext(ctx, &exists, query, username); err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки существования пользователя", err)
	}
	return !exists, nil
}

// CreateUser : хэширует пароль и сохраняет нового пользователя
func (r *UserRepository) CreateUser(ctx context.Context, user *model.User, password string) (*model.User, error) {
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	query := `
	INSERT INTO users (id, username, name, password_hash)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + userColumns

	createdUser := &model.User{}
	err = r.DB.GetContext(ctx, createdUser, query, uuid.NewString(), user.Username, user.Name, passwordHash)
	if err != nil {
		return nil, util.LogError("[UserRepo] ошибка вставки пользователя в БД", err)
	}

	return createdUser, nil
}

func (r *UserRepository) RoleExists(ctx context.Context, role string) (bool, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, role); err != nil {
		return false, util.LogError("[UserRepo] ошибка проверки роли", err)
	}
	return exists, nil
}

func (r *UserRepository) CreateRole(ctx context.Context, role string) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if _, err := r.DB.ExecContext(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, role); err != nil {
		return util.LogError("[UserRepo] не удалось создать роль", err)
	}
	return nil
}

// AddToRole : назначает пользователю роль, повторное назначение игнорируется
func (r *UserRepository) AddToRole(ctx context.Context, user *model.User, role string) error {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT DO NOTHING
	`
	result, err := r.DB.ExecContext(ctx, query, user.ID, role)
	if err != nil {
		return util.LogError("[UserRepo] не удалось назначить роль", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[UserRepo] не удалось проверить назначение роли", err)
	}
	if rowsAffected == 0 {
		zap.L().Debug("роль уже назначена или не существует", zap.String("user_id", user.ID), zap.String("role", role))
	}
	return nil
}
