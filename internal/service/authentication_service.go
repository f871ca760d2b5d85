package service

import (
	"context"
	"fmt"
	"magic-villa-api/internal/model"
	"magic-villa-api/internal/ports"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const minPasswordLength = 6

// AuthenticationService : точка входа для handler, регистрация здесь,
// login/refresh/revoke делегируются TokenEngine
type AuthenticationService struct {
	engine   *TokenEngine
	identity ports.IdentityProvider
	logger   *zap.Logger
}

func NewAuthenticationService(engine *TokenEngine, identity ports.IdentityProvider, logger *zap.Logger) *AuthenticationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthenticationService{
		engine:   engine,
		identity: identity,
		logger:   logger,
	}
}

func (s *AuthenticationService) Login(ctx context.Context, username, password string) (*model.LoginResult, error) {
	return s.engine.Login(ctx, username, password)
}

func (s *AuthenticationService) Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error) {
	return s.engine.Refresh(ctx, refreshToken)
}

func (s *AuthenticationService) Revoke(ctx context.Context, refreshToken string) error {
	return s.engine.Revoke(ctx, refreshToken)
}

// Register создает пользователя с ролью admin или customer (по умолчанию customer).
// Отказ по бизнес-правилам возвращается как *RegistrationError.
func (s *AuthenticationService) Register(ctx context.Context, username, password, displayName, role string) (*model.UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, registrationError("Username is required", nil)
	}

	unique, err := s.identity.IsUniqueUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("проверка уникальности логина: %w", err)
	}
	if !unique {
		return nil, registrationError("Username already exists", ErrUserAlreadyExists)
	}

	if err := validatePassword(password); err != nil {
		return nil, registrationError(err.Error(), nil)
	}

	role, err = normalizeRole(role)
	if err != nil {
		return nil, registrationError(err.Error(), nil)
	}

	if err := s.ensureDefaultRoles(ctx); err != nil {
		return nil, err
	}

	created, err := s.identity.CreateUser(ctx, &model.User{Username: username, Name: displayName}, password)
	if err != nil {
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	if err := s.identity.AddToRole(ctx, created, role); err != nil {
		return nil, fmt.Errorf("назначение роли: %w", err)
	}

	s.logger.Info("зарегистрирован пользователь", zap.String("user_id", created.ID), zap.String("role", role))
	return model.NewUserProfile(created, []string{role}), nil
}

func (s *AuthenticationService) ensureDefaultRoles(ctx context.Context) error {
	for _, role := range model.DefaultRoles {
		exists, err := s.identity.RoleExists(ctx, role)
		if err != nil {
			return fmt.Errorf("проверка роли %s: %w", role, err)
		}
		if exists {
			continue
		}
		if err := s.identity.CreateRole(ctx, role); err != nil {
			return fmt.Errorf("создание роли %s: %w", role, err)
		}
	}
	return nil
}

func normalizeRole(role string) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return model.RoleCustomer, nil
	}
	for _, known := range model.DefaultRoles {
		if role == known {
			return role, nil
		}
	}
	return "", fmt.Errorf("Role must be one of: %s", strings.Join(model.DefaultRoles, ", "))
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("Passwords must be at least %d characters", minPasswordLength)
	}

	var upperCount, lowerCount, digitCount, specialCount int

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		default:
			specialCount++
		}
	}

	if specialCount == 0 {
		return fmt.Errorf("Passwords must have at least one non alphanumeric character")
	}
	if digitCount == 0 {
		return fmt.Errorf("Passwords must have at least one digit ('0'-'9')")
	}
	if lowerCount == 0 {
		return fmt.Errorf("Passwords must have at least one lowercase ('a'-'z')")
	}
	if upperCount == 0 {
		return fmt.Errorf("Passwords must have at least one uppercase ('A'-'Z')")
	}
	return nil
}
