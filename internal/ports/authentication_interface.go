package ports

import (
	"context"
	"magic-villa-api/internal/model"
)

type AuthenticationService interface {
	Login(ctx context.Context, username, password string) (*model.LoginResult, error)
	Register(ctx context.Context, username, password, displayName, role string) (*model.UserProfile, error)
	Refresh(ctx context.Context, refreshToken string) (*model.TokensPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

// RotationMetrics : счетчики исходов login/refresh/revoke
type RotationMetrics interface {
	LoginSucceeded()
	LoginFailed()
	RefreshOutcome(outcome string)
	ChainRevoked()
}
