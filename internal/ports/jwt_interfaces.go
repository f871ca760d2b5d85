package ports

import (
	"magic-villa-api/internal/model"
	"magic-villa-api/internal/security"
	"time"
)

type TokenCodec interface {
	Mint(user *model.User, role string, chainID string, now time.Time) (string, error)
	Parse(accessToken string) (*security.TokenIdentity, error)
	Validate(accessToken string) (*security.Claims, error)
	NewChainID() string
	NewRefreshTokenValue() string
}
