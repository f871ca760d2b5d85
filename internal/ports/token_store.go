package ports

import (
	"context"
	"magic-villa-api/internal/model"
)

// TokenStore : хранилище refresh-токенов.
// FindOne возвращает (nil, nil), если запись не найдена.
type TokenStore interface {
	Insert(ctx context.Context, token *model.RefreshToken) (*model.RefreshToken, error)
	FindOne(ctx context.Context, filter model.TokenFilter) (*model.RefreshToken, error)
	FindAll(ctx context.Context, filter model.TokenFilter) ([]*model.RefreshToken, error)
	UpdateOne(ctx context.Context, token *model.RefreshToken) (*model.RefreshToken, error)
	UpdateMany(ctx context.Context, tokens []*model.RefreshToken) ([]*model.RefreshToken, error)

	// Rotate атомарно инвалидирует old и сохраняет next.
	// Если old уже не валиден, возвращает repository.ErrTokenAlreadyRotated и ничего не пишет.
	Rotate(ctx context.Context, old *model.RefreshToken, next *model.RefreshToken) (*model.RefreshToken, error)
}
