package repository

import (
	"context"
	"fmt"
	"magic-villa-api/config"
	"magic-villa-api/internal/util"
	"time"
)

// ChainCacheRepository помечает отозванные цепочки в Redis.
// ttl равен сроку жизни access-токена: позже метка уже не нужна.
type ChainCacheRepository struct {
	client *config.RedisClient
	ttl    time.Duration
}

func NewChainCacheRepository(rdb *config.RedisClient, ttl time.Duration) *ChainCacheRepository {
	return &ChainCacheRepository{rdb, ttl}
}

func (r *ChainCacheRepository) MarkChainTerminated(ctx context.Context, chainID string) error {
	cmd := r.client.Client.Set(ctx, r.key(chainID), "1", r.ttl)
	if err := cmd.Err(); err != nil {
		return util.LogError("ошибка сохранения цепочки в Redis", err)
	}
	if cmd.Val() != "OK" {
		return fmt.Errorf("неожиданный ответ Redis: %s", cmd.Val())
	}
	return nil
}

func (r *ChainCacheRepository) IsChainTerminated(ctx context.Context, chainID string) (bool, error) {
	count, err := r.client.Client.Exists(ctx, r.key(chainID)).Result()
	if err != nil {
		return false, util.LogError("ошибка чтения цепочки из Redis", err)
	}
	return count > 0, nil
}

func (r *ChainCacheRepository) key(chainID string) string {
	return fmt.Sprintf("chain:terminated:%s", chainID)
}
