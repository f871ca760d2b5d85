package ports

import "context"

// ChainCache : Redis слой, помнит завершенные цепочки токенов,
// пока выданные в них access-токены еще не истекли
type ChainCache interface {
	MarkChainTerminated(ctx context.Context, chainID string) error
	IsChainTerminated(ctx context.Context, chainID string) (bool, error)
}
