package service

import (
	"context"
	"errors"
	"fmt"
	"magic-villa-api/internal/model"
	"magic-villa-api/internal/obs"
	"magic-villa-api/internal/ports"
	"magic-villa-api/internal/repository"
	"magic-villa-api/internal/security"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	OutcomeRotated       = "rotated"
	OutcomeNotFound      = "not_found"
	OutcomeReuseDetected = "reuse_detected"
	OutcomeExpired       = "expired"
	OutcomeUserMissing   = "user_missing"
	OutcomeError         = "error"
)

type EngineConfig struct {
	RefreshTokenTTL time.Duration
	// Now по умолчанию time.Now().UTC()
	Now func() time.Time
}

// TokenEngine выдает, ротирует и отзывает refresh-токены.
//
// Все токены одного входа образуют цепочку с общим ChainID (он же jti access-токена).
// В цепочке валиден максимум один токен. Предъявление уже невалидного токена считается
// повторным использованием: вся цепочка инвалидируется.
type TokenEngine struct {
	store    ports.TokenStore
	identity ports.IdentityProvider
	codec    ports.TokenCodec
	chains   ports.ChainCache
	metrics  ports.RotationMetrics
	logger   *zap.Logger

	refreshTokenTTL time.Duration
	now             func() time.Time
}

func NewTokenEngine(
	store ports.TokenStore,
	identity ports.IdentityProvider,
	codec ports.TokenCodec,
	cfg EngineConfig,
	logger *zap.Logger,
) *TokenEngine {
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TokenEngine{
		store:           store,
		identity:        identity,
		codec:           codec,
		metrics:         noopMetrics{},
		logger:          logger,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		now:             now,
	}
}

// WithChainCache включает запись завершенных цепочек в кэш для JWT middleware
func (e *TokenEngine) WithChainCache(chains ports.ChainCache) *TokenEngine {
	e.chains = chains
	return e
}

func (e *TokenEngine) WithMetrics(metrics ports.RotationMetrics) *TokenEngine {
	if metrics != nil {
		e.metrics = metrics
	}
	return e
}

// Login проверяет учетные данные и открывает новую цепочку токенов.
// Неизвестный логин и неверный пароль неотличимы для вызывающего.
func (e *TokenEngine) Login(ctx context.Context, username, password string) (*model.LoginResult, error) {
	ctx, span := otel.Tracer("auth.engine").Start(ctx, "auth.login")
	defer span.End()

	user, err := e.identity.FindByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}
	if user == nil {
		security.BurnPasswordCheck(password)
		e.metrics.LoginFailed()
		return nil, ErrInvalidCredentials
	}
	if !e.identity.CheckPassword(user, password) {
		e.metrics.LoginFailed()
		return nil, ErrInvalidCredentials
	}

	roles, err := e.identity.GetRoles(ctx, user)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("получение ролей: %w", err)
	}
	profile := model.NewUserProfile(user, roles)

	now := e.now()
	chainID := e.codec.NewChainID()
	span.SetAttributes(attribute.String("chain.id", chainID))

	accessToken, err := e.codec.Mint(user, profile.Role, chainID, now)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("выпуск access токена: %w", err)
	}

	refreshToken, err := e.store.Insert(ctx, e.newRefreshToken(user.ID, chainID, now))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("сохранение refresh токена: %w", err)
	}

	e.metrics.LoginSucceeded()
	obs.WithTrace(ctx, e.logger).Debug("открыта новая цепочка токенов",
		zap.String("user_id", user.ID),
		zap.String("chain_id", chainID),
	)

	return &model.LoginResult{
		TokensPair: model.TokensPair{
			AccessToken:  accessToken,
			RefreshToken: refreshToken.TokenValue,
		},
		User: profile,
	}, nil
}

// Refresh меняет refresh-токен на новую пару в той же цепочке.
//
//  1. Токен пустой или не найден: ErrInvalidToken, хранилище не меняется.
//  2. Токен уже невалиден: повторное использование, вся цепочка инвалидируется.
//  3. Токен истек: инвалидируется только он.
//  4. Иначе старый токен инвалидируется, новый сохраняется, access-токен выпускается с тем же jti.
func (e *TokenEngine) Refresh(ctx context.Context, refreshTokenValue string) (*model.TokensPair, error) {
	ctx, span := otel.Tracer("auth.engine").Start(ctx, "auth.refresh")
	defer span.End()

	pair, outcome, err := e.refresh(ctx, span, refreshTokenValue)
	span.SetAttributes(attribute.String("refresh.outcome", outcome))
	e.metrics.RefreshOutcome(outcome)
	if err != nil && outcome == OutcomeError {
		span.RecordError(err)
	}

	return pair, err
}

func (e *TokenEngine) refresh(ctx context.Context, span trace.Span, refreshTokenValue string) (*model.TokensPair, string, error) {
	log := obs.WithTrace(ctx, e.logger)

	if refreshTokenValue == "" {
		return nil, OutcomeNotFound, ErrInvalidToken
	}

	existing, err := e.store.FindOne(ctx, model.TokenFilter{TokenValue: refreshTokenValue})
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("поиск refresh токена: %w", err)
	}
	if existing == nil {
		return nil, OutcomeNotFound, ErrInvalidToken
	}
	span.SetAttributes(attribute.String("chain.id", existing.ChainID))

	if !existing.IsValid {
		return e.reuseDetected(ctx, log, existing)
	}

	now := e.now()
	if existing.Expired(now) {
		existing.IsValid = false
		if _, err := e.store.UpdateOne(ctx, existing); err != nil {
			return nil, OutcomeError, fmt.Errorf("инвалидация истекшего токена: %w", err)
		}
		log.Debug("refresh токен истек", zap.String("chain_id", existing.ChainID))
		return nil, OutcomeExpired, ErrInvalidToken
	}

	next, err := e.store.Rotate(ctx, existing, e.newRefreshToken(existing.UserID, existing.ChainID, now))
	if errors.Is(err, repository.ErrTokenAlreadyRotated) {
		return e.reuseDetected(ctx, log, existing)
	}
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("ротация refresh токена: %w", err)
	}

	// новая запись остается в хранилище, даже если пользователя уже нет
	user, err := e.identity.FindByID(ctx, existing.UserID)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("поиск пользователя: %w", err)
	}
	if user == nil {
		log.Info("пользователь цепочки не найден", zap.String("user_id", existing.UserID), zap.String("chain_id", existing.ChainID))
		return nil, OutcomeUserMissing, ErrInvalidToken
	}

	roles, err := e.identity.GetRoles(ctx, user)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("получение ролей: %w", err)
	}
	profile := model.NewUserProfile(user, roles)

	accessToken, err := e.codec.Mint(user, profile.Role, existing.ChainID, now)
	if err != nil {
		return nil, OutcomeError, fmt.Errorf("выпуск access токена: %w", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: next.TokenValue,
	}, OutcomeRotated, nil
}

func (e *TokenEngine) reuseDetected(ctx context.Context, log *zap.Logger, token *model.RefreshToken) (*model.TokensPair, string, error) {
	log.Warn("повторное использование refresh токена, цепочка инвалидирована",
		zap.String("user_id", token.UserID),
		zap.String("chain_id", token.ChainID),
	)
	if err := e.terminateChain(ctx, token); err != nil {
		return nil, OutcomeError, err
	}
	return nil, OutcomeReuseDetected, ErrInvalidToken
}

// Revoke завершает цепочку предъявленного токена. Неизвестный или пустой токен игнорируется.
func (e *TokenEngine) Revoke(ctx context.Context, refreshTokenValue string) error {
	if refreshTokenValue == "" {
		return nil
	}

	ctx, span := otel.Tracer("auth.engine").Start(ctx, "auth.revoke")
	defer span.End()

	existing, err := e.store.FindOne(ctx, model.TokenFilter{TokenValue: refreshTokenValue})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("поиск refresh токена: %w", err)
	}
	if existing == nil {
		return nil
	}
	span.SetAttributes(attribute.String("chain.id", existing.ChainID))

	if err := e.terminateChain(ctx, existing); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// terminateChain инвалидирует все токены цепочки, включая уже невалидные
func (e *TokenEngine) terminateChain(ctx context.Context, token *model.RefreshToken) error {
	chain, err := e.store.FindAll(ctx, model.TokenFilter{
		ChainID: token.ChainID,
		UserID:  token.UserID,
	})
	if err != nil {
		return fmt.Errorf("поиск цепочки токенов: %w", err)
	}

	for _, t := range chain {
		t.IsValid = false
	}
	if _, err := e.store.UpdateMany(ctx, chain); err != nil {
		return fmt.Errorf("инвалидация цепочки токенов: %w", err)
	}
	e.metrics.ChainRevoked()

	if e.chains != nil {
		if err := e.chains.MarkChainTerminated(ctx, token.ChainID); err != nil {
			e.logger.Error("не удалось записать цепочку в кэш", zap.String("chain_id", token.ChainID), zap.Error(err))
		}
	}
	return nil
}

func (e *TokenEngine) newRefreshToken(userID, chainID string, now time.Time) *model.RefreshToken {
	return &model.RefreshToken{
		UserID:     userID,
		ChainID:    chainID,
		TokenValue: e.codec.NewRefreshTokenValue(),
		IsValid:    true,
		ExpiresAt:  now.Add(e.refreshTokenTTL),
	}
}

type noopMetrics struct{}

func (noopMetrics) LoginSucceeded()       {}
func (noopMetrics) LoginFailed()          {}
func (noopMetrics) RefreshOutcome(string) {}
func (noopMetrics) ChainRevoked()         {}
