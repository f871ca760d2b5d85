package security

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type contextKey string

const (
	UserContextKey contextKey = "user"

	AccessTokenCookie = "jwt"
)

type tokenValidator interface {
	Validate(accessToken string) (*Claims, error)
	Parse(accessToken string) (*TokenIdentity, error)
}

type chainChecker interface {
	IsChainTerminated(ctx context.Context, chainID string) (bool, error)
}

// JWTMiddleware пропускает запрос дальше только с валидным access-токеном.
// chains может быть nil, тогда отозванные цепочки не проверяются.
func JWTMiddleware(validator tokenValidator, chains chainChecker, logger *zap.Logger) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(validator, chains, logger, next))
	}
}

func handleAuthentication(validator tokenValidator, chains chainChecker, logger *zap.Logger, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		token := bearerToken(request)
		if token == "" {
			unauthorized(writer)
			return
		}

		claims, err := validator.Validate(token)
		if err != nil {
			logRejectedToken(validator, logger, token, err)
			unauthorized(writer)
			return
		}

		if chains != nil {
			terminated, err := chains.IsChainTerminated(request.Context(), claims.ID)
			if err != nil {
				logger.Error("не удалось проверить цепочку токенов", zap.String("chain_id", claims.ID), zap.Error(err))
			} else if terminated {
				logger.Info("access токен из отозванной цепочки", zap.String("chain_id", claims.ID))
				unauthorized(writer)
				return
			}
		}

		req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
		next.ServeHTTP(writer, req)
	}
}

// logRejectedToken пишет sub и jti отклоненного токена, если их удается прочитать
// без проверки подписи. По ним отказ связывается с цепочкой refresh-токенов.
func logRejectedToken(validator tokenValidator, logger *zap.Logger, token string, cause error) {
	identity, err := validator.Parse(token)
	if err != nil {
		logger.Debug("невалидный access токен", zap.Error(cause))
		return
	}
	logger.Info("отклонен access токен",
		zap.String("user_id", identity.UserID),
		zap.String("chain_id", identity.ChainID),
		zap.Error(cause),
	)
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}

func bearerToken(request *http.Request) string {
	authorizationHeader := request.Header.Get("Authorization")
	if strings.HasPrefix(authorizationHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authorizationHeader, "Bearer "))
	}
	if cookie, err := request.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(writer http.ResponseWriter) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(writer).Encode(map[string]interface{}{
		"statusCode":    http.StatusUnauthorized,
		"isSuccess":     false,
		"errorMessages": []string{"Unauthorized"},
	})
}
