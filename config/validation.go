package config

import (
	"fmt"
	"math"
	"net/http"
	"strings"
)

// ConfigurationError : отсутствуют обязательные параметры, сервис не стартует
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("конфигурация неполная, не заданы: %s", strings.Join(e.Missing, ", "))
}

func (cfg *AppConfig) Validate() error {
	var missing []string

	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		missing = append(missing, "jwt.secret")
	}
	if strings.TrimSpace(cfg.JWT.Issuer) == "" {
		missing = append(missing, "jwt.issuer")
	}
	if strings.TrimSpace(cfg.JWT.Audience) == "" {
		missing = append(missing, "jwt.audience")
	}
	if !validLifetime(cfg.JWT.AccessTokenExpiryMinutes) {
		missing = append(missing, "jwt.accessTokenExpiryMinutes")
	}
	if !validLifetime(cfg.JWT.RefreshTokenExpiryMinutes) {
		missing = append(missing, "jwt.refreshTokenExpiryMinutes")
	}

	if strings.TrimSpace(cfg.DatabaseConfig.DSN) == "" {
		missing = append(missing, "databaseConfig.dsn")
	}

	switch cfg.TokenStore.Driver {
	case TokenStorePostgres, TokenStoreMemory:
	default:
		missing = append(missing, fmt.Sprintf("tokenStore.driver (неизвестное значение %q)", cfg.TokenStore.Driver))
	}

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

func (c *CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteNoneMode
	}
}

// validLifetime : только конечное положительное число минут, YAML допускает .nan и .inf
func validLifetime(minutes float64) bool {
	return minutes > 0 && !math.IsInf(minutes, 1)
}
