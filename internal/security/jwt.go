package security

import (
	"errors"
	"fmt"
	"magic-villa-api/config"
	"magic-villa-api/internal/model"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTokenDecode = errors.New("не удалось декодировать токен")

const chainIDPrefix = "JTI"

type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIdentity : то, что Parse достает из access-токена без проверки подписи
type TokenIdentity struct {
	UserID  string
	ChainID string
}

type JWTService struct {
	secret           []byte
	issuer           string
	audience         string
	accessTokenTTL   time.Duration
	refreshTokenTTL  time.Duration
	unverifiedParser *jwt.Parser
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		secret:           []byte(cfg.Secret),
		issuer:           cfg.Issuer,
		audience:         cfg.Audience,
		accessTokenTTL:   cfg.AccessTokenTTL(),
		refreshTokenTTL:  cfg.RefreshTokenTTL(),
		unverifiedParser: jwt.NewParser(),
	}
}

func (service *JWTService) AccessTokenTTL() time.Duration {
	return service.accessTokenTTL
}

func (service *JWTService) RefreshTokenTTL() time.Duration {
	return service.refreshTokenTTL
}

// Mint подписывает access-токен, привязанный к цепочке chainID.
// При одинаковых входных данных и now результат одинаковый.
func (service *JWTService) Mint(user *model.User, role string, chainID string, now time.Time) (string, error) {
	claims := Claims{
		Name: user.Username,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        chainID,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{service.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.accessTokenTTL)),
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := jwtToken.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return accessToken, nil
}

// Parse достает sub и jti без проверки подписи и срока действия.
// Только для диагностики, не для авторизации.
func (service *JWTService) Parse(accessToken string) (*TokenIdentity, error) {
	claims := &Claims{}
	if _, _, err := service.unverifiedParser.ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenDecode, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: нет sub или jti", ErrTokenDecode)
	}

	return &TokenIdentity{
		UserID:  claims.Subject,
		ChainID: claims.ID,
	}, nil
}

// Validate полностью проверяет токен: алгоритм, подпись, срок, issuer и audience.
func (service *JWTService) Validate(accessToken string) (*Claims, error) {
	claims := &Claims{}

	jwtToken, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return service.secret, nil
	},
		jwt.WithIssuer(service.issuer),
		jwt.WithAudience(service.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}
	if !jwtToken.Valid {
		return nil, errors.New("невалидный токен")
	}

	return claims, nil
}

func (service *JWTService) NewChainID() string {
	return chainIDPrefix + uuid.NewString()
}

// NewRefreshTokenValue склеивает два случайных UUID без дефисов.
func (service *JWTService) NewRefreshTokenValue() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
