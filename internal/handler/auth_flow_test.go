package handler_test

import (
	"context"
	"magic-villa-api/config"
	"magic-villa-api/internal/handler"
	"magic-villa-api/internal/model"
	"magic-villa-api/internal/model/requestresponse"
	"magic-villa-api/internal/repository"
	"magic-villa-api/internal/security"
	"magic-villa-api/internal/service"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flowIdentity : один пользователь alice с паролем Secret1!
type flowIdentity struct {
	user *model.User
}

func (f *flowIdentity) FindByUsername(_ context.Context, username string) (*model.User, error) {
	if username == f.user.Username {
		return f.user, nil
	}
	return nil, nil
}

func (f *flowIdentity) FindByID(_ context.Context, userID string) (*model.User, error) {
	if userID == f.user.ID {
		return f.user, nil
	}
	return nil, nil
}

func (f *flowIdentity) CheckPassword(user *model.User, password string) bool {
	return security.CheckPassword(password, user.PasswordHash)
}

func (f *flowIdentity) GetRoles(context.Context, *model.User) ([]string, error) {
	return []string{model.RoleAdmin}, nil
}

func (f *flowIdentity) IsUniqueUser(_ context.Context, username string) (bool, error) {
	return username != f.user.Username, nil
}

func (f *flowIdentity) CreateUser(_ context.Context, user *model.User, _ string) (*model.User, error) {
	return &model.User{ID: "u-new", Username: user.Username, Name: user.Name}, nil
}

func (f *flowIdentity) RoleExists(context.Context, string) (bool, error) { return true, nil }

func (f *flowIdentity) CreateRole(context.Context, string) error { return nil }

func (f *flowIdentity) AddToRole(context.Context, *model.User, string) error { return nil }

func newFlowRouter(t *testing.T) http.Handler {
	t.Helper()
	hash, err := security.HashPassword("Secret1!")
	require.NoError(t, err)
	identity := &flowIdentity{user: &model.User{ID: "u-alice", Username: "alice", Name: "Alice", PasswordHash: hash}}

	jwtConfig := &config.JWTConfig{
		Secret:                    "flow-secret",
		Issuer:                    "magic-villa",
		Audience:                  "magic-villa-clients",
		AccessTokenExpiryMinutes:  5,
		RefreshTokenExpiryMinutes: 60,
	}
	codec := security.NewJWTService(jwtConfig)

	mr := miniredis.RunT(t)
	redisClient := &config.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { redisClient.Close() })
	chains := repository.NewChainCacheRepository(redisClient, jwtConfig.AccessTokenTTL())

	engine := service.NewTokenEngine(repository.NewMemoryTokenStore(), identity, codec, service.EngineConfig{
		RefreshTokenTTL: jwtConfig.RefreshTokenTTL(),
	}, zap.NewNop()).WithChainCache(chains)
	authService := service.NewAuthenticationService(engine, identity, zap.NewNop())

	router := chi.NewRouter()
	handler.SetupAuthRoutes(router,
		handler.NewAuthenticationHandler(authService, testCookies, zap.NewNop()),
		security.JWTMiddleware(codec, chains, zap.NewNop()),
	)
	return router
}

func getMe(router http.Handler, accessToken string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthFlow_LoginRefreshRevoke(t *testing.T) {
	router := newFlowRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/auth/login", requestresponse.LoginRequest{UserName: "alice", Password: "Secret1!"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeResponse(t, rec).Result.(map[string]interface{})
	accessToken := login["accessToken"].(string)
	firstRefresh := findCookie(rec, handler.RefreshTokenCookie)
	require.NotNil(t, firstRefresh)

	me := getMe(router, accessToken)
	require.Equal(t, http.StatusOK, me.Code)
	meResult := decodeResponse(t, me).Result.(map[string]interface{})
	assert.Equal(t, "u-alice", meResult["userId"])
	assert.Equal(t, "admin", meResult["role"])

	rec = doRequest(router, http.MethodPost, "/api/auth/refresh", nil, firstRefresh)
	require.Equal(t, http.StatusOK, rec.Code)
	secondRefresh := findCookie(rec, handler.RefreshTokenCookie)
	require.NotNil(t, secondRefresh)
	assert.NotEqual(t, firstRefresh.Value, secondRefresh.Value)

	// старый токен повторно: цепочка завершается целиком
	rec = doRequest(router, http.MethodPost, "/api/auth/refresh", nil, firstRefresh)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/auth/refresh", nil, secondRefresh)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, getMe(router, accessToken).Code)
}

func TestAuthFlow_RevokeEndsSession(t *testing.T) {
	router := newFlowRouter(t)

	rec := doRequest(router, http.MethodPost, "/api/auth/login", requestresponse.LoginRequest{UserName: "alice", Password: "Secret1!"})
	require.Equal(t, http.StatusOK, rec.Code)
	accessCookie := findCookie(rec, security.AccessTokenCookie)
	refreshCookie := findCookie(rec, handler.RefreshTokenCookie)

	rec = doRequest(router, http.MethodPost, "/api/auth/revoke", nil, refreshCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/auth/revoke", nil, refreshCookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/auth/refresh", nil, refreshCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(accessCookie)
	me := httptest.NewRecorder()
	router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusUnauthorized, me.Code)
}

func TestAuthFlow_MeRequiresToken(t *testing.T) {
	router := newFlowRouter(t)

	assert.Equal(t, http.StatusUnauthorized, getMe(router, "garbage").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
