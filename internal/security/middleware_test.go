package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubChains struct {
	terminated map[string]bool
	err        error
}

func (s *stubChains) IsChainTerminated(_ context.Context, chainID string) (bool, error) {
	return s.terminated[chainID], s.err
}

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := GetClaimsFromContext(r.Context())
		require.NoError(t, err)
		_, _ = w.Write([]byte(claims.Subject))
	})
}

func TestJWTMiddleware(t *testing.T) {
	service := newTestJWTService()
	token, err := service.Mint(testUser, "customer", "JTIchain", time.Now())
	require.NoError(t, err)

	tests := []struct {
		name       string
		chains     chainChecker
		setup      func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "bearer заголовок",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "cookie jwt",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "нет токена",
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "невалидный токен",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "цепочка отозвана",
			chains:     &stubChains{terminated: map[string]bool{"JTIchain": true}},
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "кэш недоступен",
			chains:     &stubChains{err: errors.New("redis down")},
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := JWTMiddleware(service, tt.chains, zap.NewNop())
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			mw(protectedHandler(t)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "u-1", rec.Body.String())
			}
		})
	}
}

func TestJWTMiddleware_LogsRejectedTokenOwner(t *testing.T) {
	service := newTestJWTService()
	expired, err := service.Mint(testUser, "customer", "JTIchain", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	mw := JWTMiddleware(service, nil, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	rec := httptest.NewRecorder()
	mw(protectedHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	entries := logs.FilterMessage("отклонен access токен").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, "JTIchain", fields["chain_id"])

	// мусор не разбирается, владелец неизвестен
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	mw(protectedHandler(t)).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, 1, logs.FilterMessage("отклонен access токен").Len())
	assert.Equal(t, 1, logs.FilterMessage("невалидный access токен").Len())
}

func TestGetClaimsFromContext_Empty(t *testing.T) {
	_, err := GetClaimsFromContext(context.Background())
	assert.Error(t, err)
}
