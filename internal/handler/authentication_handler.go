package handler

import (
	"encoding/json"
	"errors"
	"io"
	"magic-villa-api/internal/model/requestresponse"
	"magic-villa-api/internal/obs"
	"magic-villa-api/internal/ports"
	"magic-villa-api/internal/security"
	"magic-villa-api/internal/service"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	cookies CookieSettings
	logger  *zap.Logger
}

func NewAuthenticationHandler(
	authenticationService ports.AuthenticationService,
	cookies CookieSettings,
	logger *zap.Logger,
) *AuthenticationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthenticationHandler{
		authenticationService,
		cookies,
		logger,
	}
}

// Login : POST /api/auth/login
// Возвращает пару токенов и профиль, выставляет cookie jwt и refresh.
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	result, err := h.AuthenticationService.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			sendErrorResponse(w, http.StatusBadRequest, msgInvalidCredentials)
			return
		}
		obs.WithTrace(r.Context(), h.logger).Error("ошибка входа", zap.Error(err))
		sendErrorResponse(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	h.cookies.setTokens(w, result.AccessToken, result.RefreshToken)
	sendResponse(w, http.StatusOK, requestresponse.LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         result.User,
	})
}

// Register : POST /api/auth/register
func (h *AuthenticationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	profile, err := h.AuthenticationService.Register(r.Context(), req.UserName, req.Password, req.Name, req.Role)
	if err != nil {
		var registrationErr *service.RegistrationError
		if errors.As(err, &registrationErr) {
			sendErrorResponse(w, http.StatusBadRequest, registrationErr.Detail)
			return
		}
		obs.WithTrace(r.Context(), h.logger).Error("ошибка регистрации", zap.Error(err))
		sendErrorResponse(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	sendResponse(w, http.StatusOK, profile)
}

// Refresh : POST /api/auth/refresh
// Refresh-токен берется из тела запроса, иначе из cookie.
func (h *AuthenticationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := readRefreshToken(r)
	if !ok {
		sendErrorResponse(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	tokensPair, err := h.AuthenticationService.Refresh(r.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			sendErrorResponse(w, http.StatusBadRequest, msgTokenInvalid)
			return
		}
		obs.WithTrace(r.Context(), h.logger).Error("ошибка обновления токенов", zap.Error(err))
		sendErrorResponse(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	h.cookies.setTokens(w, tokensPair.AccessToken, tokensPair.RefreshToken)
	sendResponse(w, http.StatusOK, requestresponse.TokenResponse{
		AccessToken:  tokensPair.AccessToken,
		RefreshToken: tokensPair.RefreshToken,
	})
}

// Revoke : POST /api/auth/revoke
// Отвечает 200 для любого переданного токена, в том числе неизвестного.
func (h *AuthenticationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := readRefreshToken(r)
	if !ok {
		sendErrorResponse(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if err := h.AuthenticationService.Revoke(r.Context(), refreshToken); err != nil {
		obs.WithTrace(r.Context(), h.logger).Error("ошибка отзыва токена", zap.Error(err))
		sendErrorResponse(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	h.cookies.clearTokens(w)
	sendResponse(w, http.StatusOK, nil)
}

// Me : GET /api/auth/me, только за JWTMiddleware
func (h *AuthenticationHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	sendResponse(w, http.StatusOK, requestresponse.CurrentUserResponse{
		UserID:   claims.Subject,
		UserName: claims.Name,
		Role:     claims.Role,
	})
}

func readRefreshToken(r *http.Request) (string, bool) {
	var req requestresponse.RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return "", false
	}

	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
			token = cookie.Value
		}
	}
	return token, token != ""
}
