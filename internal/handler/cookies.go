package handler

import (
	"magic-villa-api/internal/security"
	"net/http"
	"time"
)

const (
	RefreshTokenCookie = "refresh"
	refreshCookiePath  = "/api/auth"
)

type CookieSettings struct {
	Secure          bool
	SameSite        http.SameSite
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

func (c CookieSettings) setTokens(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, c.cookie(security.AccessTokenCookie, accessToken, "/", c.AccessTokenTTL))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, refreshToken, refreshCookiePath, c.RefreshTokenTTL))
}

func (c CookieSettings) clearTokens(w http.ResponseWriter) {
	access := c.cookie(security.AccessTokenCookie, "", "/", 0)
	access.MaxAge = -1
	refresh := c.cookie(RefreshTokenCookie, "", refreshCookiePath, 0)
	refresh.MaxAge = -1

	http.SetCookie(w, access)
	http.SetCookie(w, refresh)
}

func (c CookieSettings) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}
