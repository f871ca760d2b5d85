package requestresponse

import "magic-villa-api/internal/model"

// ApiResponse : общий конверт ответа API
type ApiResponse struct {
	StatusCode    int         `json:"statusCode"`
	IsSuccess     bool        `json:"isSuccess"`
	ErrorMessages []string    `json:"errorMessages"`
	Result        interface{} `json:"result,omitempty"`
}

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// LoginResponse : результат успешной аутентификации
type LoginResponse struct {
	AccessToken  string             `json:"accessToken"`
	RefreshToken string             `json:"refreshToken"`
	User         *model.UserProfile `json:"user"`
}

// RegistrationRequest : тело запроса регистрации
type RegistrationRequest struct {
	UserName string `json:"userName"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RefreshTokenRequest : запрос на обновление пары токенов.
// Если тело пустое, токен берется из cookie "refresh".
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse : новая пара токенов
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CurrentUserResponse : информация о текущем пользователе из access-токена
type CurrentUserResponse struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Role     string `json:"role"`
}
