package model

import "time"

// RefreshToken : запись о refresh-токене в хранилище.
// Все токены одной цепочки ротаций разделяют ChainID, валидной может быть только одна запись цепочки.
type RefreshToken struct {
	ID         int64     `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	ChainID    string    `db:"chain_id" json:"chain_id"`
	TokenValue string    `db:"token_value" json:"-"`
	IsValid    bool      `db:"is_valid" json:"is_valid"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
}

// Expired : срок истек строго раньше now, сам момент ExpiresAt еще валиден
func (t *RefreshToken) Expired(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// TokenFilter : условия поиска refresh-токенов, пустые поля не участвуют.
// Пустой фильтр хранилища отклоняют.
type TokenFilter struct {
	TokenValue string
	ChainID    string
	UserID     string
}

func (f TokenFilter) IsEmpty() bool {
	return f.TokenValue == "" && f.ChainID == "" && f.UserID == ""
}

func (f TokenFilter) Match(t *RefreshToken) bool {
	if f.TokenValue != "" && f.TokenValue != t.TokenValue {
		return false
	}
	if f.ChainID != "" && f.ChainID != t.ChainID {
		return false
	}
	if f.UserID != "" && f.UserID != t.UserID {
		return false
	}
	return true
}

// TokensPair содержит пару access и refresh токенов
type TokensPair struct {
	// Access токен (JWT)
	AccessToken string `json:"accessToken"`

	// Refresh токен (для получения новой пары)
	RefreshToken string `json:"refreshToken"`
}

// LoginResult : результат успешного входа
type LoginResult struct {
	TokensPair
	User *UserProfile `json:"user"`
}
