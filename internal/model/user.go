package model

import "time"

type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"userName"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserProfile : то, что видит клиент после входа или регистрации
type UserProfile struct {
	ID       string `json:"id"`
	Username string `json:"userName"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// NewUserProfile : в профиль попадает первая роль пользователя
func NewUserProfile(user *User, roles []string) *UserProfile {
	profile := &UserProfile{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
	}
	if len(roles) > 0 {
		profile.Role = roles[0]
	}
	return profile
}

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// DefaultRoles создаются при первой регистрации
var DefaultRoles = []string{RoleAdmin, RoleCustomer}
