package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("неверный логин или пароль")
	ErrInvalidToken       = errors.New("невалидный токен")
	ErrRegistrationFailed = errors.New("ошибка регистрации")
	ErrUserAlreadyExists  = errors.New("пользователь уже существует")
)

// RegistrationError несет причину отказа в регистрации.
// errors.Is(err, ErrRegistrationFailed) всегда true.
type RegistrationError struct {
	Detail string
	Err    error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRegistrationFailed.Error(), e.Detail)
}

func (e *RegistrationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRegistrationFailed}
	}
	return []error{ErrRegistrationFailed, e.Err}
}

func registrationError(detail string, err error) error {
	return &RegistrationError{Detail: detail, Err: err}
}
