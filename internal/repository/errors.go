package repository

import "errors"

// ErrTokenAlreadyRotated : refresh-токен уже инвалидирован параллельным запросом
var ErrTokenAlreadyRotated = errors.New("refresh токен уже инвалидирован")

// ErrEmptyFilter : поиск без единого условия выбрал бы произвольную запись
var ErrEmptyFilter = errors.New("пустой фильтр поиска refresh токенов")
