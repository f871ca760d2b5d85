package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"magic-villa-api/config"
	"magic-villa-api/internal/model"
	"magic-villa-api/internal/util"
	"strings"

	"github.com/jmoiron/sqlx"
)

const refreshTokenColumns = `id, user_id, chain_id, token_value, is_valid, expires_at`

type RefreshTokenRepository struct {
	*config.Database
}

func NewRefreshTokenRepository(database *config.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{database}
}

// Insert сохраняет refresh-токен и возвращает его с присвоенным id
func (r *RefreshTokenRepository) Insert(ctx context.Context, token *model.RefreshToken) (*model.RefreshToken, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	return insertRefreshToken(ctx, r.DB, token)
}

func insertRefreshToken(ctx context.Context, exec sqlx.ExtContext, token *model.RefreshToken) (*model.RefreshToken, error) {
	query := `INSERT INTO refresh_tokens (user_id, chain_id, token_value, is_valid, expires_at)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING ` + refreshTokenColumns

	saved := &model.RefreshToken{}
	err := sqlx.GetContext(ctx, exec, saved, query,
		token.UserID,
		token.ChainID,
		token.TokenValue,
		token.IsValid,
		token.ExpiresAt,
	)
	if err != nil {
		return nil, util.LogError("ошибка вставки refresh токена в БД", err)
	}

	return saved, nil
}

// FindOne ищет первую запись по фильтру, (nil, nil) если записей нет.
// Пустой фильтр отклоняется с ErrEmptyFilter.
func (r *RefreshTokenRepository) FindOne(ctx context.Context, filter model.TokenFilter) (*model.RefreshToken, error) {
	if filter.IsEmpty() {
		return nil, ErrEmptyFilter
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	where, args := whereClause(filter)
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens` + where + ` ORDER BY id LIMIT 1`

	token := &model.RefreshToken{}
	err := r.DB.GetContext(ctx, token, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, util.LogError("ошибка поиска refresh токена", err)
	}

	return token, nil
}

func (r *RefreshTokenRepository) FindAll(ctx context.Context, filter model.TokenFilter) ([]*model.RefreshToken, error) {
	if filter.IsEmpty() {
		return nil, ErrEmptyFilter
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	where, args := whereClause(filter)
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens` + where + ` ORDER BY id`

	var tokens []*model.RefreshToken
	if err := r.DB.SelectContext(ctx, &tokens, query, args...); err != nil {
		return nil, util.LogError("ошибка поиска refresh токенов", err)
	}

	return tokens, nil
}

// UpdateOne перезаписывает is_valid и expires_at записи по id
func (r *RefreshTokenRepository) UpdateOne(ctx context.Context, token *model.RefreshToken) (*model.RefreshToken, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	if err := updateRefreshToken(ctx, r.DB, token); err != nil {
		return nil, err
	}
	return token, nil
}

// UpdateMany обновляет все записи в одной транзакции
func (r *RefreshTokenRepository) UpdateMany(ctx context.Context, tokens []*model.RefreshToken) ([]*model.RefreshToken, error) {
	if len(tokens) == 0 {
		return tokens, nil
	}

	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, util.LogError("не удалось начать транзакцию", err)
	}
	defer tx.Rollback()

	for _, token := range tokens {
		if err := updateRefreshToken(ctx, tx, token); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, util.LogError("не удалось закоммитить транзакцию", err)
	}

	return tokens, nil
}

// Rotate инвалидирует old только если он еще валиден и вставляет next в той же транзакции
func (r *RefreshTokenRepository) Rotate(ctx context.Context, old *model.RefreshToken, next *model.RefreshToken) (*model.RefreshToken, error) {
	ctx, cancel := r.WithTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, util.LogError("не удалось начать транзакцию", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE refresh_tokens SET is_valid = FALSE WHERE id = $1 AND is_valid = TRUE`, old.ID)
	if err != nil {
		return nil, util.LogError("не удалось инвалидировать refresh токен", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, util.LogError("не удалось проверить, обновлен ли токен", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTokenAlreadyRotated
	}

	saved, err := insertRefreshToken(ctx, tx, next)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, util.LogError("не удалось закоммитить транзакцию", err)
	}

	old.IsValid = false
	return saved, nil
}

func updateRefreshToken(ctx context.Context, exec sqlx.ExecerContext, token *model.RefreshToken) error {
	query := `UPDATE refresh_tokens SET is_valid = $2, expires_at = $3 WHERE id = $1`

	_, err := exec.ExecContext(ctx, query, token.ID, token.IsValid, token.ExpiresAt)
	if err != nil {
		return util.LogError("не удалось обновить refresh токен", err)
	}
	return nil
}

func whereClause(filter model.TokenFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("token_value", filter.TokenValue)
	add("chain_id", filter.ChainID)
	add("user_id", filter.UserID)

	return " WHERE " + strings.Join(conditions, " AND "), args
}
