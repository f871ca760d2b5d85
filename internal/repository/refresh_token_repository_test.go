package repository

import (
	"context"
	"errors"
	"magic-villa-api/config"
	"magic-villa-api/internal/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenRowColumns = []string{"id", "user_id", "chain_id", "token_value", "is_valid", "expires_at"}

func newDatabaseWithMock(t *testing.T) (*config.Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &config.Database{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func TestRefreshTokenRepository_Insert(t *testing.T) {
	database, mock := newDatabaseWithMock(t)
	repo := NewRefreshTokenRepository(database)
	expiresAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO refresh_tokens`).
		WithArgs("user-1", "JTIchain", "value", true, expiresAt).
		WillReturnRows(sqlmock.NewRows(tokenRowColumns).AddRow(int64(5), "user-1", "JTIchain", "value", true, expiresAt))

	saved, err := repo.Insert(context.Background(), &model.RefreshToken{
		UserID:     "user-1",
		ChainID:    "JTIchain",
		TokenValue: "value",
		IsValid:    true,
		ExpiresAt:  expiresAt,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), saved.ID)
	assert.Equal(t, "JTIchain", saved.ChainID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_FindOne(t *testing.T) {
	t.Run("найден по значению", func(t *testing.T) {
		database, mock := newDatabaseWithMock(t)
		repo := NewRefreshTokenRepository(database)

		mock.ExpectQuery(`SELECT .+ FROM refresh_tokens WHERE token_value = \$1 ORDER BY id LIMIT 1`).
			WithArgs("value").
			WillReturnRows(sqlmock.NewRows(tokenRowColumns).AddRow(int64(1), "user-1", "JTIchain", "value", false, time.Now()))

		token, err := repo.FindOne(context.Background(), model.TokenFilter{TokenValue: "value"})

		require.NoError(t, err)
		require.NotNil(t, token)
		assert.False(t, token.IsValid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("не найден", func(t *testing.T) {
		database, mock := newDatabaseWithMock(t)
		repo := NewRefreshTokenRepository(database)

		mock.ExpectQuery(`SELECT .+ FROM refresh_tokens WHERE token_value = \$1`).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(tokenRowColumns))

		token, err := repo.FindOne(context.Background(), model.TokenFilter{TokenValue: "missing"})

		assert.NoError(t, err)
		assert.Nil(t, token)
	})

	t.Run("ошибка БД", func(t *testing.T) {
		database, mock := newDatabaseWithMock(t)
		repo := NewRefreshTokenRepository(database)

		mock.ExpectQuery(`SELECT .+ FROM refresh_tokens`).
			WillReturnError(errors.New("db down"))

		token, err := repo.FindOne(context.Background(), model.TokenFilter{TokenValue: "value"})

		assert.Error(t, err)
		assert.Nil(t, token)
	})
}

func TestRefreshTokenRepository_FindAllByChainAndUser(t *testing.T) {
	database, mock := newDatabaseWithMock(t)
	repo := NewRefreshTokenRepository(database)

	mock.ExpectQuery(`SELECT .+ FROM refresh_tokens WHERE chain_id = \$1 AND user_id = \$2 ORDER BY id`).
		WithArgs("JTIchain", "user-1").
		WillReturnRows(sqlmock.NewRows(tokenRowColumns).
			AddRow(int64(1), "user-1", "JTIchain", "a", false, time.Now()).
			AddRow(int64(2), "user-1", "JTIchain", "b", true, time.Now()))

	tokens, err := repo.FindAll(context.Background(), model.TokenFilter{ChainID: "JTIchain", UserID: "user-1"})

	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "b", tokens[1].TokenValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_EmptyFilterRejected(t *testing.T) {
	database, mock := newDatabaseWithMock(t)
	repo := NewRefreshTokenRepository(database)

	token, err := repo.FindOne(context.Background(), model.TokenFilter{})
	assert.ErrorIs(t, err, ErrEmptyFilter)
	assert.Nil(t, token)

	tokens, err := repo.FindAll(context.Background(), model.TokenFilter{})
	assert.ErrorIs(t, err, ErrEmptyFilter)
	assert.Nil(t, tokens)

	// до базы запрос не доходит
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_UpdateMany(t *testing.T) {
	database, mock := newDatabaseWithMock(t)
	repo := NewRefreshTokenRepository(database)
	expiresAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE refresh_tokens SET is_valid = \$2, expires_at = \$3 WHERE id = \$1`).
		WithArgs(int64(1), false, expiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE refresh_tokens SET is_valid = \$2, expires_at = \$3 WHERE id = \$1`).
		WithArgs(int64(2), false, expiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := repo.UpdateMany(context.Background(), []*model.RefreshToken{
		{ID: 1, IsValid: false, ExpiresAt: expiresAt},
		{ID: 2, IsValid: false, ExpiresAt: expiresAt},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_Rotate(t *testing.T) {
	expiresAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	next := &model.RefreshToken{UserID: "user-1", ChainID: "JTIchain", TokenValue: "next", IsValid: true, ExpiresAt: expiresAt}

	t.Run("успешная ротация", func(t *testing.T) {
		database, mock := newDatabaseWithMock(t)
		repo := NewRefreshTokenRepository(database)
		old := &model.RefreshToken{ID: 7, UserID: "user-1", ChainID: "JTIchain", TokenValue: "old", IsValid: true}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE refresh_tokens SET is_valid = FALSE WHERE id = \$1 AND is_valid = TRUE`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO refresh_tokens`).
			WithArgs("user-1", "JTIchain", "next", true, expiresAt).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns).AddRow(int64(8), "user-1", "JTIchain", "next", true, expiresAt))
		mock.ExpectCommit()

		saved, err := repo.Rotate(context.Background(), old, next)

		require.NoError(t, err)
		assert.Equal(t, int64(8), saved.ID)
		assert.False(t, old.IsValid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("токен уже инвалидирован", func(t *testing.T) {
		database, mock := newDatabaseWithMock(t)
		repo := NewRefreshTokenRepository(database)
		old := &model.RefreshToken{ID: 7, UserID: "user-1", ChainID: "JTIchain", TokenValue: "old", IsValid: true}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE refresh_tokens SET is_valid = FALSE WHERE id = \$1 AND is_valid = TRUE`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		saved, err := repo.Rotate(context.Background(), old, next)

		assert.ErrorIs(t, err, ErrTokenAlreadyRotated)
		assert.Nil(t, saved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
