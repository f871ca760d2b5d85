package repository

import (
	"context"
	"magic-villa-api/internal/model"
	"sync"
)

// MemoryTokenStore хранит refresh-токены в памяти процесса.
// Подходит для одного инстанса и тестов, при рестарте все сессии теряются.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	nextID int64
	tokens []*model.RefreshToken
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Insert(_ context.Context, token *model.RefreshToken) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(token), nil
}

func (s *MemoryTokenStore) insertLocked(token *model.RefreshToken) *model.RefreshToken {
	s.nextID++
	stored := *token
	stored.ID = s.nextID
	s.tokens = append(s.tokens, &stored)

	saved := stored
	return &saved
}

func (s *MemoryTokenStore) FindOne(_ context.Context, filter model.TokenFilter) (*model.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter.IsEmpty() {
		return nil, ErrEmptyFilter
	}

	for _, token := range s.tokens {
		if filter.Match(token) {
			found := *token
			return &found, nil
		}
	}
	return nil, nil
}

func (s *MemoryTokenStore) FindAll(_ context.Context, filter model.TokenFilter) ([]*model.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter.IsEmpty() {
		return nil, ErrEmptyFilter
	}

	var result []*model.RefreshToken
	for _, token := range s.tokens {
		if filter.Match(token) {
			found := *token
			result = append(result, &found)
		}
	}
	return result, nil
}

func (s *MemoryTokenStore) UpdateOne(_ context.Context, token *model.RefreshToken) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updateLocked(token)
	return token, nil
}

func (s *MemoryTokenStore) UpdateMany(_ context.Context, tokens []*model.RefreshToken) ([]*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, token := range tokens {
		s.updateLocked(token)
	}
	return tokens, nil
}

func (s *MemoryTokenStore) Rotate(_ context.Context, old *model.RefreshToken, next *model.RefreshToken) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.byIDLocked(old.ID)
	if stored == nil || !stored.IsValid {
		return nil, ErrTokenAlreadyRotated
	}

	stored.IsValid = false
	old.IsValid = false
	return s.insertLocked(next), nil
}

func (s *MemoryTokenStore) updateLocked(token *model.RefreshToken) {
	if stored := s.byIDLocked(token.ID); stored != nil {
		stored.IsValid = token.IsValid
		stored.ExpiresAt = token.ExpiresAt
	}
}

func (s *MemoryTokenStore) byIDLocked(id int64) *model.RefreshToken {
	for _, token := range s.tokens {
		if token.ID == id {
			return token
		}
	}
	return nil
}
