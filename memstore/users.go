package memstore

import (
	"context"
	"time"

	"Gin_postgres_redis_library/lending"
	"Gin_postgres_redis_library/models"
)

func (s *Store) FindUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, lending.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, lending.ErrNotFound
}

func (s *Store) FindOrCreateUser(_ context.Context, username, newID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	now := time.Now().UTC()
	u := &models.User{ID: newID, Username: username, DisplayName: username, CreatedAt: now, UpdatedAt: now}
	s.users[newID] = u
	cp := *u
	return &cp, nil
}

func (s *Store) SetUserAdmin(_ context.Context, userID string, isAdmin bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return lending.ErrNotFound
	}
	u.IsAdmin = isAdmin
	return nil
}

func (s *Store) TouchUserSeen(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		now := time.Now().UTC()
		u.LastSeenAt = &now
	}
	return nil
}
