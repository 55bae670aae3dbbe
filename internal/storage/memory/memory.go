// Package memory keeps users and sessions in process memory. It backs local
// runs with sessions.store=memory and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"campus_delivery/internal/models"
	"campus_delivery/internal/storage"
)

type Store struct {
	mu sync.RWMutex

	nextID   int64
	users    map[int64]models.User
	byEmail  map[string]int64
	sessions map[string]models.Session
}

func New() *Store {
	return &Store{
		users:    make(map[int64]models.User),
		byEmail:  make(map[string]int64),
		sessions: make(map[string]models.Session),
	}
}

func (s *Store) SaveUser(_ context.Context, user models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return 0, storage.ErrUserExists
	}

	s.nextID++
	user.ID = s.nextID
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID

	return user.ID, nil
}

func (s *Store) User(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return s.users[id], nil
}

func (s *Store) UserByID(_ context.Context, uid int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[uid]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (s *Store) UserByResetToken(_ context.Context, tokenHash string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if tokenHash == "" {
		return models.User{}, storage.ErrUserNotFound
	}

	for _, u := range s.users {
		if u.ResetTokenHash == tokenHash {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *Store) UpdatePassword(_ context.Context, uid int64, passHash string) error {
	return s.updateUser(uid, func(u *models.User) {
		u.PassHash = passHash
	})
}

func (s *Store) SetResetToken(_ context.Context, uid int64, tokenHash string, expiresAt time.Time) error {
	return s.updateUser(uid, func(u *models.User) {
		u.ResetTokenHash = tokenHash
		u.ResetTokenExpiry = expiresAt
	})
}

func (s *Store) CompleteReset(_ context.Context, uid int64, passHash string) error {
	return s.updateUser(uid, func(u *models.User) {
		u.PassHash = passHash
		u.ResetTokenHash = ""
		u.ResetTokenExpiry = time.Time{}
	})
}

func (s *Store) updateUser(uid int64, fn func(u *models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[uid]
	if !ok {
		return storage.ErrUserNotFound
	}

	fn(&u)
	s.users[uid] = u

	return nil
}

func (s *Store) SaveSession(_ context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session

	return nil
}

func (s *Store) Session(_ context.Context, id string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, storage.ErrSessionNotFound
	}

	return session, nil
}

func (s *Store) ExtendSession(_ context.Context, id string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return storage.ErrSessionNotFound
	}

	session.ExpiresAt = expiresAt
	s.sessions[id] = session

	return nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)

	return nil
}

func (s *Store) DeleteUserSessions(_ context.Context, uid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.sessions {
		if session.UserID == uid {
			delete(s.sessions, id)
		}
	}

	return nil
}

// PurgeExpiredSessions drops every session that expired before now.
func (s *Store) PurgeExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, id)
			n++
		}
	}

	return n, nil
}
