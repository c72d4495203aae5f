package memory

import (
	"context"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

// GetUserByUsername returns nil, nil when no such user exists.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// SeedUser inserts a user directly, bypassing the service layer.
// Used at startup to provision the admin account and in tests.
func (s *Store) SeedUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userSeq++
	u.ID = s.userSeq
	s.users[u.ID] = u
	return u
}
