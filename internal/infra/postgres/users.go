package postgres

import (
	"context"
	"fmt"

	"github.com/tucredito/tu-credito-api-go/internal/domain"
)

// GetUserByUsername returns nil, nil when no such user exists.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx,
		"SELECT id, username, password_hash FROM users WHERE username = $1",
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// EnsureUser inserts the user unless the username is already taken.
// Used at startup to provision the admin account.
func (s *Store) EnsureUser(ctx context.Context, username, passwordHash string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2)
		 ON CONFLICT (username) DO NOTHING`,
		username, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}
