package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ErrNoToken indicates the token store is in its explicit absent state:
// either never initialized or cleared after a 401.
var ErrNoToken = fmt.Errorf("no token stored: log in first")

// SaveToken stores the backend bearer token, replacing any previous one.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_config (id, token, saved_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET token = excluded.token, saved_at = excluded.saved_at`,
		token)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// LoadToken returns the stored bearer token, or ErrNoToken when absent.
func (s *Store) LoadToken(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM auth_config WHERE id = 1`).Scan(&token)
	if err == sql.ErrNoRows {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("loading token: %w", err)
	}
	return token, nil
}

// ClearToken transitions the store back to the absent state. Called when the
// backend answers 401: the token is invalid and must not be reused.
func (s *Store) ClearToken(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_config WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}
