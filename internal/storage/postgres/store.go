package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sa-mud/samud/internal/storage"
)

// Store implements storage.Store on PostgreSQL. Usernames are matched
// case-insensitively via a unique index on LOWER(username).
type Store struct {
	pool *Pool
}

// NewStore creates a Store backed by the given pool.
//
// Precondition: pool must be open.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts a new account with a bcrypt-hashed password.
//
// Postcondition: Returns the Account, or storage.ErrAccountExists when the
// username is taken.
func (s *Store) Create(ctx context.Context, username, password string) (storage.Account, error) {
	hash, err := storage.HashPassword(password)
	if err != nil {
		return storage.Account{}, fmt.Errorf("hashing password: %w", err)
	}

	var acct storage.Account
	err = s.pool.DB().QueryRow(ctx,
		`INSERT INTO accounts (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING username, password_hash, created_at`,
		username, hash,
	).Scan(&acct.Username, &acct.PasswordHash, &acct.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.Account{}, storage.ErrAccountExists
		}
		return storage.Account{}, fmt.Errorf("inserting account: %w", err)
	}

	return acct, nil
}

// Authenticate verifies credentials.
//
// Postcondition: Returns the Account on success, storage.ErrAccountNotFound,
// or storage.ErrInvalidCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (storage.Account, error) {
	var acct storage.Account
	err := s.pool.DB().QueryRow(ctx,
		`SELECT username, password_hash, created_at
		 FROM accounts WHERE LOWER(username) = LOWER($1)`,
		username,
	).Scan(&acct.Username, &acct.PasswordHash, &acct.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Account{}, storage.ErrAccountNotFound
		}
		return storage.Account{}, fmt.Errorf("querying account: %w", err)
	}

	if !storage.CheckPassword(password, acct.PasswordHash) {
		return storage.Account{}, storage.ErrInvalidCredentials
	}
	return acct, nil
}

// Exists reports whether an account with the username exists.
func (s *Store) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.DB().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE LOWER(username) = LOWER($1))`,
		username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("querying account existence: %w", err)
	}
	return exists, nil
}

// SaveLocation upserts the player's current room.
func (s *Store) SaveLocation(ctx context.Context, username, roomID string) error {
	_, err := s.pool.DB().Exec(ctx,
		`INSERT INTO player_locations (username, room_id, updated_at)
		 VALUES (LOWER($1), $2, NOW())
		 ON CONFLICT (username)
		 DO UPDATE SET room_id = EXCLUDED.room_id, updated_at = NOW()`,
		username, roomID,
	)
	if err != nil {
		return fmt.Errorf("saving location for %q: %w", username, err)
	}
	return nil
}

// LoadLocation returns the player's saved room, or storage.ErrNoLocation.
func (s *Store) LoadLocation(ctx context.Context, username string) (string, error) {
	var roomID string
	err := s.pool.DB().QueryRow(ctx,
		`SELECT room_id FROM player_locations WHERE username = LOWER($1)`,
		username,
	).Scan(&roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNoLocation
		}
		return "", fmt.Errorf("querying location for %q: %w", username, err)
	}
	return roomID, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isDuplicateKeyError checks for SQLSTATE 23505 (unique_violation).
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
