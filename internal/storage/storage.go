// Package storage defines the persistence interfaces for accounts and
// player locations, plus an in-memory driver. The postgres subpackage
// provides the durable driver.
package storage

import (
	"context"
	"errors"
	"time"
)

// Account is a registered player account. Usernames are matched
// case-insensitively but stored with the casing used at signup.
type Account struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Account and location store sentinel errors.
var (
	// ErrAccountExists is returned when signing up a taken username.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountNotFound is returned when an account lookup yields nothing.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials is returned when the password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoLocation is returned when a player has no saved location.
	ErrNoLocation = errors.New("no saved location")
)

// AccountStore persists player accounts.
type AccountStore interface {
	// Create registers a new account with a hashed password.
	//
	// Postcondition: Returns the created Account, or ErrAccountExists if the
	// username is taken (case-insensitively).
	Create(ctx context.Context, username, password string) (Account, error)

	// Authenticate verifies credentials.
	//
	// Postcondition: Returns the Account on success, ErrAccountNotFound for an
	// unknown username, or ErrInvalidCredentials for a wrong password.
	Authenticate(ctx context.Context, username, password string) (Account, error)

	// Exists reports whether an account with the username exists.
	Exists(ctx context.Context, username string) (bool, error)
}

// LocationStore persists each player's last known room, keyed by username.
type LocationStore interface {
	// SaveLocation records the player's current room, replacing any prior value.
	SaveLocation(ctx context.Context, username, roomID string) error

	// LoadLocation returns the player's saved room.
	//
	// Postcondition: Returns the room ID, or ErrNoLocation.
	LoadLocation(ctx context.Context, username string) (string, error)
}

// Store combines account and location persistence behind one driver.
type Store interface {
	AccountStore
	LocationStore

	// Close releases driver resources.
	Close() error
}
