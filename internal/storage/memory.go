package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MemoryStore is the in-memory Store driver. Accounts and locations live for
// the lifetime of the process; restarting the server forgets everything.
// Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]Account // lowercased username → account
	locations map[string]string  // lowercased username → room ID
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[string]Account),
		locations: make(map[string]string),
	}
}

// Create registers a new account with a bcrypt-hashed password.
//
// Postcondition: Returns the Account, or ErrAccountExists if the username is
// taken (case-insensitively).
func (s *MemoryStore) Create(_ context.Context, username, password string) (Account, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return Account{}, fmt.Errorf("hashing password: %w", err)
	}

	key := strings.ToLower(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[key]; exists {
		return Account{}, ErrAccountExists
	}

	acct := Account{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	s.accounts[key] = acct
	return acct, nil
}

// Authenticate verifies credentials.
//
// Postcondition: Returns the Account on success, ErrAccountNotFound, or
// ErrInvalidCredentials.
func (s *MemoryStore) Authenticate(_ context.Context, username, password string) (Account, error) {
	s.mu.RLock()
	acct, ok := s.accounts[strings.ToLower(username)]
	s.mu.RUnlock()

	if !ok {
		return Account{}, ErrAccountNotFound
	}
	if !CheckPassword(password, acct.PasswordHash) {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// Exists reports whether an account with the username exists.
func (s *MemoryStore) Exists(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[strings.ToLower(username)]
	return ok, nil
}

// SaveLocation records the player's current room.
func (s *MemoryStore) SaveLocation(_ context.Context, username, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[strings.ToLower(username)] = roomID
	return nil
}

// LoadLocation returns the player's saved room, or ErrNoLocation.
func (s *MemoryStore) LoadLocation(_ context.Context, username string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roomID, ok := s.locations[strings.ToLower(username)]
	if !ok {
		return "", ErrNoLocation
	}
	return roomID, nil
}

// Close is a no-op for the memory driver.
func (s *MemoryStore) Close() error {
	return nil
}

// HashPassword creates a bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
