package identity

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store implementation for development and tests.
// All operations are safe for concurrent use; ConsumeVerification is atomic
// because lookup and delete happen under one lock.
type MemoryStore struct {
	mu            sync.Mutex
	usersByEmail  map[string]*User
	verifications map[string]*VerificationRecord
}

// NewMemoryStore creates an empty in-memory identity store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		usersByEmail:  make(map[string]*User),
		verifications: make(map[string]*VerificationRecord),
	}
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.usersByEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}

	u := *user
	return &u, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByEmail[user.Email]; ok {
		return ErrEmailAlreadyExists
	}

	u := *user
	s.usersByEmail[user.Email] = &u
	return nil
}

func (s *MemoryStore) CreateVerification(ctx context.Context, record *VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *record
	s.verifications[record.Identifier] = &r
	return nil
}

func (s *MemoryStore) ConsumeVerification(ctx context.Context, token string) (*VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.verifications[token]
	if !ok {
		return nil, ErrVerificationNotFound
	}

	delete(s.verifications, token)
	r := *record
	return &r, nil
}

// DeleteUserByEmail removes a user. Intended for tests simulating accounts
// that disappear between issue and redeem.
func (s *MemoryStore) DeleteUserByEmail(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.usersByEmail, email)
}

// VerificationCount returns the number of unconsumed records. Intended for
// tests asserting that failed issuance leaves no state behind.
func (s *MemoryStore) VerificationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.verifications)
}
