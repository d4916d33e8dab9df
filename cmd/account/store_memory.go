package account

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps accounts in process memory. It backs local runs without a
// database and the package tests.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]Account
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Account)}
}

// Insert implements Store.
func (m *MemoryStore) Insert(ctx context.Context, in NewAccountInput) (Account, error) {
	const op = "account.MemoryStore.Insert"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	if strings.TrimSpace(in.Email) == "" || in.CredentialDigest == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "email and digest are required"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[in.Email]; ok {
		return Account{}, ConflictError{Op: op, Field: "email"}
	}

	a := Account{
		ID:               in.ID,
		Email:            in.Email,
		CredentialDigest: in.CredentialDigest,
		CreatedAt:        in.CreatedAt,
	}
	m.rows[in.Email] = a
	return cloneAccount(a), nil
}

// FindByEmail implements Store.
func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.rows[email]
	if !ok {
		return Account{}, NotFoundError{Op: "account.MemoryStore.FindByEmail", Email: email}
	}
	return cloneAccount(a), nil
}

// UpdateActivationFields implements Store.
func (m *MemoryStore) UpdateActivationFields(ctx context.Context, email, code string, expiration time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.rows[email]
	if !ok {
		return NotFoundError{Op: "account.MemoryStore.UpdateActivationFields", Email: email}
	}
	c := code
	exp := expiration
	a.ActivationCode = &c
	a.ActivationCodeExpiration = &exp
	m.rows[email] = a
	return nil
}

// SetActivated implements Store.
func (m *MemoryStore) SetActivated(ctx context.Context, email string, at time.Time) error {
	const op = "account.MemoryStore.SetActivated"

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.rows[email]
	if !ok {
		return NotFoundError{Op: op, Email: email}
	}
	if a.Activated {
		return ConflictError{Op: op, Field: "activated"}
	}
	ts := at
	a.Activated = true
	a.ActivatedAt = &ts
	m.rows[email] = a
	return nil
}

// Len returns the number of stored accounts.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

func cloneAccount(a Account) Account {
	out := a
	if a.ActivationCode != nil {
		c := *a.ActivationCode
		out.ActivationCode = &c
	}
	if a.ActivationCodeExpiration != nil {
		e := *a.ActivationCodeExpiration
		out.ActivationCodeExpiration = &e
	}
	if a.ActivatedAt != nil {
		t := *a.ActivatedAt
		out.ActivatedAt = &t
	}
	return out
}
