package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := s.FindByEmail(ctx, testEmail)
	require.True(t, IsNotFound(err))

	created, err := s.Insert(ctx, NewAccountInput{ID: "id-1", Email: testEmail, CredentialDigest: "d", CreatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, created.Status())

	_, err = s.Insert(ctx, NewAccountInput{ID: "id-2", Email: testEmail, CredentialDigest: "d"})
	require.True(t, IsConflict(err))

	require.NoError(t, s.UpdateActivationFields(ctx, testEmail, "1234", now.Add(time.Minute)))
	got, err := s.FindByEmail(ctx, testEmail)
	require.NoError(t, err)
	require.NotNil(t, got.ActivationCode)
	assert.Equal(t, "1234", *got.ActivationCode)

	// Mutating a returned row must not leak into the store.
	*got.ActivationCode = "0000"
	again, err := s.FindByEmail(ctx, testEmail)
	require.NoError(t, err)
	assert.Equal(t, "1234", *again.ActivationCode)

	require.NoError(t, s.SetActivated(ctx, testEmail, now))
	err = s.SetActivated(ctx, testEmail, now)
	require.True(t, IsConflict(err))

	assert.True(t, IsNotFound(s.SetActivated(ctx, "ghost@domain.com", now)))
	assert.True(t, IsNotFound(s.UpdateActivationFields(ctx, "ghost@domain.com", "1", now)))
}

func TestMemoryStore_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := NewMemoryStore().Insert(context.Background(), NewAccountInput{Email: " "})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().FindByEmail(ctx, testEmail)
	require.ErrorIs(t, err, context.Canceled)
}
