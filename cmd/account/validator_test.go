package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newFaultyStore()
	_, err := store.MemoryStore.Insert(ctx, NewAccountInput{
		ID: "01HX0000000000000000000000", Email: "user@domain.com", CredentialDigest: "digest",
	})
	require.NoError(t, err)

	v := NewValidator(store)

	cases := []struct {
		name     string
		email    string
		password string
		want     []string
	}{
		{name: "valid and free", email: "new@domain.com", password: "validpassword", want: nil},
		{name: "bad email", email: "notvalid", password: "validpassword", want: []string{LabelInvalidEmail}},
		{name: "bad password", email: "valid@email.com", password: "noop", want: []string{LabelInvalidPassword}},
		{name: "bad email and password", email: "notvalid", password: "noop", want: []string{LabelInvalidEmail, LabelInvalidPassword}},
		{name: "taken", email: "user@domain.com", password: "validpassword", want: []string{LabelEmailTaken}},
		{name: "taken and bad password", email: "user@domain.com", password: "noop", want: []string{LabelInvalidPassword, LabelEmailTaken}},
		{name: "email case is significant", email: "User@domain.com", password: "validpassword", want: nil},
	}

	for _, tc := range cases {
		got, err := v.Validate(ctx, tc.email, tc.password)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

func TestValidator_SkipsLookupOnBadEmail(t *testing.T) {
	t.Parallel()

	store := newFaultyStore()
	store.failFind = true

	got, err := NewValidator(store).Validate(context.Background(), "not..valid@domain.com", "validpassword")
	require.NoError(t, err)
	assert.Equal(t, []string{LabelInvalidEmail}, got)
	assert.Zero(t, store.finds())
}

func TestValidator_StoreFailure(t *testing.T) {
	t.Parallel()

	store := newFaultyStore()
	store.failFind = true

	got, err := NewValidator(store).Validate(context.Background(), "valid@domain.com", "noop")
	require.ErrorIs(t, err, errStoreDown)
	assert.Nil(t, got)
}
