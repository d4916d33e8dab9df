package account

import "time"

// ActivationCodeTTL is how long an issued code stays valid.
const ActivationCodeTTL = time.Minute

// Account is one registered email and its activation state.
// CredentialDigest is never the plaintext and has no update path.
type Account struct {
	ID               string
	Email            string
	CredentialDigest string

	Activated                bool
	ActivationCode           *string
	ActivationCodeExpiration *time.Time

	CreatedAt   time.Time
	ActivatedAt *time.Time
}

// NewAccountInput is what Store.Insert persists for a fresh registration.
type NewAccountInput struct {
	ID               string
	Email            string
	CredentialDigest string
	CreatedAt        time.Time
}
