package account

import (
	"crypto/subtle"
	"time"
)

// Status is the activation state of an account.
type Status string

const (
	StatusUnknown   Status = "unknown"
	StatusPending   Status = "pending"
	StatusActivated Status = "activated"
)

// Status derives the lifecycle state from the row.
func (a Account) Status() Status {
	if a.Email == "" {
		return StatusUnknown
	}
	if a.Activated {
		return StatusActivated
	}
	return StatusPending
}

// transitions lists the allowed moves. Activated is terminal.
var transitions = map[Status][]Status{
	StatusUnknown: {StatusPending},
	StatusPending: {StatusActivated},
}

// CanTransition reports whether the lifecycle allows moving from one state to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// checkActivation runs the post-authentication checks in order:
// already activated, code expired, code mismatch. A missing expiration counts as expired.
func checkActivation(a Account, presented string, now time.Time) error {
	if a.Status() == StatusUnknown {
		return ErrInvalidCredentials
	}
	if !CanTransition(a.Status(), StatusActivated) {
		return ErrAlreadyActivated
	}

	if a.ActivationCodeExpiration == nil || now.After(*a.ActivationCodeExpiration) {
		return ErrCodeExpired
	}

	stored := ""
	if a.ActivationCode != nil {
		stored = *a.ActivationCode
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return ErrWrongCode
	}

	return nil
}
