package account

import "context"

// emailLookup is the slice of Store the validator needs.
type emailLookup interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
}

// Validator runs the registration checks and accumulates every failure.
type Validator struct {
	store emailLookup
}

// NewValidator returns a Validator reading uniqueness from store.
func NewValidator(store emailLookup) Validator {
	return Validator{store: store}
}

// Validate returns the failed checks in fixed order: email format, password format,
// email uniqueness. The uniqueness query only runs when the email format passed.
// A store failure during the uniqueness query is returned as err.
func (v Validator) Validate(ctx context.Context, email, password string) ([]string, error) {
	var labels []string

	emailOK := IsEmailValid(email)
	if !emailOK {
		labels = append(labels, LabelInvalidEmail)
	}

	if !IsPasswordValid(password) {
		labels = append(labels, LabelInvalidPassword)
	}

	if emailOK {
		_, err := v.store.FindByEmail(ctx, email)
		switch {
		case err == nil:
			labels = append(labels, LabelEmailTaken)
		case IsNotFound(err):
		default:
			return nil, err
		}
	}

	return labels, nil
}
