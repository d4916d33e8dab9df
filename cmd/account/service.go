package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"accounts/cmd/internal/ids"
	"accounts/cmd/security/code"
	"accounts/cmd/security/credential"
)

// Service runs registration, activation code issuance and activation.
type Service struct {
	log   *slog.Logger
	store Store
	codec credential.Codec

	validator Validator
	now       func() time.Time
	newCode   code.Generator

	// dummyDigest keeps the unknown-email path as expensive as a real verify.
	dummyDigest string
}

// ServiceOption configures optional Service dependencies.
type ServiceOption func(*Service)

// WithClock overrides time.Now (tests pin expiration this way).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCodeGenerator overrides the random activation code source.
func WithCodeGenerator(gen code.Generator) ServiceOption {
	return func(s *Service) {
		if gen != nil {
			s.newCode = gen
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService wires a Service over store and codec.
func NewService(store Store, codec credential.Codec, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("account: nil store")
	}
	if codec == nil {
		return nil, errors.New("account: nil credential codec")
	}

	s := &Service{
		log:       slog.Default(),
		store:     store,
		codec:     codec,
		validator: NewValidator(store),
		now:       func() time.Time { return time.Now().UTC() },
		newCode:   code.Generate,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	digest, err := codec.Encode("dummy-password-for-timing-only")
	if err != nil {
		return nil, fmt.Errorf("account: dummy digest: %w", err)
	}
	s.dummyDigest = digest

	return s, nil
}

// Register validates the candidate and inserts the account row.
// Validation failures come back as ValidationError. A concurrent insert of the same
// email surfaces as ValidationError{LabelEmailTaken}. Other store failures pass through.
func (s *Service) Register(ctx context.Context, email, password string) (Account, error) {
	const op = "account.Register"

	labels, err := s.validator.Validate(ctx, email, password)
	if err != nil {
		return Account{}, fmt.Errorf("%s: uniqueness check: %w", op, err)
	}
	if len(labels) > 0 {
		return Account{}, ValidationError{Labels: labels}
	}

	digest, err := s.codec.Encode(password)
	if err != nil {
		return Account{}, fmt.Errorf("%s: encode: %w", op, err)
	}

	now := s.now()
	id, err := ids.NewULID(now)
	if err != nil {
		return Account{}, fmt.Errorf("%s: id: %w", op, err)
	}

	acct, err := s.store.Insert(ctx, NewAccountInput{
		ID:               id,
		Email:            email,
		CredentialDigest: digest,
		CreatedAt:        now,
	})
	if err != nil {
		var ce ConflictError
		if errors.As(err, &ce) && ce.Field == "email" {
			return Account{}, ValidationError{Labels: []string{LabelEmailTaken}}
		}
		return Account{}, err
	}

	s.log.Info("account.registered", "account_id", acct.ID)
	return acct, nil
}

// Activate runs the activation checks in order and flips the account to activated.
//
// Results:
// - ErrInvalidCredentials: unknown email or wrong password (indistinguishable)
// - ErrAlreadyActivated: the account is already active, or a concurrent attempt won
// - ErrCodeExpired: no code issued yet or the code is past its expiration
// - ErrWrongCode: the code does not match
func (s *Service) Activate(ctx context.Context, email, password, presented string) error {
	acct, err := s.authenticate(ctx, email, password)
	if err != nil {
		return err
	}

	now := s.now()
	if err := checkActivation(acct, presented, now); err != nil {
		return err
	}

	if err := s.store.SetActivated(ctx, email, now); err != nil {
		if IsConflict(err) {
			return ErrAlreadyActivated
		}
		return err
	}

	s.log.Info("account.activated", "account_id", acct.ID)
	return nil
}

// AuthorizeReissue checks that the caller may request a new activation code:
// valid credentials and a still pending account.
func (s *Service) AuthorizeReissue(ctx context.Context, email, password string) error {
	acct, err := s.authenticate(ctx, email, password)
	if err != nil {
		return err
	}
	if acct.Status() != StatusPending {
		return ErrAlreadyActivated
	}
	return nil
}

// Deliverer sends a freshly generated code to its owner.
type Deliverer func(ctx context.Context, email, code string) error

// IssueActivationCode generates a code, hands it to deliver and then persists it
// with expiration = now + ActivationCodeTTL, the clock read after delivery.
// When delivery fails nothing is persisted and the delivery error is returned.
func (s *Service) IssueActivationCode(ctx context.Context, email string, deliver Deliverer) error {
	const op = "account.IssueActivationCode"

	if deliver == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil deliverer"}
	}

	c, err := s.newCode()
	if err != nil {
		return fmt.Errorf("%s: generate: %w", op, err)
	}

	if err := deliver(ctx, email, c); err != nil {
		return fmt.Errorf("%s: deliver: %w", op, err)
	}

	expiration := s.now().Add(ActivationCodeTTL)
	if err := s.store.UpdateActivationFields(ctx, email, c, expiration); err != nil {
		return fmt.Errorf("%s: persist: %w", op, err)
	}
	return nil
}

// authenticate covers the lookup and credential checks. Both failures yield
// ErrInvalidCredentials; the missing-account path still runs a verify.
func (s *Service) authenticate(ctx context.Context, email, password string) (Account, error) {
	if strings.TrimSpace(email) == "" {
		_, _ = s.codec.Verify(s.dummyDigest, password)
		return Account{}, ErrInvalidCredentials
	}

	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			_, _ = s.codec.Verify(s.dummyDigest, password)
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}

	ok, err := s.codec.Verify(acct.CredentialDigest, password)
	if err != nil {
		s.log.Error("account.credential.verify.fail", "account_id", acct.ID, "err", err)
		return Account{}, ErrInvalidCredentials
	}
	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}
