package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// The pgx pool is owned by the caller; this store never closes it.
// Schema and table identifiers are quoted with pgx.Identifier.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// DefaultSchema is the schema used when WithSchema is not given.
const DefaultSchema = "accounts"

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema holding the accounts table.
// The name must be a legal unquoted PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("account: empty schema")
		}
		if !pgIdentIsValid(schema) {
			return fmt.Errorf("account: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: DefaultSchema,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("account: nil pool")
	}
	return st, nil
}

// Schema returns the configured schema name.
func (s *PostgresStore) Schema() string { return s.schema }

// Insert implements Store.
func (s *PostgresStore) Insert(ctx context.Context, in NewAccountInput) (Account, error) {
	const op = "account.PostgresStore.Insert"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	if strings.TrimSpace(in.Email) == "" || in.CredentialDigest == "" || in.ID == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "id, email and digest are required"}
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+s.table()+` (id, email, credential_digest, activated, created_at)
		 VALUES ($1, $2, $3, false, $4)`,
		in.ID, in.Email, in.CredentialDigest, createdAt,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return Account{}, ConflictError{Op: op, Field: field}
		}
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return Account{
		ID:               in.ID,
		Email:            in.Email,
		CredentialDigest: in.CredentialDigest,
		CreatedAt:        createdAt,
	}, nil
}

// FindByEmail implements Store.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	const op = "account.PostgresStore.FindByEmail"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	var a Account
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, credential_digest, activated, activation_code,
		        activation_code_expiration, created_at, activated_at
		   FROM `+s.table()+`
		  WHERE email = $1`,
		email,
	).Scan(
		&a.ID,
		&a.Email,
		&a.CredentialDigest,
		&a.Activated,
		&a.ActivationCode,
		&a.ActivationCodeExpiration,
		&a.CreatedAt,
		&a.ActivatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, NotFoundError{Op: op, Email: email}
		}
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// UpdateActivationFields implements Store.
func (s *PostgresStore) UpdateActivationFields(ctx context.Context, email, code string, expiration time.Time) error {
	const op = "account.PostgresStore.UpdateActivationFields"

	if err := ctx.Err(); err != nil {
		return err
	}

	ct, err := s.pool.Exec(ctx,
		`UPDATE `+s.table()+`
		    SET activation_code = $1,
		        activation_code_expiration = $2
		  WHERE email = $3`,
		code, expiration, email,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return NotFoundError{Op: op, Email: email}
	}
	return nil
}

// SetActivated implements Store. The update only matches a row that is still
// pending, so two racing activations cannot both succeed.
func (s *PostgresStore) SetActivated(ctx context.Context, email string, at time.Time) error {
	const op = "account.PostgresStore.SetActivated"

	if err := ctx.Err(); err != nil {
		return err
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	ct, err := s.pool.Exec(ctx,
		`UPDATE `+s.table()+`
		    SET activated = true,
		        activated_at = $1
		  WHERE email = $2
		    AND activated = false`,
		at, email,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// Zero rows: either the account is already active or it does not exist.
	var activated bool
	err = s.pool.QueryRow(ctx,
		`SELECT activated FROM `+s.table()+` WHERE email = $1`,
		email,
	).Scan(&activated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NotFoundError{Op: op, Email: email}
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return ConflictError{Op: op, Field: "activated"}
}

func (s *PostgresStore) table() string {
	return pgIdent(s.schema, "accounts")
}

// ---- helpers ----

// pgIdentIsValid checks if a string is a safe Postgres identifier.
func pgIdentIsValid(s string) bool {
	return pgIdentRe.MatchString(s)
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch {
	case c == "uq_accounts_email", strings.Contains(c, "email"):
		return "email", true
	case c == "accounts_pkey":
		return "id", true
	default:
		return "unique", true
	}
}
