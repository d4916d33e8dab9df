package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection is the collection name used by MongoStore.
const MongoCollection = "accounts"

// MongoStore implements Store over a MongoDB collection. The client is owned by
// the caller.
type MongoStore struct {
	collection *mongo.Collection
}

type mongoAccount struct {
	ID                       string     `bson:"_id"`
	Email                    string     `bson:"email"`
	CredentialDigest         string     `bson:"credential_digest"`
	Activated                bool       `bson:"activated"`
	ActivationCode           *string    `bson:"activation_code,omitempty"`
	ActivationCodeExpiration *time.Time `bson:"activation_code_expiration,omitempty"`
	CreatedAt                time.Time  `bson:"created_at"`
	ActivatedAt              *time.Time `bson:"activated_at,omitempty"`
}

// NewMongoStore returns a MongoStore over c.
func NewMongoStore(c *mongo.Collection) (*MongoStore, error) {
	if c == nil {
		return nil, errors.New("account: nil mongo collection")
	}
	return &MongoStore{collection: c}, nil
}

// EnsureIndexes creates the unique email index. It is idempotent.
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uq_accounts_email"),
	})
	if err != nil {
		return fmt.Errorf("account: ensure indexes: %w", err)
	}
	return nil
}

// Insert implements Store.
func (m *MongoStore) Insert(ctx context.Context, in NewAccountInput) (Account, error) {
	const op = "account.MongoStore.Insert"

	if strings.TrimSpace(in.Email) == "" || in.CredentialDigest == "" || in.ID == "" {
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "id, email and digest are required"}
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	doc := mongoAccount{
		ID:               in.ID,
		Email:            in.Email,
		CredentialDigest: in.CredentialDigest,
		CreatedAt:        createdAt,
	}
	if _, err := m.collection.InsertOne(ctx, &doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Account{}, ConflictError{Op: op, Field: "email"}
		}
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return accountFromMongo(doc), nil
}

// FindByEmail implements Store.
func (m *MongoStore) FindByEmail(ctx context.Context, email string) (Account, error) {
	const op = "account.MongoStore.FindByEmail"

	var doc mongoAccount
	err := m.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Account{}, NotFoundError{Op: op, Email: email}
		}
		return Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return accountFromMongo(doc), nil
}

// UpdateActivationFields implements Store.
func (m *MongoStore) UpdateActivationFields(ctx context.Context, email, code string, expiration time.Time) error {
	const op = "account.MongoStore.UpdateActivationFields"

	res, err := m.collection.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{
			"activation_code":            code,
			"activation_code_expiration": expiration,
		}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return NotFoundError{Op: op, Email: email}
	}
	return nil
}

// SetActivated implements Store. The filter requires activated=false.
func (m *MongoStore) SetActivated(ctx context.Context, email string, at time.Time) error {
	const op = "account.MongoStore.SetActivated"

	if at.IsZero() {
		at = time.Now().UTC()
	}

	res, err := m.collection.UpdateOne(ctx,
		bson.M{"email": email, "activated": false},
		bson.M{"$set": bson.M{"activated": true, "activated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := m.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return NotFoundError{Op: op, Email: email}
	}
	return ConflictError{Op: op, Field: "activated"}
}

func accountFromMongo(d mongoAccount) Account {
	a := Account{
		ID:                       d.ID,
		Email:                    d.Email,
		CredentialDigest:         d.CredentialDigest,
		Activated:                d.Activated,
		ActivationCode:           d.ActivationCode,
		ActivationCodeExpiration: d.ActivationCodeExpiration,
		CreatedAt:                d.CreatedAt.UTC(),
		ActivatedAt:              d.ActivatedAt,
	}
	if a.ActivationCodeExpiration != nil {
		e := a.ActivationCodeExpiration.UTC()
		a.ActivationCodeExpiration = &e
	}
	return a
}
