// Package mongostore implements identity persistence on MongoDB.
//
// Single-use token consumption relies on FindOneAndDelete, which is atomic on
// a single document: concurrent consumers of the same token see exactly one
// document between them. Verification documents carry no TTL index so an
// expired-but-unconsumed token still reads back as expired rather than
// absent; expired documents are cleared by DeleteExpiredVerifications.
package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/abg-ub/better-auth/pkg/identity"
)

const (
	usersCollection         = "users"
	verificationsCollection = "verifications"
)

type userDoc struct {
	ID            string    `bson:"_id"`
	Email         string    `bson:"email"`
	Name          string    `bson:"name"`
	EmailVerified bool      `bson:"email_verified"`
	CreatedAt     time.Time `bson:"created_at"`
}

type verificationDoc struct {
	Identifier string    `bson:"_id"`
	Value      string    `bson:"value"`
	ExpiresAt  time.Time `bson:"expires_at"`
}

// Store implements identity.Store on a mongo database handle.
type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the unique email index. Call once at startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	var doc userDoc
	err := s.db.Collection(usersCollection).
		FindOne(ctx, bson.M{"email": email}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return docToUser(doc)
}

func (s *Store) CreateUser(ctx context.Context, user *identity.User) error {
	doc := userDoc{
		ID:            user.ID.String(),
		Email:         user.Email,
		Name:          user.Name,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}

	_, err := s.db.Collection(usersCollection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Join(identity.ErrEmailAlreadyExists, err)
		}
		return err
	}
	return nil
}

func (s *Store) CreateVerification(ctx context.Context, record *identity.VerificationRecord) error {
	doc := verificationDoc{
		Identifier: record.Identifier,
		Value:      record.Value,
		ExpiresAt:  record.ExpiresAt,
	}
	_, err := s.db.Collection(verificationsCollection).InsertOne(ctx, doc)
	return err
}

func (s *Store) ConsumeVerification(ctx context.Context, token string) (*identity.VerificationRecord, error) {
	var doc verificationDoc
	err := s.db.Collection(verificationsCollection).
		FindOneAndDelete(ctx, bson.M{"_id": token}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, identity.ErrVerificationNotFound
		}
		return nil, err
	}

	return &identity.VerificationRecord{
		Identifier: doc.Identifier,
		Value:      doc.Value,
		ExpiresAt:  doc.ExpiresAt,
	}, nil
}

// DeleteExpiredVerifications removes records past their expiry. Intended for
// periodic maintenance; the redeem path never depends on it.
func (s *Store) DeleteExpiredVerifications(ctx context.Context) (int64, error) {
	result, err := s.db.Collection(verificationsCollection).
		DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func docToUser(doc userDoc) (*identity.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, err
	}
	return &identity.User{
		ID:            id,
		Email:         doc.Email,
		Name:          doc.Name,
		EmailVerified: doc.EmailVerified,
		CreatedAt:     doc.CreatedAt,
	}, nil
}
