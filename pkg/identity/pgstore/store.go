// Package pgstore implements identity persistence on PostgreSQL.
//
// Single-use token consumption relies on DELETE ... RETURNING, which is atomic
// per statement: concurrent consumers of the same token see exactly one row
// between them.
package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abg-ub/better-auth/pkg/identity"
	"github.com/abg-ub/better-auth/pkg/pg"
)

// Store implements identity.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	const query = `
		SELECT id, email, name, email_verified, created_at
		FROM users
		WHERE email = $1`

	var user identity.User
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.EmailVerified,
		&user.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *identity.User) error {
	const query = `
		INSERT INTO users (id, email, name, email_verified, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.EmailVerified,
		user.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(identity.ErrEmailAlreadyExists, err)
		}
		return err
	}
	return nil
}

func (s *Store) CreateVerification(ctx context.Context, record *identity.VerificationRecord) error {
	const query = `
		INSERT INTO verifications (identifier, value, expires_at)
		VALUES ($1, $2, $3)`

	_, err := s.pool.Exec(ctx, query, record.Identifier, record.Value, record.ExpiresAt)
	return err
}

func (s *Store) ConsumeVerification(ctx context.Context, token string) (*identity.VerificationRecord, error) {
	const query = `
		DELETE FROM verifications
		WHERE identifier = $1
		RETURNING identifier, value, expires_at`

	var record identity.VerificationRecord
	err := s.pool.QueryRow(ctx, query, token).Scan(
		&record.Identifier,
		&record.Value,
		&record.ExpiresAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, identity.ErrVerificationNotFound
		}
		return nil, err
	}
	return &record, nil
}

// DeleteExpiredVerifications removes records past their expiry. Intended for
// periodic maintenance; the redeem path never depends on it.
func (s *Store) DeleteExpiredVerifications(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM verifications WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
