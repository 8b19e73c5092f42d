package identity

import "context"

// UserStore provides account persistence.
type UserStore interface {
	// GetUserByEmail returns the user for the given email or ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// CreateUser persists a new user. Returns ErrEmailAlreadyExists when a
	// user with the same email is already present.
	CreateUser(ctx context.Context, user *User) error
}

// VerificationStore provides verification record persistence.
//
// ConsumeVerification must be atomic: when two requests race on the same
// token, exactly one of them observes the record and the other gets
// ErrVerificationNotFound. Implementations back this with
// delete-returning-previous-value or an equivalent primitive.
type VerificationStore interface {
	// CreateVerification persists a new record keyed by its token.
	CreateVerification(ctx context.Context, record *VerificationRecord) error

	// ConsumeVerification removes the record for the given token and returns
	// it, or ErrVerificationNotFound when no record exists. Expiry is not
	// checked here; callers decide what a consumed-but-expired record means.
	ConsumeVerification(ctx context.Context, token string) (*VerificationRecord, error)
}

// Store combines account and verification persistence. This is the capability
// the magic link flow consumes.
type Store interface {
	UserStore
	VerificationStore
}
