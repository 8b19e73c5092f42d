package identity

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the identity store.
// At most one user exists per email address.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// VerificationRecord maps an issued single-use token to the email it was
// issued for. The token acts as the primary key. Records are created once and
// consumed (read and deleted) at most once; there is no update operation.
type VerificationRecord struct {
	Identifier string    // the token
	Value      string    // the email address
	ExpiresAt  time.Time // absolute expiry; records past this time are invalid
}

// Expired reports whether the record's expiry is in the past.
func (r *VerificationRecord) Expired() bool {
	return time.Now().After(r.ExpiresAt)
}
