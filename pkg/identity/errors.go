package identity

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrVerificationNotFound = errors.New("verification record not found")
)
