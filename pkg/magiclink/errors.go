package magiclink

import "errors"

// Code identifies a redeem failure in a machine-readable way. Codes travel to
// the client as the error query parameter on the failure redirect.
type Code string

const (
	CodeInvalidToken      Code = "INVALID_TOKEN"
	CodeExpiredToken      Code = "EXPIRED_TOKEN"
	CodeUserNotCreated    Code = "USER_NOT_CREATED"
	CodeUserNotFound      Code = "USER_NOT_FOUND"
	CodeSessionNotCreated Code = "SESSION_NOT_CREATED"
)

// FlowError is a tagged redeem failure. Every way the redeem operation can
// fail maps to exactly one Code, so transports can translate failures without
// inspecting error chains.
type FlowError struct {
	Code Code
}

func (e *FlowError) Error() string {
	return "magiclink: " + string(e.Code)
}

// flowErr returns the canonical error value for a code.
func flowErr(code Code) *FlowError {
	return &FlowError{Code: code}
}

// CodeOf extracts the failure code from a redeem error. Errors that carry no
// code collapse to INVALID_TOKEN so the client never sees internal detail.
func CodeOf(err error) Code {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return CodeInvalidToken
}

var (
	// ErrInvalidEmail rejects an issue request whose email fails validation.
	ErrInvalidEmail = errors.New("magiclink: invalid email address")

	// ErrSignUpDisabled rejects an issue request for an unknown email when
	// sign-up is disabled.
	ErrSignUpDisabled = errors.New("magiclink: sign-up is disabled")

	// ErrDeliveryFailed reports that the link could not be handed to the
	// delivery channel. The verification record may remain until expiry.
	ErrDeliveryFailed = errors.New("magiclink: link delivery failed")
)
