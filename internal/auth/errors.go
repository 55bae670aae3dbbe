package auth

import "errors"

// Error kinds. Match with errors.Is; the user-safe text is on *Error.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not found")
	ErrInvalidToken   = errors.New("invalid token")
)

const (
	MsgInvalidCredentials  = "Invalid credentials"
	MsgInvalidSession      = "Invalid session token"
	MsgEmailInUse          = "Email already in use"
	MsgUserNotFound        = "User not found"
	MsgWrongPassword       = "Current password is incorrect"
	MsgInvalidResetToken   = "Invalid or expired reset token"
	MsgCredentialsRequired = "Email and password are required"
	MsgInvalidRole         = "Invalid role"

	MsgResetRequested = "If an account exists with this email, a reset link will be sent"
	MsgResetDone      = "Password reset successfully"
)

// Error carries a message that is safe to show to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}
