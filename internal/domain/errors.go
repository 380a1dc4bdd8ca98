package domain

import "errors"

// Sentinel errors shared by services, repositories and the HTTP layer.
// The HTTP layer maps each one to a fixed status code; everything that
// does not match falls through as a 500 with an opaque message.
var (
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")

	// Unique-constraint translations.
	ErrUsernameTaken        = errors.New("username already taken")
	ErrEmailTaken           = errors.New("email already taken")
	ErrAlreadyMember        = errors.New("user is already a member of this table")
	ErrPendingRequestExists = errors.New("a pending request already exists for this table")
	ErrIntentExists         = errors.New("an intent already exists for this session")
	ErrForeignKey           = errors.New("referenced record does not exist")
	ErrUnknownConstraint    = errors.New("unknown constraint violation")

	// Business rules.
	ErrNotJoinable         = errors.New("caller is the game master or already a member")
	ErrRequestNotPending   = errors.New("request has already been processed")
	ErrGMCannotLeave       = errors.New("the game master cannot leave their own table")
	ErrSessionNotScheduled = errors.New("session is no longer scheduled")
	ErrNotAttending        = errors.New("check-in requires an attending intent")

	// Refresh token lifecycle.
	ErrRefreshNotFound = errors.New("refresh token not found")
	ErrRefreshUsed     = errors.New("refresh token already used or revoked")
	ErrRefreshExpired  = errors.New("refresh token expired")
)
