package service

import (
	"errors"
)

// Sentinel errors returned by services. Handlers match on these with
// errors.Is and render the user-facing message themselves.
var (
	// ErrAlreadyPending is returned when a user requests a link code while
	// one is still outstanding for them.
	ErrAlreadyPending = errors.New("a link code is already pending")

	// ErrInvalidCode is returned when a claimed code is unknown, already
	// consumed or expired.
	ErrInvalidCode = errors.New("invalid or expired link code")

	// ErrAmbiguousMergeSet is returned when a link claim does not resolve to
	// exactly two distinct users. It signals a data-integrity precondition
	// violation and is never retried automatically.
	ErrAmbiguousMergeSet = errors.New("link claim did not resolve to exactly two distinct users")

	// ErrUserNotFound is returned when an operation targets a user id that
	// does not resolve.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotRegistered is returned when a platform account has no profile yet.
	ErrNotRegistered = errors.New("account is not registered")

	// ErrAlreadyRegistered is returned when a platform account already has a
	// profile.
	ErrAlreadyRegistered = errors.New("account is already registered")

	// ErrDailyAlreadyClaimed is returned when the daily allowance was already
	// claimed on the current UTC day.
	ErrDailyAlreadyClaimed = errors.New("daily allowance already claimed today")

	// ErrInsufficientBalance is returned when a transfer exceeds the sender's
	// balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBadgeNotFound is returned when a badge name does not resolve.
	ErrBadgeNotFound = errors.New("badge not found")

	// ErrBadgeExists is returned when creating a badge whose name is taken.
	ErrBadgeExists = errors.New("badge already exists")

	// ErrTransactionFailed wraps store-level transaction aborts. Durable
	// state is unchanged when it is returned.
	ErrTransactionFailed = errors.New("transaction failed")
)
