package service

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors matched with errors.Is in the bot layer.
var (
	// ErrOperationInProgress means the same user already has the same
	// operation in flight. Reject, never queue.
	ErrOperationInProgress = errors.New("operation already in progress")

	// ErrSelfTarget means the sender targeted themselves where disallowed
	ErrSelfTarget = errors.New("cannot target yourself")

	// ErrTargetNotFound means the referenced user has no account
	ErrTargetNotFound = errors.New("target user not found")

	// ErrNotAdmin means the caller lacks the admin capability
	ErrNotAdmin = errors.New("admin capability required")

	// ErrNotOwner means the caller is not the bot owner
	ErrNotOwner = errors.New("owner capability required")
)

// ValidationError reports a bad or missing argument. No state is touched.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientFundsError reports a rejected operation with the current and
// required amounts. Source names the account side ("wallet" or "bank").
type InsufficientFundsError struct {
	Source string
	Have   int64
	Need   int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s funds: have %d, need %d", e.Source, e.Have, e.Need)
}

// CooldownActiveError reports a rate-limited action attempted too soon.
type CooldownActiveError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("%s is on cooldown for another %s", e.Action, e.Remaining.Round(time.Minute))
}

// RemainingMinutes returns the remaining wait, ceilinged to whole minutes.
func (e *CooldownActiveError) RemainingMinutes() int64 {
	mins := int64(e.Remaining / time.Minute)
	if e.Remaining%time.Minute > 0 {
		mins++
	}
	return mins
}
