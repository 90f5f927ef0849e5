package auth

import (
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid account status transition", goerrors.CategoryValidation).
	WithTextCode("INVALID_STATUS_TRANSITION").
	WithCode(goerrors.CodeBadRequest)

// ErrTerminalStatus is returned when attempting to move away from a terminal
// status (soft deleted accounts never come back).
var ErrTerminalStatus = goerrors.New("account status is terminal", goerrors.CategoryConflict).
	WithTextCode("TERMINAL_ACCOUNT_STATUS").
	WithCode(goerrors.CodeConflict)

// statusTransitions is the allowed account lifecycle graph. Email
// verification drives PENDING_VERIFICATION to ACTIVE; the rest are
// administrative or self-service transitions.
var statusTransitions = map[AccountStatus][]AccountStatus{
	StatusPendingVerification: {StatusActive, StatusBanned, StatusSoftDeleted},
	StatusActive:              {StatusBanned, StatusDeactivated, StatusSoftDeleted},
	StatusBanned:              {StatusActive},
	StatusDeactivated:         {StatusActive, StatusSoftDeleted},
	StatusSoftDeleted:         {},
}

// AccountStateMachine validates and applies account status transitions.
// It mutates the in-memory user; callers persist through the repository,
// typically inside the same transaction as any related token work.
type AccountStateMachine struct {
	now func() time.Time
}

func NewAccountStateMachine() *AccountStateMachine {
	return &AccountStateMachine{now: time.Now}
}

// WithClock injects a custom clock (useful for tests).
func (sm *AccountStateMachine) WithClock(clock func() time.Time) *AccountStateMachine {
	if clock != nil {
		sm.now = clock
	}
	return sm
}

// CanTransition reports whether the status graph allows moving from one
// status to another.
func (sm *AccountStateMachine) CanTransition(from, to AccountStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition moves the user to the target status, stamping the security
// action timestamp. Terminal states reject every move; anything not in the
// graph is an invalid transition.
func (sm *AccountStateMachine) Transition(user *User, target AccountStatus) error {
	if user == nil {
		return goerrors.New("user is required", goerrors.CategoryBadInput)
	}

	user.EnsureStatus()
	from := user.Status

	if from == target {
		return nil
	}

	if len(statusTransitions[from]) == 0 {
		err := ErrTerminalStatus.Clone().
			WithMetadata(map[string]any{"status": from})
		err.Source = ErrTerminalStatus
		return err
	}

	if !sm.CanTransition(from, target) {
		err := ErrInvalidTransition.Clone().
			WithMetadata(map[string]any{"from": from, "to": target})
		err.Source = ErrInvalidTransition
		return err
	}

	now := sm.now()
	user.Status = target
	user.LastSecurityActionAt = &now

	return nil
}

// CurrentStatus normalizes and returns the user's status.
func (sm *AccountStateMachine) CurrentStatus(user *User) AccountStatus {
	if user == nil {
		return ""
	}
	user.EnsureStatus()
	return user.Status
}
