// services/errors.go - Typed domain errors shared by all services
package services

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyUsed   = errors.New("reward already used")
	ErrExpired       = errors.New("reward has expired")
	ErrGroupFull     = errors.New("group is full")
	ErrGroupInactive = errors.New("group is not active")
	ErrNotMember     = errors.New("not an active member of this group")
	ErrForbidden     = errors.New("admin role required")
	ErrSessionEnded  = errors.New("study session already ended")
)

// NotEligibleError reports a failed streak gate with enough context for the
// caller to render a "days remaining" message.
type NotEligibleError struct {
	CurrentStreak  int
	RequiredStreak int
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("requires a %d-day streak, current streak is %d",
		e.RequiredStreak, e.CurrentStreak)
}

func (e *NotEligibleError) DaysRemaining() int {
	if e.CurrentStreak >= e.RequiredStreak {
		return 0
	}
	return e.RequiredStreak - e.CurrentStreak
}

type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a storage failure. Storage errors are always
// surfaced to the caller, never swallowed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
