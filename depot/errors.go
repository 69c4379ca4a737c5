/*
errors.go - Centralized error types for the depot engine

PURPOSE:
  All domain error conditions in one place. These are expected business
  states, not infrastructure failures: callers act on them (complete the
  prior step, pick another date), they are never retried automatically.

ERROR CATEGORIES:
  1. Registry errors  - Day lookup and creation preconditions
  2. Lock errors      - Writes rejected after finalize / day close
  3. Gating errors    - Step attempted before its dependency step

USAGE:
  Sentinels compose with errors.Is; structured variants carry the day
  context (id, date) the caller needs to report the condition:

    if errors.Is(err, depot.ErrStepLocked) {
        // permanent for this day, surface to the user
    }

STORAGE FAILURES:
  Transaction aborts and connectivity loss are NOT represented here.
  Store implementations wrap them with fmt.Errorf("...: %w", err) and
  they classify as none of the helpers below.

SEE ALSO:
  - ledger.go:    Returns lock/gating errors on mutation
  - reconcile.go: Returns AlreadyFinalized/PrerequisiteNotMet on finalize
  - api/handlers.go: Maps these to HTTP status codes
*/
package depot

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoActiveDay is returned when no OPEN stock day exists. Fatal to
	// any per-day operation; the caller must open a day first.
	ErrNoActiveDay = errors.New("no active stock day")

	// ErrDayNotFound is returned when a day id or date matches nothing.
	ErrDayNotFound = errors.New("stock day not found")

	// ErrDuplicateDate is returned when opening a day for a date that
	// already exists.
	ErrDuplicateDate = errors.New("stock day already exists for date")

	// ErrAnotherDayOpen is returned when opening a day while a previous
	// day is still OPEN. The registry never allows two OPEN days.
	ErrAnotherDayOpen = errors.New("another stock day is still open")

	// ErrDayClosed is returned on any write to a CLOSED day.
	ErrDayClosed = errors.New("stock day is closed")

	// ErrStepLocked is returned on any mutation after finalize.
	// Permanent for that day.
	ErrStepLocked = errors.New("day is finalized; entries are locked")

	// ErrPrerequisiteNotMet is returned when a step is attempted before
	// its dependency step is complete.
	ErrPrerequisiteNotMet = errors.New("prerequisite step not complete")

	// ErrAlreadyFinalized is returned on a duplicate finalize attempt.
	// Idempotent rejection; the first finalize's figures stand.
	ErrAlreadyFinalized = errors.New("day is already finalized")

	// ErrUnknownCylinderType is returned when a write references a
	// cylinder type the day has no summary row for.
	ErrUnknownCylinderType = errors.New("unknown cylinder type")
)

// =============================================================================
// STRUCTURED ERRORS - Carry day context
// =============================================================================

// StepLockedError reports a mutation attempted after finalize.
type StepLockedError struct {
	DayID int64
	Date  Date
}

func (e *StepLockedError) Error() string {
	return fmt.Sprintf("day %d (%s) is finalized; entries are locked", e.DayID, e.Date)
}

func (e *StepLockedError) Unwrap() error {
	return ErrStepLocked
}

// PrerequisiteError reports which step blocked the attempted operation.
type PrerequisiteError struct {
	DayID int64
	Step  Step // the incomplete dependency step
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("day %d: step %d (%s) must be completed first", e.DayID, int(e.Step), e.Step)
}

func (e *PrerequisiteError) Unwrap() error {
	return ErrPrerequisiteNotMet
}

// DuplicateDateError reports the conflicting date on day creation.
type DuplicateDateError struct {
	Date Date
}

func (e *DuplicateDateError) Error() string {
	return fmt.Sprintf("stock day already exists for %s", e.Date)
}

func (e *DuplicateDateError) Unwrap() error {
	return ErrDuplicateDate
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing day.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoActiveDay) || errors.Is(err, ErrDayNotFound)
}

// IsConflict returns true for conditions where current state rejects the
// write outright (duplicate day, lock already asserted).
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateDate) ||
		errors.Is(err, ErrAnotherDayOpen) ||
		errors.Is(err, ErrAlreadyFinalized) ||
		errors.Is(err, ErrStepLocked) ||
		errors.Is(err, ErrDayClosed)
}

// IsClientError returns true if the condition is correctable by the
// caller (as opposed to an infrastructure failure).
func IsClientError(err error) bool {
	return IsNotFound(err) || IsConflict(err) ||
		errors.Is(err, ErrPrerequisiteNotMet) ||
		errors.Is(err, ErrUnknownCylinderType)
}
