/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these with additional context.

ERROR CATEGORIES:
  1. Ledger errors - Transaction persistence failures, double settlement
  2. Scheduling errors - Window validation and overlap rejections
  3. Lookup errors - Missing contracts, assets, schedules

USAGE:
  if errors.Is(err, generic.ErrWindowOverlap) {
      // asset is busy, pick another option
  }

SEE ALSO:
  - ledger.go: Uses the ledger errors
  - schedule/engine.go: Returns the scheduling errors
  - api/handlers.go: Maps categories to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateIdempotencyKey is returned when a transaction with the same
	// idempotency key already exists. This is expected behavior for retries.
	ErrDuplicateIdempotencyKey = errors.New("duplicate idempotency key")

	// ErrTransactionFailed is returned when a transaction cannot be persisted.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrAlreadySettled is returned when a flight occurrence was already paid out.
	ErrAlreadySettled = errors.New("flight already settled")

	// ErrWindowOverlap is returned when a candidate window collides with an
	// existing schedule on the same asset.
	ErrWindowOverlap = errors.New("window overlaps an existing schedule")

	// ErrInvalidWindow is returned for windows that cannot live on the weekly
	// circle (non-positive length, a week or longer, out-of-range endpoints).
	ErrInvalidWindow = errors.New("invalid window")

	ErrContractNotFound        = errors.New("contract not found")
	ErrContractAlreadyAccepted = errors.New("contract already accepted")
	ErrContractExpired         = errors.New("contract expired")
	ErrAssetNotFound           = errors.New("asset not found")
	ErrAssetExists             = errors.New("asset already in hangar")
	ErrScheduleNotFound        = errors.New("schedule not found")

	// ErrHubMismatch is returned when an asset already flies out of a
	// different hub than the contract requires.
	ErrHubMismatch = errors.New("asset is based at a different hub")

	// ErrStaleEvent marks a queued event whose schedule or contract is gone.
	ErrStaleEvent = errors.New("stale schedule event")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverlapError names the schedule a candidate window collided with.
type OverlapError struct {
	AssetID     string
	Candidate   Window
	Conflicting Window
	ContractID  string
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("asset %s: window %s overlaps %s (contract %s)",
		e.AssetID, e.Candidate, e.Conflicting, e.ContractID)
}

func (e *OverlapError) Unwrap() error {
	return ErrWindowOverlap
}

// HubMismatchError reports the hub an asset is locked to.
type HubMismatchError struct {
	AssetID  string
	AssetHub string
	Required string
}

func (e *HubMismatchError) Error() string {
	return fmt.Sprintf("asset %s is based at %s, contract departs from %s",
		e.AssetID, e.AssetHub, e.Required)
}

func (e *HubMismatchError) Unwrap() error {
	return ErrHubMismatch
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrContractExpired)
}

// IsConflict returns true if the request clashes with current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrWindowOverlap) ||
		errors.Is(err, ErrHubMismatch) ||
		errors.Is(err, ErrContractAlreadyAccepted) ||
		errors.Is(err, ErrAssetExists) ||
		errors.Is(err, ErrDuplicateIdempotencyKey) ||
		errors.Is(err, ErrAlreadySettled)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrAssetNotFound) ||
		errors.Is(err, ErrScheduleNotFound)
}
