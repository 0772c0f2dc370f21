package service

import "errors"

// Error kinds of the working-copy core. All four are rejected before any
// mutation happens, so a failed call always leaves prior state intact.
var (
	// ErrNotFound is returned when a referenced document, working copy or
	// review does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor is not the owner or assigned
	// reviewer for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned for a duplicate working copy or a stale
	// revision token.
	ErrConflict = errors.New("conflict")
	// ErrInvalid is returned when the operation is not valid in the current
	// state, e.g. editing a submitted copy or re-deciding a terminal review.
	ErrInvalid = errors.New("invalid")
)
