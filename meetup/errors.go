package meetup

import (
	"errors"
)

// Domain errors surfaced to the HTTP layer. Handlers translate them to
// status codes with errors.Is.
var (
	// ErrProfileRequired means the caller has no family profile yet.
	ErrProfileRequired = errors.New("family profile required")

	// ErrNotFound means the referenced meetup request does not exist.
	ErrNotFound = errors.New("meetup request not found")

	// ErrForbidden means the caller is not the request's target family.
	ErrForbidden = errors.New("only the target family may respond")

	// ErrInvalidStatus means the response status is outside {accepted, declined}.
	ErrInvalidStatus = errors.New("status must be accepted or declined")

	// ErrSelfRequest means requester and target are the same family.
	ErrSelfRequest = errors.New("cannot send a meetup request to your own family")

	// ErrAlreadyResponded means the request already left the pending state.
	ErrAlreadyResponded = errors.New("meetup request already responded to")
)
