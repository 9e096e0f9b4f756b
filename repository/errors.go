package repository

import (
	"errors"
)

// Domain errors surfaced by repository mutations. Handlers translate them
// to HTTP status codes with errors.Is.
var (
	ErrNotFound          = errors.New("record not found")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyMember     = errors.New("already a member")
	ErrGroupFull         = errors.New("group is full")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrProfileExists     = errors.New("family profile already exists")
)
