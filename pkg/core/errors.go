package core

import (
	"errors"
	"fmt"
)

// ErrRejected is the class of every user-visible rejection. A rejected
// command leaves the state untouched.
var ErrRejected = errors.New("rejected")

func rejection(msg string) error {
	return fmt.Errorf("%w: %s", ErrRejected, msg)
}

// Rejections.
var (
	ErrMissingField      = rejection("required field is empty")
	ErrNotConnected      = rejection("no owner wallet is connected")
	ErrRecordExists      = rejection("record already exists")
	ErrNoRecord          = rejection("record does not exist")
	ErrCollaboratorCap   = rejection("maximum number of systems reached")
	ErrUnknownPermission = rejection("unknown permission kind")
	ErrWriteDenied       = rejection("no write permission")
	ErrEmptyPatch        = rejection("nothing to write")
	ErrImmutableEntity   = rejection("previous owners are immutable")
	ErrNoTarget          = rejection("no transfer target selected")
	ErrUnknownTarget     = rejection("transfer target is not a potential owner")
)

// ErrMissingDependency is returned by NewService when a port is not wired.
var ErrMissingDependency = errors.New("missing service dependency")

// IsRejection reports whether err is a user-visible rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejected)
}
