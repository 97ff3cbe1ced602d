package opnotify

import "errors"

var (
	ErrNotFound           = errors.New("notification not found")
	ErrForbidden          = errors.New("notification cannot be deleted before it is done")
	ErrNoAdmins           = errors.New("no target admins")
	ErrPersistenceFailure = errors.New("notification persistence failure")
	ErrValidation         = errors.New("invalid notification request")
	ErrAlreadyForwarded   = errors.New("notification already forwarded")
)
