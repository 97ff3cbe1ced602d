package reminder

import "errors"

var (
	ErrNotFound           = errors.New("reminder not found")
	ErrAlreadyExists      = errors.New("reminder already exists for booking")
	ErrPersistenceFailure = errors.New("reminder persistence failure")
	ErrAdapterFailure     = errors.New("booking source failure")
	ErrValidation         = errors.New("invalid reminder request")
)
