package booking

import "errors"

var (
	ErrInvalidStartDate = errors.New("invalid start date")
	ErrUnknownSubType   = errors.New("unknown custom booking type")
	ErrMissingID        = errors.New("booking id is empty")
)
