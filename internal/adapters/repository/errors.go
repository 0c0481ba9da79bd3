package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrMalformedRecord = errors.New("malformed race record")
	ErrDiverged        = errors.New("stored history is not a prefix of the table")
	ErrUnknownDriver   = errors.New("unknown store driver")
)
