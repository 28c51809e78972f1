package domain

import "errors"

var (
	// ErrLookupFailure covers every way an IP lookup can fail: transport,
	// status handling and payload decoding.
	ErrLookupFailure = errors.New("lookup failure")
	ErrInvalidConfig = errors.New("invalid config")
)
