package matching

import "errors"

var (
	// ErrMalformedRecord marks a candidate or posting without an identifier.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidCapacity marks a capacity that is present but not a positive integer.
	ErrInvalidCapacity = errors.New("invalid capacity")
	// ErrUnknownCategory marks a category value outside the known set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrConfiguration marks a scoring configuration rejected before scoring starts.
	ErrConfiguration = errors.New("invalid scoring configuration")
	// ErrUnknownProfile is returned for a profile name that is not registered.
	ErrUnknownProfile = errors.New("unknown scoring profile")
)
