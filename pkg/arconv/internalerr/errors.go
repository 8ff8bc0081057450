package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidConfig        = errors.New("invalid configuration")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrUnresolvedIngredient = errors.New("unresolved ingredient")
	ErrMalformedFraction    = errors.New("malformed fraction")
	ErrSpanOutOfRange       = errors.New("span out of range")
)
