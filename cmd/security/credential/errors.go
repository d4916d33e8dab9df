package credential

import "errors"

// Public, stable errors for callers.
var (
	ErrInvalidDigest = errors.New("invalid credential digest")
	ErrUnknownCodec  = errors.New("unknown credential codec")
)
