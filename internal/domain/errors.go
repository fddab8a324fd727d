package domain

import "errors"

var (
	// ErrDecode marks a data line whose bytes or JSON encoding cannot be decoded.
	ErrDecode = errors.New("decode error")

	// ErrMalformedSnapshot marks a decodable payload that is not an array of
	// complete point records.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// ErrFeedStalled marks a feed that produced no line within the read timeout.
var ErrFeedStalled = errors.New("feed stalled")
