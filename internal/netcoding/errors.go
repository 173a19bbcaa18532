package netcoding

import "errors"

// Sentinel errors returned by the coding engine. All are locally
// recoverable: the caller drops or defers the packet and continues.
var (
	// ErrBufferFull is returned by Buffer.Push when the buffer already
	// holds as many packets as its capacity allows.
	ErrBufferFull = errors.New("netcoding: buffer full")

	// ErrDuplicateHeader is returned by Buffer.Push when an
	// equivalent header is already held.
	ErrDuplicateHeader = errors.New("netcoding: duplicate header")

	// ErrSeenSetExhausted is returned by the seen-set when its
	// capacity bound has been reached and no further growth is
	// permitted within the current decode call.
	ErrSeenSetExhausted = errors.New("netcoding: seen-set exhausted")
)
