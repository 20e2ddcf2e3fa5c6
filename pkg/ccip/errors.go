package ccip

import "github.com/rotisserie/eris"

// Error categories shared by every codec. Failure sites wrap these with eris.Wrapf so callers can
// match the category with errors.Is and still get the full trace from eris.ToString.
var (
	// ErrFormat is returned when a fixed-size field has the wrong length or width.
	ErrFormat = eris.New("ccip: invalid field format")

	// ErrUnsupportedExtraArgsTag is returned when the extra args carry an unknown version tag.
	ErrUnsupportedExtraArgsTag = eris.New("ccip: unsupported extra args tag")

	// ErrMalformedMessage is returned for truncated input, trailing data or a ref/count mismatch.
	ErrMalformedMessage = eris.New("ccip: malformed message")

	// ErrUnauthorized is returned when a receive is attempted by anyone other than the authorized caller.
	ErrUnauthorized = eris.New("ccip: unauthorized caller")

	// ErrCorruptStorage is returned when persisted receiver storage does not decode cleanly.
	ErrCorruptStorage = eris.New("ccip: corrupt receiver storage")
)
