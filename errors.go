package pagekit

import "errors"

var (
	// ErrInvalidConfig is returned when a paginator, encoder or storage is
	// constructed with unusable settings.
	ErrInvalidConfig = errors.New("invalid pagination config")

	// ErrInvalidArgument is returned by value object constructors that receive
	// values outside of their invariants (non-positive page size, end < start...).
	ErrInvalidArgument = errors.New("invalid pagination argument")

	// ErrMalformedRequest is returned when query parameters or headers of an
	// incoming request cannot be parsed.
	ErrMalformedRequest = errors.New("malformed pagination request")

	// ErrMalformedCursor is returned when a cursor token is structurally broken.
	ErrMalformedCursor = errors.New("malformed cursor")

	// ErrTamperedCursor is returned when a cursor token fails an integrity check.
	// Callers should treat it the same way as ErrMalformedCursor.
	ErrTamperedCursor = errors.New("cursor integrity check failed")

	// ErrRequestMismatch is returned when a request of one strategy is handed to
	// a component of another strategy.
	ErrRequestMismatch = errors.New("pagination request mismatch")

	// ErrMissingOrder is returned when cursor pagination is attempted on a query
	// without ORDER BY.
	ErrMissingOrder = errors.New("cursor pagination requires an ordering")

	// ErrMissingGetter is returned when a position cannot be extracted from a
	// row because no getter is registered for an ordering column.
	ErrMissingGetter = errors.New("missing position getter")
)
