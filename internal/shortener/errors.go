package shortener

import "errors"

var (
	// ErrNotFound is returned by a Repository when no mapping matches the lookup.
	ErrNotFound = errors.New("url not found")

	// ErrEmptyURL is returned when Shorten is called with an empty long URL.
	ErrEmptyURL = errors.New("long url must not be empty")

	// ErrDuplicateCode is returned by Insert when the code is already taken.
	ErrDuplicateCode = errors.New("short code already exists")

	// ErrDuplicateURL is returned by Insert when the long URL already has a mapping.
	ErrDuplicateURL = errors.New("long url already shortened")

	// ErrAllocationExhausted is returned when no free code was found within the attempt budget.
	ErrAllocationExhausted = errors.New("short code allocation exhausted")

	// ErrStorageUnavailable wraps any I/O failure of the underlying store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
