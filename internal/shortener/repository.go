package shortener

import (
	"context"
	"fmt"
)

// Repository defines the storage operations the allocator relies on.
//
// Implementations must make Insert atomic with respect to code uniqueness and
// long URL uniqueness. Reads may run concurrently with writes.
type Repository interface {
	// FindByLongURL returns the mapping for longURL, or ErrNotFound.
	FindByLongURL(ctx context.Context, longURL string) (*Mapping, error)

	// Exists reports whether code is already allocated.
	Exists(ctx context.Context, code Code) (bool, error)

	// Insert stores m and fills in its ID and CreatedAt.
	// Returns ErrDuplicateCode or ErrDuplicateURL on a uniqueness conflict.
	Insert(ctx context.Context, m *Mapping) error

	// FindByCode returns the mapping for code, or ErrNotFound.
	FindByCode(ctx context.Context, code Code) (*Mapping, error)
}

// StorageError marks err as a backend I/O failure.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
