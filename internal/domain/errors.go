// item360-backend/internal/domain/errors.go
package domain

import "errors"

var (
	// ErrNotFound marks lookups for unknown items, purchase orders or suppliers.
	ErrNotFound = errors.New("item360: not found")

	// ErrInvalidArgument marks structurally invalid input such as a
	// non-positive consumption window or an empty scope.
	ErrInvalidArgument = errors.New("item360: invalid argument")

	// ErrUpstreamUnavailable marks failures reaching the transactional store.
	ErrUpstreamUnavailable = errors.New("item360: upstream unavailable")
)
