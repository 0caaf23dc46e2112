package accesspoint

import "errors"

var (
	// ErrItemDoesNotExist is returned by Open when no item matches the criteria.
	ErrItemDoesNotExist = errors.New("accesspoint: item does not exist")
	// ErrMultipleMatchingItems is returned by Open when more than one item matches.
	ErrMultipleMatchingItems = errors.New("accesspoint: multiple matching items")
	// ErrBackendUnavailable signals that a backend cannot serve the request.
	// Backends wrap it so callers can test with errors.Is.
	ErrBackendUnavailable = errors.New("accesspoint: backend unavailable")
	// ErrInvalidItem is returned when fields do not conform to the schema.
	ErrInvalidItem = errors.New("accesspoint: invalid item")
)

// ErrDetachedItem is returned when an item without an owning access point is
// asked to persist itself.
var ErrDetachedItem = errors.New("accesspoint: item has no access point")
