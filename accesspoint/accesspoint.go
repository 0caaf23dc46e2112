// Package accesspoint defines the contract shared by every backend that
// stores items: search, open, save, delete and delete-many over a declared
// property schema with a declared identity.
//
// Backends implement AccessPoint directly. Decorators such as the cache in
// package accesscache hold an AccessPoint and implement it again, so callers
// never need to know whether a backend is wrapped.
package accesspoint

import (
	"context"
	"fmt"
	"iter"
	"slices"
)

// AccessPoint is the contract every backend fulfils.
type AccessPoint interface {
	// Properties returns the declared schema.
	Properties() Schema
	// IdentityProperties returns the identity field names in declaration order.
	IdentityProperties() []string
	// Search returns the items matching criteria. The sequence may be lazy.
	Search(ctx context.Context, criteria Criteria) (iter.Seq[*Item], error)
	// Open returns the single item matching criteria, see OpenOne.
	Open(ctx context.Context, criteria Criteria) (*Item, error)
	// Save persists a new or modified item.
	Save(ctx context.Context, item *Item) error
	// Delete removes an item.
	Delete(ctx context.Context, item *Item) error
	// DeleteMany removes every item matching criteria.
	DeleteMany(ctx context.Context, criteria Criteria) error
	// Create builds an unsaved item owned by the access point.
	Create(fields map[string]any) (*Item, error)
}

// Searcher is the subset of AccessPoint needed by OpenOne.
type Searcher interface {
	Search(ctx context.Context, criteria Criteria) (iter.Seq[*Item], error)
}

// OpenOne runs a search and enforces that exactly one item matches.
func OpenOne(ctx context.Context, s Searcher, criteria Criteria) (*Item, error) {
	seq, err := s.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}

	var found *Item
	for item := range seq {
		if found != nil {
			return nil, fmt.Errorf("%w: %v", ErrMultipleMatchingItems, criteria)
		}
		found = item
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %v", ErrItemDoesNotExist, criteria)
	}
	return found, nil
}

// SearchAll runs a search and materializes the result.
func SearchAll(ctx context.Context, s Searcher, criteria Criteria) ([]*Item, error) {
	seq, err := s.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return slices.Collect(seq), nil
}

// Values returns a sequence over a materialized result.
func Values(items []*Item) iter.Seq[*Item] {
	return slices.Values(items)
}
