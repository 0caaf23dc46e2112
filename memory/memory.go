// Package memory provides an access point that keeps items in process
// memory. It is the reference backend used by tests and by the CLI.
package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/goliatone/go-accesspoint-cache/accesspoint"
)

var _ accesspoint.AccessPoint = (*AccessPoint)(nil)

// AccessPoint stores rows in insertion order.
type AccessPoint struct {
	properties accesspoint.Schema
	identity   []string

	mu   sync.RWMutex
	rows []map[string]any
}

// New creates an empty access point. At least one identity property is
// required and every identity property must be declared in schema.
func New(schema accesspoint.Schema, identity ...string) (*AccessPoint, error) {
	if len(identity) == 0 {
		return nil, fmt.Errorf("memory: at least one identity property is required")
	}
	for _, name := range identity {
		if _, ok := schema[name]; !ok {
			return nil, fmt.Errorf("memory: identity property %q is not declared", name)
		}
	}
	return &AccessPoint{
		properties: schema,
		identity:   slices.Clone(identity),
	}, nil
}

func (m *AccessPoint) Properties() accesspoint.Schema {
	return m.properties
}

func (m *AccessPoint) IdentityProperties() []string {
	return slices.Clone(m.identity)
}

// Len returns the number of stored items.
func (m *AccessPoint) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Search snapshots the matching rows and yields a fresh item per row.
func (m *AccessPoint) Search(ctx context.Context, criteria accesspoint.Criteria) (iter.Seq[*accesspoint.Item], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	filter, err := m.properties.Coerce(criteria)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	matched := make([]map[string]any, 0, len(m.rows))
	for _, row := range m.rows {
		if accesspoint.Criteria(filter).Matches(row) {
			matched = append(matched, row)
		}
	}
	m.mu.RUnlock()

	return func(yield func(*accesspoint.Item) bool) {
		for _, row := range matched {
			if !yield(accesspoint.NewItem(m, row)) {
				return
			}
		}
	}, nil
}

func (m *AccessPoint) Open(ctx context.Context, criteria accesspoint.Criteria) (*accesspoint.Item, error) {
	return accesspoint.OpenOne(ctx, m, criteria)
}

// Create validates fields and returns an unsaved item.
func (m *AccessPoint) Create(fields map[string]any) (*accesspoint.Item, error) {
	if err := m.properties.Validate(fields); err != nil {
		return nil, err
	}
	coerced, err := m.properties.Coerce(fields)
	if err != nil {
		return nil, err
	}
	return accesspoint.NewItem(m, coerced), nil
}

// Save inserts the item, or replaces the stored row with the same identity.
func (m *AccessPoint) Save(ctx context.Context, item *accesspoint.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields := item.Fields()
	if err := m.properties.Validate(fields, m.identity...); err != nil {
		return err
	}
	row, err := m.properties.Coerce(fields)
	if err != nil {
		return err
	}
	key := m.identityOf(row)

	m.mu.Lock()
	defer m.mu.Unlock()
	if idx := m.indexOf(key); idx >= 0 {
		m.rows[idx] = row
		return nil
	}
	m.rows = append(m.rows, row)
	return nil
}

// Delete removes the row identified by item.
func (m *AccessPoint) Delete(ctx context.Context, item *accesspoint.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	row, err := m.properties.Coerce(item.Fields())
	if err != nil {
		return err
	}
	key := m.identityOf(row)

	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(key)
	if idx < 0 {
		return fmt.Errorf("%w: %v", accesspoint.ErrItemDoesNotExist, key)
	}
	m.rows = slices.Delete(m.rows, idx, idx+1)
	return nil
}

// DeleteMany removes every row matching criteria.
func (m *AccessPoint) DeleteMany(ctx context.Context, criteria accesspoint.Criteria) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	filter, err := m.properties.Coerce(criteria)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.rows = slices.DeleteFunc(m.rows, func(row map[string]any) bool {
		return accesspoint.Criteria(filter).Matches(row)
	})
	m.mu.Unlock()
	return nil
}

func (m *AccessPoint) identityOf(row map[string]any) accesspoint.Criteria {
	key := make(accesspoint.Criteria, len(m.identity))
	for _, name := range m.identity {
		key[name] = row[name]
	}
	return key
}

// indexOf must be called with m.mu held.
func (m *AccessPoint) indexOf(key accesspoint.Criteria) int {
	return slices.IndexFunc(m.rows, key.Matches)
}
