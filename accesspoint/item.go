package accesspoint

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Field is a single name/value pair.
type Field struct {
	Name  string
	Value any
}

// Identity holds the identity fields of an item in declaration order.
type Identity []Field

// Criteria returns an equality filter selecting the identified item.
func (id Identity) Criteria() Criteria {
	c := make(Criteria, len(id))
	for _, f := range id {
		c[f.Name] = f.Value
	}
	return c
}

func (id Identity) String() string {
	parts := make([]string, len(id))
	for i, f := range id {
		parts[i] = f.Name + "=" + formatValue(f.Value)
	}
	return strings.Join(parts, ", ")
}

// Item is a record produced by an access point. Field changes stay in memory
// until Save is called.
type Item struct {
	mu     sync.RWMutex
	owner  AccessPoint
	fields map[string]any
}

// NewItem builds an item owned by ap. The fields map is copied.
func NewItem(ap AccessPoint, fields map[string]any) *Item {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Item{owner: ap, fields: copied}
}

// AccessPoint returns the access point that owns the item.
func (i *Item) AccessPoint() AccessPoint {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.owner
}

// Adopt makes ap the owner of the item. Decorators call it so that Save and
// Delete on the item go through them instead of the wrapped backend.
func (i *Item) Adopt(ap AccessPoint) *Item {
	i.mu.Lock()
	i.owner = ap
	i.mu.Unlock()
	return i
}

// Get returns the value of a field, or nil when unset.
func (i *Item) Get(name string) any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.fields[name]
}

// Lookup returns the value of a field and whether it is set.
func (i *Item) Lookup(name string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.fields[name]
	return v, ok
}

// Set changes a field in memory.
func (i *Item) Set(name string, value any) {
	i.mu.Lock()
	i.fields[name] = value
	i.mu.Unlock()
}

// Fields returns a copy of the item fields.
func (i *Item) Fields() map[string]any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make(map[string]any, len(i.fields))
	for k, v := range i.fields {
		out[k] = v
	}
	return out
}

// Identity returns the identity fields declared by the owning access point.
func (i *Item) Identity() Identity {
	owner := i.AccessPoint()
	if owner == nil {
		return nil
	}
	names := owner.IdentityProperties()
	id := make(Identity, 0, len(names))
	for _, name := range names {
		id = append(id, Field{Name: name, Value: i.Get(name)})
	}
	return id
}

// Save persists the item through its owning access point.
func (i *Item) Save(ctx context.Context) error {
	owner := i.AccessPoint()
	if owner == nil {
		return ErrDetachedItem
	}
	return owner.Save(ctx, i)
}

// Delete removes the item through its owning access point.
func (i *Item) Delete(ctx context.Context) error {
	owner := i.AccessPoint()
	if owner == nil {
		return ErrDetachedItem
	}
	return owner.Delete(ctx, i)
}

// String renders identity fields first, then the remaining fields sorted
// by name, e.g. Item(id=1, name="foo").
func (i *Item) String() string {
	var identity []string
	if owner := i.AccessPoint(); owner != nil {
		identity = owner.IdentityProperties()
	}

	fields := i.Fields()
	rest := make([]string, 0, len(fields))
	for name := range fields {
		if !slices.Contains(identity, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	parts := make([]string, 0, len(fields))
	for _, name := range append(slices.Clone(identity), rest...) {
		if v, ok := fields[name]; ok {
			parts = append(parts, name+"="+formatValue(v))
		}
	}
	return "Item(" + strings.Join(parts, ", ") + ")"
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
