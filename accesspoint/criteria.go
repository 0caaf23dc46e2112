package accesspoint

import (
	"fmt"
	"reflect"
	"sort"
)

// Criteria is an equality filter over item fields. A nil or empty Criteria
// matches every item.
type Criteria map[string]any

// Condition is one normalized field/value pair of a Criteria.
type Condition struct {
	Field string
	Type  string
	Value any
}

// Normalize returns the conditions sorted by field name. The dynamic type of
// each value is kept so that 1 and "1" normalize differently. Nil and empty
// criteria both normalize to an empty, non-nil slice.
func (c Criteria) Normalize() []Condition {
	conditions := make([]Condition, 0, len(c))
	for field, value := range c {
		conditions = append(conditions, Condition{
			Field: field,
			Type:  fmt.Sprintf("%T", value),
			Value: value,
		})
	}
	sort.Slice(conditions, func(i, j int) bool {
		return conditions[i].Field < conditions[j].Field
	})
	return conditions
}

// Matches reports whether every condition holds for fields.
func (c Criteria) Matches(fields map[string]any) bool {
	for field, want := range c {
		got, ok := fields[field]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// Clone returns a shallow copy of the criteria.
func (c Criteria) Clone() Criteria {
	if c == nil {
		return Criteria{}
	}
	out := make(Criteria, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
