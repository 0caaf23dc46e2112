package accesspoint

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PropertyType is the declared type of an item field.
type PropertyType int

const (
	TypeAny PropertyType = iota
	TypeInt
	TypeFloat
	TypeString
	TypeBool
	TypeTime
)

var propertyTypeNames = map[PropertyType]string{
	TypeAny:    "any",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeString: "string",
	TypeBool:   "bool",
	TypeTime:   "time",
}

func (t PropertyType) String() string {
	if name, ok := propertyTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("PropertyType(%d)", int(t))
}

// ParsePropertyType resolves a type name such as "int" or "string".
func ParsePropertyType(name string) (PropertyType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "str":
		return TypeString, nil
	case "integer":
		return TypeInt, nil
	}
	for t, n := range propertyTypeNames {
		if n == name {
			return t, nil
		}
	}
	return TypeAny, fmt.Errorf("accesspoint: unknown property type %q", name)
}

// Property describes a single field of an access point schema.
type Property struct {
	Type PropertyType
}

// NewProperty is shorthand for Property{Type: t}.
func NewProperty(t PropertyType) Property {
	return Property{Type: t}
}

// Coerce converts value to the declared type. Numeric kinds are converted
// between each other; everything else must already have the right type.
// A nil value is returned unchanged.
func (p Property) Coerce(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch p.Type {
	case TypeAny:
		return value, nil
	case TypeInt:
		if f, ok := asFloat(value); ok {
			if f != math.Trunc(f) {
				return nil, fmt.Errorf("%v is not an integer", value)
			}
			if i, ok := asInt(value); ok {
				return i, nil
			}
			return int(f), nil
		}
	case TypeFloat:
		if f, ok := asFloat(value); ok {
			return f, nil
		}
	case TypeString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case TypeBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case TypeTime:
		if ts, ok := value.(time.Time); ok {
			return ts, nil
		}
	}
	return nil, fmt.Errorf("%v (%T) is not of type %s", value, value, p.Type)
}

func (p Property) check(value any) error {
	_, err := p.Coerce(value)
	return err
}

func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case uint:
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return int(v), true
	case uint64:
		return int(v), true
	}
	return 0, false
}

func asFloat(value any) (float64, bool) {
	if i, ok := asInt(value); ok {
		return float64(i), true
	}
	switch v := value.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// Schema maps field names to their declared property.
type Schema map[string]Property

// Names returns the sorted field names of the schema.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks fields against the schema: unknown fields are rejected,
// declared fields must be coercible and every name in required must be
// present and non-nil.
func (s Schema) Validate(fields map[string]any, required ...string) error {
	keys := make([]*validation.KeyRules, 0, len(s))
	for _, name := range s.Names() {
		prop := s[name]
		if slices.Contains(required, name) {
			keys = append(keys, validation.Key(name, validation.NotNil, validation.By(prop.check)))
			continue
		}
		keys = append(keys, validation.Key(name, validation.By(prop.check)).Optional())
	}

	if fields == nil {
		fields = map[string]any{}
	}
	if err := validation.Validate(fields, validation.Map(keys...)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	return nil
}

// Coerce returns a copy of fields with every declared field converted to
// its property type. Unknown fields are an error.
func (s Schema) Coerce(fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for name, value := range fields {
		prop, ok := s[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown property %q", ErrInvalidItem, name)
		}
		v, err := prop.Coerce(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidItem, name, err)
		}
		out[name] = v
	}
	return out, nil
}
