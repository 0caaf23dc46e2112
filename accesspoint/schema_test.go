package accesspoint_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-accesspoint-cache/accesspoint"
)

func TestParsePropertyType(t *testing.T) {
	tests := []struct {
		name    string
		want    accesspoint.PropertyType
		wantErr bool
	}{
		{name: "int", want: accesspoint.TypeInt},
		{name: "Integer", want: accesspoint.TypeInt},
		{name: " string ", want: accesspoint.TypeString},
		{name: "str", want: accesspoint.TypeString},
		{name: "float", want: accesspoint.TypeFloat},
		{name: "bool", want: accesspoint.TypeBool},
		{name: "time", want: accesspoint.TypeTime},
		{name: "any", want: accesspoint.TypeAny},
		{name: "decimal", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accesspoint.ParsePropertyType(tt.name)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePropertyType(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParsePropertyType(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestProperty_Coerce(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		typ     accesspoint.PropertyType
		value   any
		want    any
		wantErr bool
	}{
		{name: "int from int", typ: accesspoint.TypeInt, value: 3, want: 3},
		{name: "int from int64", typ: accesspoint.TypeInt, value: int64(3), want: 3},
		{name: "int from integral float", typ: accesspoint.TypeInt, value: 3.0, want: 3},
		{name: "int from fraction", typ: accesspoint.TypeInt, value: 3.5, wantErr: true},
		{name: "int from string", typ: accesspoint.TypeInt, value: "3", wantErr: true},
		{name: "float from int", typ: accesspoint.TypeFloat, value: 2, want: 2.0},
		{name: "string", typ: accesspoint.TypeString, value: "foo", want: "foo"},
		{name: "string from int", typ: accesspoint.TypeString, value: 1, wantErr: true},
		{name: "bool", typ: accesspoint.TypeBool, value: true, want: true},
		{name: "time", typ: accesspoint.TypeTime, value: now, want: now},
		{name: "any", typ: accesspoint.TypeAny, value: []int{1}, want: []int{1}},
		{name: "nil", typ: accesspoint.TypeInt, value: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accesspoint.NewProperty(tt.typ).Coerce(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Coerce(%v) error = %v", tt.value, err)
			}
			if s, ok := tt.want.([]int); ok {
				if g, ok := got.([]int); !ok || len(g) != len(s) {
					t.Errorf("Coerce(%v) = %v", tt.value, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Coerce(%v) = %v (%T), want %v (%T)", tt.value, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	schema := accesspoint.Schema{
		"id":   accesspoint.NewProperty(accesspoint.TypeInt),
		"name": accesspoint.NewProperty(accesspoint.TypeString),
	}

	tests := []struct {
		name     string
		fields   map[string]any
		required []string
		wantErr  bool
	}{
		{name: "complete", fields: map[string]any{"id": 1, "name": "foo"}},
		{name: "partial", fields: map[string]any{"name": "foo"}},
		{name: "nil fields", fields: nil},
		{name: "missing required", fields: map[string]any{"name": "foo"}, required: []string{"id"}, wantErr: true},
		{name: "nil required", fields: map[string]any{"id": nil}, required: []string{"id"}, wantErr: true},
		{name: "wrong type", fields: map[string]any{"id": "one"}, wantErr: true},
		{name: "unknown field", fields: map[string]any{"id": 1, "colour": "red"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate(tt.fields, tt.required...)
			if tt.wantErr {
				if !errors.Is(err, accesspoint.ErrInvalidItem) {
					t.Errorf("expected ErrInvalidItem, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestSchema_Coerce(t *testing.T) {
	schema := accesspoint.Schema{
		"id":    accesspoint.NewProperty(accesspoint.TypeInt),
		"score": accesspoint.NewProperty(accesspoint.TypeFloat),
	}

	got, err := schema.Coerce(map[string]any{"id": int32(7), "score": 1})
	if err != nil {
		t.Fatalf("Coerce() error = %v", err)
	}
	if got["id"] != 7 || got["score"] != 1.0 {
		t.Errorf("Coerce() = %v", got)
	}

	if _, err := schema.Coerce(map[string]any{"other": 1}); !errors.Is(err, accesspoint.ErrInvalidItem) {
		t.Errorf("expected ErrInvalidItem for unknown property, got %v", err)
	}
	if names := schema.Names(); len(names) != 2 || names[0] != "id" || names[1] != "score" {
		t.Errorf("Names() = %v", names)
	}
}
