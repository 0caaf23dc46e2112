// Package config loads site definitions from YAML: the cache settings and
// the collections to register, with their schema and seed items.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-accesspoint-cache/accesspoint"
	"github.com/goliatone/go-accesspoint-cache/cache"
)

var collectionName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Site is the top level of a site definition file.
type Site struct {
	Cache       cache.Config `yaml:"cache"`
	Collections []Collection `yaml:"collections"`
}

// Collection declares one access point.
type Collection struct {
	Name       string            `yaml:"name"`
	Properties map[string]string `yaml:"properties"`
	Identity   []string          `yaml:"identity"`
	// Cached defaults to true.
	Cached *bool            `yaml:"cached,omitempty"`
	Items  []map[string]any `yaml:"items,omitempty"`
}

// Load reads and validates the site definition at path.
func Load(path string) (*Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open site file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a site definition. Cache settings missing from the document
// keep their defaults.
func Parse(r io.Reader) (*Site, error) {
	site := &Site{Cache: cache.DefaultConfig()}
	if err := yaml.NewDecoder(r).Decode(site); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("site file is empty")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := site.Validate(); err != nil {
		return nil, err
	}
	return site, nil
}

func (s Site) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Cache),
		validation.Field(&s.Collections, validation.Required, validation.By(uniqueNames)),
	)
}

func uniqueNames(value any) error {
	collections, _ := value.([]Collection)
	seen := make(map[string]bool, len(collections))
	for _, c := range collections {
		if seen[c.Name] {
			return fmt.Errorf("collection %q declared twice", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

func (c Collection) Validate() error {
	names := make([]any, 0, len(c.Properties))
	for name := range c.Properties {
		names = append(names, name)
	}

	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Match(collectionName)),
		validation.Field(&c.Properties, validation.Required, validation.By(validTypes)),
		validation.Field(&c.Identity, validation.Required, validation.Each(validation.In(names...))),
	)
}

func validTypes(value any) error {
	properties, _ := value.(map[string]string)
	for name, typ := range properties {
		if _, err := accesspoint.ParsePropertyType(typ); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
	}
	return nil
}

// IsCached reports whether the collection sits behind the cache.
func (c Collection) IsCached() bool {
	return c.Cached == nil || *c.Cached
}

// Schema builds the access point schema from the declared property types.
func (c Collection) Schema() (accesspoint.Schema, error) {
	schema := make(accesspoint.Schema, len(c.Properties))
	for name, typ := range c.Properties {
		t, err := accesspoint.ParsePropertyType(typ)
		if err != nil {
			return nil, fmt.Errorf("collection %s: property %q: %w", c.Name, name, err)
		}
		schema[name] = accesspoint.NewProperty(t)
	}
	return schema, nil
}
