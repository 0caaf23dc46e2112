// Package site routes operations to access points registered under
// collection names.
package site

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/goliatone/go-accesspoint-cache/accesspoint"
)

var (
	// ErrUnknownAccessPoint is returned for a collection name that was never registered.
	ErrUnknownAccessPoint = errors.New("site: unknown access point")
	// ErrDuplicateAccessPoint is returned when a name is registered twice.
	ErrDuplicateAccessPoint = errors.New("site: access point already registered")
)

// Site is a registry of named access points. It is safe for concurrent use.
type Site struct {
	mu           sync.RWMutex
	accessPoints map[string]accesspoint.AccessPoint
}

// New returns an empty site.
func New() *Site {
	return &Site{accessPoints: make(map[string]accesspoint.AccessPoint)}
}

// Register makes ap reachable under name.
func (s *Site) Register(name string, ap accesspoint.AccessPoint) error {
	if name == "" || ap == nil {
		return fmt.Errorf("site: name and access point are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accessPoints[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateAccessPoint, name)
	}
	s.accessPoints[name] = ap
	return nil
}

// AccessPoint returns the access point registered under name.
func (s *Site) AccessPoint(name string) (accesspoint.AccessPoint, error) {
	s.mu.RLock()
	ap, ok := s.accessPoints[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccessPoint, name)
	}
	return ap, nil
}

// Names returns the registered names, sorted.
func (s *Site) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.accessPoints))
	for name := range s.accessPoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds an unsaved item in the named collection.
func (s *Site) Create(name string, fields map[string]any) (*accesspoint.Item, error) {
	ap, err := s.AccessPoint(name)
	if err != nil {
		return nil, err
	}
	return ap.Create(fields)
}

// Search runs a search on the named collection.
func (s *Site) Search(ctx context.Context, name string, criteria accesspoint.Criteria) (iter.Seq[*accesspoint.Item], error) {
	ap, err := s.AccessPoint(name)
	if err != nil {
		return nil, err
	}
	return ap.Search(ctx, criteria)
}

// SearchAll runs a search on the named collection and materializes it.
func (s *Site) SearchAll(ctx context.Context, name string, criteria accesspoint.Criteria) ([]*accesspoint.Item, error) {
	ap, err := s.AccessPoint(name)
	if err != nil {
		return nil, err
	}
	return accesspoint.SearchAll(ctx, ap, criteria)
}

func (s *Site) Open(ctx context.Context, name string, criteria accesspoint.Criteria) (*accesspoint.Item, error) {
	ap, err := s.AccessPoint(name)
	if err != nil {
		return nil, err
	}
	return ap.Open(ctx, criteria)
}

func (s *Site) Save(ctx context.Context, name string, item *accesspoint.Item) error {
	ap, err := s.AccessPoint(name)
	if err != nil {
		return err
	}
	return ap.Save(ctx, item)
}

func (s *Site) Delete(ctx context.Context, name string, item *accesspoint.Item) error {
	ap, err := s.AccessPoint(name)
	if err != nil {
		return err
	}
	return ap.Delete(ctx, item)
}

func (s *Site) DeleteMany(ctx context.Context, name string, criteria accesspoint.Criteria) error {
	ap, err := s.AccessPoint(name)
	if err != nil {
		return err
	}
	return ap.DeleteMany(ctx, criteria)
}
