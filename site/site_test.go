package site_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/goliatone/go-accesspoint-cache/accesscache"
	"github.com/goliatone/go-accesspoint-cache/accesspoint"
	"github.com/goliatone/go-accesspoint-cache/cache"
	"github.com/goliatone/go-accesspoint-cache/pkg/testsupport"
	"github.com/goliatone/go-accesspoint-cache/site"
)

// newThingsSite registers a cached "things" collection seeded through the
// site and returns the toggleable backend below the cache.
func newThingsSite(t *testing.T) (*site.Site, *testsupport.ToggleBackend) {
	t.Helper()

	backend := testsupport.NewToggleBackend(testsupport.NewThings(t))
	svc, err := cache.NewCacheService(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("NewCacheService() error = %v", err)
	}

	s := site.New()
	if err := s.Register("things", accesscache.New(backend, svc, cache.NewDefaultKeySerializer())); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	ctx := context.Background()
	for _, row := range testsupport.ThingsRows() {
		item, err := s.Create("things", row)
		if err != nil {
			t.Fatalf("Create(%v) error = %v", row, err)
		}
		if err := item.Save(ctx); err != nil {
			t.Fatalf("Save(%v) error = %v", row, err)
		}
	}
	return s, backend
}

func collectIDs(items []*accesspoint.Item) []int {
	out := make([]int, 0, len(items))
	for _, item := range items {
		id, _ := item.Get("id").(int)
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func TestRegistry(t *testing.T) {
	s := site.New()
	ap := testsupport.NewThings(t)

	if err := s.Register("things", ap); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := s.Register("things", ap); !errors.Is(err, site.ErrDuplicateAccessPoint) {
		t.Errorf("expected ErrDuplicateAccessPoint, got %v", err)
	}
	if err := s.Register("", ap); err == nil {
		t.Error("expected error for empty name")
	}
	if err := s.Register("others", testsupport.NewThings(t)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if got := s.Names(); len(got) != 2 || got[0] != "others" || got[1] != "things" {
		t.Errorf("Names() = %v", got)
	}
	got, err := s.AccessPoint("things")
	if err != nil || got != ap {
		t.Errorf("AccessPoint() = %v, %v", got, err)
	}
}

func TestUnknownAccessPoint(t *testing.T) {
	ctx := context.Background()
	s := site.New()

	calls := map[string]func() error{
		"AccessPoint": func() error { _, err := s.AccessPoint("nope"); return err },
		"Create":      func() error { _, err := s.Create("nope", nil); return err },
		"Search":      func() error { _, err := s.Search(ctx, "nope", nil); return err },
		"SearchAll":   func() error { _, err := s.SearchAll(ctx, "nope", nil); return err },
		"Open":        func() error { _, err := s.Open(ctx, "nope", nil); return err },
		"Save":        func() error { return s.Save(ctx, "nope", nil) },
		"Delete":      func() error { return s.Delete(ctx, "nope", nil) },
		"DeleteMany":  func() error { return s.DeleteMany(ctx, "nope", nil) },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, site.ErrUnknownAccessPoint) {
				t.Errorf("expected ErrUnknownAccessPoint, got %v", err)
			}
		})
	}
}

func TestSingleItem(t *testing.T) {
	ctx := context.Background()
	s := site.New()
	svc, _ := cache.NewCacheService(cache.DefaultConfig())
	if err := s.Register("things", accesscache.New(testsupport.NewThings(t), svc, cache.NewDefaultKeySerializer())); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	item, err := s.Create("things", map[string]any{"id": 1, "name": "foo"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := item.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	items, err := s.SearchAll(ctx, "things", nil)
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if len(items) != 1 || items[0].Get("id") != 1 || items[0].Get("name") != "foo" {
		t.Errorf("unexpected items %v", items)
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	s, _ := newThingsSite(t)

	seq, err := s.Search(ctx, "things", accesspoint.Criteria{"name": "bar"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got := collectIDs(slices.Collect(seq)); !slices.Equal(got, []int{2, 3}) {
		t.Errorf("Search() ids = %v, want [2 3]", got)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, _ := newThingsSite(t)

	item, err := s.Open(ctx, "things", accesspoint.Criteria{"name": "foo"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if item.Get("id") != 1 {
		t.Errorf("Open() id = %v, want 1", item.Get("id"))
	}

	if _, err := s.Open(ctx, "things", accesspoint.Criteria{"name": "bar"}); !errors.Is(err, accesspoint.ErrMultipleMatchingItems) {
		t.Errorf("expected ErrMultipleMatchingItems, got %v", err)
	}
	if _, err := s.Open(ctx, "things", accesspoint.Criteria{"name": "nonexistent"}); !errors.Is(err, accesspoint.ErrItemDoesNotExist) {
		t.Errorf("expected ErrItemDoesNotExist, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newThingsSite(t)

	item, err := s.Open(ctx, "things", accesspoint.Criteria{"name": "foo"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := item.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	items, err := s.SearchAll(ctx, "things", accesspoint.Criteria{"name": "foo"})
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items after delete, got %v", items)
	}
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()
	s, _ := newThingsSite(t)

	if _, err := s.SearchAll(ctx, "things", accesspoint.Criteria{"name": "bar"}); err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if err := s.DeleteMany(ctx, "things", accesspoint.Criteria{"name": "bar"}); err != nil {
		t.Fatalf("DeleteMany() error = %v", err)
	}

	items, err := s.SearchAll(ctx, "things", accesspoint.Criteria{"name": "bar"})
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items after delete many, got %v", items)
	}
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	s, backend := newThingsSite(t)

	expectFirst := func(wantName string) *accesspoint.Item {
		t.Helper()
		items, err := s.SearchAll(ctx, "things", nil)
		if err != nil {
			t.Fatalf("SearchAll() error = %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		if items[0].Get("id") != 1 || items[0].Get("name") != wantName {
			t.Fatalf("expected first item id=1 name=%s, got %v", wantName, items[0])
		}
		return items[0]
	}

	expectFirst("foo")

	backend.DisableSearch()
	item := expectFirst("foo")
	backend.EnableSearch()

	item.Set("name", "bob")
	if err := s.Save(ctx, "things", item); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	backend.DisableSearch()
	if _, err := s.SearchAll(ctx, "things", nil); !errors.Is(err, accesspoint.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable once the cache is invalidated, got %v", err)
	}
	backend.EnableSearch()

	expectFirst("bob")

	backend.DisableSearch()
	expectFirst("bob")
	backend.EnableSearch()
}

func TestDelegate(t *testing.T) {
	ctx := context.Background()
	s, _ := newThingsSite(t)

	items, err := s.SearchAll(ctx, "things", nil)
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	item := items[0]

	ap, _ := s.AccessPoint("things")
	if item.AccessPoint() != ap {
		t.Errorf("item reports %T, want the registered decorator", item.AccessPoint())
	}
	if got := item.String(); got != `Item(id=1, name="foo")` {
		t.Errorf("String() = %s", got)
	}
	if got := item.Identity().String(); got != "id=1" {
		t.Errorf("Identity() = %s", got)
	}
}
