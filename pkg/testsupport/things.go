package testsupport

import (
	"context"
	"fmt"
	"iter"
	"sync"
	"testing"

	"github.com/goliatone/go-accesspoint-cache/accesspoint"
	"github.com/goliatone/go-accesspoint-cache/memory"
)

// ThingsSchema is the schema of the "things" collection used across tests.
func ThingsSchema() accesspoint.Schema {
	return accesspoint.Schema{
		"id":   accesspoint.NewProperty(accesspoint.TypeInt),
		"name": accesspoint.NewProperty(accesspoint.TypeString),
	}
}

// ThingsRows are the three items every scenario starts from.
func ThingsRows() []map[string]any {
	return []map[string]any{
		{"id": 1, "name": "foo"},
		{"id": 2, "name": "bar"},
		{"id": 3, "name": "bar"},
	}
}

// NewThings returns an empty in-memory "things" access point.
func NewThings(t testing.TB) *memory.AccessPoint {
	t.Helper()

	ap, err := memory.New(ThingsSchema(), "id")
	if err != nil {
		t.Fatalf("failed to create things access point: %v", err)
	}
	return ap
}

// Seed creates and saves rows through ap.
func Seed(t testing.TB, ap accesspoint.AccessPoint, rows []map[string]any) {
	t.Helper()

	ctx := context.Background()
	for _, row := range rows {
		item, err := ap.Create(row)
		if err != nil {
			t.Fatalf("failed to create %v: %v", row, err)
		}
		if err := item.Save(ctx); err != nil {
			t.Fatalf("failed to save %v: %v", row, err)
		}
	}
}

// ToggleBackend wraps an access point so tests can make its search
// unavailable. It also counts calls that reach the wrapped access point.
type ToggleBackend struct {
	accesspoint.AccessPoint

	mu       sync.Mutex
	disabled bool
	calls    map[string]int
}

// NewToggleBackend wraps base with search enabled.
func NewToggleBackend(base accesspoint.AccessPoint) *ToggleBackend {
	return &ToggleBackend{AccessPoint: base, calls: map[string]int{}}
}

// DisableSearch makes Search fail with accesspoint.ErrBackendUnavailable.
func (b *ToggleBackend) DisableSearch() {
	b.mu.Lock()
	b.disabled = true
	b.mu.Unlock()
}

// EnableSearch restores Search.
func (b *ToggleBackend) EnableSearch() {
	b.mu.Lock()
	b.disabled = false
	b.mu.Unlock()
}

// Calls returns how many times method reached the wrapped access point.
func (b *ToggleBackend) Calls(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

func (b *ToggleBackend) record(method string) {
	b.mu.Lock()
	b.calls[method]++
	b.mu.Unlock()
}

func (b *ToggleBackend) Search(ctx context.Context, criteria accesspoint.Criteria) (iter.Seq[*accesspoint.Item], error) {
	b.mu.Lock()
	disabled := b.disabled
	b.mu.Unlock()
	if disabled {
		return nil, fmt.Errorf("%w: search disabled", accesspoint.ErrBackendUnavailable)
	}

	b.record("Search")
	return b.AccessPoint.Search(ctx, criteria)
}

func (b *ToggleBackend) Open(ctx context.Context, criteria accesspoint.Criteria) (*accesspoint.Item, error) {
	return accesspoint.OpenOne(ctx, b, criteria)
}

func (b *ToggleBackend) Save(ctx context.Context, item *accesspoint.Item) error {
	b.record("Save")
	return b.AccessPoint.Save(ctx, item)
}

func (b *ToggleBackend) Delete(ctx context.Context, item *accesspoint.Item) error {
	b.record("Delete")
	return b.AccessPoint.Delete(ctx, item)
}

func (b *ToggleBackend) DeleteMany(ctx context.Context, criteria accesspoint.Criteria) error {
	b.record("DeleteMany")
	return b.AccessPoint.DeleteMany(ctx, criteria)
}
