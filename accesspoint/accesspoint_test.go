package accesspoint_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-accesspoint-cache/accesspoint"
	"github.com/goliatone/go-accesspoint-cache/pkg/testsupport"
)

func TestOpenOne(t *testing.T) {
	ctx := context.Background()
	ap := testsupport.NewThings(t)
	testsupport.Seed(t, ap, testsupport.ThingsRows())

	tests := []struct {
		name     string
		criteria accesspoint.Criteria
		wantID   int
		wantErr  error
	}{
		{name: "single", criteria: accesspoint.Criteria{"name": "foo"}, wantID: 1},
		{name: "by identity", criteria: accesspoint.Criteria{"id": 3}, wantID: 3},
		{name: "none", criteria: accesspoint.Criteria{"name": "nonexistent"}, wantErr: accesspoint.ErrItemDoesNotExist},
		{name: "many", criteria: accesspoint.Criteria{"name": "bar"}, wantErr: accesspoint.ErrMultipleMatchingItems},
		{name: "everything", criteria: nil, wantErr: accesspoint.ErrMultipleMatchingItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := accesspoint.OpenOne(ctx, ap, tt.criteria)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenOne() error = %v", err)
			}
			if item.Get("id") != tt.wantID {
				t.Errorf("expected id %d, got %v", tt.wantID, item.Get("id"))
			}
		})
	}
}

func TestOpenOne_PropagatesSearchError(t *testing.T) {
	backend := testsupport.NewToggleBackend(testsupport.NewThings(t))
	backend.DisableSearch()

	if _, err := accesspoint.OpenOne(context.Background(), backend, nil); !errors.Is(err, accesspoint.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestSearchAllAndValues(t *testing.T) {
	ctx := context.Background()
	ap := testsupport.NewThings(t)
	testsupport.Seed(t, ap, testsupport.ThingsRows())

	items, err := accesspoint.SearchAll(ctx, ap, accesspoint.Criteria{"name": "bar"})
	if err != nil {
		t.Fatalf("SearchAll() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	count := 0
	for item := range accesspoint.Values(items) {
		if item.Get("name") != "bar" {
			t.Errorf("unexpected item %v", item)
		}
		count++
	}
	if count != 2 {
		t.Errorf("Values() yielded %d items", count)
	}
}
