package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-accesspoint-cache/accesspoint"
	"github.com/goliatone/go-accesspoint-cache/pkg/testsupport"
	"github.com/goliatone/go-accesspoint-cache/site"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands_Golden(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		golden string
	}{
		{name: "search all", args: []string{"search", "things"}, golden: "search_all.golden"},
		{name: "search repeated", args: []string{"search", "things", "name=bar", "--repeat", "3"}, golden: "search_repeat.golden"},
		{name: "open", args: []string{"open", "things", "id=1"}, golden: "open.golden"},
		{name: "collections", args: []string{"collections", "--site", filepath.Join("testdata", "site.yaml")}, golden: "collections.golden"},
		{name: "direct collection", args: []string{"search", "tags", "--site", filepath.Join("testdata", "site.yaml"), "--repeat", "2"}, golden: "search_direct.golden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatalf("execute(%v) error = %v", tt.args, err)
			}
			testsupport.CompareWithGolden(t, testsupport.GoldenPath(tt.golden), []byte(out))
		})
	}
}

func TestCommands_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{name: "unknown collection", args: []string{"search", "nope"}, wantErr: site.ErrUnknownAccessPoint},
		{name: "open many", args: []string{"open", "things", "name=bar"}, wantErr: accesspoint.ErrMultipleMatchingItems},
		{name: "open none", args: []string{"open", "things", "name=nonexistent"}, wantErr: accesspoint.ErrItemDoesNotExist},
		{name: "bad filter", args: []string{"search", "things", "name"}, wantMsg: "expected field=value"},
		{name: "unknown field", args: []string{"search", "things", "colour=red"}, wantMsg: "unknown field"},
		{name: "bad int", args: []string{"search", "things", "id=one"}, wantMsg: "field id"},
		{name: "bad repeat", args: []string{"search", "things", "--repeat", "0"}, wantMsg: "--repeat"},
		{name: "missing site", args: []string{"search", "things", "--site", filepath.Join("testdata", "missing.yaml")}, wantMsg: "open site file"},
		{name: "no collection", args: []string{"search"}, wantMsg: "arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseCriteria(t *testing.T) {
	schema := accesspoint.Schema{
		"id":     accesspoint.NewProperty(accesspoint.TypeInt),
		"score":  accesspoint.NewProperty(accesspoint.TypeFloat),
		"active": accesspoint.NewProperty(accesspoint.TypeBool),
		"name":   accesspoint.NewProperty(accesspoint.TypeString),
	}

	criteria, err := parseCriteria(schema, []string{"id=3", "score=1.5", "active=true", "name=a=b"})
	if err != nil {
		t.Fatalf("parseCriteria() error = %v", err)
	}
	if criteria["id"] != 3 || criteria["score"] != 1.5 || criteria["active"] != true || criteria["name"] != "a=b" {
		t.Errorf("parseCriteria() = %v", criteria)
	}

	empty, err := parseCriteria(schema, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("parseCriteria(nil) = %v, %v", empty, err)
	}
}
