package accesscache

import (
	"strings"
	"testing"

	"github.com/goliatone/go-accesspoint-cache/cache"
)

func TestToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "*memory.AccessPoint", want: "memory_access_point"},
		{in: "*testsupport.ToggleBackend", want: "testsupport_toggle_backend"},
		{in: "*bunrepo.AccessPoint[*github.com/x/y.thing]", want: "bunrepo_access_point_github_com_x_y_thing"},
		{in: "HTTPServer", want: "http_server"},
		{in: "Item2", want: "item_2"},
		{in: "snake_case-name here", want: "snake_case_name_here"},
		{in: "a::b", want: "a_b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := toSnake(tt.in)
			if got != tt.want {
				t.Errorf("toSnake(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if strings.Contains(got, cache.KeySeparator) {
				t.Errorf("toSnake(%q) kept the key separator: %q", tt.in, got)
			}
		})
	}
}
