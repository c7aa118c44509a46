package derive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseStructTag(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want map[string]string
		err  bool
	}{
		{
			name: "empty",
			tag:  "",
			want: map[string]string{},
		},
		{
			name: "key values and flag",
			tag:  "minLength=1,format=email,optional",
			want: map[string]string{"minLength": "1", "format": "email", "optional": ""},
		},
		{
			name: "quoted value with comma",
			tag:  "title='a, b',pattern=\"^x,y$\"",
			want: map[string]string{"title": "a, b", "pattern": "^x,y$"},
		},
		{
			name: "spaces trimmed",
			tag:  " minimum = 0 , maximum = 10 ",
			want: map[string]string{"minimum": "0", "maximum": "10"},
		},
		{
			name: "empty key",
			tag:  "=5",
			err:  true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseStructTag(tc.tag)
			if tc.err {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckKnownKeys(t *testing.T) {
	if key, ok := checkKnownKeys(map[string]string{"minLength": "1", "format": ""}); !ok {
		t.Errorf("known keys rejected at %q", key)
	}
	if key, ok := checkKnownKeys(map[string]string{"wibble": "1"}); ok || key != "wibble" {
		t.Errorf("unknown key not caught: %q, %v", key, ok)
	}
}
