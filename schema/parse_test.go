package schema

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// reserialize parses in and renders the canonical textual form.
func reserialize(t *testing.T, in string) string {
	t.Helper()
	n, err := ParseJSON([]byte(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := n.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // "" means the canonical form is the input itself
	}{
		{
			name: "string constraints",
			in:   `{"type":"string","minLength":1,"maxLength":5,"pattern":"^a","format":"email"}`,
		},
		{
			name: "integer range",
			in:   `{"type":"integer","minimum":0,"maximum":10,"multipleOf":2}`,
		},
		{
			name: "number exclusive bounds",
			in:   `{"type":"number","exclusiveMinimum":0,"exclusiveMaximum":1.5}`,
		},
		{
			name: "object",
			in:   `{"type":"object","properties":{"name":{"type":"string"}},"required":["name"],"additionalProperties":false}`,
		},
		{
			name: "pattern properties",
			in:   `{"type":"object","patternProperties":{"^x-":{"type":"string"}},"additionalProperties":{"type":"integer"}}`,
		},
		{
			name: "array",
			in:   `{"type":"array","items":{"type":"integer"},"minItems":1,"maxItems":3,"uniqueItems":true}`,
		},
		{
			name: "array without items accepts any element",
			in:   `{"type":"array"}`,
			want: `{"type":"array","items":{"allOf":[]}}`,
		},
		{
			name: "boolean schema true",
			in:   `true`,
			want: `{"allOf":[]}`,
		},
		{
			name: "boolean schema false",
			in:   `false`,
			want: `{"not":{"allOf":[]}}`,
		},
		{
			name: "empty schema",
			in:   `{}`,
			want: `{"allOf":[]}`,
		},
		{
			name: "type array sugars to anyOf",
			in:   `{"type":["string","null"]}`,
			want: `{"anyOf":[{"type":"string"},{"type":"null"}]}`,
		},
		{
			name: "const and enum",
			in:   `{"type":"string","const":"on","enum":["on","off"]}`,
		},
		{
			name: "composition",
			in:   `{"oneOf":[{"type":"string"},{"type":"integer"}]}`,
		},
		{
			name: "not",
			in:   `{"not":{"type":"null"}}`,
		},
		{
			name: "conditional",
			in:   `{"if":{"type":"string"},"then":{"type":"string","minLength":1},"else":{"type":"integer"}}`,
		},
		{
			name: "ref",
			in:   `{"$ref":"#/$defs/node"}`,
		},
		{
			name: "dynamic ref and anchor",
			in:   `{"type":"array","$dynamicAnchor":"items","items":{"$dynamicRef":"#items"}}`,
		},
		{
			name: "defs come last",
			in:   `{"$defs":{"id":{"type":"string"}},"type":"object","properties":{"id":{"$ref":"#/$defs/id"}}}`,
			want: `{"type":"object","properties":{"id":{"$ref":"#/$defs/id"}},"$defs":{"id":{"type":"string"}}}`,
		},
		{
			name: "metadata",
			in:   `{"type":"string","title":"Name","description":"display name","default":"anon","deprecated":true}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			want := tc.want
			if want == "" {
				want = tc.in
			}
			got := reserialize(t, tc.in)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("canonical form mismatch (-want +got):\n%s", diff)
			}
			// The canonical form is a fixpoint.
			if again := reserialize(t, got); again != got {
				t.Errorf("not idempotent:\nfirst  %s\nsecond %s", got, again)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		at   string
	}{
		{"root not object", `[1]`, "#"},
		{"bad type", `{"type":3}`, "#"},
		{"unknown type", `{"type":"tuple"}`, "#"},
		{"bad minLength", `{"type":"string","minLength":1.5}`, "#"},
		{"bad defs", `{"$defs":[]}`, "#"},
		{"nested location", `{"type":"object","properties":{"x":{"type":"string","maxLength":"nope"}}}`, "#/properties/x"},
		{"composition branch", `{"anyOf":[{"type":"string"},7]}`, "#/anyOf/1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tc.in))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.at) {
				t.Errorf("error %q does not locate %s", err, tc.at)
			}
		})
	}
}

func TestNodeAccessors(t *testing.T) {
	n, err := ParseJSON([]byte(`{
		"type": "object",
		"properties": {"a": {"type": "string"}, "b": {"type": "integer"}},
		"required": ["a"],
		"$defs": {"id": {"type": "string"}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if p := n.Property("a"); p == nil || p.Kind != StringKind {
		t.Errorf("Property(a) = %v", p)
	}
	if n.Property("z") != nil {
		t.Error("Property(z) should be nil")
	}
	if !n.IsRequired("a") || n.IsRequired("b") {
		t.Error("required set wrong")
	}
	if d := n.Def("id"); d == nil || d.Kind != StringKind {
		t.Errorf("Def(id) = %v", d)
	}
}

func TestWalkPaths(t *testing.T) {
	n, err := ParseJSON([]byte(`{
		"type": "object",
		"properties": {"xs": {"type": "array", "items": {"type": "string"}}},
		"$defs": {"id": {"type": "string"}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]Kind{}
	n.Walk(func(path []string, node *Node) bool {
		seen[strings.Join(path, "/")] = node.Kind
		return true
	})
	wants := map[string]Kind{
		"":                    ObjectKind,
		"properties/xs":       ArrayKind,
		"properties/xs/items": StringKind,
		"$defs/id":            StringKind,
	}
	for path, kind := range wants {
		if seen[path] != kind {
			t.Errorf("path %q: got %v, want %v", path, seen[path], kind)
		}
	}
}
