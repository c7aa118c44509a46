package schema

import (
	"testing"
)

func mustParse(t *testing.T, doc string) *Node {
	t.Helper()
	n, err := ParseJSON([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCheckSatisfiable(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		sat  bool
	}{
		{
			name: "plain object",
			doc:  `{"type":"object","properties":{"a":{"type":"string"}},"required":["a"]}`,
			sat:  true,
		},
		{
			name: "contradictory allOf",
			doc:  `{"allOf":[{"type":"string"},{"type":"integer"}]}`,
			sat:  false,
		},
		{
			name: "compatible allOf",
			doc:  `{"allOf":[{"type":"string","minLength":1},{"type":"string","maxLength":5}]}`,
			sat:  true,
		},
		{
			name: "impossible cycle",
			doc: `{
				"$ref": "#/$defs/node",
				"$defs": {
					"node": {
						"type": "object",
						"properties": {"next": {"$ref": "#/$defs/node"}},
						"required": ["next"]
					}
				}
			}`,
			sat: false,
		},
		{
			name: "cycle with null escape",
			doc: `{
				"$ref": "#/$defs/node",
				"$defs": {
					"node": {
						"type": "object",
						"properties": {
							"next": {"anyOf": [{"type": "null"}, {"$ref": "#/$defs/node"}]}
						},
						"required": ["next"]
					}
				}
			}`,
			sat: true,
		},
		{
			name: "cycle with optional escape",
			doc: `{
				"$ref": "#/$defs/node",
				"$defs": {
					"node": {
						"type": "object",
						"properties": {"next": {"$ref": "#/$defs/node"}}
					}
				}
			}`,
			sat: true,
		},
		{
			name: "mutually recursive with no escape",
			doc: `{
				"$ref": "#/$defs/a",
				"$defs": {
					"a": {"type": "object", "properties": {"b": {"$ref": "#/$defs/b"}}, "required": ["b"]},
					"b": {"type": "object", "properties": {"a": {"$ref": "#/$defs/a"}}, "required": ["a"]}
				}
			}`,
			sat: false,
		},
		{
			name: "not everything",
			doc:  `false`,
			sat:  false,
		},
		{
			name: "conditional with satisfiable else",
			doc: `{
				"if": {"type": "string"},
				"then": {"type": "integer"},
				"else": {"type": "integer"}
			}`,
			sat: true,
		},
		{
			name: "empty oneOf",
			doc:  `{"oneOf":[]}`,
			sat:  false,
		},
		{
			name: "optional impossible def is still reported",
			doc: `{
				"type": "object",
				"properties": {"x": {"$ref": "#/$defs/bad"}},
				"$defs": {"bad": {"allOf": [{"type": "string"}, {"type": "null"}]}}
			}`,
			sat: false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckSatisfiable(mustParse(t, tc.doc))
			if tc.sat && err != nil {
				t.Errorf("expected satisfiable, got %v", err)
			}
			if !tc.sat && err == nil {
				t.Error("expected unsatisfiable")
			}
		})
	}
}

func TestDefNameFromRef(t *testing.T) {
	tests := []struct {
		ref  string
		name string
		ok   bool
	}{
		{"#/$defs/node", "node", true},
		{"#/$defs/", "", false},
		{"#/$defs/a/b", "", false},
		{"#/properties/x", "", false},
		{"#anchor", "", false},
		{"https://x.example/s.json", "", false},
	}
	for _, tc := range tests {
		name, ok := defNameFromRef(tc.ref)
		if name != tc.name || ok != tc.ok {
			t.Errorf("defNameFromRef(%q) = %q, %v; want %q, %v", tc.ref, name, ok, tc.name, tc.ok)
		}
	}
}
