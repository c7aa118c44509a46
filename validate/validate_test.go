package validate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/silvabyte/chez/jsonval"
	"github.com/silvabyte/chez/schema"
)

func mustSchema(t *testing.T, doc string) *schema.Node {
	t.Helper()
	n, err := schema.ParseJSON([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func mustValue(t *testing.T, doc string) *jsonval.Value {
	t.Helper()
	v, err := jsonval.Decode([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// located is the (kind, instance pointer) shape of an error, enough for
// table assertions.
type located struct {
	Kind ErrorKind
	At   string
}

func locate(errs []*Error) []located {
	res := make([]located, len(errs))
	for i, e := range errs {
		res[i] = located{Kind: e.Kind, At: e.InstancePointer()}
	}
	return res
}

func TestValidateAggregatesErrors(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"age": {"type": "integer", "minimum": 0}
		},
		"required": ["name", "age"]
	}`)
	doc := mustValue(t, `{"name": "", "age": -5}`)

	got := locate(Validate(root, doc, nil))
	want := []located{
		{LengthViolation, "/name"},
		{RangeViolation, "/age"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidatePrimitives(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		doc    string
		want   []ErrorKind
	}{
		{"string ok", `{"type":"string"}`, `"hi"`, nil},
		{"string type", `{"type":"string"}`, `42`, []ErrorKind{TypeMismatch}},
		{"minLength runes", `{"type":"string","minLength":3}`, `"héé"`, nil},
		{"maxLength", `{"type":"string","maxLength":2}`, `"abc"`, []ErrorKind{LengthViolation}},
		{"pattern", `{"type":"string","pattern":"^a+$"}`, `"bbb"`, []ErrorKind{PatternMismatch}},
		{"format email bad", `{"type":"string","format":"email"}`, `"not an email"`, []ErrorKind{FormatViolation}},
		{"format email ok", `{"type":"string","format":"email"}`, `"a@b.example"`, nil},
		{"format unknown is annotation", `{"type":"string","format":"stardate"}`, `"whatever"`, nil},
		{"format uuid", `{"type":"string","format":"uuid"}`, `"123e4567-e89b-12d3-a456-426614174000"`, nil},
		{"format date-time bad", `{"type":"string","format":"date-time"}`, `"2026-13-99"`, []ErrorKind{FormatViolation}},
		{"const", `{"type":"string","const":"on"}`, `"off"`, []ErrorKind{ConstMismatch}},
		{"enum", `{"type":"string","enum":["a","b"]}`, `"c"`, []ErrorKind{EnumMismatch}},
		{"integer accepts 1.0", `{"type":"integer"}`, `1.0`, nil},
		{"integer rejects 1.5", `{"type":"integer"}`, `1.5`, []ErrorKind{TypeMismatch}},
		{"number range both", `{"type":"number","minimum":0,"maximum":1}`, `2`, []ErrorKind{RangeViolation}},
		{"exclusive minimum", `{"type":"number","exclusiveMinimum":0}`, `0`, []ErrorKind{RangeViolation}},
		{"multipleOf", `{"type":"integer","multipleOf":3}`, `7`, []ErrorKind{RangeViolation}},
		{"multipleOf float", `{"type":"number","multipleOf":0.1}`, `0.3`, nil},
		{"boolean", `{"type":"boolean"}`, `true`, nil},
		{"null", `{"type":"null"}`, `0`, []ErrorKind{TypeMismatch}},
		{"boolean schema true", `true`, `{"anything": []}`, nil},
		{"boolean schema false", `false`, `1`, []ErrorKind{NotFailure}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := Validate(mustSchema(t, tc.schema), mustValue(t, tc.doc), nil)
			kinds := make([]ErrorKind, 0, len(errs))
			for _, e := range errs {
				kinds = append(kinds, e.Kind)
			}
			if len(kinds) == 0 {
				kinds = nil
			}
			if diff := cmp.Diff(tc.want, kinds); diff != "" {
				t.Errorf("kinds mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateArray(t *testing.T) {
	root := mustSchema(t, `{
		"type": "array",
		"items": {"type": "integer"},
		"minItems": 2,
		"uniqueItems": true
	}`)

	if errs := Validate(root, mustValue(t, `[1, 2, 3]`), nil); len(errs) != 0 {
		t.Errorf("valid array: %v", errs)
	}

	got := locate(Validate(root, mustValue(t, `[1]`), nil))
	want := []located{{LengthViolation, ""}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("minItems (-want +got):\n%s", diff)
	}

	got = locate(Validate(root, mustValue(t, `[1, 1, "x"]`), nil))
	want = []located{
		{UniquenessViolation, ""},
		{TypeMismatch, "/2"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("uniqueness and element (-want +got):\n%s", diff)
	}
}

func TestValidateObjectKeywords(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"patternProperties": {"^x-": {"type": "string"}},
		"additionalProperties": false,
		"required": ["name"]
	}`)

	if errs := Validate(root, mustValue(t, `{"name": "a", "x-trace": "id"}`), nil); len(errs) != 0 {
		t.Errorf("valid object: %v", errs)
	}

	got := locate(Validate(root, mustValue(t, `{"x-trace": 7, "extra": 1}`), nil))
	want := []located{
		{RequiredPropertyMissing, ""},
		{TypeMismatch, "/x-trace"},
		{AdditionalPropertyNotAllowed, "/extra"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("object errors (-want +got):\n%s", diff)
	}
}

func TestValidateAdditionalPropertiesSchema(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {"id": {"type": "string"}},
		"additionalProperties": {"type": "integer"}
	}`)
	got := locate(Validate(root, mustValue(t, `{"id": "a", "count": 3, "bad": "x"}`), nil))
	want := []located{{TypeMismatch, "/bad"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestValidateAllOfIdempotent(t *testing.T) {
	// allOf [A, A] accepts exactly what A accepts, with errors reported per
	// branch.
	a := `{"type":"string","minLength":2}`
	single := mustSchema(t, a)
	double := mustSchema(t, `{"allOf":[`+a+`,`+a+`]}`)

	if errs := Validate(double, mustValue(t, `"ok"`), nil); len(errs) != 0 {
		t.Errorf("allOf [A, A] rejects a value A accepts: %v", errs)
	}
	se := Validate(single, mustValue(t, `"x"`), nil)
	de := Validate(double, mustValue(t, `"x"`), nil)
	if len(de) != 2*len(se) {
		t.Errorf("allOf [A, A] produced %d errors, single A produced %d", len(de), len(se))
	}
}

func TestValidateAnyOfAggregates(t *testing.T) {
	root := mustSchema(t, `{"anyOf":[{"type":"string"},{"type":"integer","minimum":0}]}`)

	if errs := Validate(root, mustValue(t, `"s"`), nil); len(errs) != 0 {
		t.Errorf("first branch: %v", errs)
	}
	if errs := Validate(root, mustValue(t, `5`), nil); len(errs) != 0 {
		t.Errorf("second branch: %v", errs)
	}
	errs := Validate(root, mustValue(t, `-1`), nil)
	if len(errs) != 1 || errs[0].Kind != AnyOfFailure {
		t.Fatalf("want one AnyOfFailure, got %v", errs)
	}
	// The aggregate message names each branch's failure.
	if msg := errs[0].Message; !strings.Contains(msg, "[0]") || !strings.Contains(msg, "[1]") {
		t.Errorf("aggregate message %q does not list branches", msg)
	}
}

func TestValidateOneOf(t *testing.T) {
	root := mustSchema(t, `{"oneOf":[
		{"type":"integer","minimum":0},
		{"type":"integer","maximum":10}
	]}`)

	// 20 matches only the first branch, -5 only the second.
	if errs := Validate(root, mustValue(t, `20`), nil); len(errs) != 0 {
		t.Errorf("single match high: %v", errs)
	}
	if errs := Validate(root, mustValue(t, `-5`), nil); len(errs) != 0 {
		t.Errorf("single match low: %v", errs)
	}

	errs := Validate(root, mustValue(t, `5`), nil)
	if len(errs) != 1 || errs[0].Kind != OneOfAmbiguous {
		t.Fatalf("want OneOfAmbiguous, got %v", errs)
	}
	errs = Validate(root, mustValue(t, `"s"`), nil)
	if len(errs) != 1 || errs[0].Kind != OneOfNoMatch {
		t.Fatalf("want OneOfNoMatch, got %v", errs)
	}
}

func TestValidateNot(t *testing.T) {
	root := mustSchema(t, `{"not":{"type":"string"}}`)
	if errs := Validate(root, mustValue(t, `1`), nil); len(errs) != 0 {
		t.Errorf("non-string should pass: %v", errs)
	}
	errs := Validate(root, mustValue(t, `"s"`), nil)
	if len(errs) != 1 || errs[0].Kind != NotFailure {
		t.Fatalf("want NotFailure, got %v", errs)
	}
}

func TestValidateConditional(t *testing.T) {
	root := mustSchema(t, `{
		"if": {"type": "object", "properties": {"kind": {"const": "card"}}, "required": ["kind"]},
		"then": {"type": "object", "properties": {"number": {"type": "string"}}, "required": ["number"]},
		"else": {"type": "object", "properties": {"iban": {"type": "string"}}, "required": ["iban"]}
	}`)

	tests := []struct {
		name string
		doc  string
		ok   bool
	}{
		{"then ok", `{"kind": "card", "number": "4111"}`, true},
		{"then missing", `{"kind": "card"}`, false},
		{"else ok", `{"kind": "sepa", "iban": "DE89"}`, true},
		{"else missing", `{"kind": "sepa"}`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			errs := Validate(root, mustValue(t, tc.doc), nil)
			if tc.ok && len(errs) != 0 {
				t.Errorf("unexpected errors: %v", errs)
			}
			if !tc.ok && len(errs) == 0 {
				t.Error("expected errors")
			}
		})
	}
}

func TestValidateConditionalWithoutBranch(t *testing.T) {
	// A failing if with no else is not an error, and vice versa.
	root := mustSchema(t, `{"if":{"type":"string"},"then":{"type":"string","minLength":2}}`)
	if errs := Validate(root, mustValue(t, `42`), nil); len(errs) != 0 {
		t.Errorf("if mismatch with no else: %v", errs)
	}
	if errs := Validate(root, mustValue(t, `"x"`), nil); len(errs) == 0 {
		t.Error("then branch should apply")
	}
}

func TestValidateRef(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {"id": {"$ref": "#/$defs/id"}},
		"required": ["id"],
		"$defs": {"id": {"type": "string", "minLength": 1}}
	}`)
	if errs := Validate(root, mustValue(t, `{"id": "a"}`), nil); len(errs) != 0 {
		t.Errorf("valid ref: %v", errs)
	}
	got := locate(Validate(root, mustValue(t, `{"id": ""}`), nil))
	want := []located{{LengthViolation, "/id"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestValidateUnresolvedRefIsSingleError(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {"id": {"$ref": "#/$defs/missing"}},
		"required": ["id"]
	}`)
	errs := Validate(root, mustValue(t, `{"id": "a"}`), nil)
	if len(errs) != 1 || errs[0].Kind != UnresolvedReference {
		t.Fatalf("want one UnresolvedReference, got %v", errs)
	}
	if errs[0].InstancePointer() != "/id" {
		t.Errorf("located at %q", errs[0].InstancePointer())
	}
}

func TestValidateRecursiveRef(t *testing.T) {
	root := mustSchema(t, `{
		"$ref": "#/$defs/node",
		"$defs": {
			"node": {
				"type": "object",
				"properties": {
					"value": {"type": "integer"},
					"next": {"anyOf": [{"type": "null"}, {"$ref": "#/$defs/node"}]}
				},
				"required": ["value"]
			}
		}
	}`)
	doc := mustValue(t, `{"value": 1, "next": {"value": 2, "next": null}}`)
	if errs := Validate(root, doc, nil); len(errs) != 0 {
		t.Errorf("recursive list: %v", errs)
	}
	bad := mustValue(t, `{"value": 1, "next": {"value": "two"}}`)
	got := locate(Validate(root, bad, nil))
	// The nested failure surfaces as the anyOf aggregate at /next.
	want := []located{{AnyOfFailure, "/next"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestValidateCyclicRefTerminates(t *testing.T) {
	// a -> b -> a without consuming any input: must terminate with a
	// CyclicReference error, not recurse forever.
	root := mustSchema(t, `{
		"$ref": "#/$defs/a",
		"$defs": {
			"a": {"$ref": "#/$defs/b"},
			"b": {"$ref": "#/$defs/a"}
		}
	}`)
	errs := Validate(root, mustValue(t, `1`), nil)
	if len(errs) != 1 || errs[0].Kind != CyclicReference {
		t.Fatalf("want one CyclicReference, got %v", errs)
	}
}

func TestValidateDynamicRef(t *testing.T) {
	// Scope-ordering semantics are covered in the schema package; here just
	// check an end-to-end dynamic reference resolves and validates.
	simple := mustSchema(t, `{
		"$defs": {
			"leaf": {"type": "integer", "$dynamicAnchor": "leaf"}
		},
		"type": "array",
		"items": {"$dynamicRef": "#leaf"}
	}`)
	if errs := Validate(simple, mustValue(t, `[1, 2]`), nil); len(errs) != 0 {
		t.Errorf("dynamic ref: %v", errs)
	}
	got := locate(Validate(simple, mustValue(t, `["x"]`), nil))
	want := []located{{TypeMismatch, "/0"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestValidateSchemaPointer(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {"xs": {"type": "array", "items": {"type": "integer"}}}
	}`)
	errs := Validate(root, mustValue(t, `{"xs": [1, "two"]}`), nil)
	if len(errs) != 1 {
		t.Fatalf("got %v", errs)
	}
	if got := errs[0].SchemaPointer(); got != "/properties/xs/items" {
		t.Errorf("schema pointer %q", got)
	}
	if got := errs[0].InstancePointer(); got != "/xs/1" {
		t.Errorf("instance pointer %q", got)
	}
}

func TestValidateYAMLEquivalence(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {"age": {"type": "integer", "minimum": 0}},
		"required": ["age"]
	}`)
	jdoc := mustValue(t, `{"age": -1}`)
	ydoc, err := jsonval.DecodeYAML([]byte("age: -1\n"))
	if err != nil {
		t.Fatal(err)
	}
	jgot := locate(Validate(root, jdoc, nil))
	ygot := locate(Validate(root, ydoc, nil))
	if diff := cmp.Diff(jgot, ygot); diff != "" {
		t.Errorf("JSON and YAML inputs disagree (-json +yaml):\n%s", diff)
	}
	if len(jgot) != 1 || jgot[0].Kind != RangeViolation {
		t.Errorf("got %v", jgot)
	}
}

func TestValidateReusedRegistry(t *testing.T) {
	root := mustSchema(t, `{
		"type": "object",
		"properties": {"id": {"$ref": "#/$defs/id"}},
		"$defs": {"id": {"type": "string"}}
	}`)
	reg := schema.BuildRegistry(root)
	for i := 0; i < 3; i++ {
		if errs := Validate(root, mustValue(t, `{"id": "a"}`), reg); len(errs) != 0 {
			t.Fatalf("pass %d: %v", i, errs)
		}
	}
}
