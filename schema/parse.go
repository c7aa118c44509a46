package schema

import (
	"fmt"
	"strings"

	"github.com/silvabyte/chez/jsonval"
)

// Parse builds a Node from a JSON Schema 2020-12 document tree.
// It is the inverse of Document: parsing a serialized node and serializing
// again yields the identical document.
func Parse(v *jsonval.Value) (*Node, error) {
	return parse(v, nil)
}

// ParseJSON parses JSON bytes as a schema document.
func ParseJSON(data []byte) (*Node, error) {
	v, err := jsonval.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("schema document: %w", err)
	}
	return Parse(v)
}

// ParseYAML parses YAML bytes as a schema document.
func ParseYAML(data []byte) (*Node, error) {
	v, err := jsonval.DecodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("schema document: %w", err)
	}
	return Parse(v)
}

func parse(v *jsonval.Value, path []string) (*Node, error) {
	// Boolean schemas: true accepts everything, false rejects everything.
	if v.Kind == jsonval.BoolKind {
		everything := &Node{Kind: AllOfKind}
		if v.Bool {
			return everything, nil
		}
		return &Node{Kind: NotKind, Branches: []*Node{everything}}, nil
	}
	if v.Kind != jsonval.ObjectKind {
		return nil, fmt.Errorf("schema at %s must be an object or boolean, got %s",
			pointerOrRoot(path), v.Kind)
	}

	n := &Node{}
	if err := parseMeta(v, n); err != nil {
		return nil, at(path, err)
	}
	if da := v.Get("$dynamicAnchor"); da != nil {
		if da.Kind != jsonval.StringKind {
			return nil, at(path, fmt.Errorf("$dynamicAnchor must be a string"))
		}
		n.DynamicAnchor = da.Str
	}
	if defs := v.Get("$defs"); defs != nil {
		if defs.Kind != jsonval.ObjectKind {
			return nil, at(path, fmt.Errorf("$defs must be an object"))
		}
		for i, name := range defs.Fields {
			sub, err := parse(defs.Values[i], append(path, "$defs", name))
			if err != nil {
				return nil, err
			}
			n.Defs = append(n.Defs, Def{Name: name, Schema: sub})
		}
	}

	switch {
	case v.Get("$ref") != nil:
		ref := v.Get("$ref")
		if ref.Kind != jsonval.StringKind {
			return nil, at(path, fmt.Errorf("$ref must be a string"))
		}
		n.Kind = RefKind
		n.Ref = ref.Str
		return n, nil

	case v.Get("$dynamicRef") != nil:
		dref := v.Get("$dynamicRef")
		if dref.Kind != jsonval.StringKind {
			return nil, at(path, fmt.Errorf("$dynamicRef must be a string"))
		}
		n.Kind = DynamicRefKind
		n.DynamicRef = strings.TrimPrefix(dref.Str, "#")
		return n, nil

	case v.Get("type") != nil:
		return parseTyped(v, n, path)

	case v.Get("allOf") != nil:
		return parseComposition(v, n, AllOfKind, "allOf", path)
	case v.Get("anyOf") != nil:
		return parseComposition(v, n, AnyOfKind, "anyOf", path)
	case v.Get("oneOf") != nil:
		return parseComposition(v, n, OneOfKind, "oneOf", path)

	case v.Get("not") != nil:
		sub, err := parse(v.Get("not"), append(path, "not"))
		if err != nil {
			return nil, err
		}
		n.Kind = NotKind
		n.Branches = []*Node{sub}
		return n, nil

	case v.Get("if") != nil:
		return parseConditional(v, n, path)

	case v.Get("properties") != nil || v.Get("required") != nil ||
		v.Get("additionalProperties") != nil || v.Get("patternProperties") != nil:
		n.Kind = ObjectKind
		return parseObjectKeywords(v, n, path)

	case v.Get("items") != nil:
		n.Kind = ArrayKind
		return parseArrayKeywords(v, n, path)

	default:
		// No constraining keywords: accepts everything.
		n.Kind = AllOfKind
		return n, nil
	}
}

func parseTyped(v *jsonval.Value, n *Node, path []string) (*Node, error) {
	tv := v.Get("type")
	if tv.Kind == jsonval.ArrayKind {
		// "type": [...] sugars to anyOf over the named types.
		branches := make([]*Node, 0, len(tv.Elems))
		for _, e := range tv.Elems {
			if e.Kind != jsonval.StringKind {
				return nil, at(path, fmt.Errorf("type array entries must be strings"))
			}
			clone := v.Clone().Set("type", jsonval.String(e.Str))
			sub, err := parse(clone, path)
			if err != nil {
				return nil, err
			}
			branches = append(branches, sub)
		}
		n.Kind = AnyOfKind
		n.Branches = branches
		return n, nil
	}
	if tv.Kind != jsonval.StringKind {
		return nil, at(path, fmt.Errorf("type must be a string"))
	}

	switch tv.Str {
	case "string":
		n.Kind = StringKind
		return parseStringKeywords(v, n, path)
	case "number":
		n.Kind = NumberKind
		return parseNumberKeywords(v, n, path)
	case "integer":
		n.Kind = IntegerKind
		return parseNumberKeywords(v, n, path)
	case "boolean":
		n.Kind = BooleanKind
		return n, nil
	case "null":
		n.Kind = NullKind
		return n, nil
	case "array":
		n.Kind = ArrayKind
		return parseArrayKeywords(v, n, path)
	case "object":
		n.Kind = ObjectKind
		return parseObjectKeywords(v, n, path)
	}
	return nil, at(path, fmt.Errorf("unknown type %q", tv.Str))
}

func parseStringKeywords(v *jsonval.Value, n *Node, path []string) (*Node, error) {
	var err error
	if n.MinLength, err = intKeyword(v, "minLength"); err != nil {
		return nil, at(path, err)
	}
	if n.MaxLength, err = intKeyword(v, "maxLength"); err != nil {
		return nil, at(path, err)
	}
	if p := v.Get("pattern"); p != nil {
		if p.Kind != jsonval.StringKind {
			return nil, at(path, fmt.Errorf("pattern must be a string"))
		}
		n.Pattern = p.Str
	}
	if f := v.Get("format"); f != nil {
		if f.Kind != jsonval.StringKind {
			return nil, at(path, fmt.Errorf("format must be a string"))
		}
		n.Format = f.Str
	}
	parseConstEnum(v, n)
	return n, nil
}

func parseNumberKeywords(v *jsonval.Value, n *Node, path []string) (*Node, error) {
	var err error
	if n.Minimum, err = numKeyword(v, "minimum"); err != nil {
		return nil, at(path, err)
	}
	if n.Maximum, err = numKeyword(v, "maximum"); err != nil {
		return nil, at(path, err)
	}
	if n.ExclusiveMinimum, err = numKeyword(v, "exclusiveMinimum"); err != nil {
		return nil, at(path, err)
	}
	if n.ExclusiveMaximum, err = numKeyword(v, "exclusiveMaximum"); err != nil {
		return nil, at(path, err)
	}
	if n.MultipleOf, err = numKeyword(v, "multipleOf"); err != nil {
		return nil, at(path, err)
	}
	parseConstEnum(v, n)
	return n, nil
}

func parseArrayKeywords(v *jsonval.Value, n *Node, path []string) (*Node, error) {
	if items := v.Get("items"); items != nil {
		sub, err := parse(items, append(path, "items"))
		if err != nil {
			return nil, err
		}
		n.Items = sub
	} else {
		// ArrayNode.items is required, not optional.
		n.Items = &Node{Kind: AllOfKind}
	}
	var err error
	if n.MinItems, err = intKeyword(v, "minItems"); err != nil {
		return nil, at(path, err)
	}
	if n.MaxItems, err = intKeyword(v, "maxItems"); err != nil {
		return nil, at(path, err)
	}
	if u := v.Get("uniqueItems"); u != nil {
		if u.Kind != jsonval.BoolKind {
			return nil, at(path, fmt.Errorf("uniqueItems must be a boolean"))
		}
		n.UniqueItems = u.Bool
	}
	return n, nil
}

func parseObjectKeywords(v *jsonval.Value, n *Node, path []string) (*Node, error) {
	if props := v.Get("properties"); props != nil {
		if props.Kind != jsonval.ObjectKind {
			return nil, at(path, fmt.Errorf("properties must be an object"))
		}
		for i, name := range props.Fields {
			sub, err := parse(props.Values[i], append(path, "properties", name))
			if err != nil {
				return nil, err
			}
			n.Properties = append(n.Properties, Property{Name: name, Schema: sub})
		}
	}
	if req := v.Get("required"); req != nil {
		if req.Kind != jsonval.ArrayKind {
			return nil, at(path, fmt.Errorf("required must be an array"))
		}
		for _, e := range req.Elems {
			if e.Kind != jsonval.StringKind {
				return nil, at(path, fmt.Errorf("required entries must be strings"))
			}
			n.Required = append(n.Required, e.Str)
		}
	}
	if pats := v.Get("patternProperties"); pats != nil {
		if pats.Kind != jsonval.ObjectKind {
			return nil, at(path, fmt.Errorf("patternProperties must be an object"))
		}
		for i, pattern := range pats.Fields {
			sub, err := parse(pats.Values[i], append(path, "patternProperties", pattern))
			if err != nil {
				return nil, err
			}
			n.PatternProperties = append(n.PatternProperties, PatternProperty{Pattern: pattern, Schema: sub})
		}
	}
	if ap := v.Get("additionalProperties"); ap != nil {
		if ap.Kind == jsonval.BoolKind {
			n.AdditionalProperties = &Additional{Allowed: ap.Bool}
		} else {
			sub, err := parse(ap, append(path, "additionalProperties"))
			if err != nil {
				return nil, err
			}
			n.AdditionalProperties = &Additional{Allowed: true, Schema: sub}
		}
	}
	return n, nil
}

func parseComposition(v *jsonval.Value, n *Node, kind Kind, keyword string, path []string) (*Node, error) {
	arr := v.Get(keyword)
	if arr.Kind != jsonval.ArrayKind {
		return nil, at(path, fmt.Errorf("%s must be an array", keyword))
	}
	n.Kind = kind
	for i, e := range arr.Elems {
		sub, err := parse(e, append(path, keyword, fmt.Sprint(i)))
		if err != nil {
			return nil, err
		}
		n.Branches = append(n.Branches, sub)
	}
	return n, nil
}

func parseConditional(v *jsonval.Value, n *Node, path []string) (*Node, error) {
	n.Kind = ConditionalKind
	ifv, err := parse(v.Get("if"), append(path, "if"))
	if err != nil {
		return nil, err
	}
	n.If = ifv
	if th := v.Get("then"); th != nil {
		if n.Then, err = parse(th, append(path, "then")); err != nil {
			return nil, err
		}
	}
	if el := v.Get("else"); el != nil {
		if n.Else, err = parse(el, append(path, "else")); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func parseConstEnum(v *jsonval.Value, n *Node) {
	if c := v.Get("const"); c != nil {
		n.Const = c
	}
	if e := v.Get("enum"); e != nil && e.Kind == jsonval.ArrayKind {
		n.Enum = e.Elems
	}
}

func parseMeta(v *jsonval.Value, n *Node) error {
	if t := v.Get("title"); t != nil {
		if t.Kind != jsonval.StringKind {
			return fmt.Errorf("title must be a string")
		}
		n.Meta.Title = t.Str
	}
	if d := v.Get("description"); d != nil {
		if d.Kind != jsonval.StringKind {
			return fmt.Errorf("description must be a string")
		}
		n.Meta.Description = d.Str
	}
	if ex := v.Get("examples"); ex != nil {
		if ex.Kind != jsonval.ArrayKind {
			return fmt.Errorf("examples must be an array")
		}
		n.Meta.Examples = ex.Elems
	}
	if dep := v.Get("deprecated"); dep != nil && dep.Kind == jsonval.BoolKind {
		n.Meta.Deprecated = dep.Bool
	}
	if ro := v.Get("readOnly"); ro != nil && ro.Kind == jsonval.BoolKind {
		n.Meta.ReadOnly = ro.Bool
	}
	if wo := v.Get("writeOnly"); wo != nil && wo.Kind == jsonval.BoolKind {
		n.Meta.WriteOnly = wo.Bool
	}
	if def := v.Get("default"); def != nil {
		n.Meta.Default = def
	}
	return nil
}

func intKeyword(v *jsonval.Value, keyword string) (*int, error) {
	kv := v.Get(keyword)
	if kv == nil {
		return nil, nil
	}
	if kv.Kind != jsonval.NumberKind || !kv.IsInteger() {
		return nil, fmt.Errorf("%s must be an integer", keyword)
	}
	i := int(kv.AsFloat())
	return &i, nil
}

func numKeyword(v *jsonval.Value, keyword string) (*float64, error) {
	kv := v.Get(keyword)
	if kv == nil {
		return nil, nil
	}
	if kv.Kind != jsonval.NumberKind {
		return nil, fmt.Errorf("%s must be a number", keyword)
	}
	f := kv.AsFloat()
	return &f, nil
}

func at(path []string, err error) error {
	return fmt.Errorf("schema at %s: %w", pointerOrRoot(path), err)
}

func pointerOrRoot(path []string) string {
	if len(path) == 0 {
		return "#"
	}
	return "#" + jsonval.Pointer(path)
}
