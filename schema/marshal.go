package schema

import (
	"github.com/silvabyte/chez/jsonval"
)

// Document renders the node as a JSON Schema 2020-12 document tree with a
// stable key order, emitting only keywords that have defined values.
func (n *Node) Document() *jsonval.Value {
	doc := &jsonval.Value{Kind: jsonval.ObjectKind}

	switch n.Kind {
	case RefKind:
		doc.Set("$ref", jsonval.String(n.Ref))
	case DynamicRefKind:
		doc.Set("$dynamicRef", jsonval.String("#"+n.DynamicRef))
	default:
		if tk := n.Kind.TypeKeyword(); tk != "" {
			doc.Set("type", jsonval.String(tk))
		}
	}

	if n.DynamicAnchor != "" {
		doc.Set("$dynamicAnchor", jsonval.String(n.DynamicAnchor))
	}

	n.encodeMeta(doc)

	switch n.Kind {
	case StringKind:
		if n.MinLength != nil {
			doc.Set("minLength", jsonval.Int(int64(*n.MinLength)))
		}
		if n.MaxLength != nil {
			doc.Set("maxLength", jsonval.Int(int64(*n.MaxLength)))
		}
		if n.Pattern != "" {
			doc.Set("pattern", jsonval.String(n.Pattern))
		}
		if n.Format != "" {
			doc.Set("format", jsonval.String(n.Format))
		}
		n.encodeConstEnum(doc)

	case NumberKind, IntegerKind:
		if n.Minimum != nil {
			doc.Set("minimum", numValue(*n.Minimum))
		}
		if n.Maximum != nil {
			doc.Set("maximum", numValue(*n.Maximum))
		}
		if n.ExclusiveMinimum != nil {
			doc.Set("exclusiveMinimum", numValue(*n.ExclusiveMinimum))
		}
		if n.ExclusiveMaximum != nil {
			doc.Set("exclusiveMaximum", numValue(*n.ExclusiveMaximum))
		}
		if n.MultipleOf != nil {
			doc.Set("multipleOf", numValue(*n.MultipleOf))
		}
		n.encodeConstEnum(doc)

	case ArrayKind:
		if n.Items != nil {
			doc.Set("items", n.Items.Document())
		}
		if n.MinItems != nil {
			doc.Set("minItems", jsonval.Int(int64(*n.MinItems)))
		}
		if n.MaxItems != nil {
			doc.Set("maxItems", jsonval.Int(int64(*n.MaxItems)))
		}
		if n.UniqueItems {
			doc.Set("uniqueItems", jsonval.Bool(true))
		}

	case ObjectKind:
		if len(n.Properties) > 0 {
			props := &jsonval.Value{Kind: jsonval.ObjectKind}
			for _, p := range n.Properties {
				props.Set(p.Name, p.Schema.Document())
			}
			doc.Set("properties", props)
		}
		if len(n.Required) > 0 {
			req := &jsonval.Value{Kind: jsonval.ArrayKind}
			for _, r := range n.Required {
				req.Elems = append(req.Elems, jsonval.String(r))
			}
			doc.Set("required", req)
		}
		if len(n.PatternProperties) > 0 {
			pats := &jsonval.Value{Kind: jsonval.ObjectKind}
			for _, p := range n.PatternProperties {
				pats.Set(p.Pattern, p.Schema.Document())
			}
			doc.Set("patternProperties", pats)
		}
		if n.AdditionalProperties != nil {
			if n.AdditionalProperties.Schema != nil {
				doc.Set("additionalProperties", n.AdditionalProperties.Schema.Document())
			} else {
				doc.Set("additionalProperties", jsonval.Bool(n.AdditionalProperties.Allowed))
			}
		}

	case AllOfKind, AnyOfKind, OneOfKind:
		branches := &jsonval.Value{Kind: jsonval.ArrayKind}
		for _, br := range n.Branches {
			branches.Elems = append(branches.Elems, br.Document())
		}
		doc.Set(compositionKeyword(n.Kind), branches)

	case NotKind:
		if len(n.Branches) > 0 {
			doc.Set("not", n.Branches[0].Document())
		}

	case ConditionalKind:
		if n.If != nil {
			doc.Set("if", n.If.Document())
		}
		if n.Then != nil {
			doc.Set("then", n.Then.Document())
		}
		if n.Else != nil {
			doc.Set("else", n.Else.Document())
		}
	}

	if len(n.Defs) > 0 {
		defs := &jsonval.Value{Kind: jsonval.ObjectKind}
		for _, d := range n.Defs {
			defs.Set(d.Name, d.Schema.Document())
		}
		doc.Set("$defs", defs)
	}

	return doc
}

func (n *Node) encodeMeta(doc *jsonval.Value) {
	m := n.Meta
	if m.isZero() {
		return
	}
	if m.Title != "" {
		doc.Set("title", jsonval.String(m.Title))
	}
	if m.Description != "" {
		doc.Set("description", jsonval.String(m.Description))
	}
	if len(m.Examples) > 0 {
		doc.Set("examples", jsonval.Array(m.Examples...))
	}
	if m.Deprecated {
		doc.Set("deprecated", jsonval.Bool(true))
	}
	if m.ReadOnly {
		doc.Set("readOnly", jsonval.Bool(true))
	}
	if m.WriteOnly {
		doc.Set("writeOnly", jsonval.Bool(true))
	}
	if m.Default != nil {
		doc.Set("default", m.Default)
	}
}

func (n *Node) encodeConstEnum(doc *jsonval.Value) {
	if n.Const != nil {
		doc.Set("const", n.Const)
	}
	if len(n.Enum) > 0 {
		doc.Set("enum", jsonval.Array(n.Enum...))
	}
}

func numValue(f float64) *jsonval.Value {
	if f == float64(int64(f)) {
		return jsonval.Int(int64(f))
	}
	return jsonval.Float(f)
}

// MarshalJSON renders the 2020-12 textual form.
func (n *Node) MarshalJSON() ([]byte, error) {
	return n.Document().MarshalJSON()
}
