package schema

import (
	"strconv"

	"github.com/silvabyte/chez/jsonval"
)

// Kind discriminates schema node variants. The validate package matches it
// exhaustively; adding a Kind means handling it everywhere.
type Kind int

const (
	InvalidKind Kind = iota
	StringKind
	NumberKind
	IntegerKind
	BooleanKind
	NullKind
	ArrayKind
	ObjectKind
	AllOfKind
	AnyOfKind
	OneOfKind
	NotKind
	ConditionalKind
	RefKind
	DynamicRefKind
)

func (k Kind) String() string {
	switch k {
	case StringKind:
		return "string"
	case NumberKind:
		return "number"
	case IntegerKind:
		return "integer"
	case BooleanKind:
		return "boolean"
	case NullKind:
		return "null"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	case AllOfKind:
		return "allOf"
	case AnyOfKind:
		return "anyOf"
	case OneOfKind:
		return "oneOf"
	case NotKind:
		return "not"
	case ConditionalKind:
		return "if"
	case RefKind:
		return "$ref"
	case DynamicRefKind:
		return "$dynamicRef"
	}
	return "invalid"
}

// TypeKeyword returns the value of the "type" keyword for this variant, or
// "" for composition, conditional and reference nodes, which carry none.
func (k Kind) TypeKeyword() string {
	switch k {
	case StringKind, NumberKind, IntegerKind, BooleanKind, NullKind, ArrayKind, ObjectKind:
		return k.String()
	}
	return ""
}

// Meta holds the annotation keywords every node may carry.
type Meta struct {
	Title       string
	Description string
	Examples    []*jsonval.Value
	Deprecated  bool
	ReadOnly    bool
	WriteOnly   bool
	Default     *jsonval.Value
}

func (m Meta) isZero() bool {
	return m.Title == "" && m.Description == "" && len(m.Examples) == 0 &&
		!m.Deprecated && !m.ReadOnly && !m.WriteOnly && m.Default == nil
}

// Property is one named object property, in declaration order.
type Property struct {
	Name   string
	Schema *Node
}

// PatternProperty applies a schema to every object key matching Pattern.
type PatternProperty struct {
	Pattern string
	Schema  *Node
}

// Additional is the additionalProperties keyword: either a boolean gate or
// a schema for undeclared properties.
type Additional struct {
	Allowed bool
	Schema  *Node
}

// Def is one named $defs entry, in declaration order.
type Def struct {
	Name   string
	Schema *Node
}

// Node is one JSON Schema. Which field groups are meaningful is determined
// by Kind; construction must keep them consistent (an ArrayKind node has
// Items, never Properties). Nodes are immutable after construction.
type Node struct {
	Kind Kind
	Meta Meta

	// Defs carries named sub-schemas ($defs). Any node may carry them; a
	// node whose only content is Defs acts as a pure definitions carrier.
	Defs []Def

	// DynamicAnchor names this schema for $dynamicRef resolution.
	DynamicAnchor string

	// String keywords.
	MinLength *int
	MaxLength *int
	Pattern   string
	Format    string

	// Number / integer keywords.
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64

	// Const and Enum apply to string and numeric variants.
	Const *jsonval.Value
	Enum  []*jsonval.Value

	// Array keywords. Items is required for ArrayKind.
	Items       *Node
	MinItems    *int
	MaxItems    *int
	UniqueItems bool

	// Object keywords.
	Properties           []Property
	Required             []string
	AdditionalProperties *Additional
	PatternProperties    []PatternProperty

	// Composition branches: allOf/anyOf/oneOf use all of them, not uses
	// exactly one.
	Branches []*Node

	// Conditional keywords.
	If   *Node
	Then *Node
	Else *Node

	// References.
	Ref        string // e.g. "#/$defs/User" or a pre-registered external URI
	DynamicRef string // $dynamicRef fragment name, without '#'
}

// Property returns the schema of the named declared property, or nil.
func (n *Node) Property(name string) *Node {
	for i := range n.Properties {
		if n.Properties[i].Name == name {
			return n.Properties[i].Schema
		}
	}
	return nil
}

// Def returns the named $defs entry, or nil.
func (n *Node) Def(name string) *Node {
	for i := range n.Defs {
		if n.Defs[i].Name == name {
			return n.Defs[i].Schema
		}
	}
	return nil
}

// IsRequired reports whether name is in the required set.
func (n *Node) IsRequired(name string) bool {
	for _, r := range n.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Walk visits n and every reachable sub-schema depth-first, keeping the
// schema path (keyword segments) from the root. The callback returns false
// to prune descent below the node.
func (n *Node) Walk(f func(path []string, node *Node) bool) {
	n.walk(nil, f)
}

func (n *Node) walk(path []string, f func(path []string, node *Node) bool) {
	if n == nil {
		return
	}
	if !f(path, n) {
		return
	}
	for i := range n.Defs {
		n.Defs[i].Schema.walk(append(path, "$defs", n.Defs[i].Name), f)
	}
	if n.Items != nil {
		n.Items.walk(append(path, "items"), f)
	}
	for i := range n.Properties {
		n.Properties[i].Schema.walk(append(path, "properties", n.Properties[i].Name), f)
	}
	if n.AdditionalProperties != nil && n.AdditionalProperties.Schema != nil {
		n.AdditionalProperties.Schema.walk(append(path, "additionalProperties"), f)
	}
	for i := range n.PatternProperties {
		n.PatternProperties[i].Schema.walk(append(path, "patternProperties", n.PatternProperties[i].Pattern), f)
	}
	if kw := compositionKeyword(n.Kind); kw != "" {
		for i, br := range n.Branches {
			if n.Kind == NotKind {
				br.walk(append(path, kw), f)
				continue
			}
			br.walk(append(path, kw, strconv.Itoa(i)), f)
		}
	}
	if n.If != nil {
		n.If.walk(append(path, "if"), f)
	}
	if n.Then != nil {
		n.Then.walk(append(path, "then"), f)
	}
	if n.Else != nil {
		n.Else.walk(append(path, "else"), f)
	}
}

func compositionKeyword(k Kind) string {
	switch k {
	case AllOfKind:
		return "allOf"
	case AnyOfKind:
		return "anyOf"
	case OneOfKind:
		return "oneOf"
	case NotKind:
		return "not"
	}
	return ""
}
