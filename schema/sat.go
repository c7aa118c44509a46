package schema

// SAT-based schema satisfiability.
//
// A schema can be impossible to satisfy in two ways:
//
//  1. Contradictory constraints (no recursion needed):
//     allOf [string, integer] — nothing is both a string and an integer.
//
//  2. Impossible cycles (recursive with no escape):
//     $defs: {node: {properties: {next: {$ref: "#/$defs/node"}},
//     required: [next]}} — every value must recurse forever.
//
// For each definition reachable from the root, build a boolean formula and
// check satisfiability. References into $defs are expanded inline; while
// checking definition D, a reference back to D becomes constant false. A
// non-recursive definition therefore checks plain satisfiability, and a
// recursive one checks whether any escape from the cycle exists.
//
// Variables are allocated per (position, primitive-type) pair: object
// properties and array items open new positions, boolean combinators stay
// at the current one. Distinct primitive types at the same position are
// mutually exclusive.
//
// This check over-approximates: oneOf is encoded as OR (exclusivity is a
// runtime concern) and value-level constraints (pattern, minimum, const)
// are ignored. UNSAT therefore always means genuinely impossible.

import (
	"fmt"
	"strings"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

type varDef struct {
	position string
	typeName string
}

type formulaBuilder struct {
	c           *logic.C
	path        string
	vars        map[varDef]z.Lit
	mutexes     map[string][]z.Lit
	checkingDef string
	defs        map[string]*Node
	expanding   map[string]bool
	err         error
}

func newFormulaBuilder(checkingDef string, defs map[string]*Node) *formulaBuilder {
	return &formulaBuilder{
		c:           logic.NewC(),
		vars:        make(map[varDef]z.Lit),
		mutexes:     make(map[string][]z.Lit),
		checkingDef: checkingDef,
		defs:        defs,
		expanding:   make(map[string]bool),
	}
}

func (b *formulaBuilder) build(n *Node) z.Lit {
	if b.err != nil {
		return b.c.F
	}
	if n == nil {
		return b.c.T
	}

	switch n.Kind {
	case StringKind:
		return b.getVar("string")
	case NumberKind, IntegerKind:
		return b.getVar("number")
	case BooleanKind:
		return b.getVar("boolean")
	case NullKind:
		return b.getVar("null")

	case ArrayKind:
		// An empty array satisfies any items schema unless minItems forces
		// elements; only then does the element formula constrain us.
		if n.MinItems != nil && *n.MinItems > 0 {
			saved := b.path
			b.path = saved + "[]"
			lit := b.build(n.Items)
			b.path = saved
			return b.c.Ands(b.getVar("array"), lit)
		}
		return b.getVar("array")

	case ObjectKind:
		lits := []z.Lit{b.getVar("object")}
		saved := b.path
		for i := range n.Properties {
			p := &n.Properties[i]
			// Optional properties can be omitted; only required ones
			// constrain satisfiability.
			if !n.IsRequired(p.Name) {
				continue
			}
			if saved == "" {
				b.path = p.Name
			} else {
				b.path = saved + "." + p.Name
			}
			lits = append(lits, b.build(p.Schema))
		}
		b.path = saved
		return b.c.Ands(lits...)

	case AllOfKind:
		return b.buildBranches(n.Branches, true)
	case AnyOfKind, OneOfKind:
		return b.buildBranches(n.Branches, false)

	case NotKind:
		if len(n.Branches) == 0 {
			return b.c.F
		}
		return b.build(n.Branches[0]).Not()

	case ConditionalKind:
		// (if AND then) OR (NOT if AND else)
		cond := b.build(n.If)
		thenLit := b.c.T
		if n.Then != nil {
			thenLit = b.build(n.Then)
		}
		elseLit := b.c.T
		if n.Else != nil {
			elseLit = b.build(n.Else)
		}
		return b.c.Ors(b.c.Ands(cond, thenLit), b.c.Ands(cond.Not(), elseLit))

	case RefKind:
		return b.buildRef(n.Ref)

	case DynamicRefKind:
		// Dynamic scope is a runtime notion; approximate with the static
		// anchor-free fallback and treat unknown targets as satisfiable.
		return b.c.T
	}

	b.err = fmt.Errorf("unsupported node kind %v", n.Kind)
	return b.c.F
}

func (b *formulaBuilder) buildBranches(branches []*Node, isAnd bool) z.Lit {
	if len(branches) == 0 {
		if isAnd {
			return b.c.T
		}
		return b.c.F
	}
	lits := make([]z.Lit, 0, len(branches))
	for _, br := range branches {
		lits = append(lits, b.build(br))
	}
	if isAnd {
		return b.c.Ands(lits...)
	}
	return b.c.Ors(lits...)
}

func (b *formulaBuilder) buildRef(ref string) z.Lit {
	name, ok := defNameFromRef(ref)
	if !ok {
		// External or anchor references are beyond the static check.
		return b.c.T
	}
	if name == b.checkingDef {
		return b.c.F // self-reference: no escape through here
	}
	if b.expanding[name] {
		// Mutual recursion back through an intermediate definition.
		return b.c.F
	}
	def, ok := b.defs[name]
	if !ok {
		b.err = fmt.Errorf("unknown definition reference %q", ref)
		return b.c.F
	}
	b.expanding[name] = true
	lit := b.build(def)
	delete(b.expanding, name)
	return lit
}

func (b *formulaBuilder) getVar(typeName string) z.Lit {
	key := varDef{b.path, typeName}
	if lit, ok := b.vars[key]; ok {
		return lit
	}
	lit := b.c.Lit()
	b.vars[key] = lit
	b.mutexes[b.path] = append(b.mutexes[b.path], lit)
	return lit
}

// addMutexClauses forbids two different primitive types at one position.
func (b *formulaBuilder) addMutexClauses(g *gini.Gini) {
	for _, lits := range b.mutexes {
		for i := 0; i < len(lits); i++ {
			for j := i + 1; j < len(lits); j++ {
				g.Add(lits[i].Not())
				g.Add(lits[j].Not())
				g.Add(0)
			}
		}
	}
}

func (b *formulaBuilder) checkSatisfiability(formula z.Lit) bool {
	g := gini.New()
	b.c.ToCnf(g)
	b.addMutexClauses(g)
	g.Assume(formula)
	return g.Solve() == 1
}

// CheckSatisfiable reports an error when the root schema, or any $defs
// definition reachable from it, can never accept a value — either because
// its constraints contradict each other or because it recurses with no
// escape.
func CheckSatisfiable(root *Node) error {
	if root == nil {
		return nil
	}

	defs := map[string]*Node{}
	for i := range root.Defs {
		defs[root.Defs[i].Name] = root.Defs[i].Schema
	}

	for name := range reachableDefs(root, defs) {
		b := newFormulaBuilder(name, defs)
		formula := b.build(defs[name])
		if b.err != nil {
			return fmt.Errorf("definition %q: %w", name, b.err)
		}
		if !b.checkSatisfiability(formula) {
			return fmt.Errorf("definition %q is unsatisfiable: contradictory constraints or a cycle with no escape", name)
		}
	}

	b := newFormulaBuilder("", defs)
	formula := b.build(root)
	if b.err != nil {
		return b.err
	}
	if !b.checkSatisfiability(formula) {
		return fmt.Errorf("schema is unsatisfiable: no value can match")
	}
	return nil
}

func defNameFromRef(ref string) (string, bool) {
	const prefix = "#/$defs/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	name := ref[len(prefix):]
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

func reachableDefs(root *Node, defs map[string]*Node) map[string]bool {
	reachable := map[string]bool{}
	var visit func(n *Node)
	visit = func(n *Node) {
		n.Walk(func(_ []string, node *Node) bool {
			if node.Kind != RefKind {
				return true
			}
			name, ok := defNameFromRef(node.Ref)
			if !ok || reachable[name] {
				return true
			}
			if def, exists := defs[name]; exists {
				reachable[name] = true
				visit(def)
			}
			return true
		})
	}
	visit(root)
	return reachable
}
