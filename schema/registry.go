package schema

import (
	"github.com/silvabyte/chez/jsonval"
)

// Registry indexes every $defs entry of a root schema by JSON Pointer and
// every $dynamicAnchor by name. It is built in a single depth-first walk
// and frozen before it is returned; one Registry serves any number of
// concurrent validations of its root schema.
type Registry struct {
	root *Node

	// byPointer maps "#/..." pointers to nodes, one entry per $defs
	// definition plus the root under "#".
	byPointer map[string]*Node

	// anchors maps anchor name to the first node declaring it, for static
	// fallback resolution of "#name" fragments.
	anchors map[string]*Node

	// anchorsIn maps a subtree root to the anchors declared inside it,
	// for scope-aware $dynamicRef resolution.
	anchorsIn map[*Node]map[string]*Node

	// externals maps pre-registered URIs to external schema roots.
	externals map[string]*Registry
}

// RegistryOption configures BuildRegistry.
type RegistryOption func(*Registry)

// WithExternal pre-registers an external schema root under uri. References
// to that URI (optionally with a fragment) resolve into it; all other
// non-fragment URIs remain unresolved.
func WithExternal(uri string, root *Node) RegistryOption {
	return func(r *Registry) {
		r.externals[uri] = BuildRegistry(root)
	}
}

// BuildRegistry walks root once and returns the frozen index.
func BuildRegistry(root *Node, opts ...RegistryOption) *Registry {
	r := &Registry{
		root:      root,
		byPointer: map[string]*Node{},
		anchors:   map[string]*Node{},
		anchorsIn: map[*Node]map[string]*Node{},
		externals: map[string]*Registry{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.byPointer["#"] = root
	root.Walk(func(path []string, node *Node) bool {
		if len(path) > 0 {
			r.byPointer["#"+jsonval.Pointer(path)] = node
		}
		if node.DynamicAnchor != "" {
			if _, seen := r.anchors[node.DynamicAnchor]; !seen {
				r.anchors[node.DynamicAnchor] = node
			}
		}
		return true
	})
	// Per-subtree anchor index: for each node that can act as a dynamic
	// scope (the root and every $defs entry), record the anchors its
	// subtree declares.
	for _, scope := range r.scopeRoots() {
		inScope := map[string]*Node{}
		scope.Walk(func(_ []string, node *Node) bool {
			if node.DynamicAnchor != "" {
				if _, seen := inScope[node.DynamicAnchor]; !seen {
					inScope[node.DynamicAnchor] = node
				}
			}
			return true
		})
		if len(inScope) > 0 {
			r.anchorsIn[scope] = inScope
		}
	}
	return r
}

func (r *Registry) scopeRoots() []*Node {
	roots := []*Node{r.root}
	r.root.Walk(func(path []string, node *Node) bool {
		for i := range node.Defs {
			roots = append(roots, node.Defs[i].Schema)
		}
		return true
	})
	return roots
}

// Root returns the schema the registry was built from.
func (r *Registry) Root() *Node {
	return r.root
}

// LookupPointer returns the node at a "#/..." pointer.
func (r *Registry) LookupPointer(ptr string) (*Node, bool) {
	n, ok := r.byPointer[ptr]
	return n, ok
}

// LookupAnchor returns the first node declaring $dynamicAnchor name.
func (r *Registry) LookupAnchor(name string) (*Node, bool) {
	n, ok := r.anchors[name]
	return n, ok
}

// AnchorIn returns the node declaring $dynamicAnchor name within the
// subtree rooted at scope, if any.
func (r *Registry) AnchorIn(scope *Node, name string) (*Node, bool) {
	in, ok := r.anchorsIn[scope]
	if !ok {
		return nil, false
	}
	n, ok := in[name]
	return n, ok
}
