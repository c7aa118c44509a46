package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolved marks reference resolution failures. Callers report it as
// validation data rather than a fault.
var ErrUnresolved = errors.New("unresolved reference")

// ResolveRef statically resolves a $ref value.
//
// Fragment pointers ("#/...") resolve against the pointer index, plain
// fragments ("#name") against the anchor index. Non-fragment URIs resolve
// only when their root was pre-registered with WithExternal; there is no
// network fetching.
func (r *Registry) ResolveRef(ref string) (*Node, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty $ref", ErrUnresolved)
	}
	if strings.HasPrefix(ref, "#") {
		return r.resolveFragment(ref)
	}

	// External URI, possibly carrying its own fragment.
	uri, frag, hasFrag := strings.Cut(ref, "#")
	ext, ok := r.externals[uri]
	if !ok {
		return nil, fmt.Errorf("%w: external schema %q is not registered", ErrUnresolved, uri)
	}
	if !hasFrag || frag == "" {
		return ext.root, nil
	}
	return ext.resolveFragment("#" + frag)
}

func (r *Registry) resolveFragment(ref string) (*Node, error) {
	if ref == "#" {
		return r.root, nil
	}
	if strings.HasPrefix(ref, "#/") {
		if n, ok := r.byPointer[ref]; ok {
			return n, nil
		}
		return nil, fmt.Errorf("%w: no schema at %s", ErrUnresolved, ref)
	}
	// "#name" resolves an anchor.
	if n, ok := r.anchors[ref[1:]]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: no anchor %q", ErrUnresolved, ref[1:])
}

// ResolveDynamic resolves a $dynamicRef fragment against the dynamic scope
// stack, searching from the innermost (most recently entered) schema
// outward for a subtree declaring a matching $dynamicAnchor. When no scope
// matches it falls back to static anchor resolution.
func (r *Registry) ResolveDynamic(fragment string, scopes []*Node) (*Node, error) {
	if fragment == "" {
		return nil, fmt.Errorf("%w: empty $dynamicRef", ErrUnresolved)
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		if n, ok := r.AnchorIn(scopes[i], fragment); ok {
			return n, nil
		}
	}
	if n, ok := r.anchors[fragment]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: no dynamic anchor %q in scope", ErrUnresolved, fragment)
}
