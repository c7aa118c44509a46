// Package schema models JSON Schema (2020-12 dialect) documents as an
// immutable tree of Nodes.
//
// A Node is a closed tagged union over the 2020-12 keyword groups: string,
// number/integer, boolean, null, array, object, the boolean compositions
// (allOf/anyOf/oneOf/not), conditionals (if/then/else), and references
// ($ref/$dynamicRef). Every node may carry annotation metadata (title,
// description, examples, deprecated, readOnly, writeOnly, default) and a
// $defs block of named sub-schemas.
//
// # Structure
//
// Nodes are constructed once, by hand, by schema.Parse, or by the derive
// package, and never mutated afterwards; updates produce new trees. A
// Registry built from a root Node indexes every $defs entry by JSON Pointer
// and every $dynamicAnchor by name, and resolves $ref/$dynamicRef against
// those indices. The registry is immutable after BuildRegistry returns and
// safe to share across concurrent validations.
//
// # Usage
//
//	node, _ := schema.ParseJSON(doc)
//	reg := schema.BuildRegistry(node)
//	target, err := reg.ResolveRef("#/$defs/User")
//
//	out, _ := json.Marshal(node) // 2020-12 document, stable key order
//
// CheckSatisfiable statically rejects definitions that no value can ever
// satisfy, including recursive $defs with no escape.
//
// # Related Packages
//
//   - github.com/silvabyte/chez/jsonval - JSON value IR
//   - github.com/silvabyte/chez/derive - schema derivation from Go types
//   - github.com/silvabyte/chez/validate - validation engine
package schema
