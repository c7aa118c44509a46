// Package derive builds schema trees from Go types by reflection.
//
// Schema[T] maps a Go type and the constraint annotations on its fields
// (struct tags under the "chez" key) into a schema.Node:
//
//	type User struct {
//		Name  string  `chez:"minLength=1"`
//		Email string  `chez:"format=email"`
//		Age   int     `chez:"minimum=0,default=18"`
//		Bio   *string `chez:"maxLength=280"`
//	}
//
//	node, err := derive.Schema[User]()
//
// A struct field is required unless it is nullable (pointer, slice, map or
// interface), tagged optional, or declares a default — a defaulted field is
// never required.
//
// Sum types are closed interface unions registered with RegisterUnion and
// Case; they derive to a oneOf whose branches carry a constant-valued
// discriminator property. Either[A, B] derives to an anyOf over the two
// branches. Named string types implementing Enumer derive to a string enum.
//
// Recursive struct types derive to $defs entries referenced by
// "#/$defs/<TypeName>", so self-referential types serialize finitely.
//
// Derivation fails fast with a *derive.Error (UnsupportedType,
// IncompatibleAnnotation, NonStringMapKey, AmbiguousDiscriminator); no
// partial schema is ever returned. Results are memoized per type, so
// repeated calls are O(1) after the first.
package derive
