package derive

import (
	"fmt"
	"reflect"
	"sync"
)

// Either is a union of two alternatives. A field of type Either[A, B]
// derives to an anyOf over the schemas of A and B.
type Either[A, B any] struct {
	First  *A
	Second *B
}

// UnionCase binds a discriminator label to one variant type of a union.
type UnionCase struct {
	Label string
	Type  reflect.Type
}

// Case declares a union variant. T must be a struct type; its fields merge
// with the discriminator property in the derived oneOf branch.
func Case[T any](label string) UnionCase {
	return UnionCase{Label: label, Type: reflect.TypeOf((*T)(nil)).Elem()}
}

type unionSpec struct {
	discriminator string
	cases         []UnionCase
}

var unions sync.Map // reflect.Type (interface) -> *unionSpec

// RegisterUnion declares interface type I as a closed sum type. Each case
// becomes a oneOf branch: an object whose discriminator property is
// constrained to the case label, merged with the variant's own fields.
// Labels must be unique.
func RegisterUnion[I any](discriminator string, cases ...UnionCase) error {
	iface := reflect.TypeOf((*I)(nil)).Elem()
	if iface.Kind() != reflect.Interface {
		return errf(UnsupportedType, iface, "", "union type must be an interface, got %s", iface.Kind())
	}
	if discriminator == "" {
		return errf(AmbiguousDiscriminator, iface, "", "discriminator property name cannot be empty")
	}
	if len(cases) == 0 {
		return errf(UnsupportedType, iface, "", "union needs at least one case")
	}
	seen := map[string]bool{}
	for _, cs := range cases {
		if cs.Type.Kind() != reflect.Struct {
			return errf(UnsupportedType, cs.Type, "", "union case %q must be a struct", cs.Label)
		}
		if seen[cs.Label] {
			return errf(AmbiguousDiscriminator, iface, "",
				"duplicate discriminator label %q", cs.Label)
		}
		seen[cs.Label] = true
	}
	if _, loaded := unions.LoadOrStore(iface, &unionSpec{discriminator: discriminator, cases: cases}); loaded {
		return fmt.Errorf("union already registered for %s", iface)
	}
	return nil
}

func lookupUnion(t reflect.Type) (*unionSpec, bool) {
	v, ok := unions.Load(t)
	if !ok {
		return nil, false
	}
	return v.(*unionSpec), true
}

// Enumer marks a named type as an enumerated type with a fixed, finite
// label set. Types implementing it derive to a string schema whose enum is
// the returned labels.
type Enumer interface {
	SchemaEnum() []string
}

var enumerType = reflect.TypeOf((*Enumer)(nil)).Elem()
