package derive

import (
	"fmt"
	"reflect"
)

// ErrorKind classifies derivation failures. Derivation errors are fatal:
// they halt schema construction and never occur during validation.
type ErrorKind int

const (
	// UnsupportedType: the Go type has no schema mapping.
	UnsupportedType ErrorKind = iota
	// IncompatibleAnnotation: a constraint tag does not apply to the
	// field's inferred base type, e.g. pattern on a numeric field.
	IncompatibleAnnotation
	// NonStringMapKey: only string-keyed maps become objects.
	NonStringMapKey
	// AmbiguousDiscriminator: union labels collide, or the discriminator
	// property clashes with a variant field.
	AmbiguousDiscriminator
)

func (k ErrorKind) String() string {
	switch k {
	case UnsupportedType:
		return "unsupported type"
	case IncompatibleAnnotation:
		return "incompatible annotation"
	case NonStringMapKey:
		return "non-string map key"
	case AmbiguousDiscriminator:
		return "ambiguous discriminator"
	}
	return "derivation error"
}

// Error is a derivation failure, located by type and (when applicable)
// field.
type Error struct {
	Kind    ErrorKind
	Type    reflect.Type
	Field   string
	Message string
}

func (e *Error) Error() string {
	loc := ""
	if e.Type != nil {
		loc = e.Type.String()
	}
	if e.Field != "" {
		loc += "." + e.Field
	}
	if loc != "" {
		return fmt.Sprintf("derive %s: %s: %s", loc, e.Kind, e.Message)
	}
	return fmt.Sprintf("derive: %s: %s", e.Kind, e.Message)
}

func errf(kind ErrorKind, typ reflect.Type, field, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Type:    typ,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
