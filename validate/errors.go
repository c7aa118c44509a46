package validate

import (
	"fmt"

	"github.com/silvabyte/chez/jsonval"
)

// ErrorKind classifies validation failures. The set is closed; every kind
// an engine can produce is listed here.
type ErrorKind int

const (
	TypeMismatch ErrorKind = iota
	RangeViolation
	LengthViolation
	PatternMismatch
	FormatViolation
	ConstMismatch
	EnumMismatch
	RequiredPropertyMissing
	AdditionalPropertyNotAllowed
	UniquenessViolation
	AllOfFailure
	AnyOfFailure
	OneOfNoMatch
	OneOfAmbiguous
	NotFailure
	UnresolvedReference
	CyclicReference
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "TypeMismatch"
	case RangeViolation:
		return "RangeViolation"
	case LengthViolation:
		return "LengthViolation"
	case PatternMismatch:
		return "PatternMismatch"
	case FormatViolation:
		return "FormatViolation"
	case ConstMismatch:
		return "ConstMismatch"
	case EnumMismatch:
		return "EnumMismatch"
	case RequiredPropertyMissing:
		return "RequiredPropertyMissing"
	case AdditionalPropertyNotAllowed:
		return "AdditionalPropertyNotAllowed"
	case UniquenessViolation:
		return "UniquenessViolation"
	case AllOfFailure:
		return "AllOfFailure"
	case AnyOfFailure:
		return "AnyOfFailure"
	case OneOfNoMatch:
		return "OneOfNoMatch"
	case OneOfAmbiguous:
		return "OneOfAmbiguous"
	case NotFailure:
		return "NotFailure"
	case UnresolvedReference:
		return "UnresolvedReference"
	case CyclicReference:
		return "CyclicReference"
	}
	return "Unknown"
}

// Error is one validation failure, located by JSON Pointer paths into the
// instance and the schema. Errors are produced once and never mutated.
type Error struct {
	Kind         ErrorKind
	Keyword      string
	Message      string
	InstancePath []string
	SchemaPath   []string
}

func (e *Error) Error() string {
	ptr := jsonval.Pointer(e.InstancePath)
	if ptr == "" {
		ptr = "/"
	}
	return fmt.Sprintf("%s: %s", ptr, e.Message)
}

// InstancePointer renders the instance path as an RFC 6901 pointer.
func (e *Error) InstancePointer() string {
	return jsonval.Pointer(e.InstancePath)
}

// SchemaPointer renders the schema path as an RFC 6901 pointer.
func (e *Error) SchemaPointer() string {
	return jsonval.Pointer(e.SchemaPath)
}
