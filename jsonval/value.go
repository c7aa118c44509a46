package jsonval

import (
	"fmt"
	"math"
	"strconv"
)

// Kind discriminates the JSON value kinds.
type Kind int

const (
	InvalidKind Kind = iota
	NullKind
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "boolean"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	}
	return "invalid"
}

// Value is one JSON value. Objects keep fields in document order via the
// parallel Fields/Values slices. Numbers carry Int64 when the lexical form
// was integral, Float64 otherwise; Num keeps the lexical form for lossless
// re-encoding.
type Value struct {
	Kind Kind

	Bool    bool
	Str     string
	Num     string
	Int64   *int64
	Float64 *float64

	// Elems holds array elements.
	Elems []*Value

	// Fields and Values hold object members, parallel, in document order.
	Fields []string
	Values []*Value
}

func Null() *Value {
	return &Value{Kind: NullKind}
}

func Bool(v bool) *Value {
	return &Value{Kind: BoolKind, Bool: v}
}

func Int(v int64) *Value {
	return &Value{Kind: NumberKind, Int64: &v, Num: strconv.FormatInt(v, 10)}
}

func Float(v float64) *Value {
	return &Value{Kind: NumberKind, Float64: &v, Num: strconv.FormatFloat(v, 'g', -1, 64)}
}

func String(v string) *Value {
	return &Value{Kind: StringKind, Str: v}
}

func Array(elems ...*Value) *Value {
	return &Value{Kind: ArrayKind, Elems: elems}
}

// Object builds an object from alternating field name, value pairs.
func Object(pairs ...any) *Value {
	if len(pairs)%2 != 0 {
		panic("jsonval.Object: odd number of arguments")
	}
	res := &Value{Kind: ObjectKind}
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("jsonval.Object: field name at %d is %T, not string", i, pairs[i]))
		}
		val, ok := pairs[i+1].(*Value)
		if !ok {
			panic(fmt.Sprintf("jsonval.Object: value for %q is %T, not *Value", name, pairs[i+1]))
		}
		res.Fields = append(res.Fields, name)
		res.Values = append(res.Values, val)
	}
	return res
}

// Get returns the value of the named field, or nil if absent.
func (v *Value) Get(field string) *Value {
	if v == nil || v.Kind != ObjectKind {
		return nil
	}
	for i, f := range v.Fields {
		if f == field {
			return v.Values[i]
		}
	}
	return nil
}

// Set appends or replaces a field, returning v for chaining.
func (v *Value) Set(field string, val *Value) *Value {
	for i, f := range v.Fields {
		if f == field {
			v.Values[i] = val
			return v
		}
	}
	v.Fields = append(v.Fields, field)
	v.Values = append(v.Values, val)
	return v
}

// AsFloat returns the numeric value as a float64. Only meaningful for
// NumberKind values.
func (v *Value) AsFloat() float64 {
	if v.Int64 != nil {
		return float64(*v.Int64)
	}
	if v.Float64 != nil {
		return *v.Float64
	}
	f, _ := strconv.ParseFloat(v.Num, 64)
	return f
}

// IsInteger reports whether a number has zero fractional part. Per JSON
// Schema 2020-12, 1.0 validates against "integer".
func (v *Value) IsInteger() bool {
	if v.Kind != NumberKind {
		return false
	}
	if v.Int64 != nil {
		return true
	}
	if v.Float64 != nil {
		f := *v.Float64
		return f == math.Trunc(f) && !math.IsInf(f, 0) && !math.IsNaN(f)
	}
	return false
}

// Clone returns a deep copy.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	dst := &Value{
		Kind: v.Kind,
		Bool: v.Bool,
		Str:  v.Str,
		Num:  v.Num,
	}
	if v.Int64 != nil {
		i := *v.Int64
		dst.Int64 = &i
	}
	if v.Float64 != nil {
		f := *v.Float64
		dst.Float64 = &f
	}
	if v.Elems != nil {
		dst.Elems = make([]*Value, len(v.Elems))
		for i, e := range v.Elems {
			dst.Elems[i] = e.Clone()
		}
	}
	if v.Fields != nil {
		dst.Fields = append([]string(nil), v.Fields...)
		dst.Values = make([]*Value, len(v.Values))
		for i, e := range v.Values {
			dst.Values[i] = e.Clone()
		}
	}
	return dst
}

// Interface converts back to the encoding/json decoded representation:
// nil, bool, float64 (or int64 for integral numbers), string, []any,
// map[string]any.
func (v *Value) Interface() any {
	switch v.Kind {
	case NullKind:
		return nil
	case BoolKind:
		return v.Bool
	case NumberKind:
		if v.Int64 != nil {
			return *v.Int64
		}
		return v.AsFloat()
	case StringKind:
		return v.Str
	case ArrayKind:
		res := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			res[i] = e.Interface()
		}
		return res
	case ObjectKind:
		res := make(map[string]any, len(v.Fields))
		for i, f := range v.Fields {
			res[f] = v.Values[i].Interface()
		}
		return res
	}
	return nil
}
