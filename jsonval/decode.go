package jsonval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
)

// Decode parses JSON bytes into a Value, preserving object field order and
// the lexical form of numbers.
func Decode(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	// Anything after the first value is an error.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return fromNumber(t)
	case json.Delim:
		switch t {
		case '[':
			res := &Value{Kind: ArrayKind}
			for dec.More() {
				elem, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				res.Elems = append(res.Elems, elem)
			}
			if _, err := dec.Token(); err != nil { // ']'
				return nil, err
			}
			return res, nil
		case '{':
			res := &Value{Kind: ObjectKind}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				res.Fields = append(res.Fields, key)
				res.Values = append(res.Values, val)
			}
			if _, err := dec.Token(); err != nil { // '}'
				return nil, err
			}
			return res, nil
		}
	}
	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

func fromNumber(n json.Number) (*Value, error) {
	res := &Value{Kind: NumberKind, Num: n.String()}
	if i, err := n.Int64(); err == nil {
		res.Int64 = &i
		return res, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("bad number %q: %w", n.String(), err)
	}
	res.Float64 = &f
	return res, nil
}

// FromAny converts a decoded Go value (interface{} trees from encoding/json
// or goccy yaml, plus plain Go scalars and containers) into a Value.
// Map keys must be strings; string-keyed maps are emitted in sorted key
// order since Go maps carry no document order.
func FromAny(v any) (*Value, error) {
	switch t := v.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return fromNumber(t)
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t)
	case float32:
		return fromFloat(float64(t)), nil
	case float64:
		return fromFloat(t), nil
	case []any:
		res := &Value{Kind: ArrayKind, Elems: make([]*Value, len(t))}
		for i, e := range t {
			ev, err := FromAny(e)
			if err != nil {
				return nil, err
			}
			res.Elems[i] = ev
		}
		return res, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		res := &Value{Kind: ObjectKind}
		for _, k := range keys {
			ev, err := FromAny(t[k])
			if err != nil {
				return nil, err
			}
			res.Fields = append(res.Fields, k)
			res.Values = append(res.Values, ev)
		}
		return res, nil
	case map[any]any:
		return nil, fmt.Errorf("map with non-string keys cannot become a JSON object")
	}
	return nil, fmt.Errorf("cannot convert %T to jsonval.Value", v)
}

func fromUint(u uint64) (*Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("unsigned value %d overflows int64", u)
	}
	return Int(int64(u)), nil
}

// fromFloat keeps whole floats in integral form so 1.0 and 1 are one value.
func fromFloat(f float64) *Value {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<53 {
		return Int(int64(f))
	}
	return Float(f)
}

// MarshalJSON renders the value with object fields in document order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.Kind {
	case NullKind:
		buf.WriteString("null")
	case BoolKind:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case NumberKind:
		if v.Num != "" {
			buf.WriteString(v.Num)
		} else if v.Int64 != nil {
			buf.WriteString(strconv.FormatInt(*v.Int64, 10))
		} else {
			buf.WriteString(strconv.FormatFloat(v.AsFloat(), 'g', -1, 64))
		}
	case StringKind:
		d, err := json.Marshal(v.Str)
		if err != nil {
			return err
		}
		buf.Write(d)
	case ArrayKind:
		buf.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectKind:
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			d, err := json.Marshal(f)
			if err != nil {
				return err
			}
			buf.Write(d)
			buf.WriteByte(':')
			if err := v.Values[i].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode invalid value")
	}
	return nil
}

// String renders the value as compact JSON, for messages and debugging.
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	d, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}
	return string(d)
}
