package jsonval

import (
	"fmt"

	"github.com/goccy/go-yaml"
)

// DecodeYAML parses YAML bytes into a Value, preserving mapping key order.
func DecodeYAML(data []byte) (*Value, error) {
	var v any
	if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	return fromYAML(v)
}

func fromYAML(v any) (*Value, error) {
	switch t := v.(type) {
	case yaml.MapSlice:
		res := &Value{Kind: ObjectKind}
		for _, item := range t {
			key, ok := item.Key.(string)
			if !ok {
				return nil, fmt.Errorf("yaml mapping key %v (%T) is not a string", item.Key, item.Key)
			}
			val, err := fromYAML(item.Value)
			if err != nil {
				return nil, err
			}
			res.Fields = append(res.Fields, key)
			res.Values = append(res.Values, val)
		}
		return res, nil
	case []any:
		res := &Value{Kind: ArrayKind, Elems: make([]*Value, len(t))}
		for i, e := range t {
			ev, err := fromYAML(e)
			if err != nil {
				return nil, err
			}
			res.Elems[i] = ev
		}
		return res, nil
	default:
		return FromAny(v)
	}
}
