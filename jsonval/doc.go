// Package jsonval provides an ordered, immutable-by-convention IR for JSON
// values.
//
// A Value is the instance side of schema validation: documents decoded from
// JSON or YAML become Values, and the validate package walks them. Objects
// keep their fields in document order (parallel Fields/Values slices), and
// numbers keep both integral and floating forms so that 1 and 1.0 compare
// equal while "integer" checks remain possible.
//
// Construction:
//
//	v, err := jsonval.Decode(data)          // JSON bytes
//	v, err := jsonval.DecodeYAML(data)      // YAML bytes
//	v, err := jsonval.FromAny(goValue)      // decoded interface{} values
//
// Values are compared structurally with Equal and ordered with Compare.
package jsonval
