package derive

import (
	"fmt"
	"strings"
)

// ParseStructTag parses a chez struct tag into a key-value map.
// Handles comma-separated values: `chez:"key1=value1,key2=value2,flag"`.
// Supports quoted values with spaces: `chez:"title='a b c'"`.
// Flags parse to the empty string.
func ParseStructTag(tag string) (map[string]string, error) {
	result := make(map[string]string)
	if tag == "" {
		return result, nil
	}

	var parts []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false

	for i := 0; i < len(tag); i++ {
		char := tag[i]
		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			current.WriteByte(char)
		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			current.WriteByte(char)
		case char == ',' && !inSingleQuote && !inDoubleQuote:
			part := strings.TrimSpace(current.String())
			if part != "" {
				parts = append(parts, part)
			}
			current.Reset()
		default:
			current.WriteByte(char)
		}
	}
	part := strings.TrimSpace(current.String())
	if part != "" {
		parts = append(parts, part)
	}

	for _, part := range parts {
		if idx := strings.Index(part, "="); idx >= 0 {
			key := strings.TrimSpace(part[:idx])
			value := strings.TrimSpace(part[idx+1:])
			if key == "" {
				return nil, fmt.Errorf("invalid tag: empty key in %q", part)
			}
			result[key] = unquoteValue(value)
		} else {
			result[part] = ""
		}
	}
	return result, nil
}

// unquoteValue removes surrounding single or double quotes from a value.
func unquoteValue(value string) string {
	if len(value) >= 2 && value[0] == '\'' && value[len(value)-1] == '\'' {
		return value[1 : len(value)-1]
	}
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	return value
}

// annotationKeys is the closed set of recognized tag keys, grouped by the
// node kind they apply to. Keys outside a field's base type family are
// IncompatibleAnnotation errors, not silent no-ops.
var annotationKeys = map[string]string{
	// placement
	"field":    "placement",
	"required": "placement",
	"optional": "placement",
	"omit":     "placement",
	"-":        "placement",
	// string
	"minLength": "string",
	"maxLength": "string",
	"pattern":   "string",
	"format":    "string",
	// numeric
	"minimum":          "number",
	"maximum":          "number",
	"exclusiveMinimum": "number",
	"exclusiveMaximum": "number",
	"multipleOf":       "number",
	// string or numeric
	"const": "value",
	"enum":  "value",
	// array
	"minItems":    "array",
	"maxItems":    "array",
	"uniqueItems": "array",
	// any
	"title":       "any",
	"description": "any",
	"deprecated":  "any",
	"readOnly":    "any",
	"writeOnly":   "any",
	"default":     "any",
}

func checkKnownKeys(parsed map[string]string) (string, bool) {
	for key := range parsed {
		if _, ok := annotationKeys[key]; !ok {
			return key, false
		}
	}
	return "", true
}
