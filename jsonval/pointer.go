package jsonval

import (
	"fmt"
	"strconv"
	"strings"
)

// Pointer renders path segments as an RFC 6901 JSON Pointer.
// An empty segment list is the root pointer "".
func Pointer(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(escapePointer(seg))
	}
	return b.String()
}

// ParsePointer splits an RFC 6901 pointer into unescaped segments.
func ParsePointer(ptr string) ([]string, error) {
	if ptr == "" {
		return nil, nil
	}
	if !strings.HasPrefix(ptr, "/") {
		return nil, fmt.Errorf("pointer %q does not start with '/'", ptr)
	}
	parts := strings.Split(ptr[1:], "/")
	segs := make([]string, len(parts))
	for i, p := range parts {
		segs[i] = unescapePointer(p)
	}
	return segs, nil
}

func escapePointer(seg string) string {
	seg = strings.ReplaceAll(seg, "~", "~0")
	return strings.ReplaceAll(seg, "/", "~1")
}

func unescapePointer(seg string) string {
	seg = strings.ReplaceAll(seg, "~1", "/")
	return strings.ReplaceAll(seg, "~0", "~")
}

// GetPointer navigates a Value tree by JSON Pointer.
func (v *Value) GetPointer(ptr string) (*Value, error) {
	segs, err := ParsePointer(ptr)
	if err != nil {
		return nil, err
	}
	res := v
	for _, seg := range segs {
		switch res.Kind {
		case ObjectKind:
			next := res.Get(seg)
			if next == nil {
				return nil, fmt.Errorf("no field %q", seg)
			}
			res = next
		case ArrayKind:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("bad array index %q: %w", seg, err)
			}
			if idx < 0 || idx >= len(res.Elems) {
				return nil, fmt.Errorf("index %d out of bounds (len %d)", idx, len(res.Elems))
			}
			res = res.Elems[idx]
		default:
			return nil, fmt.Errorf("cannot descend into %s with %q", res.Kind, seg)
		}
	}
	return res, nil
}
