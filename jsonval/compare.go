package jsonval

import (
	"cmp"
	"sort"
	"strings"
)

// Equal reports structural deep equality. Numbers compare by numeric value,
// so 1 and 1.0 are equal. Objects compare field-by-field independent of
// field order.
func Equal(a, b *Value) bool {
	return Compare(a, b) == 0
}

// Compare returns an integer comparing two values.
// The result is 0 if a==b, -1 if a < b, and +1 if a > b.
// Kind order: Null < Bool < Number < String < Array < Object.
func Compare(a, b *Value) int {
	if a == b {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	rankA := rank(a.Kind)
	rankB := rank(b.Kind)
	if rankA != rankB {
		return cmp.Compare(rankA, rankB)
	}

	switch a.Kind {
	case NullKind:
		return 0
	case BoolKind:
		if a.Bool == b.Bool {
			return 0
		}
		if !a.Bool {
			return -1
		}
		return 1
	case NumberKind:
		return compareNumbers(a, b)
	case StringKind:
		return strings.Compare(a.Str, b.Str)
	case ArrayKind:
		return compareArrays(a, b)
	case ObjectKind:
		return compareObjects(a, b)
	}
	return 0
}

func rank(k Kind) int {
	switch k {
	case NullKind:
		return 0
	case BoolKind:
		return 1
	case NumberKind:
		return 2
	case StringKind:
		return 3
	case ArrayKind:
		return 4
	case ObjectKind:
		return 5
	}
	return 100
}

func compareNumbers(a, b *Value) int {
	if a.Int64 != nil && b.Int64 != nil {
		return cmp.Compare(*a.Int64, *b.Int64)
	}
	return cmp.Compare(a.AsFloat(), b.AsFloat())
}

func compareArrays(a, b *Value) int {
	lenA := len(a.Elems)
	lenB := len(b.Elems)
	for i := 0; i < min(lenA, lenB); i++ {
		if c := Compare(a.Elems[i], b.Elems[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(lenA, lenB)
}

// compareObjects compares member-by-member in sorted key order so that
// equality is independent of document field order.
func compareObjects(a, b *Value) int {
	keysA := sortedFields(a)
	keysB := sortedFields(b)
	lenA := len(keysA)
	lenB := len(keysB)
	for i := 0; i < min(lenA, lenB); i++ {
		if c := strings.Compare(keysA[i], keysB[i]); c != 0 {
			return c
		}
		if c := Compare(a.Get(keysA[i]), b.Get(keysB[i])); c != 0 {
			return c
		}
	}
	return cmp.Compare(lenA, lenB)
}

func sortedFields(v *Value) []string {
	keys := append([]string(nil), v.Fields...)
	sort.Strings(keys)
	return keys
}
