package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/silvabyte/chez/debug"
	"github.com/silvabyte/chez/jsonval"
	"github.com/silvabyte/chez/schema"
)

// Validate matches doc against root and returns every violation found.
// An empty result means the document is valid. A nil registry is built on
// the fly; pass one built with schema.BuildRegistry to reuse it across
// calls.
func Validate(root *schema.Node, doc *jsonval.Value, reg *schema.Registry) []*Error {
	if reg == nil {
		reg = schema.BuildRegistry(root)
	}
	ctx := &context{
		reg:    reg,
		scopes: []*schema.Node{reg.Root()},
		active: map[visitKey]bool{},
	}
	return ctx.validate(root, doc)
}

// visitKey identifies one (resolved schema, instance location) pair on the
// active resolution stack, for reference-cycle detection.
type visitKey struct {
	node *schema.Node
	inst string
}

// context is the per-call mutable state: the instance and schema paths,
// the dynamic scope stack, and the visited set. It is never shared across
// goroutines.
type context struct {
	reg        *schema.Registry
	instPath   []string
	schemaPath []string
	scopes     []*schema.Node
	active     map[visitKey]bool
}

func (c *context) err(kind ErrorKind, keyword, format string, args ...any) *Error {
	return &Error{
		Kind:         kind,
		Keyword:      keyword,
		Message:      fmt.Sprintf(format, args...),
		InstancePath: append([]string(nil), c.instPath...),
		SchemaPath:   append([]string(nil), c.schemaPath...),
	}
}

func (c *context) pushInst(seg string) {
	c.instPath = append(c.instPath, seg)
}

func (c *context) popInst() {
	c.instPath = c.instPath[:len(c.instPath)-1]
}

func (c *context) pushSchema(segs ...string) {
	c.schemaPath = append(c.schemaPath, segs...)
}

func (c *context) popSchema(n int) {
	c.schemaPath = c.schemaPath[:len(c.schemaPath)-n]
}

func (c *context) validate(n *schema.Node, v *jsonval.Value) []*Error {
	if debug.Validate() {
		debug.Logf("validate %s at %s\n", n.Kind, jsonval.Pointer(c.instPath))
	}
	switch n.Kind {
	case schema.StringKind:
		return c.validateString(n, v)
	case schema.NumberKind, schema.IntegerKind:
		return c.validateNumber(n, v)
	case schema.BooleanKind:
		if v.Kind != jsonval.BoolKind {
			return []*Error{c.typeMismatch("boolean", v)}
		}
		return nil
	case schema.NullKind:
		if v.Kind != jsonval.NullKind {
			return []*Error{c.typeMismatch("null", v)}
		}
		return nil
	case schema.ArrayKind:
		return c.validateArray(n, v)
	case schema.ObjectKind:
		return c.validateObject(n, v)
	case schema.AllOfKind:
		return c.validateAllOf(n, v)
	case schema.AnyOfKind:
		return c.validateAnyOf(n, v)
	case schema.OneOfKind:
		return c.validateOneOf(n, v)
	case schema.NotKind:
		return c.validateNot(n, v)
	case schema.ConditionalKind:
		return c.validateConditional(n, v)
	case schema.RefKind:
		return c.validateRef(n, v)
	case schema.DynamicRefKind:
		return c.validateDynamicRef(n, v)
	}
	return []*Error{c.err(TypeMismatch, "type", "schema node kind %v is invalid", n.Kind)}
}

func (c *context) typeMismatch(want string, v *jsonval.Value) *Error {
	return c.err(TypeMismatch, "type", "expected %s, got %s", want, v.Kind)
}

func (c *context) validateString(n *schema.Node, v *jsonval.Value) []*Error {
	if v.Kind != jsonval.StringKind {
		return []*Error{c.typeMismatch("string", v)}
	}
	var errs []*Error
	length := utf8.RuneCountInString(v.Str)
	if n.MinLength != nil && length < *n.MinLength {
		errs = append(errs, c.err(LengthViolation, "minLength",
			"string length %d is less than minLength %d", length, *n.MinLength))
	}
	if n.MaxLength != nil && length > *n.MaxLength {
		errs = append(errs, c.err(LengthViolation, "maxLength",
			"string length %d exceeds maxLength %d", length, *n.MaxLength))
	}
	if n.Pattern != "" {
		re, err := compiledPattern(n.Pattern)
		if err != nil {
			errs = append(errs, c.err(PatternMismatch, "pattern",
				"invalid pattern %q: %v", n.Pattern, err))
		} else if !re.MatchString(v.Str) {
			errs = append(errs, c.err(PatternMismatch, "pattern",
				"%q does not match pattern %q", v.Str, n.Pattern))
		}
	}
	if n.Format != "" {
		if msg := checkFormat(n.Format, v.Str); msg != "" {
			errs = append(errs, c.err(FormatViolation, "format", "%s", msg))
		}
	}
	errs = append(errs, c.checkConstEnum(n, v)...)
	return errs
}

func (c *context) validateNumber(n *schema.Node, v *jsonval.Value) []*Error {
	if v.Kind != jsonval.NumberKind {
		return []*Error{c.typeMismatch(n.Kind.String(), v)}
	}
	if n.Kind == schema.IntegerKind && !v.IsInteger() {
		return []*Error{c.typeMismatch("integer", v)}
	}
	var errs []*Error
	val := v.AsFloat()
	if n.Minimum != nil && val < *n.Minimum {
		errs = append(errs, c.err(RangeViolation, "minimum",
			"%v is less than minimum %v", val, *n.Minimum))
	}
	if n.Maximum != nil && val > *n.Maximum {
		errs = append(errs, c.err(RangeViolation, "maximum",
			"%v exceeds maximum %v", val, *n.Maximum))
	}
	if n.ExclusiveMinimum != nil && val <= *n.ExclusiveMinimum {
		errs = append(errs, c.err(RangeViolation, "exclusiveMinimum",
			"%v is not greater than exclusiveMinimum %v", val, *n.ExclusiveMinimum))
	}
	if n.ExclusiveMaximum != nil && val >= *n.ExclusiveMaximum {
		errs = append(errs, c.err(RangeViolation, "exclusiveMaximum",
			"%v is not less than exclusiveMaximum %v", val, *n.ExclusiveMaximum))
	}
	if n.MultipleOf != nil && !isMultipleOf(val, *n.MultipleOf) {
		errs = append(errs, c.err(RangeViolation, "multipleOf",
			"%v is not a multiple of %v", val, *n.MultipleOf))
	}
	errs = append(errs, c.checkConstEnum(n, v)...)
	return errs
}

func isMultipleOf(val, m float64) bool {
	if m == 0 {
		return false
	}
	q := val / m
	return math.Abs(q-math.Round(q)) < 1e-9
}

func (c *context) checkConstEnum(n *schema.Node, v *jsonval.Value) []*Error {
	var errs []*Error
	if n.Const != nil && !jsonval.Equal(n.Const, v) {
		errs = append(errs, c.err(ConstMismatch, "const",
			"value %s is not the constant %s", v, n.Const))
	}
	if len(n.Enum) > 0 {
		found := false
		for _, e := range n.Enum {
			if jsonval.Equal(e, v) {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, c.err(EnumMismatch, "enum",
				"value %s is not one of the enum values", v))
		}
	}
	return errs
}

func (c *context) validateArray(n *schema.Node, v *jsonval.Value) []*Error {
	if v.Kind != jsonval.ArrayKind {
		return []*Error{c.typeMismatch("array", v)}
	}
	var errs []*Error
	if n.MinItems != nil && len(v.Elems) < *n.MinItems {
		errs = append(errs, c.err(LengthViolation, "minItems",
			"array has %d items, fewer than minItems %d", len(v.Elems), *n.MinItems))
	}
	if n.MaxItems != nil && len(v.Elems) > *n.MaxItems {
		errs = append(errs, c.err(LengthViolation, "maxItems",
			"array has %d items, more than maxItems %d", len(v.Elems), *n.MaxItems))
	}
	if n.UniqueItems {
		for i := 0; i < len(v.Elems); i++ {
			for j := i + 1; j < len(v.Elems); j++ {
				if jsonval.Equal(v.Elems[i], v.Elems[j]) {
					errs = append(errs, c.err(UniquenessViolation, "uniqueItems",
						"items %d and %d are equal", i, j))
				}
			}
		}
	}
	if n.Items != nil {
		c.pushSchema("items")
		for i, e := range v.Elems {
			c.pushInst(strconv.Itoa(i))
			errs = append(errs, c.validate(n.Items, e)...)
			c.popInst()
		}
		c.popSchema(1)
	}
	return errs
}

func (c *context) validateObject(n *schema.Node, v *jsonval.Value) []*Error {
	if v.Kind != jsonval.ObjectKind {
		return []*Error{c.typeMismatch("object", v)}
	}
	var errs []*Error

	for _, name := range n.Required {
		if v.Get(name) == nil {
			errs = append(errs, c.err(RequiredPropertyMissing, "required",
				"required property %q is missing", name))
		}
	}

	for i, name := range v.Fields {
		val := v.Values[i]
		declared := false

		if ps := n.Property(name); ps != nil {
			declared = true
			c.pushSchema("properties", name)
			c.pushInst(name)
			errs = append(errs, c.validate(ps, val)...)
			c.popInst()
			c.popSchema(2)
		}

		for pi := range n.PatternProperties {
			pp := &n.PatternProperties[pi]
			re, err := compiledPattern(pp.Pattern)
			if err != nil {
				continue
			}
			if !re.MatchString(name) {
				continue
			}
			declared = true
			c.pushSchema("patternProperties", pp.Pattern)
			c.pushInst(name)
			errs = append(errs, c.validate(pp.Schema, val)...)
			c.popInst()
			c.popSchema(2)
		}

		if declared || n.AdditionalProperties == nil {
			continue
		}
		if !n.AdditionalProperties.Allowed {
			c.pushInst(name)
			errs = append(errs, c.err(AdditionalPropertyNotAllowed, "additionalProperties",
				"property %q is not allowed", name))
			c.popInst()
			continue
		}
		if n.AdditionalProperties.Schema != nil {
			c.pushSchema("additionalProperties")
			c.pushInst(name)
			errs = append(errs, c.validate(n.AdditionalProperties.Schema, val)...)
			c.popInst()
			c.popSchema(1)
		}
	}
	return errs
}

func (c *context) validateAllOf(n *schema.Node, v *jsonval.Value) []*Error {
	var errs []*Error
	for i, br := range n.Branches {
		c.pushSchema("allOf", strconv.Itoa(i))
		errs = append(errs, c.validate(br, v)...)
		c.popSchema(2)
	}
	return errs
}

func (c *context) validateAnyOf(n *schema.Node, v *jsonval.Value) []*Error {
	var branchErrs [][]*Error
	for i, br := range n.Branches {
		c.pushSchema("anyOf", strconv.Itoa(i))
		errs := c.validate(br, v)
		c.popSchema(2)
		if len(errs) == 0 {
			return nil
		}
		branchErrs = append(branchErrs, errs)
	}
	// No branch matched: one aggregate error listing every branch failure.
	var b strings.Builder
	b.WriteString("no anyOf branch matched:")
	for i, errs := range branchErrs {
		fmt.Fprintf(&b, " [%d]", i)
		for _, e := range errs {
			fmt.Fprintf(&b, " %s;", e.Message)
		}
	}
	return []*Error{c.err(AnyOfFailure, "anyOf", "%s", b.String())}
}

func (c *context) validateOneOf(n *schema.Node, v *jsonval.Value) []*Error {
	matched := 0
	var branchErrs [][]*Error
	for i, br := range n.Branches {
		c.pushSchema("oneOf", strconv.Itoa(i))
		errs := c.validate(br, v)
		c.popSchema(2)
		if len(errs) == 0 {
			matched++
		}
		branchErrs = append(branchErrs, errs)
	}
	switch {
	case matched == 1:
		return nil
	case matched == 0:
		var b strings.Builder
		b.WriteString("no oneOf branch matched:")
		for i, errs := range branchErrs {
			fmt.Fprintf(&b, " [%d]", i)
			for _, e := range errs {
				fmt.Fprintf(&b, " %s;", e.Message)
			}
		}
		return []*Error{c.err(OneOfNoMatch, "oneOf", "%s", b.String())}
	default:
		return []*Error{c.err(OneOfAmbiguous, "oneOf",
			"ambiguous: %d branches matched, exactly one must", matched)}
	}
}

func (c *context) validateNot(n *schema.Node, v *jsonval.Value) []*Error {
	if len(n.Branches) == 0 {
		return nil
	}
	c.pushSchema("not")
	errs := c.validate(n.Branches[0], v)
	c.popSchema(1)
	if len(errs) == 0 {
		return []*Error{c.err(NotFailure, "not", "value matches the schema it must not match")}
	}
	return nil
}

func (c *context) validateConditional(n *schema.Node, v *jsonval.Value) []*Error {
	// The if outcome is never itself an error.
	c.pushSchema("if")
	ifErrs := c.validate(n.If, v)
	c.popSchema(1)
	if len(ifErrs) == 0 {
		if n.Then == nil {
			return nil
		}
		c.pushSchema("then")
		defer c.popSchema(1)
		return c.validate(n.Then, v)
	}
	if n.Else == nil {
		return nil
	}
	c.pushSchema("else")
	defer c.popSchema(1)
	return c.validate(n.Else, v)
}

func (c *context) validateRef(n *schema.Node, v *jsonval.Value) []*Error {
	target, err := c.reg.ResolveRef(n.Ref)
	if err != nil {
		return []*Error{c.err(UnresolvedReference, "$ref", "%v", err)}
	}
	return c.validateResolved("$ref", target, v)
}

func (c *context) validateDynamicRef(n *schema.Node, v *jsonval.Value) []*Error {
	target, err := c.reg.ResolveDynamic(n.DynamicRef, c.scopes)
	if err != nil {
		return []*Error{c.err(UnresolvedReference, "$dynamicRef", "%v", err)}
	}
	return c.validateResolved("$dynamicRef", target, v)
}

// validateResolved recurses into a resolved reference target, keeping the
// cycle-detection invariant: revisiting the same (target, instance
// location) pair while it is still on the active stack means the reference
// graph cycles without consuming input.
func (c *context) validateResolved(keyword string, target *schema.Node, v *jsonval.Value) []*Error {
	key := visitKey{node: target, inst: jsonval.Pointer(c.instPath)}
	if c.active[key] {
		return []*Error{c.err(CyclicReference, keyword,
			"cyclic reference detected at %s", jsonval.Pointer(c.instPath))}
	}
	if debug.Resolve() {
		debug.Logf("resolve %s -> %s at %s\n", keyword, target.Kind, key.inst)
	}
	c.active[key] = true
	c.scopes = append(c.scopes, target)
	errs := c.validate(target, v)
	c.scopes = c.scopes[:len(c.scopes)-1]
	delete(c.active, key)
	return errs
}

// patternCache memoizes compiled regexes process-wide; schema nodes stay
// immutable and validations stay lock-free on the hot path.
var patternCache sync.Map // string -> *regexp.Regexp or error

func compiledPattern(pattern string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(pattern); ok {
		switch t := cached.(type) {
		case *regexp.Regexp:
			return t, nil
		case error:
			return nil, t
		}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		patternCache.Store(pattern, err)
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}
