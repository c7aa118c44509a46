package derive

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/silvabyte/chez/debug"
	"github.com/silvabyte/chez/jsonval"
	"github.com/silvabyte/chez/schema"
)

// TagKey is the struct tag key read for constraint annotations.
const TagKey = "chez"

var schemaCache sync.Map // reflect.Type -> cacheEntry

type cacheEntry struct {
	node *schema.Node
	err  error
}

// Schema derives the schema of T. Results are memoized: two calls for the
// same type return the identical *schema.Node.
func Schema[T any]() (*schema.Node, error) {
	return SchemaOf(reflect.TypeOf((*T)(nil)).Elem())
}

// MustSchema is Schema for types known good at init time.
func MustSchema[T any]() *schema.Node {
	n, err := Schema[T]()
	if err != nil {
		panic(err)
	}
	return n
}

// SchemaOf derives the schema of t. See Schema.
func SchemaOf(t reflect.Type) (*schema.Node, error) {
	if e, ok := schemaCache.Load(t); ok {
		ent := e.(cacheEntry)
		return ent.node, ent.err
	}
	d := &deriver{
		inProgress: make(map[reflect.Type]bool),
		recursive:  make(map[reflect.Type]bool),
	}
	node, err := d.typeSchema(t)
	if err == nil && len(d.defs) > 0 {
		node.Defs = d.defs
	}
	if err != nil {
		node = nil
	}
	if debug.Derive() {
		debug.Logf("derive: %s err=%v\n", t, err)
	}
	ent, _ := schemaCache.LoadOrStore(t, cacheEntry{node: node, err: err})
	ce := ent.(cacheEntry)
	return ce.node, ce.err
}

// deriver is per-derivation state. Named struct types seen on the active
// stack are recursive; they land in $defs and are referenced by pointer
// fragment instead of being expanded in place.
type deriver struct {
	inProgress map[reflect.Type]bool
	recursive  map[reflect.Type]bool
	defs       []schema.Def
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	eitherPkg  = reflect.TypeOf(Either[int, int]{}).PkgPath()
	eitherName = "Either["
)

func (d *deriver) typeSchema(t reflect.Type) (*schema.Node, error) {
	if t.Implements(enumerType) || reflect.PointerTo(t).Implements(enumerType) {
		return enumSchema(t)
	}
	switch {
	case t == timeType:
		return &schema.Node{Kind: schema.StringKind, Format: "date-time"}, nil
	case t.PkgPath() == eitherPkg && strings.HasPrefix(t.Name(), eitherName):
		return d.eitherSchema(t)
	}

	switch t.Kind() {
	case reflect.String:
		return &schema.Node{Kind: schema.StringKind}, nil
	case reflect.Bool:
		return &schema.Node{Kind: schema.BooleanKind}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &schema.Node{Kind: schema.IntegerKind}, nil
	case reflect.Float32, reflect.Float64:
		return &schema.Node{Kind: schema.NumberKind}, nil
	case reflect.Pointer:
		return d.typeSchema(t.Elem())
	case reflect.Slice:
		items, err := d.typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &schema.Node{Kind: schema.ArrayKind, Items: items}, nil
	case reflect.Array:
		items, err := d.typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		n := t.Len()
		return &schema.Node{Kind: schema.ArrayKind, Items: items, MinItems: &n, MaxItems: &n}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, errf(NonStringMapKey, t, "",
				"map key type %s cannot become an object property name", t.Key())
		}
		elem, err := d.typeSchema(t.Elem())
		if err != nil {
			return nil, err
		}
		return &schema.Node{
			Kind:                 schema.ObjectKind,
			AdditionalProperties: &schema.Additional{Allowed: true, Schema: elem},
		}, nil
	case reflect.Struct:
		return d.structSchema(t)
	case reflect.Interface:
		if spec, ok := lookupUnion(t); ok {
			return d.unionSchema(t, spec)
		}
		return nil, errf(UnsupportedType, t, "",
			"interface has no registered union; use RegisterUnion")
	}
	return nil, errf(UnsupportedType, t, "", "no schema mapping for kind %s", t.Kind())
}

func (d *deriver) structSchema(t reflect.Type) (*schema.Node, error) {
	named := t.Name() != ""
	if named && d.inProgress[t] {
		d.recursive[t] = true
		return &schema.Node{Kind: schema.RefKind, Ref: "#/$defs/" + t.Name()}, nil
	}
	if named {
		d.inProgress[t] = true
		defer delete(d.inProgress, t)
	}

	node := &schema.Node{Kind: schema.ObjectKind}
	if err := d.addFields(t, node); err != nil {
		return nil, err
	}
	if named && d.recursive[t] {
		if d.def(t.Name()) == nil {
			d.defs = append(d.defs, schema.Def{Name: t.Name(), Schema: node})
		}
		return &schema.Node{Kind: schema.RefKind, Ref: "#/$defs/" + t.Name()}, nil
	}
	return node, nil
}

func (d *deriver) def(name string) *schema.Node {
	for i := range d.defs {
		if d.defs[i].Name == name {
			return d.defs[i].Schema
		}
	}
	return nil
}

func (d *deriver) addFields(t reflect.Type, node *schema.Node) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Tag.Get(TagKey) == "" {
			if err := d.addFields(f.Type, node); err != nil {
				return err
			}
			continue
		}
		tags, err := ParseStructTag(f.Tag.Get(TagKey))
		if err != nil {
			return errf(IncompatibleAnnotation, t, f.Name, "%v", err)
		}
		if key, ok := checkKnownKeys(tags); !ok {
			return errf(IncompatibleAnnotation, t, f.Name, "unknown annotation %q", key)
		}
		if _, omit := tags["omit"]; omit {
			continue
		}
		if _, omit := tags["-"]; omit {
			continue
		}

		name := fieldName(f, tags)
		fs, err := d.typeSchema(f.Type)
		if err != nil {
			if de, ok := err.(*Error); ok && de.Field == "" {
				de.Field = f.Name
			}
			return err
		}
		if err := applyAnnotations(fs, tags, t, f.Name); err != nil {
			return err
		}
		node.Properties = append(node.Properties, schema.Property{Name: name, Schema: fs})
		if isRequired(f, tags) {
			node.Required = append(node.Required, name)
		}
	}
	return nil
}

func fieldName(f reflect.StructField, tags map[string]string) string {
	if n := tags["field"]; n != "" {
		return n
	}
	if jt := f.Tag.Get("json"); jt != "" {
		if n := strings.Split(jt, ",")[0]; n != "" && n != "-" {
			return n
		}
	}
	return f.Name
}

// isRequired: a field is required unless it is nullable (pointer, slice, map
// or interface), tagged optional, or carries a default. An explicit required
// tag wins over nullability.
func isRequired(f reflect.StructField, tags map[string]string) bool {
	if _, ok := tags["required"]; ok {
		return true
	}
	if _, ok := tags["optional"]; ok {
		return false
	}
	if _, ok := tags["default"]; ok {
		return false
	}
	switch f.Type.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return false
	}
	return true
}

func (d *deriver) unionSchema(t reflect.Type, spec *unionSpec) (*schema.Node, error) {
	branches := make([]*schema.Node, 0, len(spec.cases))
	for _, cs := range spec.cases {
		body, err := d.typeSchema(cs.Type)
		if err != nil {
			return nil, err
		}
		if body.Kind != schema.ObjectKind {
			return nil, errf(UnsupportedType, cs.Type, "",
				"union case %q derived to %s, want object", cs.Label, body.Kind)
		}
		if body.Property(spec.discriminator) != nil {
			return nil, errf(AmbiguousDiscriminator, cs.Type, "",
				"field collides with discriminator property %q", spec.discriminator)
		}
		disc := schema.Property{
			Name:   spec.discriminator,
			Schema: &schema.Node{Kind: schema.StringKind, Const: jsonval.String(cs.Label)},
		}
		branch := &schema.Node{
			Kind:                 schema.ObjectKind,
			Properties:           append([]schema.Property{disc}, body.Properties...),
			Required:             append([]string{spec.discriminator}, body.Required...),
			AdditionalProperties: body.AdditionalProperties,
			PatternProperties:    body.PatternProperties,
		}
		branches = append(branches, branch)
	}
	return &schema.Node{Kind: schema.OneOfKind, Branches: branches}, nil
}

func (d *deriver) eitherSchema(t reflect.Type) (*schema.Node, error) {
	first, ok1 := t.FieldByName("First")
	second, ok2 := t.FieldByName("Second")
	if !ok1 || !ok2 {
		return nil, errf(UnsupportedType, t, "", "malformed Either type")
	}
	a, err := d.typeSchema(first.Type.Elem())
	if err != nil {
		return nil, err
	}
	b, err := d.typeSchema(second.Type.Elem())
	if err != nil {
		return nil, err
	}
	return &schema.Node{Kind: schema.AnyOfKind, Branches: []*schema.Node{a, b}}, nil
}

func enumSchema(t reflect.Type) (*schema.Node, error) {
	v := reflect.New(t).Elem()
	var en Enumer
	if t.Implements(enumerType) {
		en = v.Interface().(Enumer)
	} else {
		en = v.Addr().Interface().(Enumer)
	}
	labels := en.SchemaEnum()
	if len(labels) == 0 {
		return nil, errf(UnsupportedType, t, "", "SchemaEnum returned no labels")
	}
	node := &schema.Node{Kind: schema.StringKind}
	for _, l := range labels {
		node.Enum = append(node.Enum, jsonval.String(l))
	}
	return node, nil
}

// kindFamilies maps a derived node kind to the tag key families its
// annotations may come from (besides "placement" and "any", which always
// apply).
func kindFamilies(k schema.Kind) map[string]bool {
	switch k {
	case schema.StringKind:
		return map[string]bool{"string": true, "value": true}
	case schema.NumberKind, schema.IntegerKind:
		return map[string]bool{"number": true, "value": true}
	case schema.BooleanKind:
		return map[string]bool{"value": true}
	case schema.ArrayKind:
		return map[string]bool{"array": true}
	}
	return map[string]bool{}
}

func applyAnnotations(n *schema.Node, tags map[string]string, owner reflect.Type, field string) error {
	if len(tags) == 0 {
		return nil
	}
	allowed := kindFamilies(n.Kind)
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := tags[key]
		family := annotationKeys[key]
		if family == "placement" {
			continue
		}
		if family != "any" && !allowed[family] {
			return errf(IncompatibleAnnotation, owner, field,
				"%s does not apply to %s schemas", key, n.Kind)
		}
		if err := applyAnnotation(n, key, value); err != nil {
			return errf(IncompatibleAnnotation, owner, field, "%s: %v", key, err)
		}
	}
	return nil
}

func applyAnnotation(n *schema.Node, key, value string) error {
	switch key {
	case "minLength":
		return setInt(&n.MinLength, value)
	case "maxLength":
		return setInt(&n.MaxLength, value)
	case "pattern":
		n.Pattern = value
	case "format":
		n.Format = value
	case "minimum":
		return setFloat(&n.Minimum, value)
	case "maximum":
		return setFloat(&n.Maximum, value)
	case "exclusiveMinimum":
		return setFloat(&n.ExclusiveMinimum, value)
	case "exclusiveMaximum":
		return setFloat(&n.ExclusiveMaximum, value)
	case "multipleOf":
		return setFloat(&n.MultipleOf, value)
	case "minItems":
		return setInt(&n.MinItems, value)
	case "maxItems":
		return setInt(&n.MaxItems, value)
	case "uniqueItems":
		n.UniqueItems = value == "" || value == "true"
	case "const":
		v, err := literal(n.Kind, value)
		if err != nil {
			return err
		}
		n.Const = v
	case "enum":
		for _, part := range strings.Split(value, "|") {
			v, err := literal(n.Kind, part)
			if err != nil {
				return err
			}
			n.Enum = append(n.Enum, v)
		}
	case "title":
		n.Meta.Title = value
	case "description":
		n.Meta.Description = value
	case "deprecated":
		n.Meta.Deprecated = value == "" || value == "true"
	case "readOnly":
		n.Meta.ReadOnly = value == "" || value == "true"
	case "writeOnly":
		n.Meta.WriteOnly = value == "" || value == "true"
	case "default":
		v, err := literal(n.Kind, value)
		if err != nil {
			return err
		}
		n.Meta.Default = v
	}
	return nil
}

// literal parses a tag literal in the value space of the node's kind.
// Non-scalar kinds take the literal as JSON.
func literal(k schema.Kind, s string) (*jsonval.Value, error) {
	switch k {
	case schema.StringKind:
		return jsonval.String(s), nil
	case schema.IntegerKind:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		return jsonval.Int(i), nil
	case schema.NumberKind:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		if f == float64(int64(f)) {
			return jsonval.Int(int64(f)), nil
		}
		return jsonval.Float(f), nil
	case schema.BooleanKind:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}
		return jsonval.Bool(b), nil
	}
	return jsonval.Decode([]byte(s))
}

func setInt(dst **int, s string) error {
	i, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = &i
	return nil
}

func setFloat(dst **float64, s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = &f
	return nil
}
