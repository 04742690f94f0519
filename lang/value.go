package lang

import (
	"strconv"
	"strings"
)

// Type identifies the variant held by a Value.
type Type int

const (
	TypeNil Type = iota
	TypeString
	TypeInteger
	TypeFloat
	TypeBoolean
	TypeList
	TypeReference
	TypeIntrinsic
)

// String returns the lowercase name of the value type.
func (t Type) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeString:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeFloat:
		return "float"
	case TypeBoolean:
		return "boolean"
	case TypeList:
		return "list"
	case TypeReference:
		return "reference"
	case TypeIntrinsic:
		return "intrinsic"
	default:
		return "unknown"
	}
}

// IntegerFormat records the base an integer literal was written in, so that
// serialization can reproduce the declared form.
type IntegerFormat int

const (
	FormatDecimal IntegerFormat = iota
	FormatBinary
	FormatHexadecimal
)

// RefScope distinguishes external (&ns.var) from local (%var) references.
type RefScope int

const (
	RefExternal RefScope = iota // &
	RefLocal                    // %
)

// AccessorKind identifies the form of a reference accessor.
type AccessorKind int

const (
	AccessIndex AccessorKind = iota // ->(i)
	AccessRange                     // ->(a..b)
	AccessKey                       // ->[key]
)

// Accessor selects an element, slice, or keyed entry from a resolved value.
type Accessor struct {
	Key   string
	Index int64
	Start int64
	End   int64
	Kind  AccessorKind
}

// String renders the accessor in source form.
func (a Accessor) String() string {
	switch a.Kind {
	case AccessIndex:
		return "->(" + strconv.FormatInt(a.Index, 10) + ")"
	case AccessRange:
		return "->(" + strconv.FormatInt(a.Start, 10) +
			".." + strconv.FormatInt(a.End, 10) + ")"
	case AccessKey:
		return "->[" + a.Key + "]"
	default:
		return ""
	}
}

// Reference names a variable binding, optionally in another namespace,
// with an optional chain of accessors applied after resolution.
type Reference struct {
	Namespace string // empty for local references
	Name      string
	Accessors []Accessor
	Scope     RefScope
}

// String renders the reference in source form.
func (r *Reference) String() string {
	var b strings.Builder

	if r.Scope == RefExternal {
		b.WriteByte('&')
	} else {
		b.WriteByte('%')
	}

	if r.Namespace != "" {
		b.WriteString(r.Namespace)
		b.WriteByte('.')
	}

	b.WriteString(r.Name)

	for _, acc := range r.Accessors {
		b.WriteString(acc.String())
	}

	return b.String()
}

// Value is an immutable tagged union over the VTC value domain.
// The zero Value is Nil.
type Value struct {
	ref     *Reference
	str     string
	list    []*Value
	integer int64
	float   float64
	format  IntegerFormat
	boolean bool
	typ     Type
}

// nilValue is shared by all Nil constructions.
//
//nolint:gochecknoglobals
var nilValue = &Value{typ: TypeNil}

// NewString creates a string value.
func NewString(s string) *Value {
	return &Value{typ: TypeString, str: s}
}

// NewInteger creates a decimal integer value.
func NewInteger(i int64) *Value {
	return &Value{typ: TypeInteger, integer: i}
}

// NewIntegerFormat creates an integer value carrying its declared base.
func NewIntegerFormat(i int64, format IntegerFormat) *Value {
	return &Value{typ: TypeInteger, integer: i, format: format}
}

// NewFloat creates a float value.
func NewFloat(f float64) *Value {
	return &Value{typ: TypeFloat, float: f}
}

// NewBoolean creates a boolean value.
func NewBoolean(b bool) *Value {
	return &Value{typ: TypeBoolean, boolean: b}
}

// NewNil returns the Nil value.
func NewNil() *Value { return nilValue }

// NewList creates a list value. The item slice is copied so later mutation
// of the argument cannot alter the value.
func NewList(items ...*Value) *Value {
	list := make([]*Value, len(items))
	copy(list, items)

	return &Value{typ: TypeList, list: list}
}

// NewReference creates a reference value.
func NewReference(ref *Reference) *Value {
	return &Value{typ: TypeReference, ref: ref}
}

// NewIntrinsic creates an intrinsic function marker value.
func NewIntrinsic(name string) *Value {
	return &Value{typ: TypeIntrinsic, str: name}
}

// Type returns the variant held by the value.
func (v *Value) Type() Type { return v.typ }

// AsString returns the string payload when the value is a string.
func (v *Value) AsString() (string, bool) {
	return v.str, v.typ == TypeString
}

// AsInteger returns the integer payload when the value is an integer.
func (v *Value) AsInteger() (int64, bool) {
	return v.integer, v.typ == TypeInteger
}

// Format returns the declared base of an integer value.
func (v *Value) Format() IntegerFormat { return v.format }

// AsFloat returns the float payload when the value is a float.
func (v *Value) AsFloat() (float64, bool) {
	return v.float, v.typ == TypeFloat
}

// AsBoolean returns the boolean payload when the value is a boolean.
func (v *Value) AsBoolean() (bool, bool) {
	return v.boolean, v.typ == TypeBoolean
}

// AsList returns a copy of the item slice when the value is a list.
func (v *Value) AsList() ([]*Value, bool) {
	if v.typ != TypeList {
		return nil, false
	}

	list := make([]*Value, len(v.list))
	copy(list, v.list)

	return list, true
}

// Len returns the number of items in a list value, or 0 otherwise.
func (v *Value) Len() int { return len(v.list) }

// Item returns the i'th item of a list value without copying the slice.
func (v *Value) Item(i int) *Value {
	if v.typ != TypeList || i < 0 || i >= len(v.list) {
		return nil
	}

	return v.list[i]
}

// AsReference returns the reference payload when the value is a reference.
func (v *Value) AsReference() (*Reference, bool) {
	return v.ref, v.typ == TypeReference
}

// IntrinsicName returns the function name when the value is an intrinsic
// marker.
func (v *Value) IntrinsicName() (string, bool) {
	return v.str, v.typ == TypeIntrinsic
}

// String renders the display form of the value: strings unquoted, integers
// in their declared base, booleans lowercase, lists bracketed with items in
// source form.
func (v *Value) String() string {
	if v.typ == TypeString {
		return v.str
	}

	return v.Quote()
}

// Quote renders the source form of the value: re-parseable VTC syntax with
// strings quoted and escaped.
func (v *Value) Quote() string {
	switch v.typ {
	case TypeNil:
		return "Nil"
	case TypeString:
		return quoteString(v.str)
	case TypeInteger:
		return formatInteger(v.integer, v.format)
	case TypeFloat:
		return formatFloat(v.float)
	case TypeBoolean:
		if v.boolean {
			return "true"
		}

		return "false"
	case TypeList:
		items := make([]string, len(v.list))
		for i, item := range v.list {
			items[i] = item.Quote()
		}

		return "[" + strings.Join(items, ", ") + "]"
	case TypeReference:
		return v.ref.String()
	case TypeIntrinsic:
		return v.str + "!!"
	default:
		return ""
	}
}

// Equal reports deep equality of two values, including integer formats.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.typ != b.typ {
		return false
	}

	switch a.typ {
	case TypeNil:
		return true
	case TypeString, TypeIntrinsic:
		return a.str == b.str
	case TypeInteger:
		return a.integer == b.integer && a.format == b.format
	case TypeFloat:
		return a.float == b.float
	case TypeBoolean:
		return a.boolean == b.boolean
	case TypeList:
		if len(a.list) != len(b.list) {
			return false
		}

		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}

		return true
	case TypeReference:
		return a.ref.String() == b.ref.String()
	default:
		return false
	}
}

// formatInteger renders an integer in its declared base. The sign precedes
// the base prefix so the result lexes again.
func formatInteger(i int64, format IntegerFormat) string {
	switch format {
	case FormatBinary:
		s := strconv.FormatInt(i, 2)
		if strings.HasPrefix(s, "-") {
			return "-0b" + s[1:]
		}

		return "0b" + s
	case FormatHexadecimal:
		s := strings.ToUpper(strconv.FormatInt(i, 16))
		if strings.HasPrefix(s, "-") {
			return "-0x" + s[1:]
		}

		return "0x" + s
	default:
		return strconv.FormatInt(i, 10)
	}
}

// formatFloat renders a float with a decimal point so the result lexes as a
// float again. Exponent notation is avoided because the grammar has none.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// quoteString renders a double-quoted string literal with escapes.
func quoteString(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('"')

	return b.String()
}
