package token

import (
	"math"
	"strconv"
	"strings"
)

type ValueType int

const (
	ValueNone ValueType = iota
	ValueString
	ValueChar
	ValueName
	ValueInt
	ValueUint
	ValueFloat
	ValueUnparsed
	ValuePrefix
)

func (t ValueType) String() string {
	switch t {
	case ValueNone:
		return "None"
	case ValueString:
		return "String"
	case ValueChar:
		return "Char"
	case ValueName:
		return "Name"
	case ValueInt:
		return "Int"
	case ValueUint:
		return "Uint"
	case ValueFloat:
		return "Float"
	case ValueUnparsed:
		return "Unparsed"
	case ValuePrefix:
		return "Prefix"
	}

	return "<unknown>"
}

// Value is the payload of a token. The zero Value carries nothing.
type Value struct {
	typ ValueType

	// String, Unparsed text or Prefix namespace URI
	str string
	// Unparsed format or Prefix prefix
	aux string

	char  rune
	name  DataName
	int   int64
	uint  uint64
	float float64
}

func StringValue(s string) Value {
	return Value{typ: ValueString, str: s}
}

func CharValue(r rune) Value {
	return Value{typ: ValueChar, char: r}
}

func NameValue(n DataName) Value {
	return Value{typ: ValueName, name: n}
}

func IntValue(i int64) Value {
	return Value{typ: ValueInt, int: i}
}

func UintValue(u uint64) Value {
	return Value{typ: ValueUint, uint: u}
}

func FloatValue(f float64) Value {
	return Value{typ: ValueFloat, float: f}
}

// UnparsedValue holds a block of raw text along with a format containing a
// single {0} placeholder that reproduces the source markup around it.
func UnparsedValue(format, text string) Value {
	return Value{typ: ValueUnparsed, aux: format, str: text}
}

func PrefixValue(prefix, namespace string) Value {
	return Value{typ: ValuePrefix, aux: prefix, str: namespace}
}

func (v Value) Type() ValueType {
	return v.typ
}

func (v Value) IsNone() bool {
	return v.typ == ValueNone
}

func (v Value) String() string {
	switch v.typ {
	case ValueString:
		return v.str
	case ValueChar:
		return string(v.char)
	case ValueName:
		return v.name.String()
	case ValueInt:
		return strconv.FormatInt(v.int, 10)
	case ValueUint:
		return strconv.FormatUint(v.uint, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.float, 'g', -1, 64)
	case ValueUnparsed:
		return FormatUnparsed(v.aux, v.str)
	case ValuePrefix:
		if v.aux == "" {
			return v.str
		}
		return v.aux + "=" + v.str
	}

	return ""
}

// Text returns the value as plain text: strings and characters as-is, names
// by their local part and everything else through String.
func (v Value) Text() string {
	if v.typ == ValueName {
		return v.name.Local
	}
	if v.typ == ValueUnparsed {
		return v.str
	}

	return v.String()
}

func (v Value) AsString() (string, bool) {
	return v.str, v.typ == ValueString
}

func (v Value) AsChar() (rune, bool) {
	return v.char, v.typ == ValueChar
}

func (v Value) AsName() (DataName, bool) {
	return v.name, v.typ == ValueName
}

func (v Value) AsInt() (int64, bool) {
	return v.int, v.typ == ValueInt
}

func (v Value) AsUint() (uint64, bool) {
	return v.uint, v.typ == ValueUint
}

func (v Value) AsFloat() (float64, bool) {
	return v.float, v.typ == ValueFloat
}

func (v Value) AsUnparsed() (format, text string, ok bool) {
	return v.aux, v.str, v.typ == ValueUnparsed
}

func (v Value) AsPrefix() (prefix, namespace string, ok bool) {
	return v.aux, v.str, v.typ == ValuePrefix
}

// Interface returns the payload as a plain Go value, nil for None.
func (v Value) Interface() any {
	switch v.typ {
	case ValueString:
		return v.str
	case ValueChar:
		return v.char
	case ValueName:
		return v.name
	case ValueInt:
		return v.int
	case ValueUint:
		return v.uint
	case ValueFloat:
		return v.float
	case ValueUnparsed, ValuePrefix:
		return v.String()
	}

	return nil
}

func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}

	switch v.typ {
	case ValueNone:
		return true
	case ValueString:
		return v.str == other.str
	case ValueChar:
		return v.char == other.char
	case ValueName:
		return v.name.Equal(other.name)
	case ValueInt:
		return v.int == other.int
	case ValueUint:
		return v.uint == other.uint
	case ValueFloat:
		if math.IsNaN(v.float) {
			return math.IsNaN(other.float)
		}
		return v.float == other.float
	case ValueUnparsed, ValuePrefix:
		return v.aux == other.aux && v.str == other.str
	}

	return false
}

// FormatUnparsed substitutes text into the {0} placeholder of format.
func FormatUnparsed(format, text string) string {
	return strings.Replace(format, "{0}", text, 1)
}
