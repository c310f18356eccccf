package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// DType is a concrete array element type: a kind code plus item size in
// bytes, in the numpy typestr vocabulary.
type DType struct {
	code byte
	size int
}

// --- Built-in Element Types ---

var (
	Bool       = DType{'b', 1}
	Int8       = DType{'i', 1}
	Int16      = DType{'i', 2}
	Int32      = DType{'i', 4}
	Int64      = DType{'i', 8}
	Uint8      = DType{'u', 1}
	Uint16     = DType{'u', 2}
	Uint32     = DType{'u', 4}
	Uint64     = DType{'u', 8}
	Float16    = DType{'f', 2}
	Float32    = DType{'f', 4}
	Float64    = DType{'f', 8}
	Complex64  = DType{'c', 8}
	Complex128 = DType{'c', 16}
	// Object covers strings and arbitrary values.
	Object = DType{'O', 8}
)

var dtypeNames = map[DType]string{
	Bool:       "bool",
	Int8:       "int8",
	Int16:      "int16",
	Int32:      "int32",
	Int64:      "int64",
	Uint8:      "uint8",
	Uint16:     "uint16",
	Uint32:     "uint32",
	Uint64:     "uint64",
	Float16:    "float16",
	Float32:    "float32",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
	Object:     "object",
}

// aliases resolve to their platform-default width.
var dtypeAliases = map[string]DType{
	"int":     Int64,
	"uint":    Uint64,
	"float":   Float64,
	"complex": Complex128,
	"string":  Object,
	"str":     Object,
	"?":       Bool,
	"O":       Object,
}

// Code is the one-letter kind code (b, i, u, f, c, O).
func (d DType) Code() byte { return d.code }

// ItemSize is the element width in bytes.
func (d DType) ItemSize() int { return d.size }

// IsZero reports whether d is the unset zero value.
func (d DType) IsZero() bool { return d.code == 0 }

// String returns the canonical name, e.g. "int32".
func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}
	if d.IsZero() {
		return "<nil>"
	}
	return d.TypeStr()
}

// TypeStr returns the little-endian typestr, e.g. "<i4", "|b1", "|O".
func (d DType) TypeStr() string {
	switch {
	case d.code == 'O':
		return "|O"
	case d.size == 1:
		return "|" + string(d.code) + "1"
	default:
		return "<" + string(d.code) + strconv.Itoa(d.size)
	}
}

// ParseDType parses a dtype from a name ("int32", "float", "bool"),
// a typestr ("<i4", "|b1", "=f8") or a bare code ("i4", "?").
// Big-endian typestrs are rejected.
func ParseDType(s string) (DType, error) {
	s = strings.TrimSpace(s)
	for d, name := range dtypeNames {
		if name == s {
			return d, nil
		}
	}
	if d, ok := dtypeAliases[s]; ok {
		return d, nil
	}

	code := s
	if len(code) > 0 {
		switch code[0] {
		case '<', '|', '=':
			code = code[1:]
		case '>':
			return DType{}, invalidf("big-endian dtype %q is not supported", s)
		}
	}
	if d, ok := dtypeAliases[code]; ok && len(code) == 1 {
		return d, nil
	}
	if len(code) < 2 {
		return DType{}, invalidf("unknown dtype %q", s)
	}
	size, err := strconv.Atoi(code[1:])
	if err != nil {
		return DType{}, invalidf("unknown dtype %q", s)
	}
	d := DType{code: code[0], size: size}
	if _, ok := dtypeNames[d]; !ok {
		return DType{}, invalidf("unknown dtype %q", s)
	}
	return d, nil
}

// MustDType is like ParseDType but panics on error.
func MustDType(s string) DType {
	d, err := ParseDType(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Kind is an abstract element-type marker matching a family of dtypes.
type Kind string

const (
	Floating        Kind = "floating"
	Integer         Kind = "integer"
	SignedInteger   Kind = "signedinteger"
	UnsignedInteger Kind = "unsignedinteger"
	Generic         Kind = "generic"
)

// ParseKind looks up a kind marker by name.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case Floating, Integer, SignedInteger, UnsignedInteger, Generic:
		return k, true
	}
	return "", false
}

// Matches reports whether d is a sub-type of the kind.
func (k Kind) Matches(d DType) bool {
	switch k {
	case Floating:
		return d.code == 'f'
	case Integer:
		return d.code == 'i' || d.code == 'u'
	case SignedInteger:
		return d.code == 'i'
	case UnsignedInteger:
		return d.code == 'u'
	case Generic:
		return !d.IsZero()
	}
	return false
}

func (k Kind) String() string { return string(k) }

// describe renders v for error messages.
func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v)
}
