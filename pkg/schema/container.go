package schema

import "reflect"

// Array is the read-only view of a labeled array that schemas validate.
type Array interface {
	DType() DType
	Name() string
	Dims() []string
	Shape() []int
	Coords() map[string]Array
	// Chunks returns per-axis block sizes, nil when unpartitioned.
	Chunks() [][]int
	Attrs() map[string]any
	// Data returns the backend buffer; its dynamic type is the array_type.
	Data() any
}

// Table is the read-only view of a collection of named arrays.
type Table interface {
	DataVars() map[string]Array
	Coords() map[string]Array
	Attrs() map[string]any
}

// Check is a user predicate run after every facet of an ArraySchema passed.
// Its error is returned as is.
type Check func(Array) error

// TableCheck is a user predicate run after every facet of a TableSchema
// passed.
type TableCheck func(Table) error

// Validator is implemented by ArraySchema and TableSchema.
type Validator interface {
	Validate(v any) error
	DocKind() DocumentKind
	Serialize() any
}

// isNil reports whether v is nil or an interface holding a nil pointer,
// map, slice, func or chan.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
