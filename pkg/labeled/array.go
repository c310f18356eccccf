// Package labeled is a minimal labeled-array model: arrays with named
// dimensions, coordinates and attributes over an ndarray backend, and tables
// of such arrays. It implements schema.Array and schema.Table.
package labeled

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/aretw0/arrayschema/pkg/ndarray"
	"github.com/aretw0/arrayschema/pkg/schema"
)

var (
	// ErrDimsMismatch is returned when dimension names do not cover the shape.
	ErrDimsMismatch = errors.New("dims do not match shape")
	// ErrInvalidDocument is returned when a container document cannot be decoded.
	ErrInvalidDocument = errors.New("invalid container document")
)

// Array is a labeled n-dimensional array.
type Array struct {
	name   string
	dtype  schema.DType
	dims   []string
	coords map[string]*Array
	attrs  map[string]any
	data   ndarray.Buffer
}

// Option configures an Array.
type Option func(*Array)

// WithName sets the array name.
func WithName(name string) Option {
	return func(a *Array) { a.name = name }
}

// WithDims names the dimensions. Defaults to dim_0, dim_1, ...
func WithDims(dims ...string) Option {
	return func(a *Array) { a.dims = slices.Clone(dims) }
}

// WithCoord attaches a coordinate array. NewArray rejects a nil coord.
func WithCoord(name string, coord *Array) Option {
	return func(a *Array) { a.coords[name] = coord }
}

// WithAttrs merges attributes.
func WithAttrs(attrs map[string]any) Option {
	return func(a *Array) { maps.Copy(a.attrs, attrs) }
}

// NewArray creates an array of dtype backed by data.
func NewArray(dtype schema.DType, data ndarray.Buffer, opts ...Option) (*Array, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrInvalidDocument)
	}
	a := &Array{
		dtype:  dtype,
		coords: make(map[string]*Array),
		attrs:  make(map[string]any),
		data:   data,
	}
	for _, opt := range opts {
		opt(a)
	}
	shape := data.Shape()
	if a.dims == nil {
		a.dims = make([]string, len(shape))
		for i := range shape {
			a.dims[i] = fmt.Sprintf("dim_%d", i)
		}
	}
	if len(a.dims) != len(shape) {
		return nil, fmt.Errorf("%w: %d names for %d dimensions", ErrDimsMismatch, len(a.dims), len(shape))
	}
	for name, coord := range a.coords {
		if coord == nil {
			return nil, fmt.Errorf("%w: coord %q is nil", ErrInvalidDocument, name)
		}
	}
	return a, nil
}

func (a *Array) DType() schema.DType { return a.dtype }
func (a *Array) Name() string        { return a.name }
func (a *Array) Dims() []string      { return slices.Clone(a.dims) }
func (a *Array) Shape() []int        { return a.data.Shape() }
func (a *Array) Data() any           { return a.data }

func (a *Array) Coords() map[string]schema.Array {
	out := make(map[string]schema.Array, len(a.coords))
	for name, c := range a.coords {
		out[name] = c
	}
	return out
}

// Chunks returns the block sizes of a chunked backend, nil otherwise.
func (a *Array) Chunks() [][]int {
	if c, ok := a.data.(*ndarray.Chunked); ok {
		return c.Chunks()
	}
	return nil
}

func (a *Array) Attrs() map[string]any { return maps.Clone(a.attrs) }

func (a *Array) clone() *Array {
	cp := *a
	cp.dims = slices.Clone(a.dims)
	cp.coords = maps.Clone(a.coords)
	cp.attrs = maps.Clone(a.attrs)
	return &cp
}

// AsType returns a copy with a different element type.
func (a *Array) AsType(dtype schema.DType) *Array {
	cp := a.clone()
	cp.dtype = dtype
	return cp
}

// Rename returns a copy with a different name.
func (a *Array) Rename(name string) *Array {
	cp := a.clone()
	cp.name = name
	return cp
}

// Chunk returns a copy backed by a chunked buffer with regular blocks of the
// given size per dimension. Dimensions not listed, or with a size <= 0, are
// kept in one block.
func (a *Array) Chunk(sizes map[string]int) (*Array, error) {
	for dim := range sizes {
		if !slices.Contains(a.dims, dim) {
			return nil, fmt.Errorf("%w: unknown dimension %q", ErrDimsMismatch, dim)
		}
	}
	per := make([]int, len(a.dims))
	for i, dim := range a.dims {
		per[i] = sizes[dim]
	}
	chunked, err := ndarray.Rechunk(a.Shape(), per)
	if err != nil {
		return nil, err
	}
	cp := a.clone()
	cp.data = chunked
	return cp, nil
}

// Load returns a copy backed by a dense buffer.
func (a *Array) Load() (*Array, error) {
	dense, err := ndarray.NewDense(a.Shape()...)
	if err != nil {
		return nil, err
	}
	cp := a.clone()
	cp.data = dense
	return cp, nil
}
