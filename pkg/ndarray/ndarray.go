// Package ndarray provides the backend buffer types behind labeled arrays.
//
// Only shape and partition layout are modeled; element storage is out of
// scope. A Dense buffer is held in memory as one block. A Chunked buffer is
// split into per-axis blocks, like a lazily evaluated array would be.
package ndarray

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeExtent is returned when a shape contains a negative size.
	ErrNegativeExtent = errors.New("negative extent")
	// ErrChunkLayout is returned when block sizes do not cover the shape.
	ErrChunkLayout = errors.New("invalid chunk layout")
)

// Buffer is implemented by every backend type.
type Buffer interface {
	Shape() []int
}

// Dense is an unpartitioned in-memory buffer.
type Dense struct {
	shape []int
}

// NewDense creates a dense buffer with the given shape.
func NewDense(shape ...int) (*Dense, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	return &Dense{shape: clone(shape)}, nil
}

// Shape returns a copy of the buffer shape.
func (d *Dense) Shape() []int { return clone(d.shape) }

// Size is the total number of elements.
func (d *Dense) Size() int { return product(d.shape) }

// Chunked is a buffer partitioned into blocks along every axis.
type Chunked struct {
	shape  []int
	chunks [][]int
}

// NewChunked creates a chunked buffer. chunks holds, per axis, the ordered
// block sizes; they must sum to the axis extent.
func NewChunked(shape []int, chunks [][]int) (*Chunked, error) {
	if err := checkShape(shape); err != nil {
		return nil, err
	}
	if len(chunks) != len(shape) {
		return nil, fmt.Errorf("%w: %d axes of chunks for %d dimensions", ErrChunkLayout, len(chunks), len(shape))
	}
	layout := make([][]int, len(chunks))
	for axis, blocks := range chunks {
		sum := 0
		for _, b := range blocks {
			if b <= 0 {
				return nil, fmt.Errorf("%w: axis %d has non-positive block %d", ErrChunkLayout, axis, b)
			}
			sum += b
		}
		if sum != shape[axis] {
			return nil, fmt.Errorf("%w: axis %d blocks sum to %d, extent is %d", ErrChunkLayout, axis, sum, shape[axis])
		}
		layout[axis] = clone(blocks)
	}
	return &Chunked{shape: clone(shape), chunks: layout}, nil
}

// Rechunk partitions shape into regular blocks of the given per-axis sizes.
// The last block along an axis holds the remainder. A size <= 0 keeps the
// whole axis in one block.
func Rechunk(shape []int, sizes []int) (*Chunked, error) {
	if len(sizes) != len(shape) {
		return nil, fmt.Errorf("%w: %d chunk sizes for %d dimensions", ErrChunkLayout, len(sizes), len(shape))
	}
	chunks := make([][]int, len(shape))
	for axis, extent := range shape {
		chunks[axis] = Blocks(extent, sizes[axis])
	}
	return NewChunked(shape, chunks)
}

// Blocks splits extent into blocks of size n with a ragged tail.
func Blocks(extent, n int) []int {
	if extent <= 0 {
		return []int{}
	}
	if n <= 0 || n >= extent {
		return []int{extent}
	}
	out := make([]int, 0, extent/n+1)
	for left := extent; left > 0; left -= n {
		out = append(out, min(n, left))
	}
	return out
}

// Shape returns a copy of the buffer shape.
func (c *Chunked) Shape() []int { return clone(c.shape) }

// Chunks returns a copy of the per-axis block sizes.
func (c *Chunked) Chunks() [][]int {
	out := make([][]int, len(c.chunks))
	for i, blocks := range c.chunks {
		out[i] = clone(blocks)
	}
	return out
}

// NumBlocks is the total number of blocks.
func (c *Chunked) NumBlocks() int {
	n := 1
	for _, blocks := range c.chunks {
		n *= len(blocks)
	}
	return n
}

func checkShape(shape []int) error {
	for axis, n := range shape {
		if n < 0 {
			return fmt.Errorf("%w: axis %d has size %d", ErrNegativeExtent, axis, n)
		}
	}
	return nil
}

func product(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

func clone(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}
