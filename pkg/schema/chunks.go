package schema

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"sort"
)

// WholeDim as a chunk size means one block spanning the whole dimension.
const WholeDim = -1

type chunkKind uint8

const (
	chunkInvalid chunkKind = iota
	chunkSize
	chunkBlocks
	chunkAny
)

// ChunkSpec is the expected partitioning of one dimension.
// The zero value is invalid; use Size, Blocks or AnyChunks.
type ChunkSpec struct {
	kind   chunkKind
	size   int
	blocks []int
}

// Size expects regular blocks of n with a ragged tail no larger than n.
// A negative n means the whole dimension.
func Size(n int) ChunkSpec { return ChunkSpec{kind: chunkSize, size: n} }

// Blocks expects exactly these block sizes.
func Blocks(sizes ...int) ChunkSpec {
	return ChunkSpec{kind: chunkBlocks, blocks: slices.Clone(sizes)}
}

// AnyChunks accepts any partitioning of the dimension.
var AnyChunks = ChunkSpec{kind: chunkAny}

func (c ChunkSpec) serialize() any {
	switch c.kind {
	case chunkSize:
		return c.size
	case chunkBlocks:
		return append([]int{}, c.blocks...)
	}
	return nil
}

func (c ChunkSpec) String() string {
	switch c.kind {
	case chunkSize:
		return describe(c.size)
	case chunkBlocks:
		return tuple(c.blocks)
	case chunkAny:
		return "null"
	}
	return "<invalid>"
}

// ChunksSpec is accepted by WithChunks: Chunked, ChunkMap or *ChunksSchema.
type ChunksSpec interface {
	chunksSchema() (*ChunksSchema, error)
}

// Chunked expects an array to be (true) or not to be (false) partitioned.
type Chunked bool

// ChunkMap maps dimension names to expected partitioning.
type ChunkMap map[string]ChunkSpec

// ChunksSchema checks the partition layout of an array.
type ChunksSchema struct {
	chunked bool
	dims    map[string]ChunkSpec
}

// NewChunksSchema normalizes spec into a ChunksSchema.
func NewChunksSchema(spec ChunksSpec) (*ChunksSchema, error) {
	if spec == nil {
		return nil, invalidf("chunks: nil specification")
	}
	return spec.chunksSchema()
}

func (c Chunked) chunksSchema() (*ChunksSchema, error) {
	return &ChunksSchema{chunked: bool(c)}, nil
}

func (m ChunkMap) chunksSchema() (*ChunksSchema, error) {
	if m == nil {
		return nil, invalidf("chunks: nil map")
	}
	dims := make(map[string]ChunkSpec, len(m))
	for dim, spec := range m {
		if spec.kind == chunkInvalid {
			return nil, invalidf("unknown chunks specification type for %s: zero ChunkSpec", dim)
		}
		spec.blocks = slices.Clone(spec.blocks)
		dims[dim] = spec
	}
	return &ChunksSchema{chunked: true, dims: dims}, nil
}

func (s *ChunksSchema) chunksSchema() (*ChunksSchema, error) {
	if s == nil {
		return nil, invalidf("chunks: nil schema")
	}
	return s, nil
}

// ChunksFromValue builds a ChunksSchema from a decoded JSON value: a bool,
// or an object mapping dimension names to an integer, an integer array or
// null. Anything else is a malformed schema.
func ChunksFromValue(v any) (*ChunksSchema, error) {
	switch v := v.(type) {
	case bool:
		return Chunked(v).chunksSchema()
	case map[string]any:
		m := make(ChunkMap, len(v))
		for dim, raw := range v {
			spec, err := chunkSpecFromValue(raw)
			if err != nil {
				return nil, err
			}
			m[dim] = spec
		}
		return m.chunksSchema()
	case ChunkMap:
		return v.chunksSchema()
	case Chunked:
		return v.chunksSchema()
	}
	return nil, invalidf("unknown chunks specification type: %T", v)
}

func chunkSpecFromValue(v any) (ChunkSpec, error) {
	switch v := v.(type) {
	case nil:
		return AnyChunks, nil
	case []int:
		return Blocks(v...), nil
	case []any:
		blocks := make([]int, len(v))
		for i, b := range v {
			n, ok := wholeNumber(b)
			if !ok {
				return ChunkSpec{}, invalidf("unknown chunks specification type: %T in block list", b)
			}
			blocks[i] = n
		}
		return Blocks(blocks...), nil
	}
	if n, ok := wholeNumber(v); ok {
		return Size(n), nil
	}
	return ChunkSpec{}, invalidf("unknown chunks specification type: %T", v)
}

// wholeNumber converts the integral number forms produced by JSON and YAML
// decoders.
func wholeNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

// IsMap reports whether per-dimension expectations are set.
func (s *ChunksSchema) IsMap() bool { return s.dims != nil }

// Chunked reports whether the array is expected to be partitioned.
func (s *ChunksSchema) Chunked() bool { return s.chunked }

// Spec returns the expectation for dim.
func (s *ChunksSchema) Spec(dim string) (ChunkSpec, bool) {
	spec, ok := s.dims[dim]
	return spec, ok
}

// Validate checks chunks, the per-axis block sizes of an array (nil when
// unpartitioned), using dims and shape to resolve dimension names and
// whole-dimension sizes.
func (s *ChunksSchema) Validate(chunks [][]int, dims []string, shape []int) error {
	if s.dims == nil {
		switch {
		case s.chunked && len(chunks) == 0:
			return failf("chunks", "expected array to be chunked but it is not")
		case !s.chunked && len(chunks) > 0:
			return failf("chunks", "expected unchunked array but it is chunked")
		}
		return nil
	}
	if chunks == nil {
		return failf("chunks", "expected array to be chunked but it is not")
	}

	dimChunks := make(map[string][]int, len(dims))
	dimSizes := make(map[string]int, len(dims))
	for i, dim := range dims {
		if i < len(chunks) {
			dimChunks[dim] = chunks[i]
		}
		if i < len(shape) {
			dimSizes[dim] = shape[i]
		}
	}

	keys := make([]string, 0, len(s.dims))
	for dim := range s.dims {
		keys = append(keys, dim)
	}
	sort.Strings(keys)

	for _, dim := range keys {
		spec := s.dims[dim]
		if spec.kind == chunkAny {
			continue
		}
		actual, ok := dimChunks[dim]
		if !ok {
			return failf("chunks", "%s chunks did not match: dimension not present", dim)
		}
		switch spec.kind {
		case chunkSize:
			expected := spec.size
			if expected < 0 {
				expected = dimSizes[dim]
			}
			if !regular(actual, expected) {
				return failf("chunks", "%s chunks did not match: %s != %d", dim, tuple(actual), expected)
			}
		case chunkBlocks:
			if !slices.Equal(actual, spec.blocks) {
				return failf("chunks", "%s chunks did not match: %s != %s", dim, tuple(actual), tuple(spec.blocks))
			}
		}
	}
	return nil
}

// regular reports whether every block but the last equals n and the last
// does not exceed it.
func regular(blocks []int, n int) bool {
	if len(blocks) == 0 {
		return true
	}
	for _, b := range blocks[:len(blocks)-1] {
		if b != n {
			return false
		}
	}
	return blocks[len(blocks)-1] <= n
}

// Serialize returns a bool or an object keyed by dimension.
func (s *ChunksSchema) Serialize() any {
	if s.dims == nil {
		return s.chunked
	}
	out := make(map[string]any, len(s.dims))
	for dim, spec := range s.dims {
		out[dim] = spec.serialize()
	}
	return out
}

func (s *ChunksSchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *ChunksSchema) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return invalidf("chunks: %v", err)
	}
	parsed, err := ChunksFromValue(raw)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}
