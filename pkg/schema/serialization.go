package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// toInt returns integer values exactly, so 64-bit integers that share a
// float64 representation still compare unequal.
func toInt(v any) (*big.Int, bool) {
	switch n := v.(type) {
	case int:
		return big.NewInt(int64(n)), true
	case int8:
		return big.NewInt(int64(n)), true
	case int16:
		return big.NewInt(int64(n)), true
	case int32:
		return big.NewInt(int64(n)), true
	case int64:
		return big.NewInt(n), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case json.Number:
		return new(big.Int).SetString(n.String(), 10)
	}
	return nil, false
}

// toFloat widens the numeric forms found in attribute maps.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// equalValues compares integers exactly and other numbers as float64 across
// Go numeric types, and
// everything else structurally, falling back to the JSON encoding so that
// []any from a decoded document equals a typed slice.
func equalValues(expected, actual any) bool {
	if ei, ok := toInt(expected); ok {
		if ai, ok := toInt(actual); ok {
			return ei.Cmp(ai) == 0
		}
	}
	ef, eok := toFloat(expected)
	af, aok := toFloat(actual)
	if eok || aok {
		return eok && aok && ef == af
	}
	if reflect.DeepEqual(expected, actual) {
		return true
	}
	eb, err := json.Marshal(expected)
	if err != nil {
		return false
	}
	ab, err := json.Marshal(actual)
	if err != nil {
		return false
	}
	return bytes.Equal(eb, ab)
}

// unwrapInvalid keeps ErrInvalidSchema errors raised by nested decoders and
// marks plain decoding errors as malformed schemas.
func unwrapInvalid(facet string, err error) error {
	if errors.Is(err, ErrInvalidSchema) {
		return err
	}
	return invalidf("%s: %v", facet, err)
}

// decodeObject splits a JSON object into its raw members, rejecting keys
// outside allowed.
func decodeObject(facet string, data []byte, allowed ...string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalidf("%s: %v", facet, err)
	}
	if raw == nil {
		return nil, invalidf("%s: expected an object", facet)
	}
	for key := range raw {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			return nil, invalidf("%s: unknown key %q", facet, key)
		}
	}
	return raw, nil
}

// isNull reports whether raw is absent or the JSON null literal.
func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// Marshal renders a schema document without HTML escaping, so typestrs
// such as "<i4" stay readable. Key order follows Serialize.
func Marshal(v interface{ Serialize() any }) ([]byte, error) {
	return marshal(v.Serialize())
}

// MarshalIndent is Marshal with indentation.
func MarshalIndent(v interface{ Serialize() any }, prefix, indent string) ([]byte, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(v any) ([]byte, error) {
	if om, ok := v.(*orderedmap.OrderedMap[string, any]); ok {
		return marshalOrdered(om)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshalOrdered(om *orderedmap.OrderedMap[string, any]) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := marshal(pair.Key)
		if err != nil {
			return nil, err
		}
		value, err := marshal(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", pair.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
