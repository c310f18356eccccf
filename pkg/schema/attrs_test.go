package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrType_Check(t *testing.T) {
	tests := []struct {
		typ  AttrType
		ok   []any
		fail []any
	}{
		{StringAttr, []any{"m", ""}, []any{1, nil, []string{"a"}}},
		{IntegerAttr, []any{1, int64(2), uint8(3), 4.0, json.Number("5")}, []any{2.5, "1", true}},
		{NumberAttr, []any{1, 2.5, float32(1), json.Number("1.5")}, []any{"1", nil}},
		{BooleanAttr, []any{true, false}, []any{0, "true"}},
		{ArrayAttr, []any{[]any{1}, []string{"a"}, [2]int{1, 2}}, []any{"abc", map[string]any{}}},
		{ObjectAttr, []any{map[string]any{"a": 1}, map[string]int{}}, []any{map[int]string{}, []any{}}},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			for _, v := range tt.ok {
				assert.Truef(t, tt.typ.Check(v), "%#v should be %s", v, tt.typ)
			}
			for _, v := range tt.fail {
				assert.Falsef(t, tt.typ.Check(v), "%#v should not be %s", v, tt.typ)
			}
		})
	}
}

func TestAttrSchema_Validate(t *testing.T) {
	assert.NoError(t, (&AttrSchema{}).Validate("anything"))

	requireSchemaError(t, AttrOfType(StringAttr).Validate(5), "attrs", "attrs 5 is not of type string")
	assert.NoError(t, AttrOfType(IntegerAttr).Validate(3.0))

	assert.NoError(t, AttrValue(1).Validate(float64(1)))
	assert.NoError(t, AttrValue(uint64(math.MaxUint64)).Validate(uint64(math.MaxUint64)))
	assert.NoError(t, AttrValue(int64(7)).Validate(uint8(7)))
	requireSchemaError(t, AttrValue(int64(1<<53)).Validate(int64(1<<53+1)), "attrs", "!=")
	assert.NoError(t, AttrValue([]any{"a", "b"}).Validate([]string{"a", "b"}))
	requireSchemaError(t, AttrValue("m").Validate("km"), "attrs", "attr km != m")

	both, err := NewAttrSchema(NumberAttr, 2.5)
	require.NoError(t, err)
	requireSchemaError(t, both.Validate("2.5"), "attrs", "is not of type number")
	requireSchemaError(t, both.Validate(2), "attrs", "attr 2 != 2.5")

	_, err = NewAttrSchema("date", nil)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestAttrsSchema_KeyPolicy(t *testing.T) {
	declared := Attrs{"a": nil, "b": AttrValue(1)}

	s, err := NewAttrsSchema(declared)
	require.NoError(t, err)
	assert.True(t, s.RequireAllKeys())
	assert.True(t, s.AllowExtraKeys())
	assert.NoError(t, s.Validate(map[string]any{"a": "x", "b": 1, "c": 2}))
	requireSchemaError(t, s.Validate(map[string]any{"a": 1}), "attrs", "attrs has missing keys: [b]")

	strict, err := NewAttrsSchema(declared, AllowExtraKeys(false))
	require.NoError(t, err)
	requireSchemaError(t, strict.Validate(map[string]any{"a": 1, "b": 1, "c": 2}), "attrs", "attrs has extra keys: [c]")

	lenient, err := NewAttrsSchema(declared, RequireAllKeys(false))
	require.NoError(t, err)
	assert.NoError(t, lenient.Validate(map[string]any{"a": 1}))

	err = s.Validate(map[string]any{"a": 1, "b": 2})
	requireSchemaError(t, err, "attrs", "attrs.b: attr 2 != 1")
	assert.Equal(t, []string{"attrs", "b"}, err.(*SchemaError).Path)

	_, err = NewAttrsSchema(Attrs{"a": AttrOfType("date")})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestAttrsSchema_JSON(t *testing.T) {
	decode := func(b []byte) (*AttrsSchema, error) {
		s := &AttrsSchema{}
		return s, s.UnmarshalJSON(b)
	}

	in := `{"require_all_keys":true,"allow_extra_keys":false,"attrs":{"units":{"type":"string","value":"m"},"version":{"type":null,"value":2}}}`
	s, err := decode([]byte(in))
	require.NoError(t, err)
	assert.False(t, s.AllowExtraKeys())
	assert.NoError(t, s.Validate(map[string]any{"units": "m", "version": 2}))

	data := roundTrip(t, s, decode)
	assert.Equal(t, in, string(data))

	defaults, err := decode([]byte(`{"attrs":{}}`))
	require.NoError(t, err)
	assert.True(t, defaults.RequireAllKeys())
	assert.True(t, defaults.AllowExtraKeys())

	_, err = decode([]byte(`{"attrs":{"a":{"type":"date"}}}`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
	_, err = decode([]byte(`{"attrs":{},"strict":true}`))
	assert.ErrorIs(t, err, ErrInvalidSchema)
}
