package schema

import (
	"bytes"
	"encoding/json"
)

// CoordsSpec is accepted by WithCoords and WithTableCoords: Coords or
// *CoordsSchema.
type CoordsSpec interface {
	coordsSchema() (*CoordsSchema, error)
}

// Coords maps coordinate names to array schemas. A nil entry only requires
// the coordinate to exist.
type Coords map[string]*ArraySchema

// CoordsSchema checks the named coordinate arrays of a container.
type CoordsSchema struct {
	coords map[string]*ArraySchema
	keyPolicy
}

// NewCoordsSchema builds a CoordsSchema. By default all declared
// coordinates are required and extra ones are allowed.
func NewCoordsSchema(coords Coords, opts ...KeyOption) (*CoordsSchema, error) {
	s := &CoordsSchema{coords: make(map[string]*ArraySchema, len(coords)), keyPolicy: defaultKeyPolicy()}
	for _, opt := range opts {
		opt(&s.keyPolicy)
	}
	for key, c := range coords {
		if c == nil {
			c = &ArraySchema{}
		}
		s.coords[key] = c
	}
	return s, nil
}

func (c Coords) coordsSchema() (*CoordsSchema, error) { return NewCoordsSchema(c) }

func (s *CoordsSchema) coordsSchema() (*CoordsSchema, error) {
	if s == nil {
		return nil, invalidf("coords: nil schema")
	}
	return s, nil
}

// Keys returns the declared coordinate names, sorted.
func (s *CoordsSchema) Keys() []string { return sortedKeys(s.coords) }

// Coord returns the schema for a coordinate.
func (s *CoordsSchema) Coord(key string) (*ArraySchema, bool) {
	c, ok := s.coords[key]
	return c, ok
}

func (s *CoordsSchema) RequireAllKeys() bool { return s.requireAll }
func (s *CoordsSchema) AllowExtraKeys() bool { return s.allowExtra }

// Validate applies the key policy, then validates each declared coordinate
// that is present.
func (s *CoordsSchema) Validate(coords map[string]Array) error {
	if err := s.check("coords", s.Keys(), sortedKeys(coords)); err != nil {
		return err
	}
	for _, key := range s.Keys() {
		arr, ok := coords[key]
		if !ok {
			continue
		}
		if isNil(arr) {
			return failf("coords", "coordinate %s is nil", key)
		}
		cs := s.coords[key]
		if err := cs.validateFacets(arr); err != nil {
			return within(err, "coords", key)
		}
		if err := cs.runChecks(arr); err != nil {
			return err
		}
	}
	return nil
}

type coordsJSON struct {
	RequireAllKeys bool                    `json:"require_all_keys"`
	AllowExtraKeys bool                    `json:"allow_extra_keys"`
	Coords         map[string]*ArraySchema `json:"coords"`
}

func (s *CoordsSchema) Serialize() any {
	coords := s.coords
	if coords == nil {
		coords = map[string]*ArraySchema{}
	}
	return coordsJSON{RequireAllKeys: s.requireAll, AllowExtraKeys: s.allowExtra, Coords: coords}
}

func (s *CoordsSchema) MarshalJSON() ([]byte, error) { return marshal(s.Serialize()) }

func (s *CoordsSchema) UnmarshalJSON(data []byte) error {
	raw := coordsJSON{RequireAllKeys: true, AllowExtraKeys: true}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return unwrapInvalid("coords", err)
	}
	parsed, err := NewCoordsSchema(raw.Coords, RequireAllKeys(raw.RequireAllKeys), AllowExtraKeys(raw.AllowExtraKeys))
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}
