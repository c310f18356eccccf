package labeled

import (
	"fmt"

	"github.com/aretw0/arrayschema/pkg/ndarray"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Backend names used by container documents.
const (
	BackendDense   = "dense"
	BackendChunked = "chunked"
)

// ArrayDocument describes an array in a JSON or YAML document.
type ArrayDocument struct {
	Name      string                   `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	DType     string                   `json:"dtype" yaml:"dtype" mapstructure:"dtype"`
	Dims      []string                 `json:"dims,omitempty" yaml:"dims,omitempty" mapstructure:"dims"`
	Shape     []int                    `json:"shape" yaml:"shape" mapstructure:"shape"`
	Chunks    [][]int                  `json:"chunks,omitempty" yaml:"chunks,omitempty" mapstructure:"chunks"`
	Attrs     map[string]any           `json:"attrs,omitempty" yaml:"attrs,omitempty" mapstructure:"attrs"`
	Coords    map[string]ArrayDocument `json:"coords,omitempty" yaml:"coords,omitempty" mapstructure:"coords"`
	ArrayType string                   `json:"array_type,omitempty" yaml:"array_type,omitempty" mapstructure:"array_type"`
}

// TableDocument describes a table in a JSON or YAML document.
type TableDocument struct {
	DataVars map[string]ArrayDocument `json:"data_vars" yaml:"data_vars" mapstructure:"data_vars"`
	Coords   map[string]ArrayDocument `json:"coords,omitempty" yaml:"coords,omitempty" mapstructure:"coords"`
	Attrs    map[string]any           `json:"attrs,omitempty" yaml:"attrs,omitempty" mapstructure:"attrs"`
}

// ParseDocument decodes a JSON or YAML container document. Documents with
// a data_vars key are tables, anything else is an array. The result is a
// *Array or a *Table.
func ParseDocument(data []byte) (any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}
	if _, ok := raw["data_vars"]; ok {
		return DecodeTable(raw)
	}
	return DecodeArray(raw)
}

// DecodeArray builds an Array from a generic map.
func DecodeArray(raw map[string]any) (*Array, error) {
	var doc ArrayDocument
	if err := decode(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Build()
}

// DecodeTable builds a Table from a generic map.
func DecodeTable(raw map[string]any) (*Table, error) {
	var doc TableDocument
	if err := decode(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Build()
}

func decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// Build turns the document into an Array.
func (d ArrayDocument) Build() (*Array, error) {
	dtype, err := schema.ParseDType(d.DType)
	if err != nil {
		return nil, fmt.Errorf("%w: array %q: %v", ErrInvalidDocument, d.Name, err)
	}
	buf, err := d.buffer()
	if err != nil {
		return nil, fmt.Errorf("%w: array %q: %v", ErrInvalidDocument, d.Name, err)
	}

	opts := []Option{WithName(d.Name), WithAttrs(d.Attrs)}
	if d.Dims != nil {
		opts = append(opts, WithDims(d.Dims...))
	}
	for name, cd := range d.Coords {
		if cd.Name == "" {
			cd.Name = name
		}
		coord, err := cd.Build()
		if err != nil {
			return nil, fmt.Errorf("coord %s: %w", name, err)
		}
		opts = append(opts, WithCoord(name, coord))
	}
	return NewArray(dtype, buf, opts...)
}

func (d ArrayDocument) buffer() (ndarray.Buffer, error) {
	shape := d.Shape
	if shape == nil && d.Chunks != nil {
		shape = make([]int, len(d.Chunks))
		for i, blocks := range d.Chunks {
			for _, b := range blocks {
				shape[i] += b
			}
		}
	}
	if shape == nil {
		shape = []int{}
	}

	switch d.ArrayType {
	case "":
		if d.Chunks != nil {
			return ndarray.NewChunked(shape, d.Chunks)
		}
		return ndarray.NewDense(shape...)
	case BackendDense:
		if d.Chunks != nil {
			return nil, fmt.Errorf("dense array cannot have chunks")
		}
		return ndarray.NewDense(shape...)
	case BackendChunked:
		if d.Chunks != nil {
			return ndarray.NewChunked(shape, d.Chunks)
		}
		return ndarray.Rechunk(shape, make([]int, len(shape)))
	}
	return nil, fmt.Errorf("unknown array_type %q (want %s or %s)", d.ArrayType, BackendDense, BackendChunked)
}

// Build turns the document into a Table.
func (d TableDocument) Build() (*Table, error) {
	vars := make(map[string]*Array, len(d.DataVars))
	for name, vd := range d.DataVars {
		if vd.Name == "" {
			vd.Name = name
		}
		a, err := vd.Build()
		if err != nil {
			return nil, fmt.Errorf("data variable %s: %w", name, err)
		}
		vars[name] = a
	}
	opts := []TableOption{WithTableAttrs(d.Attrs)}
	for name, cd := range d.Coords {
		if cd.Name == "" {
			cd.Name = name
		}
		c, err := cd.Build()
		if err != nil {
			return nil, fmt.Errorf("coord %s: %w", name, err)
		}
		opts = append(opts, WithTableCoord(name, c))
	}
	return NewTable(vars, opts...), nil
}

// Document converts an Array back to its document form.
func (a *Array) Document() ArrayDocument {
	doc := ArrayDocument{
		Name:   a.name,
		DType:  a.dtype.String(),
		Dims:   a.Dims(),
		Shape:  a.Shape(),
		Chunks: a.Chunks(),
		Attrs:  a.Attrs(),
	}
	if doc.Chunks != nil {
		doc.ArrayType = BackendChunked
	} else {
		doc.ArrayType = BackendDense
	}
	if len(a.coords) > 0 {
		doc.Coords = make(map[string]ArrayDocument, len(a.coords))
		for name, c := range a.coords {
			doc.Coords[name] = c.Document()
		}
	}
	return doc
}

// Document converts a Table back to its document form.
func (t *Table) Document() TableDocument {
	doc := TableDocument{DataVars: make(map[string]ArrayDocument, len(t.vars)), Attrs: t.Attrs()}
	for name, a := range t.vars {
		doc.DataVars[name] = a.Document()
	}
	if len(t.coords) > 0 {
		doc.Coords = make(map[string]ArrayDocument, len(t.coords))
		for name, c := range t.coords {
			doc.Coords[name] = c.Document()
		}
	}
	return doc
}
