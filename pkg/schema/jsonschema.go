package schema

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// DocumentKind names a serialized schema form.
type DocumentKind string

const (
	DocDType     DocumentKind = "dtype"
	DocDims      DocumentKind = "dims"
	DocShape     DocumentKind = "shape"
	DocName      DocumentKind = "name"
	DocChunks    DocumentKind = "chunks"
	DocArrayType DocumentKind = "array_type"
	DocAttr      DocumentKind = "attr"
	DocAttrs     DocumentKind = "attrs"
	DocCoords    DocumentKind = "coords"
	DocArray     DocumentKind = "array"
	DocTable     DocumentKind = "table"
)

func (*DTypeSchema) DocKind() DocumentKind     { return DocDType }
func (*DimsSchema) DocKind() DocumentKind      { return DocDims }
func (*ShapeSchema) DocKind() DocumentKind     { return DocShape }
func (*NameSchema) DocKind() DocumentKind      { return DocName }
func (*ChunksSchema) DocKind() DocumentKind    { return DocChunks }
func (*ArrayTypeSchema) DocKind() DocumentKind { return DocArrayType }
func (*AttrSchema) DocKind() DocumentKind      { return DocAttr }
func (*AttrsSchema) DocKind() DocumentKind     { return DocAttrs }
func (*CoordsSchema) DocKind() DocumentKind    { return DocCoords }

// DocumentKinds lists every kind DocumentSchema knows.
func DocumentKinds() []DocumentKind {
	return []DocumentKind{
		DocDType, DocDims, DocShape, DocName, DocChunks, DocArrayType,
		DocAttr, DocAttrs, DocCoords, DocArray, DocTable,
	}
}

// DocumentSchema returns the JSON-Schema companion describing the serialized
// form of kind. It only covers document structure; semantic checks (known
// dtype names, chunk values) happen when decoding.
func DocumentSchema(kind DocumentKind) (*openapi3.Schema, error) {
	switch kind {
	case DocDType, DocName:
		return openapi3.NewStringSchema(), nil
	case DocDims:
		return openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema().WithNullable()), nil
	case DocShape:
		return openapi3.NewArraySchema().WithItems(openapi3.NewIntegerSchema().WithNullable()), nil
	case DocChunks:
		return chunksDocument(), nil
	case DocArrayType:
		names := make([]any, 0, len(arrayTypes))
		for _, n := range ArrayTypeNames() {
			names = append(names, n)
		}
		return openapi3.NewStringSchema().WithEnum(names...), nil
	case DocAttr:
		return attrDocument(), nil
	case DocAttrs:
		return keyedDocument("attrs", attrDocument()), nil
	case DocCoords:
		return keyedDocument("coords", openapi3.NewObjectSchema().WithNullable()), nil
	case DocArray:
		return arrayDocument(), nil
	case DocTable:
		return openapi3.NewObjectSchema().
			WithProperty("data_vars", openapi3.NewObjectSchema().
				WithAdditionalProperties(arrayDocument().WithNullable())).
			WithProperty("attrs", openapi3.NewObjectSchema()).
			WithProperty("coords", keyedDocument("coords", openapi3.NewObjectSchema().WithNullable())), nil
	}
	return nil, invalidf("unknown document kind %q", string(kind))
}

func chunksDocument() *openapi3.Schema {
	spec := openapi3.NewAnyOfSchema(
		openapi3.NewIntegerSchema().WithNullable(),
		openapi3.NewArraySchema().WithItems(openapi3.NewIntegerSchema()),
	)
	return openapi3.NewAnyOfSchema(
		openapi3.NewBoolSchema(),
		openapi3.NewObjectSchema().WithAdditionalProperties(spec),
	)
}

func attrDocument() *openapi3.Schema {
	types := make([]any, 0, 6)
	for _, t := range []AttrType{StringAttr, IntegerAttr, NumberAttr, BooleanAttr, ArrayAttr, ObjectAttr} {
		types = append(types, string(t))
	}
	return openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema().WithEnum(types...).WithNullable()).
		WithProperty("value", openapi3.NewAnyOfSchema(
			openapi3.NewStringSchema(),
			openapi3.NewFloat64Schema(),
			openapi3.NewBoolSchema(),
			openapi3.NewArraySchema(),
			openapi3.NewObjectSchema(),
		).WithNullable())
}

func keyedDocument(key string, member *openapi3.Schema) *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("require_all_keys", openapi3.NewBoolSchema()).
		WithProperty("allow_extra_keys", openapi3.NewBoolSchema()).
		WithProperty(key, openapi3.NewObjectSchema().WithAdditionalProperties(member))
}

// arrayDocument nests coordinate schemas one level deep only.
func arrayDocument() *openapi3.Schema {
	doc := openapi3.NewObjectSchema()
	for _, kind := range []DocumentKind{DocDType, DocDims, DocShape, DocCoords, DocName, DocChunks, DocAttrs, DocArrayType} {
		s, _ := DocumentSchema(kind)
		doc = doc.WithProperty(string(kind), s)
	}
	return doc
}

// CheckDocument structurally checks a JSON-compatible value against the
// companion schema of kind. Failures wrap ErrInvalidSchema.
func CheckDocument(kind DocumentKind, doc any) error {
	s, err := DocumentSchema(kind)
	if err != nil {
		return err
	}
	// normalize Go values to the shapes encoding/json produces
	data, err := json.Marshal(doc)
	if err != nil {
		return invalidf("%s document: %v", kind, err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return invalidf("%s document: %v", kind, err)
	}
	if err := s.VisitJSON(value); err != nil {
		return invalidf("%s document: %v", kind, err)
	}
	return nil
}

// CheckJSON is CheckDocument for raw JSON.
func CheckJSON(kind DocumentKind, data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return invalidf("%s document: %v", kind, err)
	}
	return CheckDocument(kind, value)
}

// Decode checks data against the companion schema of kind and decodes it
// into an ArraySchema or a TableSchema.
func Decode(kind DocumentKind, data []byte) (Validator, error) {
	if err := CheckJSON(kind, data); err != nil {
		return nil, err
	}
	switch kind {
	case DocArray:
		return DecodeArraySchema(data)
	case DocTable:
		return DecodeTableSchema(data)
	}
	return nil, invalidf("%s documents cannot be validated against", kind)
}

// Describe renders a one-line summary of a schema, used by listings.
func Describe(v Validator) string {
	switch s := v.(type) {
	case *ArraySchema:
		return fmt.Sprintf("array schema with %d facets", len(s.facets()))
	case *TableSchema:
		return fmt.Sprintf("table schema with %d data variables", s.members().Len())
	}
	return fmt.Sprintf("%T", v)
}
