// Package schema validates labeled multi-dimensional arrays and tables of
// arrays against declared expectations.
//
// An ArraySchema aggregates independent facets: element type, dimension
// names, shape, name, coordinates, chunk layout, attributes, backend type
// and user checks. Each facet option accepts either a raw value or an
// already-built component schema:
//
//	s, err := schema.NewArraySchema(
//	    schema.WithDType(schema.Integer),
//	    schema.WithDims(schema.Dims{"x", ""}),
//	    schema.WithShape(schema.Shape{10, schema.AnySize}),
//	    schema.WithChunks(schema.ChunkMap{"x": schema.Size(5)}),
//	    schema.WithAttrs(schema.Attrs{"units": schema.AttrValue("m")}),
//	)
//
//	if err := s.Validate(arr); err != nil {
//	    var se *schema.SchemaError
//	    if errors.As(err, &se) {
//	        // arr does not conform
//	    }
//	}
//
// A TableSchema checks named members, table attributes and table checks:
//
//	ts, err := schema.NewTableSchema(
//	    schema.WithDataVar("temp", s),
//	    schema.WithDataVar("mask", nil), // must exist
//	)
//
// Validation is read-only and stops at the first failing facet. Container
// failures are *SchemaError values; malformed schemas yield errors wrapping
// ErrInvalidSchema.
//
// Every schema serializes to a JSON document (MarshalJSON) and decodes back
// (DecodeArraySchema, DecodeTableSchema, Decode) to an equivalent schema.
// DocumentSchema exposes a JSON-Schema companion per document kind for
// structural checks of the serialized form.
//
// The package does not depend on a concrete container model; anything that
// implements Array or Table can be validated.
package schema
