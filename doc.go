/*
Package arrayschema validates labeled multi-dimensional arrays and tables of
arrays against declarative schemas.

A schema states what a container must look like: element type, dimension
names, shape, chunk layout, backend type, attribute metadata, coordinates
and custom checks. Validation is read-only and fails fast with a
*schema.SchemaError describing the first violation.

# Packages

  - pkg/schema: The schema engine. Component schemas, ArraySchema,
    TableSchema and their JSON form.
  - pkg/labeled: A reference container model decodable from JSON or YAML.
  - pkg/registry: Named schemas kept in a store, validated with logging and
    metrics hooks.
  - pkg/adapters: Schema stores (memory, file, redis) and the HTTP and MCP
    surfaces.

# Usage

	s := schema.MustArraySchema(
		schema.WithDType(schema.Float64),
		schema.WithDims(schema.Dims{"x", "y"}),
		schema.WithShape(schema.Shape{10, schema.AnySize}),
	)
	if err := s.Validate(arr); err != nil {
		var se *schema.SchemaError
		if errors.As(err, &se) {
			log.Printf("%s: %s", se.Facet, se.Msg)
		}
	}

Schemas can be stored by name and looked up later:

	reg, store, err := arrayschema.Open(arrayschema.StoreConfig{Backend: arrayschema.BackendFile, Dir: "schemas"})
	if err != nil { ... }
	defer store.Close()
	err = reg.Validate(ctx, "temps", arr)
*/
package arrayschema
