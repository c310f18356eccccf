package describe_test

import (
	"testing"

	"github.com/aretw0/arrayschema/internal/presentation/describe"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestFacets(t *testing.T) {
	s := schema.MustArraySchema(
		schema.WithName(schema.Name("temp")),
		schema.WithDType(schema.Int32),
		schema.WithShape(schema.Shape{2, schema.AnySize}),
		schema.WithChecks(func(schema.Array) error { return nil }),
	)
	assert.Equal(t, []describe.Facet{
		{Name: "dtype", Expectation: `"<i4"`},
		{Name: "shape", Expectation: `[2,null]`},
		{Name: "name", Expectation: `"temp"`},
		{Name: "checks", Expectation: "1 custom checks"},
	}, describe.Facets(s))
}

func TestMarkdown(t *testing.T) {
	table := schema.MustTableSchema(
		schema.WithDataVar("temp", schema.MustArraySchema(schema.WithDims(schema.Dims{"x"}))),
		schema.WithDataVar("any", nil),
	)
	md := describe.Markdown("weather", table)

	assert.Contains(t, md, "# weather")
	assert.Contains(t, md, "_table schema with 2 data variables_")
	assert.Contains(t, md, "## temp")
	assert.Contains(t, md, "| dims | `[\"x\"]` |")
	assert.Contains(t, md, "## any\n\nAny array.")

	md = describe.Markdown("empty", schema.MustArraySchema())
	assert.Contains(t, md, "No constraints.")
}
