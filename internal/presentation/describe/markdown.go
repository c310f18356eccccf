package describe

import (
	"fmt"
	"strings"

	"github.com/aretw0/arrayschema/pkg/schema"
)

// Facet is one set facet of an array schema with its serialized expectation.
type Facet struct {
	Name        string
	Expectation string
}

type serializer interface {
	Serialize() any
}

// Facets lists the set facets of s in document order.
func Facets(s *schema.ArraySchema) []Facet {
	candidates := []struct {
		name string
		v    serializer
		set  bool
	}{
		{"dtype", s.DType(), s.DType() != nil},
		{"dims", s.Dims(), s.Dims() != nil},
		{"shape", s.Shape(), s.Shape() != nil},
		{"coords", s.Coords(), s.Coords() != nil},
		{"name", s.Name(), s.Name() != nil},
		{"chunks", s.Chunks(), s.Chunks() != nil},
		{"attrs", s.Attrs(), s.Attrs() != nil},
		{"array_type", s.ArrayType(), s.ArrayType() != nil},
	}

	var out []Facet
	for _, c := range candidates {
		if !c.set {
			continue
		}
		data, err := schema.Marshal(c.v)
		if err != nil {
			data = []byte(err.Error())
		}
		out = append(out, Facet{Name: c.name, Expectation: string(data)})
	}
	if n := len(s.Checks()); n > 0 {
		out = append(out, Facet{Name: "checks", Expectation: fmt.Sprintf("%d custom checks", n)})
	}
	return out
}

// Markdown renders a schema as a markdown document: a facet table for an
// array schema, one section per data variable for a table schema.
func Markdown(title string, v schema.Validator) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "_%s_\n\n", schema.Describe(v))

	switch s := v.(type) {
	case *schema.ArraySchema:
		writeFacets(&sb, s)
	case *schema.TableSchema:
		for _, name := range s.DataVars() {
			fmt.Fprintf(&sb, "## %s\n\n", name)
			member, _ := s.DataVar(name)
			if member == nil {
				sb.WriteString("Any array.\n\n")
				continue
			}
			writeFacets(&sb, member)
		}
		if s.Attrs() != nil {
			data, _ := schema.Marshal(s.Attrs())
			fmt.Fprintf(&sb, "## attrs\n\n```json\n%s\n```\n\n", data)
		}
		if s.Coords() != nil {
			sb.WriteString("## coords\n\nCoordinate schemas are declared but not validated on tables yet.\n\n")
		}
	}
	return sb.String()
}

func writeFacets(sb *strings.Builder, s *schema.ArraySchema) {
	facets := Facets(s)
	if len(facets) == 0 {
		sb.WriteString("No constraints.\n\n")
		return
	}
	sb.WriteString("| Facet | Expectation |\n|---|---|\n")
	for _, f := range facets {
		fmt.Fprintf(sb, "| %s | `%s` |\n", f.Name, strings.ReplaceAll(f.Expectation, "|", "\\|"))
	}
	sb.WriteString("\n")
}
