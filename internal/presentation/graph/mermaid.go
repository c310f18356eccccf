package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arrayschema/internal/presentation/describe"
	"github.com/aretw0/arrayschema/pkg/schema"
)

// GenerateMermaid produces a Mermaid flowchart of a schema.
// It applies semantic styling:
// - Schema root: ((Circle))
// - Data variable: [[Subroutine]]
// - Coordinate: [/Parallelogram/]
// - Facet: [Rectangle]
func GenerateMermaid(title string, v schema.Validator) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	root := sanitizeMermaidID(title)
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", root, escape(title))

	switch s := v.(type) {
	case *schema.ArraySchema:
		writeArray(&sb, root, s)
	case *schema.TableSchema:
		for _, name := range s.DataVars() {
			id := root + "__" + sanitizeMermaidID(name)
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", id, escape(name))
			fmt.Fprintf(&sb, "    %s --> %s\n", root, id)
			if member, _ := s.DataVar(name); member != nil {
				writeArray(&sb, id, member)
			}
		}
		if s.Coords() != nil {
			fmt.Fprintf(&sb, "    %s -.-> %s__coords[\"coords (reserved)\"]\n", root, root)
		}
	}
	return sb.String()
}

func writeArray(sb *strings.Builder, parent string, s *schema.ArraySchema) {
	for _, f := range describe.Facets(s) {
		if f.Name == "coords" {
			continue
		}
		id := parent + "__" + f.Name
		fmt.Fprintf(sb, "    %s[\"%s: %s\"]\n", id, f.Name, escape(f.Expectation))
		fmt.Fprintf(sb, "    %s --- %s\n", parent, id)
	}
	if s.Coords() == nil {
		return
	}
	for _, key := range s.Coords().Keys() {
		id := parent + "__coord_" + sanitizeMermaidID(key)
		fmt.Fprintf(sb, "    %s[/\"%s\"/]\n", id, escape(key))
		fmt.Fprintf(sb, "    %s -.-> %s\n", parent, id)
		if coord, _ := s.Coords().Coord(key); coord != nil {
			writeArray(sb, id, coord)
		}
	}
}

// escape swaps double quotes for single ones inside Mermaid labels.
func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
