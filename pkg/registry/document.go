package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/aretw0/arrayschema/pkg/schema"
	"gopkg.in/yaml.v3"
)

// ParseDocument reads a schema document in JSON or YAML. It accepts either
// an envelope {"kind": ..., "schema": {...}} or a bare schema, in which case
// a data_vars key marks a table schema and anything else an array schema.
//
// JSON input keeps its key order. YAML is converted to JSON first and
// data_vars order follows the converted map.
func ParseDocument(data []byte) (ports.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		var value any
		if err := yaml.Unmarshal(trimmed, &value); err != nil {
			return ports.Document{}, fmt.Errorf("%w: %v", schema.ErrInvalidSchema, err)
		}
		converted, err := json.Marshal(value)
		if err != nil {
			return ports.Document{}, fmt.Errorf("%w: %v", schema.ErrInvalidSchema, err)
		}
		trimmed = converted
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || fields == nil {
		return ports.Document{}, fmt.Errorf("%w: schema document must be an object", schema.ErrInvalidSchema)
	}

	if rawKind, ok := fields["kind"]; ok {
		if len(fields) != 2 || fields["schema"] == nil {
			return ports.Document{}, fmt.Errorf("%w: envelope must hold exactly kind and schema", schema.ErrInvalidSchema)
		}
		var kind schema.DocumentKind
		if err := json.Unmarshal(rawKind, &kind); err != nil {
			return ports.Document{}, fmt.Errorf("%w: kind: %v", schema.ErrInvalidSchema, err)
		}
		if kind != schema.DocArray && kind != schema.DocTable {
			return ports.Document{}, fmt.Errorf("%w: unsupported document kind %q", schema.ErrInvalidSchema, kind)
		}
		return ports.Document{Kind: kind, Schema: fields["schema"]}, nil
	}

	kind := schema.DocArray
	if _, ok := fields["data_vars"]; ok {
		kind = schema.DocTable
	}
	return ports.Document{Kind: kind, Schema: json.RawMessage(trimmed)}, nil
}
