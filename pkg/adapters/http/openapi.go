package http

import (
	"net/http"
	"strings"

	"github.com/aretw0/arrayschema"
	"github.com/aretw0/arrayschema/pkg/schema"
	"github.com/getkin/kin-openapi/openapi3"
)

const apiVersion = "1.0.0"

// OpenAPI describes the HTTP API. Schema bodies reference the JSON-Schema
// companions of the serialized array and table forms.
func OpenAPI() *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "arrayschema",
			Version: apiVersion,
			Description: "Named schemas for labeled arrays, version " +
				strings.TrimSpace(arrayschema.Version),
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}

	for _, kind := range []schema.DocumentKind{schema.DocArray, schema.DocTable} {
		s, _ := schema.DocumentSchema(kind)
		doc.Components.Schemas[string(kind)] = openapi3.NewSchemaRef("", s)
	}
	doc.Components.Schemas["SchemaDocument"] = openapi3.NewSchemaRef("", openapi3.NewOneOfSchema(
		openapi3.NewSchema().WithPropertyRef("schema", openapi3.NewSchemaRef("#/components/schemas/array", nil)),
		openapi3.NewSchema().WithPropertyRef("schema", openapi3.NewSchemaRef("#/components/schemas/table", nil)),
	))
	doc.Components.Schemas["ValidateResponse"] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithProperty("valid", openapi3.NewBoolSchema()).
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("facet", openapi3.NewStringSchema()).
		WithProperty("path", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())))

	name := openapi3.NewPathParameter("name").WithSchema(openapi3.NewStringSchema())
	jsonResponse := func(desc string) *openapi3.Response {
		return openapi3.NewResponse().WithDescription(desc).WithJSONSchema(openapi3.NewObjectSchema())
	}

	doc.AddOperation("/schemas", http.MethodGet, &openapi3.Operation{
		OperationID: "listSchemas",
		Responses:   openapi3.NewResponses(openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: jsonResponse("schema names")})),
	})
	doc.AddOperation("/schemas/{name}", http.MethodGet, &openapi3.Operation{
		OperationID: "getSchema",
		Parameters:  openapi3.Parameters{{Value: name}},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: jsonResponse("stored schema")}),
			openapi3.WithStatus(http.StatusNotFound, &openapi3.ResponseRef{Value: jsonResponse("unknown schema")}),
		),
	})
	doc.AddOperation("/schemas/{name}", http.MethodPut, &openapi3.Operation{
		OperationID: "putSchema",
		Parameters:  openapi3.Parameters{{Value: name}},
		RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/SchemaDocument", nil))},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: jsonResponse("stored")}),
			openapi3.WithStatus(http.StatusBadRequest, &openapi3.ResponseRef{Value: jsonResponse("malformed schema")}),
			openapi3.WithStatus(http.StatusConflict, &openapi3.ResponseRef{Value: jsonResponse("schema exists")}),
		),
	})
	doc.AddOperation("/schemas/{name}", http.MethodDelete, &openapi3.Operation{
		OperationID: "deleteSchema",
		Parameters:  openapi3.Parameters{{Value: name}},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusNoContent, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("deleted")}),
		),
	})
	doc.AddOperation("/schemas/{name}/validate", http.MethodPost, &openapi3.Operation{
		OperationID: "validate",
		Parameters:  openapi3.Parameters{{Value: name}},
		RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithJSONSchema(openapi3.NewObjectSchema())},
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("conforming").
				WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/ValidateResponse", nil))}),
			openapi3.WithStatus(http.StatusUnprocessableEntity, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("not conforming").
				WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/ValidateResponse", nil))}),
			openapi3.WithStatus(http.StatusNotFound, &openapi3.ResponseRef{Value: jsonResponse("unknown schema")}),
		),
	})
	return doc
}

// GetOpenAPI handles GET /openapi.json.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OpenAPI())
}
