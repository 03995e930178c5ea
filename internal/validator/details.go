package validator

import (
	"embed"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"

	"memberhub_backend/internal/models"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// DetailsValidator checks an opportunity's details bag against the JSON
// schema for its type.
type DetailsValidator struct {
	schemas map[models.OpportunityType]*gojsonschema.Schema
}

// NewDetailsValidator compiles the embedded schemas once.
func NewDetailsValidator() (*DetailsValidator, error) {
	dv := &DetailsValidator{schemas: make(map[models.OpportunityType]*gojsonschema.Schema)}
	for _, t := range models.OpportunityTypes {
		raw, err := schemaFS.ReadFile("schemas/" + string(t) + ".json")
		if err != nil {
			return nil, fmt.Errorf("read %s schema: %w", t, err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", t, err)
		}
		dv.schemas[t] = schema
	}
	return dv, nil
}

// Validate checks raw JSON. An empty document is treated as {}.
func (dv *DetailsValidator) Validate(t models.OpportunityType, raw []byte) error {
	schema, ok := dv.schemas[t]
	if !ok {
		return &ValidationError{Errors: map[string]string{"type": "Must be one of: job, investment, partnership, collaboration"}}
	}
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationError{Errors: map[string]string{"details": "Must be a JSON object"}}
	}
	if result.Valid() {
		return nil
	}

	errs := make(map[string]string, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := "details"
		if f := desc.Field(); f != "" && f != "(root)" {
			field = "details." + f
		} else if prop, ok := desc.Details()["property"].(string); ok {
			field = "details." + prop
		}
		if _, seen := errs[field]; !seen {
			errs[field] = desc.Description()
		}
	}
	return &ValidationError{Errors: errs}
}

// SchemaTypes lists the types with a registered schema.
func (dv *DetailsValidator) SchemaTypes() []string {
	out := make([]string, 0, len(dv.schemas))
	for t := range dv.schemas {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}
