// Package manifest loads and validates module manifests: small YAML
// documents that describe a dynamically-loadable block module (its
// type name, required engine version, source entrypoint, and the
// statics it declares), analogous to a plugin descriptor. Grounded on
// the teacher's playbook-loading pipeline (embedded JSON-Schema
// validation, then strict struct decode, then semver gating), redirected
// from playbook documents to module manifests.
package manifest

import (
	_ "embed" // Required for //go:embed directive
	"fmt"
	"sync"

	streamprocerrors "github.com/sofia-silvestri/SignalProcessing/pkg/streamproc/v1/errors"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed manifest_schema_v1.0.0.json
var schemaV1Bytes []byte

var (
	schemaV1Loader gojsonschema.JSONLoader
	schemaV1       *gojsonschema.Schema
	schemaOnce     sync.Once
	schemaErr      error
)

// loadSchema ensures the embedded schema is loaded and compiled thread-safely, only once.
func loadSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		if len(schemaV1Bytes) == 0 {
			schemaErr = streamprocerrors.NewConfigError("embedded schema 'manifest_schema_v1.0.0.json' is empty or not found", nil)
			return
		}
		schemaV1Loader = gojsonschema.NewBytesLoader(schemaV1Bytes)
		schemaV1, schemaErr = gojsonschema.NewSchema(schemaV1Loader)
		if schemaErr != nil {
			schemaErr = streamprocerrors.NewConfigError("failed to compile embedded manifest schema", schemaErr)
		}
	})
	return schemaV1, schemaErr
}

// ValidateWithSchema validates documentYAML against the embedded module
// manifest schema, converting YAML to the generic structure the
// JSON-Schema validator expects.
func ValidateWithSchema(documentYAML []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}

	var jsonData interface{}
	if err := yaml.Unmarshal(documentYAML, &jsonData); err != nil {
		return streamprocerrors.NewConfigError("failed to parse module manifest YAML for schema validation", err)
	}

	docLoader := gojsonschema.NewGoLoader(jsonData)
	result, err := schema.Validate(docLoader)
	if err != nil {
		return streamprocerrors.NewConfigError("manifest schema validation process failed", err)
	}

	if !result.Valid() {
		errMsg := "module manifest failed JSON schema validation:"
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "(root)" || field == "" {
				field = desc.Context().String()
			}
			errMsg += fmt.Sprintf("\n  - Field '%s': %s", field, desc.Description())
		}
		return streamprocerrors.NewConfigError(errMsg, nil)
	}

	return nil
}
