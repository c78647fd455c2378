package wireformat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://revrobotics.com/chupdater/result.schema.json"

var (
	schemaOnce     sync.Once
	schemaDoc      []byte
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

// Schema returns the JSON Schema of the serialized result bundle.
// It only constrains value types: unknown enum names are valid, and the
// detail message and cause may be null.
func Schema() ([]byte, error) {
	loadSchema()
	if schemaErr != nil {
		return nil, schemaErr
	}
	return bytes.Clone(schemaDoc), nil
}

// ValidateJSON checks a serialized bundle against Schema.
func ValidateJSON(data []byte) error {
	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return &CodecError{Op: "unmarshal", Format: string(FormatJSON), Err: err}
	}
	return validateValue(obj)
}

func validateValue(obj interface{}) error {
	loadSchema()
	if schemaErr != nil {
		return schemaErr
	}
	if err := schemaCompiled.Validate(obj); err != nil {
		return &CodecError{Op: "validate", Format: string(FormatJSON), Err: err}
	}
	return nil
}

func loadSchema() {
	schemaOnce.Do(func() {
		r := &invopop.Reflector{
			Anonymous:                  true,
			ExpandedStruct:             true,
			AllowAdditionalProperties:  true,
			RequiredFromJSONSchemaTags: true,
		}
		s := r.Reflect(&ResultWire{})
		s.Title = "Control Hub Updater result bundle"

		for _, key := range []string{KeyDetailMessage, KeyCause} {
			allowNull(s, key)
		}

		doc, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			schemaErr = fmt.Errorf("failed to marshal result schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(schemaURL, bytes.NewReader(doc)); err != nil {
			schemaErr = fmt.Errorf("failed to add result schema: %w", err)
			return
		}
		compiled, err := compiler.Compile(schemaURL)
		if err != nil {
			schemaErr = fmt.Errorf("invalid result schema: %w", err)
			return
		}

		schemaDoc = doc
		schemaCompiled = compiled
	})
}

// allowNull rewrites the property schema for key into anyOf [original, null].
func allowNull(s *invopop.Schema, key string) {
	if s.Properties == nil {
		return
	}
	prop, ok := s.Properties.Get(key)
	if !ok || prop == nil {
		return
	}
	original := *prop
	*prop = invopop.Schema{
		AnyOf: []*invopop.Schema{&original, {Type: "null"}},
	}
}
