package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Validate maps cfg onto target through target's JSON tags. Unknown keys are
// ignored. A value of the wrong type is reported as a *FieldError.
func Validate(cfg map[string]any, target any) error {
	b, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &FieldError{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return fmt.Errorf("failed to unmarshal config to struct: %w", err)
	}
	return nil
}
