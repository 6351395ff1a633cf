package main

import (
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// validateDocument checks a decoded payload against a schema. On failure it
// returns ErrValidation wrapped with the first violation, so err.Error() is
// the complete wire message.
func validateDocument(schema *jsonschema.Schema, doc Document) error {
	if err := schema.Validate(map[string]interface{}(doc)); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, firstViolation(err))
	}
	return nil
}

// firstViolation digs out the innermost cause of a validation error, which
// names the offending field rather than the enclosing object.
func firstViolation(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation != "" {
		return fmt.Sprintf("%s %s", ve.InstanceLocation, ve.Message)
	}
	return ve.Message
}
