package ports

import "github.com/bft-labs/rtfeed/internal/domain"

// Validator validates JSON documents against a JSON schema.
type Validator interface {
	// Validate checks data against schema. Both are JSON documents.
	// A document that fails the schema yields Valid=false and a nil error;
	// an error is returned only when the schema or data cannot be compiled.
	Validate(schema, data []byte) (domain.ValidationResult, error)
}
