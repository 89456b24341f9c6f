package domain

// ValidationResult is the outcome of validating a payload against a schema.
// Errors is empty when Valid is true.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}
