package pipeline

import "fmt"

// CollectionError reports upstream research that was unreachable or
// unparsable.
type CollectionError struct {
	Source  string
	Message string
	Err     error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collection from %s: %s", e.Source, e.Message)
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a failure to pull structured records out of
// unstructured text.
type ExtractionError struct {
	Kind    string
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %s", e.Kind, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing required run identity. Raised before
// any stage runs and always fatal.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration: %s", e.Message)
}

// Match ambiguity is deliberately absent from this taxonomy: an ambiguous
// match is recorded as a low-confidence decision, never as an error.
