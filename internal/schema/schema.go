// Package schema validates serialized form documents against the embedded
// downstream JSON schema before they leave the conversion pipeline.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed form_schema.json
var formSchemaJSON []byte

// Issue is one schema violation found in a candidate document
type Issue struct {
	Field       string
	Description string
}

func (i Issue) String() string {
	return i.Field + ": " + i.Description
}

// Validator checks serialized documents against the form schema. A
// Validator is safe for concurrent use.
type Validator struct {
	schema *gojsonschema.Schema
}

// New compiles the embedded schema into a fresh validator
func New() (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(formSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to compile embedded form schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns the shared validator for the embedded schema. The schema
// ships inside the binary, so a compile failure is a programming error.
func Default() *Validator {
	defaultOnce.Do(func() {
		v, err := New()
		if err != nil {
			panic(err)
		}
		defaultValidator = v
	})
	return defaultValidator
}

// Validate checks one serialized document. The returned issues describe
// every violation found; err reports only mechanical failures such as
// unparseable input.
func (v *Validator) Validate(document []byte) ([]Issue, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	issues := make([]Issue, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, Issue{Field: desc.Field(), Description: desc.Description()})
	}
	return issues, nil
}
