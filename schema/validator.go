// Package schema provides JSON-schema validation for raw workflow documents
// before they reach the parser.  Validation pins the structural envelope only
// and tolerates unknown properties, preserving the document model's
// forward-compatibility guarantee.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator validates raw workflow documents.
type Validator struct {
	document *jsonschema.Schema
}

// Issue represents one validation failure.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result holds the outcome of a validation.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// New creates a validator from the embedded document schema.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("document.json", strings.NewReader(documentSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add document schema: %w", err)
	}
	document, err := compiler.Compile("document.json")
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	return &Validator{document: document}, nil
}

// ValidateDocument validates a decoded document value.
func (v *Validator) ValidateDocument(document map[string]interface{}) *Result {
	err := v.document.Validate(document)
	if err == nil {
		return &Result{Valid: true}
	}
	result := &Result{Valid: false}
	if verr, ok := err.(*jsonschema.ValidationError); ok {
		result.Issues = extractIssues(verr)
	} else {
		result.Issues = []Issue{{Path: "$", Message: err.Error()}}
	}
	return result
}

// ValidateDocumentJSON validates a JSON-encoded document.
func (v *Validator) ValidateDocumentJSON(data []byte) *Result {
	var document map[string]interface{}
	if err := json.Unmarshal(data, &document); err != nil {
		return &Result{
			Valid:  false,
			Issues: []Issue{{Path: "$", Message: fmt.Sprintf("invalid JSON: %v", err)}},
		}
	}
	return v.ValidateDocument(document)
}

// extractIssues recursively flattens nested validation errors.
func extractIssues(verr *jsonschema.ValidationError) []Issue {
	var issues []Issue
	if verr.Message != "" {
		issues = append(issues, Issue{Path: verr.InstanceLocation, Message: verr.Message})
	}
	for _, cause := range verr.Causes {
		issues = append(issues, extractIssues(cause)...)
	}
	return issues
}
