// Package validation checks editor documents against the embedded JSON
// Schema before they are stored.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const documentSchemaPath = "schemas/document.json"

var (
	ErrSchemaInvalid    = errors.New("validation: document schema invalid")
	ErrSchemaValidation = errors.New("validation: document rejected")
)

// Problem is one schema violation, addressed by a JSON pointer into the
// document. The root is "".
type Problem struct {
	Pointer string `json:"pointer"`
	Reason  string `json:"reason"`
}

func (p Problem) String() string {
	pointer := p.Pointer
	if pointer == "" {
		pointer = "/"
	}
	return pointer + ": " + p.Reason
}

// DocumentError is returned when a document fails validation.
type DocumentError struct {
	Problems []Problem
	cause    error
}

func (e *DocumentError) Error() string {
	if len(e.Problems) == 0 && e.cause != nil {
		return ErrSchemaValidation.Error() + ": " + e.cause.Error()
	}
	parts := make([]string, len(e.Problems))
	for i, problem := range e.Problems {
		parts[i] = problem.String()
	}
	return ErrSchemaValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *DocumentError) Is(target error) bool { return target == ErrSchemaValidation }

func (e *DocumentError) Unwrap() error { return e.cause }

// Problems returns the violations carried by err, or nil when err is not a
// document error.
func Problems(err error) []Problem {
	var docErr *DocumentError
	if errors.As(err, &docErr) {
		return docErr.Problems
	}
	return nil
}

var documentSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(documentSchemaPath)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(documentSchemaPath, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(documentSchemaPath)
})

// ValidateDocument checks an editor document {content, root, zones}.
func ValidateDocument(doc map[string]any) error {
	schema, err := documentSchema()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	// The validator expects decoded JSON, not arbitrary Go values.
	encoded, err := json.Marshal(doc)
	if err != nil {
		return &DocumentError{Problems: []Problem{{Reason: err.Error()}}, cause: err}
	}
	decoded, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return &DocumentError{Problems: []Problem{{Reason: err.Error()}}, cause: err}
	}
	if err := schema.Validate(decoded); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &DocumentError{Problems: leafProblems(verr), cause: err}
		}
		return &DocumentError{cause: err}
	}
	return nil
}

// leafProblems flattens the cause tree to its leaves, ordered by pointer.
func leafProblems(root *jsonschema.ValidationError) []Problem {
	var out []Problem
	stack := []*jsonschema.ValidationError{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(node.Causes) == 0 {
			out = append(out, Problem{Pointer: node.InstanceLocation, Reason: strings.TrimSpace(node.Message)})
			continue
		}
		stack = append(stack, node.Causes...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pointer < out[j].Pointer })
	return out
}
