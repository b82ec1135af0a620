package todo

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

// Schema identifiers of the embedded schemas.
const (
	TaskSchemaURL      = "https://taskremind.local/tasks.schema.json"
	DirectorySchemaURL = "https://taskremind.local/employees.schema.json"
)

var schemaFiles = map[string]string{
	TaskSchemaURL:      "schema/tasks.schema.json",
	DirectorySchemaURL: "schema/employees.schema.json",
}

var (
	compileOnce sync.Once
	compiled    map[string]*jsonschema.Schema
	compileErr  error
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid  bool
	Errors []error
}

// Err joins the validation errors, or returns nil when valid.
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	return errors.Join(r.Errors...)
}

func (r *ValidationResult) add(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

func schemaFor(url string) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		for u, name := range schemaFiles {
			data, err := schemaFS.ReadFile(name)
			if err != nil {
				compileErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(u, bytes.NewReader(data)); err != nil {
				compileErr = fmt.Errorf("add schema %s: %w", name, err)
				return
			}
		}
		compiled = make(map[string]*jsonschema.Schema, len(schemaFiles))
		for u := range schemaFiles {
			s, err := compiler.Compile(u)
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", u, err)
				return
			}
			compiled[u] = s
		}
	})
	if compileErr != nil {
		return nil, compileErr
	}
	return compiled[url], nil
}

// ValidateTaskFile checks raw task file contents against the task schema
// and then checks that every entry decodes and has a parseable due date.
func ValidateTaskFile(data []byte) *ValidationResult {
	result := validateWithSchema(data, TaskSchemaURL)
	if !result.Valid {
		return result
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		result.add(&ValidationError{Err: err})
		return result
	}
	for i, raw := range entries {
		path := fmt.Sprintf("[%d]", i)
		var task Task
		if err := json.Unmarshal(raw, &task); err != nil {
			result.add(&ValidationError{Path: path, Err: err})
			continue
		}
		if err := task.Validate(); err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				path += "." + pe.Field
			}
			result.add(&ValidationError{Path: path, Err: err})
		}
	}
	return result
}

// ValidateDirectoryFile checks raw employee directory contents.
func ValidateDirectoryFile(data []byte) *ValidationResult {
	return validateWithSchema(data, DirectorySchemaURL)
}

func validateWithSchema(data []byte, url string) *ValidationResult {
	result := &ValidationResult{Valid: true, Errors: make([]error, 0)}

	schema, err := schemaFor(url)
	if err != nil {
		result.add(err)
		return result
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.add(&ValidationError{Err: fmt.Errorf("parse json: %w", err)})
		return result
	}

	if err := schema.Validate(doc); err != nil {
		appendSchemaErrors(result, err)
	}
	return result
}

func appendSchemaErrors(result *ValidationResult, err error) {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.add(err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.add(&ValidationError{
			Path: instancePath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// instancePath renders a schema instance location for error messages:
// "/0/due_date" in a task file becomes "[0].due_date" and "/janed" in the
// directory becomes "janed".
func instancePath(loc string) string {
	loc = strings.TrimPrefix(strings.TrimPrefix(loc, "#"), "/")
	if loc == "" {
		return ""
	}
	var b strings.Builder
	for _, tok := range strings.Split(loc, "/") {
		tok = pointerUnescaper.Replace(tok)
		if n, err := strconv.Atoi(tok); err == nil && n >= 0 {
			fmt.Fprintf(&b, "[%d]", n)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}
