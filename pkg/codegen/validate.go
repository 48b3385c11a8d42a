package codegen

import (
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"os"
)

// ValidationError reports generated text that failed re-parsing or canonical
// formatting. It indicates an internal generator defect and is always fatal
// at build time.
type ValidationError struct {
	Stage string // "parse" or "format"
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("generated code failed %s validation: %v", e.Stage, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate parses the artifact's source back into a syntax tree and applies
// the canonical formatting pass, marking the artifact valid on success.
// Production code has no fallback path once compiled, so unlike interpreter
// binding failures this is strict: any error discards the artifact.
func Validate(a *Artifact) error {
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, a.Package+".gen.go", a.Source, parser.AllErrors); err != nil {
		return &ValidationError{Stage: "parse", Err: err}
	}
	formatted, err := format.Source(a.Source)
	if err != nil {
		return &ValidationError{Stage: "format", Err: err}
	}
	a.Source = formatted
	a.Valid = true
	return nil
}

// WriteFile persists a validated artifact. Artifacts that never passed
// validation are never written to disk.
func (a *Artifact) WriteFile(path string) error {
	if !a.Valid {
		return fmt.Errorf("codegen: refusing to persist unvalidated artifact")
	}
	return os.WriteFile(path, a.Source, 0o644)
}
