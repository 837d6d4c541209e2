// Package rendering turns a resume into HTML using one of the fixed template variants.
package rendering

import "fmt"

// TemplateError is a failure to parse or execute one of the embedded templates.
type TemplateError struct {
	Name    string
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("template %s: %s", e.Name, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError reports a preview that could not be produced for its layout.
type RenderError struct {
	Template string
	Cause    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s preview: %v", e.Template, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}
