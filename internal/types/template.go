package types

import "strings"

// TemplateVariant identifies one of the fixed visual layouts.
type TemplateVariant string

// Known template variants.
const (
	TemplateUI1 TemplateVariant = "ui1"
	TemplateUI2 TemplateVariant = "ui2"
	TemplateUI3 TemplateVariant = "ui3"
	TemplateUI4 TemplateVariant = "ui4"
	TemplateUI5 TemplateVariant = "ui5"
)

// DefaultTemplate is used whenever a stored or requested variant is not recognized.
const DefaultTemplate = TemplateUI1

// Variants returns the known variants in display order.
func Variants() []TemplateVariant {
	return []TemplateVariant{TemplateUI1, TemplateUI2, TemplateUI3, TemplateUI4, TemplateUI5}
}

// IsKnown reports whether v is one of the five known variants.
func (v TemplateVariant) IsKnown() bool {
	switch v {
	case TemplateUI1, TemplateUI2, TemplateUI3, TemplateUI4, TemplateUI5:
		return true
	}
	return false
}

// Resolve returns v when it is known and DefaultTemplate otherwise.
func (v TemplateVariant) Resolve() TemplateVariant {
	if v.IsKnown() {
		return v
	}
	return DefaultTemplate
}

// ParseTemplateVariant converts a raw template id into a variant. It never fails:
// surrounding whitespace and case are ignored and anything unrecognized maps to ui1.
func ParseTemplateVariant(raw string) TemplateVariant {
	return TemplateVariant(strings.ToLower(strings.TrimSpace(raw))).Resolve()
}
