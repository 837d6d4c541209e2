package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// DeserializeError indicates that stored resume data is not valid ResumeData JSON.
type DeserializeError struct {
	Cause error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("invalid resume data: %v", e.Cause)
}

func (e *DeserializeError) Unwrap() error {
	return e.Cause
}

// DuplicateIDError indicates that an id appears more than once within a list.
type DuplicateIDError struct {
	Section string
	ID      string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate id %q in %s", e.ID, e.Section)
}

// Serialize encodes the resume into the JSON string stored in ResumeRecord.Data.
func Serialize(d *ResumeData) (string, error) {
	if d == nil {
		return "", fmt.Errorf("resume data is nil")
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to marshal resume data: %w", err)
	}
	return string(b), nil
}

// Deserialize decodes a stored resume. Missing lists decode as empty lists.
// A document that decodes but breaks the resume invariants (level bounds,
// required or duplicate ids) is rejected like malformed JSON.
func Deserialize(s string) (*ResumeData, error) {
	raw := bytes.TrimSpace([]byte(s))
	if len(raw) == 0 {
		return nil, &DeserializeError{Cause: fmt.Errorf("empty document")}
	}
	if raw[0] != '{' {
		return nil, &DeserializeError{Cause: fmt.Errorf("document is not a JSON object")}
	}
	var d ResumeData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &DeserializeError{Cause: err}
	}
	d.normalize()
	if err := d.Validate(); err != nil {
		return nil, &DeserializeError{Cause: err}
	}
	return &d, nil
}

// Validate checks level bounds, required ids and id uniqueness per list.
func (d *ResumeData) Validate() error {
	validate := validator.New()
	if err := validate.Struct(d); err != nil {
		return err
	}

	sections := map[string][]string{
		"workExperience": idsOf(d.WorkExperience, func(w WorkExperience) string { return w.ID }),
		"education":      idsOf(d.Education, func(e Education) string { return e.ID }),
		"skills":         idsOf(d.Skills, func(s Skill) string { return s.ID }),
		"languages":      idsOf(d.Languages, func(l Language) string { return l.ID }),
	}
	for _, section := range []string{"workExperience", "education", "skills", "languages"} {
		seen := make(map[string]bool)
		for _, id := range sections[section] {
			if seen[id] {
				return &DuplicateIDError{Section: section, ID: id}
			}
			seen[id] = true
		}
	}
	return nil
}

func idsOf[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}
