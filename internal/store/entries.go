package store

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/jonathan/cvmaker/internal/types"
)

// Section names one of the id-keyed lists of a resume.
type Section string

// Resume list sections.
const (
	SectionWorkExperience Section = "workExperience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionLanguages      Section = "languages"
)

// Sections returns every list section.
func Sections() []Section {
	return []Section{SectionWorkExperience, SectionEducation, SectionSkills, SectionLanguages}
}

// ParseSection accepts the wire name of a section plus the short aliases used in URLs.
func ParseSection(raw string) (Section, bool) {
	switch raw {
	case "workExperience", "work", "experience":
		return SectionWorkExperience, true
	case "education":
		return SectionEducation, true
	case "skills", "skill":
		return SectionSkills, true
	case "languages", "language":
		return SectionLanguages, true
	}
	return "", false
}

// FieldError reports an update that names a field the section does not have,
// or carries a value of the wrong type.
type FieldError struct {
	Section Section
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Section, e.Field, e.Message)
}

// AddEntry appends an empty entry to a section and returns its new id.
func (s *Store) AddEntry(section Section) (string, error) {
	var id string
	var err error
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		switch section {
		case SectionWorkExperience:
			id = s.issueIDLocked()
			d.WorkExperience = append(d.WorkExperience, types.WorkExperience{ID: id, Responsibilities: []string{}})
		case SectionEducation:
			id = s.issueIDLocked()
			d.Education = append(d.Education, types.Education{ID: id})
		case SectionSkills:
			id = s.issueIDLocked()
			d.Skills = append(d.Skills, types.Skill{ID: id, Level: DefaultSkillLevel})
		case SectionLanguages:
			id = s.issueIDLocked()
			d.Languages = append(d.Languages, types.Language{ID: id, Level: DefaultSkillLevel})
		default:
			err = fmt.Errorf("unknown section %q", section)
			return d, false
		}
		return d, true
	})
	return id, err
}

// AddWorkExperience appends an empty position and returns its id.
func (s *Store) AddWorkExperience() string {
	id, _ := s.AddEntry(SectionWorkExperience)
	return id
}

// AddEducation appends an empty education entry and returns its id.
func (s *Store) AddEducation() string {
	id, _ := s.AddEntry(SectionEducation)
	return id
}

// AddSkill appends a skill at the default level and returns its id.
func (s *Store) AddSkill() string {
	id, _ := s.AddEntry(SectionSkills)
	return id
}

// AddLanguage appends a language at the default level and returns its id.
func (s *Store) AddLanguage() string {
	id, _ := s.AddEntry(SectionLanguages)
	return id
}

// RemoveEntry deletes the entry with the given id. Absent ids are ignored.
// Removed ids are never issued again.
func (s *Store) RemoveEntry(section Section, id string) {
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		before := sectionLen(d, section)
		switch section {
		case SectionWorkExperience:
			d.WorkExperience = slices.DeleteFunc(d.WorkExperience, func(w types.WorkExperience) bool { return w.ID == id })
		case SectionEducation:
			d.Education = slices.DeleteFunc(d.Education, func(e types.Education) bool { return e.ID == id })
		case SectionSkills:
			d.Skills = slices.DeleteFunc(d.Skills, func(sk types.Skill) bool { return sk.ID == id })
		case SectionLanguages:
			d.Languages = slices.DeleteFunc(d.Languages, func(l types.Language) bool { return l.ID == id })
		}
		return d, sectionLen(d, section) != before
	})
}

// UpdateEntry sets one field of the entry with the given id. An absent id is a
// no-op; an unknown field or a value of the wrong type is a *FieldError.
//
// Text fields take a string. Level takes an int (or a numeric string) and is
// clamped to [0,100]. Responsibilities take a []string.
func (s *Store) UpdateEntry(section Section, id, field string, value any) error {
	var err error
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		switch section {
		case SectionWorkExperience:
			i := slices.IndexFunc(d.WorkExperience, func(w types.WorkExperience) bool { return w.ID == id })
			if i < 0 {
				return d, false
			}
			err = setWorkField(&d.WorkExperience[i], field, value)
		case SectionEducation:
			i := slices.IndexFunc(d.Education, func(e types.Education) bool { return e.ID == id })
			if i < 0 {
				return d, false
			}
			err = setEducationField(&d.Education[i], field, value)
		case SectionSkills:
			i := slices.IndexFunc(d.Skills, func(sk types.Skill) bool { return sk.ID == id })
			if i < 0 {
				return d, false
			}
			err = setLeveled(section, &d.Skills[i].Name, &d.Skills[i].Level, field, value)
		case SectionLanguages:
			i := slices.IndexFunc(d.Languages, func(l types.Language) bool { return l.ID == id })
			if i < 0 {
				return d, false
			}
			err = setLeveled(section, &d.Languages[i].Name, &d.Languages[i].Level, field, value)
		default:
			err = fmt.Errorf("unknown section %q", section)
		}
		return d, err == nil
	})
	return err
}

// AddResponsibility appends an empty bullet to a position.
func (s *Store) AddResponsibility(workID string) {
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		i := slices.IndexFunc(d.WorkExperience, func(w types.WorkExperience) bool { return w.ID == workID })
		if i < 0 {
			return d, false
		}
		d.WorkExperience[i].Responsibilities = append(d.WorkExperience[i].Responsibilities, "")
		return d, true
	})
}

// UpdateResponsibility replaces one bullet of a position. Out-of-range indexes are ignored.
func (s *Store) UpdateResponsibility(workID string, index int, text string) {
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		i := slices.IndexFunc(d.WorkExperience, func(w types.WorkExperience) bool { return w.ID == workID })
		if i < 0 || index < 0 || index >= len(d.WorkExperience[i].Responsibilities) {
			return d, false
		}
		d.WorkExperience[i].Responsibilities[index] = text
		return d, true
	})
}

// RemoveResponsibility deletes one bullet of a position. Out-of-range indexes are ignored.
func (s *Store) RemoveResponsibility(workID string, index int) {
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		i := slices.IndexFunc(d.WorkExperience, func(w types.WorkExperience) bool { return w.ID == workID })
		if i < 0 || index < 0 || index >= len(d.WorkExperience[i].Responsibilities) {
			return d, false
		}
		d.WorkExperience[i].Responsibilities = slices.Delete(d.WorkExperience[i].Responsibilities, index, index+1)
		return d, true
	})
}

func sectionLen(d *types.ResumeData, section Section) int {
	switch section {
	case SectionWorkExperience:
		return len(d.WorkExperience)
	case SectionEducation:
		return len(d.Education)
	case SectionSkills:
		return len(d.Skills)
	case SectionLanguages:
		return len(d.Languages)
	}
	return 0
}

func setWorkField(w *types.WorkExperience, field string, value any) error {
	if field == "responsibilities" {
		lines, ok := value.([]string)
		if !ok {
			return &FieldError{Section: SectionWorkExperience, Field: field, Message: "expected a list of strings"}
		}
		w.Responsibilities = append([]string{}, lines...)
		return nil
	}

	targets := map[string]*string{
		"jobTitle":  &w.JobTitle,
		"company":   &w.Company,
		"startDate": &w.StartDate,
		"endDate":   &w.EndDate,
		"location":  &w.Location,
	}
	return setText(SectionWorkExperience, targets, field, value)
}

func setEducationField(e *types.Education, field string, value any) error {
	targets := map[string]*string{
		"degree":         &e.Degree,
		"institution":    &e.Institution,
		"graduationYear": &e.GraduationYear,
		"details":        &e.Details,
		"location":       &e.Location,
	}
	return setText(SectionEducation, targets, field, value)
}

func setLeveled(section Section, name *string, level *int, field string, value any) error {
	switch field {
	case "name":
		return setText(section, map[string]*string{"name": name}, field, value)
	case "level":
		n, err := toLevel(value)
		if err != nil {
			return &FieldError{Section: section, Field: field, Message: err.Error()}
		}
		*level = n
		return nil
	}
	return &FieldError{Section: section, Field: field, Message: "unknown field"}
}

func setText(section Section, targets map[string]*string, field string, value any) error {
	target, ok := targets[field]
	if !ok {
		return &FieldError{Section: section, Field: field, Message: "unknown field"}
	}
	text, ok := value.(string)
	if !ok {
		return &FieldError{Section: section, Field: field, Message: "expected a string"}
	}
	*target = text
	return nil
}

// toLevel converts a level value and clamps it to [0,100].
func toLevel(value any) (int, error) {
	var f float64
	switch v := value.(type) {
	case int:
		return min(max(v, 0), 100), nil
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("level must be a number")
		}
		f = parsed
	default:
		return 0, fmt.Errorf("level must be a number")
	}
	if math.IsNaN(f) {
		return 0, fmt.Errorf("level must be a number")
	}
	// clamp in float64; converting an out-of-range float to int is implementation-defined
	return int(math.Max(0, math.Min(100, f))), nil
}
