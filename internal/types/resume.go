// Package types provides type definitions for structured data used throughout cvmaker.
package types

// ContactInfo holds the contact channels of a resume. Email and phone are always
// present keys on the wire; the remaining channels are optional.
type ContactInfo struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Website   string `json:"website,omitempty"`
	Address   string `json:"address,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
}

// WorkExperience is a single position in the work history.
type WorkExperience struct {
	ID               string   `json:"id" validate:"required"`
	JobTitle         string   `json:"jobTitle"`
	Company          string   `json:"company"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	Responsibilities []string `json:"responsibilities"`
	Location         string   `json:"location,omitempty"`
}

// Education is a single degree or certificate.
type Education struct {
	ID             string `json:"id" validate:"required"`
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	GraduationYear string `json:"graduationYear"`
	Details        string `json:"details,omitempty"`
	Location       string `json:"location,omitempty"`
}

// Skill is a named skill with a proficiency level between 0 and 100.
type Skill struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Level int    `json:"level" validate:"min=0,max=100"`
}

// Language is a spoken language with a proficiency level between 0 and 100.
type Language struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Level int    `json:"level" validate:"min=0,max=100"`
}

// ResumeData is the structured, user-edited resume content.
type ResumeData struct {
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	JobTitle       string           `json:"jobTitle"`
	Summary        string           `json:"summary"`
	Contact        ContactInfo      `json:"contact"`
	WorkExperience []WorkExperience `json:"workExperience" validate:"dive"`
	Education      []Education      `json:"education" validate:"dive"`
	Skills         []Skill          `json:"skills" validate:"dive"`
	Languages      []Language       `json:"languages" validate:"dive"`
	ProfilePicture *string          `json:"profilePicture"`
}

// NewResumeData returns an empty resume with all lists initialized.
func NewResumeData() *ResumeData {
	return &ResumeData{
		WorkExperience: []WorkExperience{},
		Education:      []Education{},
		Skills:         []Skill{},
		Languages:      []Language{},
	}
}

// FullName joins first and last name, trimming the separator when either is empty.
func (d *ResumeData) FullName() string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	default:
		return d.FirstName + " " + d.LastName
	}
}

// Clone returns a deep copy of the resume.
func (d *ResumeData) Clone() *ResumeData {
	if d == nil {
		return nil
	}
	out := *d
	out.WorkExperience = make([]WorkExperience, len(d.WorkExperience))
	for i, w := range d.WorkExperience {
		w.Responsibilities = append([]string{}, w.Responsibilities...)
		out.WorkExperience[i] = w
	}
	out.Education = append([]Education{}, d.Education...)
	out.Skills = append([]Skill{}, d.Skills...)
	out.Languages = append([]Language{}, d.Languages...)
	if d.ProfilePicture != nil {
		pic := *d.ProfilePicture
		out.ProfilePicture = &pic
	}
	return &out
}

// normalize replaces nil lists with empty ones so that decoded documents
// compare equal to freshly constructed ones.
func (d *ResumeData) normalize() {
	if d.WorkExperience == nil {
		d.WorkExperience = []WorkExperience{}
	}
	for i := range d.WorkExperience {
		if d.WorkExperience[i].Responsibilities == nil {
			d.WorkExperience[i].Responsibilities = []string{}
		}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Languages == nil {
		d.Languages = []Language{}
	}
}
