package store

import (
	"fmt"

	"github.com/jonathan/cvmaker/internal/types"
)

// UnknownFieldError is returned by the scalar setters for names the resume does not have.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// SetField sets one of the identity fields: firstName, lastName, jobTitle or summary.
func (s *Store) SetField(field, value string) error {
	var err error
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		target := identityField(d, field)
		if target == nil {
			err = &UnknownFieldError{Field: field}
			return d, false
		}
		if *target == value {
			return d, false
		}
		*target = value
		return d, true
	})
	return err
}

// SetFirstName sets the first name.
func (s *Store) SetFirstName(v string) { _ = s.SetField("firstName", v) }

// SetLastName sets the last name.
func (s *Store) SetLastName(v string) { _ = s.SetField("lastName", v) }

// SetJobTitle sets the headline job title.
func (s *Store) SetJobTitle(v string) { _ = s.SetField("jobTitle", v) }

// SetSummary sets the summary paragraph.
func (s *Store) SetSummary(v string) { _ = s.SetField("summary", v) }

// SetContact sets one contact channel such as email, phone or linkedin.
func (s *Store) SetContact(channel, value string) error {
	var err error
	s.mutate(func(d *types.ResumeData) (*types.ResumeData, bool) {
		target := contactField(&d.Contact, channel)
		if target == nil {
			err = &UnknownFieldError{Field: "contact." + channel}
			return d, false
		}
		if *target == value {
			return d, false
		}
		*target = value
		return d, true
	})
	return err
}

func identityField(d *types.ResumeData, field string) *string {
	switch field {
	case "firstName":
		return &d.FirstName
	case "lastName":
		return &d.LastName
	case "jobTitle":
		return &d.JobTitle
	case "summary":
		return &d.Summary
	}
	return nil
}

func contactField(c *types.ContactInfo, channel string) *string {
	switch channel {
	case "email":
		return &c.Email
	case "phone":
		return &c.Phone
	case "linkedin":
		return &c.LinkedIn
	case "github":
		return &c.GitHub
	case "website":
		return &c.Website
	case "address":
		return &c.Address
	case "facebook":
		return &c.Facebook
	case "instagram":
		return &c.Instagram
	case "twitter":
		return &c.Twitter
	}
	return nil
}
