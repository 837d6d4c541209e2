package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ResumeRecord is the server-persisted envelope around a serialized ResumeData.
type ResumeRecord struct {
	ID         int64     `json:"id"`
	OwnerID    uuid.UUID `json:"userId"`
	TemplateID string    `json:"templateId"`
	Data       string    `json:"data"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Template returns the record's template id resolved to a known variant.
func (r *ResumeRecord) Template() TemplateVariant {
	return ParseTemplateVariant(r.TemplateID)
}

// UpsertResumeRequest is the body of POST /resumes.
type UpsertResumeRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
	Data       string `json:"data" validate:"required"`
}

// Validate validates the UpsertResumeRequest using the validator.
func (r *UpsertResumeRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// GeneratePDFRequest is the body of POST /api/generate-pdf.
type GeneratePDFRequest struct {
	HTML string `json:"html"`
}

// Status is the status block of the API envelope.
type Status struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope wraps every JSON payload of the resume collection API.
type Envelope[T any] struct {
	Data   T      `json:"data"`
	Status Status `json:"status"`
}

// StatusSuccess is the status code of a successful envelope.
const StatusSuccess = "SUCCESS"

// Success builds a successful envelope around data.
func Success[T any](data T) Envelope[T] {
	return Envelope[T]{
		Data:   data,
		Status: Status{Code: StatusSuccess, Message: "Request processed successfully"},
	}
}

// Failure builds an error envelope with no data.
func Failure(code, message string) Envelope[any] {
	return Envelope[any]{
		Status: Status{Code: code, Message: message},
	}
}
