package db

import (
	"fmt"

	"github.com/google/uuid"
)

// ResumeNotFoundError is returned when a resume does not exist or belongs to another owner.
type ResumeNotFoundError struct {
	OwnerID uuid.UUID
	ID      int64
}

func (e *ResumeNotFoundError) Error() string {
	return fmt.Sprintf("resume not found with id: %d", e.ID)
}

// resumeColumns is the select list matching scanResume.
const resumeColumns = `id, owner_id, template_id, data, created_at, updated_at`
