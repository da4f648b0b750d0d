package models

import "fmt"

// copyNamePrefix is prepended to the name of a duplicated course.
const copyNamePrefix = "Copy of "

// Course represents a named offering that groups sessions.
type Course struct {
	ID            int64   `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	Description   *string `json:"description,omitempty" db:"description"` // Nullable
	ResponsibleID *int64  `json:"responsibleId,omitempty" db:"responsible_id"`

	// Reverse relation of Session.CourseID (populated when needed)
	SessionIDs  []int64 `json:"sessionIds"`
	Responsible *User   `json:"responsible,omitempty"`
}

// CopyNamePattern returns the LIKE pattern used to count earlier copies of a course name.
// The name is not escaped, so '%' and '_' inside it keep their wildcard meaning.
func CopyNamePattern(name string) string {
	return copyNamePrefix + name
}

// CopyName builds the name of a duplicated course from the source name and the number of
// courses already matching CopyNamePattern. The first copy is unsuffixed; later copies carry
// the count of earlier matches, so repeated copies can produce the same name.
func CopyName(name string, existingCopies int) string {
	if existingCopies == 0 {
		return copyNamePrefix + name
	}
	return fmt.Sprintf("%s%s (%d)", copyNamePrefix, name, existingCopies)
}

// CourseCopyOverrides carries field values that replace the copied ones.
type CourseCopyOverrides struct {
	Description   *string
	ResponsibleID *int64
}

// Copy returns a shallow copy of the course under a new name. Sessions are not copied.
func (c *Course) Copy(name string, overrides CourseCopyOverrides) *Course {
	dup := &Course{
		Name:          name,
		Description:   c.Description,
		ResponsibleID: c.ResponsibleID,
		SessionIDs:    []int64{},
	}
	if overrides.Description != nil {
		dup.Description = overrides.Description
	}
	if overrides.ResponsibleID != nil {
		dup.ResponsibleID = overrides.ResponsibleID
	}
	return dup
}
