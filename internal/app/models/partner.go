package models

import "strings"

// TeacherCategory is the partner category that qualifies a partner as an instructor.
const TeacherCategory = "Teacher"

// Partner is a person that can instruct or attend sessions.
type Partner struct {
	ID         int64   `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	Email      *string `json:"email,omitempty" db:"email"`
	Instructor bool    `json:"instructor" db:"instructor"`

	Categories []PartnerCategory `json:"categories"`
	// Sessions the partner attends; read-only reverse view of Session.AttendeeIDs
	SessionIDs []int64 `json:"sessionIds"`
}

// PartnerCategory tags partners, e.g. "Teacher".
type PartnerCategory struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CanInstruct reports whether the partner may be chosen as a session instructor: either it is
// flagged as an instructor or one of its categories contains "Teacher", ignoring case.
func (p *Partner) CanInstruct() bool {
	if p.Instructor {
		return true
	}
	for _, c := range p.Categories {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(TeacherCategory)) {
			return true
		}
	}
	return false
}
