package model

import (
	"time"

	"gorm.io/gorm"
)

// DecisionStatus is the admin verdict dimension of an application.
type DecisionStatus string

const (
	DecisionPending  DecisionStatus = "pending"
	DecisionApproved DecisionStatus = "approved"
	DecisionRejected DecisionStatus = "rejected"
)

// ProgramApplication records one student's application to one program.
// At most one row exists per (student, program) pair, enforced by the
// composite unique index and re-checked inside the submit transaction.
// The row is immutable after creation; its decision state lives in the
// append-only ProgramDecision history.
type ProgramApplication struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	StudentID   uint           `gorm:"not null;uniqueIndex:idx_applications_student_program" json:"student_id"`
	ProgramID   uint           `gorm:"not null;uniqueIndex:idx_applications_student_program" json:"program_id"`
	SubmittedAt time.Time      `gorm:"not null" json:"submitted_at"`

	// Contact snapshot captured at submission time
	ContactNumber    string `gorm:"type:varchar(30)" json:"contact_number"`
	Address          string `gorm:"type:text" json:"address"`
	EmergencyContact string `gorm:"type:varchar(255)" json:"emergency_contact"`
	EmergencyNumber  string `gorm:"type:varchar(30)" json:"emergency_number"`

	// Relationships
	Student    StudentProfile    `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Program    Program           `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"program,omitempty"`
	Decisions  []ProgramDecision `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"decisions,omitempty"`
	ServiceLog *ServiceLog       `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"service_log,omitempty"`
}

// ProgramDecision is one entry in an application's append-only decision
// history. The current status of an application is the status of its most
// recent decision; with no decisions the application is pending.
type ProgramDecision struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	ApplicationID uint           `gorm:"not null;index" json:"application_id"`
	Status        DecisionStatus `gorm:"type:varchar(20);not null" json:"status"`
	DecidedBy     uint           `json:"decided_by"` // admin user id, zero for seeded rows
	DecidedAt     time.Time      `gorm:"not null;index" json:"decided_at"`

	// Relationships
	Application ProgramApplication `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"-"`
}

// CurrentStatus resolves the application's decision state from the loaded
// Decisions slice: latest DecidedAt wins, empty history means pending.
// For a concurrency-safe read inside a transaction use the workflow
// service, which queries the latest row under the application lock.
func (a *ProgramApplication) CurrentStatus() DecisionStatus {
	status := DecisionPending
	var latest time.Time
	for _, d := range a.Decisions {
		if d.DecidedAt.After(latest) || latest.IsZero() {
			latest = d.DecidedAt
			status = d.Status
		}
	}
	return status
}

// IsDecided reports whether the application has left the pending state.
func (a *ProgramApplication) IsDecided() bool {
	return a.CurrentStatus() != DecisionPending
}
