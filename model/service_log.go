package model

import (
	"time"

	"gorm.io/gorm"
)

// FulfillmentStatus is the date-derived lifecycle stage of a service log,
// independent of the application's decision state.
type FulfillmentStatus string

const (
	FulfillmentPending   FulfillmentStatus = "pending"
	FulfillmentOngoing   FulfillmentStatus = "ongoing"
	FulfillmentCompleted FulfillmentStatus = "completed"
)

// ServiceLog tracks fulfillment of one application. Exactly one exists per
// application, created when the application is submitted. Approved is the
// accreditation flag: flipping it from false to true is the only event that
// credits the program's hours to the student, and it can happen once.
type ServiceLog struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
	ApplicationID uint              `gorm:"uniqueIndex;not null" json:"application_id"`
	Status        FulfillmentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Accepted      bool              `gorm:"not null;default:false" json:"accepted"` // mirrors an approved decision
	Approved      bool              `gorm:"not null;default:false" json:"approved"` // admin accreditation of hours
	ApprovedAt    *time.Time        `json:"approved_at,omitempty"`

	// Relationships
	Application ProgramApplication `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"application,omitempty"`
}

// DeriveFulfillmentStatus computes the fulfillment stage of a program
// scheduled on date as seen at now. Comparison is by calendar day in the
// date's location.
func DeriveFulfillmentStatus(date, now time.Time) FulfillmentStatus {
	dy, dm, dd := date.Date()
	ny, nm, nd := now.Date()

	switch {
	case ny < dy || (ny == dy && (nm < dm || (nm == dm && nd < dd))):
		return FulfillmentPending
	case ny == dy && nm == dm && nd == dd:
		return FulfillmentOngoing
	default:
		return FulfillmentCompleted
	}
}
