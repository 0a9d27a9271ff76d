package model

import (
	"time"

	"gorm.io/gorm"
)

// Program represents a community-service program students can apply to.
// SlotsTaken is mutated only by the decision workflow through a guarded
// conditional update; 0 <= SlotsTaken <= Slots holds at all times.
type Program struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Location    string         `gorm:"type:varchar(255)" json:"location"`
	Facilitator string         `gorm:"type:varchar(255)" json:"facilitator"`
	Date        time.Time      `gorm:"type:date;not null;index" json:"date"`
	TimeStart   string         `gorm:"type:varchar(8)" json:"time_start"` // "HH:MM"
	TimeEnd     string         `gorm:"type:varchar(8)" json:"time_end"`
	Hours       int            `gorm:"not null" json:"hours"` // credit awarded on accreditation
	Slots       int            `gorm:"not null" json:"slots"`
	SlotsTaken  int            `gorm:"not null;default:0" json:"slots_taken"`

	// Relationships
	Applications []ProgramApplication `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"-"`
}

// SlotsRemaining returns the number of unreserved seats.
func (p *Program) SlotsRemaining() int {
	return p.Slots - p.SlotsTaken
}

// IsFull reports whether every seat has been reserved.
func (p *Program) IsFull() bool {
	return p.SlotsTaken >= p.Slots
}
