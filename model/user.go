package model

import (
	"time"

	"gorm.io/gorm"
)

// Role values for User.Role. A user is either a student or an admin,
// never both.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // student, admin
	TokenVersion int            `gorm:"default:0" json:"-"`                             // Increment to invalidate all user tokens

	// Relationships
	StudentProfile *StudentProfile     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"student_profile,omitempty"`
	Notifications  []UserNotification  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AuditLog       []AdminAuditLog     `gorm:"foreignKey:AdminID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStudent reports whether the user holds the student role.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// StudentProfile tracks a student's service-hour requirement and progress.
// Created in the same transaction as the student's User row; one per student.
// HoursCompleted is only ever increased by the accreditation workflow.
type StudentProfile struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	UserID             uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Course             string         `gorm:"type:varchar(100)" json:"course"`
	YearLevel          string         `gorm:"type:varchar(20)" json:"year_level"`
	TotalRequiredHours int            `gorm:"not null;default:0" json:"total_required_hours"`
	HoursCompleted     int            `gorm:"not null;default:0" json:"hours_completed"`

	// Relationships
	User         User                 `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Applications []ProgramApplication `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"applications,omitempty"`
}

// HoursRemaining returns the hours still owed. Negative when the student
// has over-fulfilled the requirement; intentionally not clamped.
func (p *StudentProfile) HoursRemaining() int {
	return p.TotalRequiredHours - p.HoursCompleted
}
