package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationType represents the type/severity of notification
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
)

// NotificationCategory represents the workflow event that produced it
type NotificationCategory string

const (
	NotificationCategoryDecision      NotificationCategory = "application_decision"
	NotificationCategoryAccreditation NotificationCategory = "hours_accredited"
	NotificationCategoryGeneral       NotificationCategory = "general"
)

// UserNotification represents a notification for a user
type UserNotification struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	DeletedAt gorm.DeletedAt       `gorm:"index" json:"-"`
	UserID    uint                 `gorm:"index;not null" json:"user_id"`
	Type      NotificationType     `gorm:"type:varchar(20);not null" json:"type"`
	Category  NotificationCategory `gorm:"type:varchar(30);not null" json:"category"`
	Title     string               `gorm:"type:varchar(255);not null" json:"title"`
	Message   string               `gorm:"type:text" json:"message"`
	Read      bool                 `gorm:"default:false" json:"read"`
	Metadata  datatypes.JSON       `gorm:"type:jsonb" json:"metadata,omitempty"` // program/application context

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// NotificationMetadata is the shape stored in Metadata for workflow events.
type NotificationMetadata struct {
	ProgramID     uint   `json:"program_id,omitempty"`
	ProgramName   string `json:"program_name,omitempty"`
	ApplicationID uint   `json:"application_id,omitempty"`
	ServiceLogID  uint   `json:"service_log_id,omitempty"`
	Hours         int    `json:"hours,omitempty"`
}
