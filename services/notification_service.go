package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/g-rown/UAct-BackEnd/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService writes user notifications for workflow events.
// Failures here are logged, never propagated: a missed notification must
// not roll back a decision that already committed.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) create(ctx context.Context, n model.UserNotification) {
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		log.Printf("Failed to create notification for user %d: %v", n.UserID, err)
	}
}

func marshalMetadata(meta model.NotificationMetadata) datatypes.JSON {
	data, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

// NotifyDecision tells a student their application was approved or rejected
func (s *NotificationService) NotifyDecision(ctx context.Context, userID uint, program *model.Program, applicationID uint, status model.DecisionStatus) {
	notifType := model.NotificationTypeSuccess
	title := "Application approved"
	message := fmt.Sprintf("Your application for %q has been approved. See you on %s.",
		program.Name, program.Date.Format("January 2, 2006"))

	if status == model.DecisionRejected {
		notifType = model.NotificationTypeWarning
		title = "Application rejected"
		message = fmt.Sprintf("Your application for %q was not approved.", program.Name)
	}

	s.create(ctx, model.UserNotification{
		UserID:   userID,
		Type:     notifType,
		Category: model.NotificationCategoryDecision,
		Title:    title,
		Message:  message,
		Metadata: marshalMetadata(model.NotificationMetadata{
			ProgramID:     program.ID,
			ProgramName:   program.Name,
			ApplicationID: applicationID,
		}),
	})
}

// NotifyAccreditation tells a student their service hours were credited
func (s *NotificationService) NotifyAccreditation(ctx context.Context, userID uint, program *model.Program, logID uint) {
	s.create(ctx, model.UserNotification{
		UserID:   userID,
		Type:     model.NotificationTypeSuccess,
		Category: model.NotificationCategoryAccreditation,
		Title:    "Service hours accredited",
		Message:  fmt.Sprintf("%d hours for %q have been added to your record.", program.Hours, program.Name),
		Metadata: marshalMetadata(model.NotificationMetadata{
			ProgramID:    program.ID,
			ProgramName:  program.Name,
			ServiceLogID: logID,
			Hours:        program.Hours,
		}),
	})
}

// ListForUser returns a page of the user's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID uint, limit, offset int, unreadOnly bool) ([]model.UserNotification, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.UserNotification{}).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.UserNotification
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error
	return notifications, total, err
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// DeleteOlderThan removes read notifications older than the cutoff
func (s *NotificationService) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("read = ? AND created_at < ?", true, cutoff).
		Delete(&model.UserNotification{})
	return res.RowsAffected, res.Error
}
