package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/g-rown/UAct-BackEnd/model"
	"github.com/g-rown/UAct-BackEnd/services"
	"github.com/g-rown/UAct-BackEnd/utils/auth"
)

// RefreshFulfillmentStatuses brings the stored service-log status column in
// line with the program dates. The workflow recomputes statuses on its own
// transitions and on read; this keeps the column fresh for reporting over
// logs nobody has touched since their program date passed.
func (m *CronManager) RefreshFulfillmentStatuses() {
	jobName := "refresh_fulfillment_statuses"
	today := time.Now()

	// Logs that still say pending/ongoing but whose program date passed
	res := m.db.Model(&model.ServiceLog{}).
		Where("status <> ?", model.FulfillmentCompleted).
		Where("application_id IN (?)", m.db.Model(&model.ProgramApplication{}).
			Select("program_applications.id").
			Joins("JOIN programs ON programs.id = program_applications.program_id").
			Where("programs.date < ?", today.Format("2006-01-02"))).
		Update("status", model.FulfillmentCompleted)
	if res.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to complete past logs: %w", res.Error))
		return
	}
	completed := res.RowsAffected

	// Logs whose program runs today
	res = m.db.Model(&model.ServiceLog{}).
		Where("status = ?", model.FulfillmentPending).
		Where("application_id IN (?)", m.db.Model(&model.ProgramApplication{}).
			Select("program_applications.id").
			Joins("JOIN programs ON programs.id = program_applications.program_id").
			Where("programs.date = ?", today.Format("2006-01-02"))).
		Update("status", model.FulfillmentOngoing)
	if res.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to mark ongoing logs: %w", res.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("%d logs completed, %d ongoing", completed, res.RowsAffected))
}

// CleanupTokenBlacklist drops blacklist entries whose tokens have expired
// anyway
func (m *CronManager) CleanupTokenBlacklist() {
	jobName := "cleanup_token_blacklist"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	blacklist := auth.NewBlacklistService(m.db)
	if err := blacklist.CleanupExpiredTokens(ctx); err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, "Expired blacklist entries removed")
}

// CleanupOldNotifications prunes read notifications older than 90 days
func (m *CronManager) CleanupOldNotifications() {
	jobName := "cleanup_old_notifications"
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	notifications := services.NewNotificationService(m.db)
	removed, err := notifications.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -90))
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d notifications", removed))
}
