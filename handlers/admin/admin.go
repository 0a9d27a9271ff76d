package admin

import (
	"strconv"

	"github.com/g-rown/UAct-BackEnd/database"
	"github.com/g-rown/UAct-BackEnd/model"
	"github.com/g-rown/UAct-BackEnd/services"
	"github.com/g-rown/UAct-BackEnd/utils/response"
	"github.com/g-rown/UAct-BackEnd/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminHandler handles dashboard reporting, settings and audit queries
type AdminHandler struct {
	db        *gorm.DB
	reports   *database.ReportStore
	settings  *services.SettingsService
	validator *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, reports *database.ReportStore) *AdminHandler {
	return &AdminHandler{
		db:        db,
		reports:   reports,
		settings:  services.NewSettingsService(db),
		validator: validation.NewValidator(),
	}
}

// UpdateSettingRequest represents the request body for updating a setting
type UpdateSettingRequest struct {
	Key         string `json:"key" validate:"required,min=3,max=100"`
	Value       string `json:"value" validate:"required,max=500"`
	Type        string `json:"type" validate:"omitempty,oneof=string int bool"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// GetDashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) GetDashboard(c *fiber.Ctx) error {
	totals, err := h.reports.GetDashboardTotals()
	if err != nil {
		return response.InternalServerError(c, "Failed to compute dashboard totals")
	}

	fillRates, err := h.reports.GetProgramFillRates(10)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute fill rates")
	}

	leaderboard, err := h.reports.GetHoursLeaderboard(10)
	if err != nil {
		return response.InternalServerError(c, "Failed to compute leaderboard")
	}

	return response.Success(c, fiber.Map{
		"totals":      totals,
		"fill_rates":  fillRates,
		"leaderboard": leaderboard,
	})
}

// ListSettings handles GET /api/v1/admin/settings
func (h *AdminHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.settings.List(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch settings")
	}
	return response.Success(c, settings)
}

// UpdateSetting handles PUT /api/v1/admin/settings
func (h *AdminHandler) UpdateSetting(c *fiber.Ctx) error {
	var req UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if req.Type == "" {
		req.Type = "string"
	}

	setting, err := h.settings.Set(c.Context(), req.Key, req.Value, req.Type, req.Description)
	if err != nil {
		return response.InternalServerError(c, "Failed to update setting")
	}

	return response.SuccessWithMessage(c, "Setting updated successfully", setting)
}

// ListAuditLog handles GET /api/v1/admin/audit-log
func (h *AdminHandler) ListAuditLog(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	action := c.Query("action", "")
	resource := c.Query("resource", "")

	query := h.db.Model(&model.AdminAuditLog{})

	if action != "" {
		query = query.Where("action = ?", action)
	}
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count audit entries")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var entries []model.AdminAuditLog
	if err := query.Preload("Admin").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch audit entries")
	}

	return response.Paginated(c, entries, pagination)
}

// ListCronJobLogs handles GET /api/v1/admin/cron-logs
func (h *AdminHandler) ListCronJobLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	query := h.db.Model(&model.CronJobLog{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count cron logs")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var logs []model.CronJobLog
	if err := query.Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch cron logs")
	}

	return response.Paginated(c, logs, pagination)
}
