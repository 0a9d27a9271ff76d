package accreditation

import (
	"errors"
	"strconv"

	"github.com/g-rown/UAct-BackEnd/model"
	"github.com/g-rown/UAct-BackEnd/services"
	"github.com/g-rown/UAct-BackEnd/utils/middleware"
	"github.com/g-rown/UAct-BackEnd/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AccreditationHandler handles service-log review and hour accreditation
type AccreditationHandler struct {
	db            *gorm.DB
	workflow      *services.WorkflowService
	notifications *services.NotificationService
}

// NewAccreditationHandler creates a new accreditation handler
func NewAccreditationHandler(db *gorm.DB) *AccreditationHandler {
	return &AccreditationHandler{
		db:            db,
		workflow:      services.NewWorkflowService(db),
		notifications: services.NewNotificationService(db),
	}
}

// ListServiceLogs handles GET /api/v1/service-logs (admin only).
// Filterable by fulfillment status and accreditation state; defaults to
// logs of accepted applications awaiting accreditation.
func (h *AccreditationHandler) ListServiceLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	status := c.Query("status", "")
	approved := c.Query("approved", "")
	programID := c.Query("program_id", "")

	query := h.db.Model(&model.ServiceLog{}).
		Joins("JOIN program_applications ON program_applications.id = service_logs.application_id").
		Where("service_logs.accepted = ?", true)

	if status != "" {
		query = query.Where("service_logs.status = ?", status)
	}
	if approved != "" {
		query = query.Where("service_logs.approved = ?", approved == "true")
	}
	if programID != "" {
		query = query.Where("program_applications.program_id = ?", programID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count service logs")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var logs []model.ServiceLog
	if err := query.Preload("Application").
		Preload("Application.Program").
		Preload("Application.Student").
		Preload("Application.Student.User").
		Order("service_logs.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch service logs")
	}

	return response.Paginated(c, logs, pagination)
}

// GetServiceLog handles GET /api/v1/service-logs/:id. Students can only
// see their own logs. The fulfillment status is recomputed on read.
func (h *AccreditationHandler) GetServiceLog(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid service log ID")
	}

	serviceLog, err := h.workflow.GetServiceLog(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Service log not found")
		}
		return response.InternalServerError(c, "Failed to fetch service log")
	}

	if user.IsStudent() {
		var profile model.StudentProfile
		if err := h.db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
			return response.Forbidden(c, "You can only view your own service logs")
		}
		if serviceLog.Application.StudentID != profile.ID {
			return response.Forbidden(c, "You can only view your own service logs")
		}
	}

	return response.Success(c, serviceLog)
}

// ApproveServiceLog handles POST /api/v1/service-logs/:id/approve (admin
// only). Accredits the program's hours to the student exactly once.
func (h *AccreditationHandler) ApproveServiceLog(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid service log ID")
	}

	serviceLog, err := h.workflow.ApproveServiceLog(c.Context(), uint(id), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Service log not found")
		case errors.Is(err, services.ErrAlreadyApproved):
			return response.Conflict(c, "Service log has already been accredited", "ALREADY_APPROVED")
		default:
			return response.InternalServerError(c, "Failed to approve service log")
		}
	}

	var application model.ProgramApplication
	if err := h.db.Preload("Program").Preload("Student").
		First(&application, serviceLog.ApplicationID).Error; err == nil {
		h.notifications.NotifyAccreditation(c.Context(),
			application.Student.UserID, &application.Program, serviceLog.ID)
	}

	return response.SuccessWithMessage(c, "Hours accredited successfully", serviceLog)
}
