package application

import (
	"errors"
	"strconv"

	"github.com/g-rown/UAct-BackEnd/model"
	"github.com/g-rown/UAct-BackEnd/services"
	"github.com/g-rown/UAct-BackEnd/utils/middleware"
	"github.com/g-rown/UAct-BackEnd/utils/response"
	"github.com/g-rown/UAct-BackEnd/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ApplicationHandler handles application submission and the admin
// decision workflow
type ApplicationHandler struct {
	db            *gorm.DB
	workflow      *services.WorkflowService
	notifications *services.NotificationService
	validator     *validation.Validator
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(db *gorm.DB) *ApplicationHandler {
	return &ApplicationHandler{
		db:            db,
		workflow:      services.NewWorkflowService(db),
		notifications: services.NewNotificationService(db),
		validator:     validation.NewValidator(),
	}
}

// SubmitApplicationRequest represents the request body for applying to a program
type SubmitApplicationRequest struct {
	ProgramID        uint   `json:"program_id" validate:"required,min=1"`
	ContactNumber    string `json:"contact_number" validate:"required,min=7,max=30"`
	Address          string `json:"address" validate:"required,min=5,max=500"`
	EmergencyContact string `json:"emergency_contact" validate:"required,min=2,max=255"`
	EmergencyNumber  string `json:"emergency_number" validate:"required,min=7,max=30"`
}

// DecideApplicationRequest represents the admin verdict body
type DecideApplicationRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// ApplicationResponse is an application with its resolved decision state
type ApplicationResponse struct {
	model.ProgramApplication
	Status model.DecisionStatus `json:"status"`
}

func toApplicationResponse(a model.ProgramApplication) ApplicationResponse {
	return ApplicationResponse{ProgramApplication: a, Status: a.CurrentStatus()}
}

func (h *ApplicationHandler) studentProfile(c *fiber.Ctx) (*model.StudentProfile, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return nil, errors.New("not authenticated")
	}

	var profile model.StudentProfile
	if err := h.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SubmitApplication handles POST /api/v1/applications (student only)
func (h *ApplicationHandler) SubmitApplication(c *fiber.Ctx) error {
	profile, err := h.studentProfile(c)
	if err != nil {
		return response.Unauthorized(c, "Student profile not found")
	}

	var req SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	application, err := h.workflow.SubmitApplication(c.Context(), profile.ID, req.ProgramID, services.SubmitInput{
		ContactNumber:    validation.SanitizeString(req.ContactNumber),
		Address:          validation.SanitizeString(req.Address),
		EmergencyContact: validation.SanitizeString(req.EmergencyContact),
		EmergencyNumber:  validation.SanitizeString(req.EmergencyNumber),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Program not found")
		case errors.Is(err, services.ErrProgramFull):
			return response.Conflict(c, "Program has no remaining slots", "PROGRAM_FULL")
		case errors.Is(err, services.ErrDuplicateApplication):
			return response.Conflict(c, "You have already applied to this program", "DUPLICATE_APPLICATION")
		default:
			return response.InternalServerError(c, "Failed to submit application")
		}
	}

	return response.Created(c, toApplicationResponse(*application))
}

// ListMyApplications handles GET /api/v1/applications/me (student only).
// Returns the student's service history newest first.
func (h *ApplicationHandler) ListMyApplications(c *fiber.Ctx) error {
	profile, err := h.studentProfile(c)
	if err != nil {
		return response.Unauthorized(c, "Student profile not found")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	query := h.db.Model(&model.ProgramApplication{}).
		Where("student_id = ?", profile.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count applications")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var applications []model.ProgramApplication
	if err := query.Preload("Program").
		Preload("Decisions").
		Preload("ServiceLog").
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&applications).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch applications")
	}

	out := make([]ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		out = append(out, toApplicationResponse(a))
	}

	return response.Paginated(c, out, pagination)
}

// GetApplication handles GET /api/v1/applications/:id. Students can only
// see their own applications.
func (h *ApplicationHandler) GetApplication(c *fiber.Ctx) error {
	id := c.Params("id")

	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	var application model.ProgramApplication
	if err := h.db.Preload("Program").
		Preload("Decisions").
		Preload("ServiceLog").
		Preload("Student").
		First(&application, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to fetch application")
	}

	if user.IsStudent() && application.Student.UserID != user.ID {
		return response.Forbidden(c, "You can only view your own applications")
	}

	return response.Success(c, toApplicationResponse(application))
}

// ListApplications handles GET /api/v1/applications (admin only).
// Filterable by program and by resolved decision status.
func (h *ApplicationHandler) ListApplications(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	programID := c.Query("program_id", "")
	status := c.Query("status", "")

	query := h.db.Model(&model.ProgramApplication{})

	if programID != "" {
		query = query.Where("program_id = ?", programID)
	}

	// Status lives in the latest decision row, not on the application
	switch status {
	case "":
	case string(model.DecisionPending):
		query = query.Where(`NOT EXISTS (
			SELECT 1 FROM program_decisions d
			WHERE d.application_id = program_applications.id AND d.deleted_at IS NULL
		)`)
	case string(model.DecisionApproved), string(model.DecisionRejected):
		query = query.Where(`(
			SELECT d.status FROM program_decisions d
			WHERE d.application_id = program_applications.id AND d.deleted_at IS NULL
			ORDER BY d.decided_at DESC LIMIT 1
		) = ?`, status)
	default:
		return response.BadRequest(c, "Invalid status filter")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count applications")
	}

	offset := (page - 1) * limit
	pagination := response.CalculatePagination(page, limit, total)

	var applications []model.ProgramApplication
	if err := query.Preload("Program").
		Preload("Decisions").
		Preload("Student").
		Preload("Student.User").
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&applications).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch applications")
	}

	out := make([]ApplicationResponse, 0, len(applications))
	for _, a := range applications {
		out = append(out, toApplicationResponse(a))
	}

	return response.Paginated(c, out, pagination)
}

// DecideApplication handles POST /api/v1/applications/:id/decision (admin only)
func (h *ApplicationHandler) DecideApplication(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok || user == nil {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req DecideApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	decision, err := h.workflow.Decide(c.Context(), uint(id), user.ID, model.DecisionStatus(req.Status))
	if err != nil {
		var alreadyDecided *services.AlreadyDecidedError
		switch {
		case errors.Is(err, services.ErrNotFound):
			return response.NotFound(c, "Application not found")
		case errors.As(err, &alreadyDecided):
			return response.Conflict(c,
				"Application has already been "+string(alreadyDecided.Status), "ALREADY_DECIDED")
		case errors.Is(err, services.ErrProgramFull):
			return response.Conflict(c, "Program has no remaining slots", "PROGRAM_FULL")
		default:
			return response.InternalServerError(c, "Failed to decide application")
		}
	}

	// Notify outside the decision transaction; a notification failure
	// never undoes a committed decision.
	var application model.ProgramApplication
	if err := h.db.Preload("Program").Preload("Student").
		First(&application, decision.ApplicationID).Error; err == nil {
		h.notifications.NotifyDecision(c.Context(),
			application.Student.UserID, &application.Program, application.ID, decision.Status)
	}

	return response.SuccessWithMessage(c, "Application "+req.Status, decision)
}
